package repository

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	"biblioteca_backend/internals/features/circulation/loans/model"
	"biblioteca_backend/internals/features/circulation/loans/service"
	helper "biblioteca_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore: implementasi service.Store di atas GORM/Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

var _ service.Store = (*GormStore)(nil)

func (s *GormStore) WithinTx(ctx context.Context, fn func(tx service.Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// =====================================================
// Stok buku
// =====================================================

func (s *GormStore) LockBooks(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]service.BookStock, error) {
	out := make(map[uuid.UUID]service.BookStock, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var rows []bookModel.BookModel
	if err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("book_id", "book_title", "book_available_copies").
		Where("book_id IN ?", ids).
		Order("book_id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, b := range rows {
		out[b.BookID] = service.BookStock{BookID: b.BookID, Title: b.BookTitle, Available: b.BookAvailableCopies}
	}
	return out, nil
}

// AdjustStock: guarded update, stok tidak pernah boleh negatif.
// Penambahan stok (pengembalian) lewat restoreStock.
func (s *GormStore) AdjustStock(ctx context.Context, bookID uuid.UUID, delta int) error {
	if delta >= 0 {
		return s.restoreStock(ctx, bookID, delta)
	}
	res := s.db.WithContext(ctx).Exec(`
		UPDATE books
		   SET book_available_copies = book_available_copies + ?,
		       book_row_version = book_row_version + 1,
		       book_updated_at = now()
		 WHERE book_id = ?
		   AND book_deleted_at IS NULL
		   AND book_available_copies + ? >= 0`,
		delta, bookID, delta)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("libro %s: %w", bookID, helper.ErrConcurrencyConflict)
	}
	return nil
}

// restoreStock: buku yang sudah di-soft-delete tetap menerima stok kembali,
// buku yang barisnya sudah tidak ada dilewati supaya pengembalian tidak macet.
func (s *GormStore) restoreStock(ctx context.Context, bookID uuid.UUID, delta int) error {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE books
		   SET book_available_copies = book_available_copies + ?,
		       book_row_version = book_row_version + 1,
		       book_updated_at = now()
		 WHERE book_id = ?`,
		delta, bookID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		log.Printf("[LOANS][STOCK] ⚠️ libro %s tidak ditemukan, stok dilewati", bookID)
	}
	return nil
}

// =====================================================
// Peminjaman
// =====================================================

func (s *GormStore) InsertLoan(ctx context.Context, loan *model.LoanModel) error {
	return s.db.WithContext(ctx).Create(loan).Error
}

func (s *GormStore) LockLoan(ctx context.Context, id uuid.UUID) (*model.LoanModel, error) {
	var loan model.LoanModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("loan_id = ?", id).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanNotFound(id)
	}
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).
		Where("loan_detail_loan_id = ?", id).
		Order("loan_detail_book_id").
		Find(&loan.Details).Error; err != nil {
		return nil, err
	}
	return &loan, nil
}

func loanNotFound(id uuid.UUID) error {
	return fmt.Errorf("%w (%s)", service.ErrLoanNotFound, id)
}

func (s *GormStore) MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) error {
	res := s.db.WithContext(ctx).
		Model(&model.LoanModel{}).
		Where("loan_id = ? AND loan_returned_at IS NULL", id).
		Update("loan_returned_at", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("préstamo %s: %w", id, helper.ErrConcurrencyConflict)
	}
	return nil
}

func (s *GormStore) InsertFines(ctx context.Context, fines []fineModel.FineModel) error {
	if len(fines) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).Create(&fines).Error
}

// DeleteLoan: link denda ke detail dilepas dulu, lalu detail & header dihapus.
func (s *GormStore) DeleteLoan(ctx context.Context, loan *model.LoanModel) error {
	db := s.db.WithContext(ctx)

	detailIDs := make([]uuid.UUID, 0, len(loan.Details))
	for _, d := range loan.Details {
		detailIDs = append(detailIDs, d.LoanDetailID)
	}
	if len(detailIDs) > 0 {
		if err := db.Model(&fineModel.FineModel{}).
			Where("fine_loan_detail_id IN ?", detailIDs).
			Update("fine_loan_detail_id", nil).Error; err != nil {
			return err
		}
	}
	if err := db.Where("loan_detail_loan_id = ?", loan.LoanID).Delete(&model.LoanDetailModel{}).Error; err != nil {
		return err
	}
	res := db.Where("loan_id = ?", loan.LoanID).Delete(&model.LoanModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return loanNotFound(loan.LoanID)
	}
	return nil
}

// =====================================================
// Read side
// =====================================================

func (s *GormStore) GetLoanView(ctx context.Context, id uuid.UUID) (*service.LoanView, error) {
	var loan model.LoanModel
	err := s.db.WithContext(ctx).
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("loan_detail_book_id") }).
		Where("loan_id = ?", id).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, loanNotFound(id)
	}
	if err != nil {
		return nil, err
	}

	views, err := s.buildViews(ctx, []model.LoanModel{loan})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *GormStore) ListLoanViews(ctx context.Context, f service.ListFilter) ([]service.LoanView, int64, error) {
	q := s.db.WithContext(ctx).Model(&model.LoanModel{})
	if f.UserID != nil {
		q = q.Where("loan_user_id = ?", *f.UserID)
	}
	switch f.Status {
	case "active":
		q = q.Where("loan_returned_at IS NULL")
	case "returned":
		q = q.Where("loan_returned_at IS NOT NULL")
	case "overdue":
		q = q.Where("loan_returned_at IS NULL AND loan_due_date < ?", f.Now)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var loans []model.LoanModel
	if err := q.
		Preload("Details", func(db *gorm.DB) *gorm.DB { return db.Order("loan_detail_book_id") }).
		Order("loan_date DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Find(&loans).Error; err != nil {
		return nil, 0, err
	}

	views, err := s.buildViews(ctx, loans)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

type userNameRow struct {
	UserID   uuid.UUID
	UserName string
}

type bookTitleRow struct {
	BookID    uuid.UUID
	BookTitle string
}

type fineLinkRow struct {
	FineID           uuid.UUID
	FineLoanDetailID uuid.UUID
}

// buildViews: username, judul buku & id denda diambil batch (3 query, tanpa N+1).
func (s *GormStore) buildViews(ctx context.Context, loans []model.LoanModel) ([]service.LoanView, error) {
	views := make([]service.LoanView, len(loans))
	if len(loans) == 0 {
		return views, nil
	}

	userIDs := make([]uuid.UUID, 0, len(loans))
	var bookIDs, detailIDs []uuid.UUID
	for _, l := range loans {
		userIDs = append(userIDs, l.LoanUserID)
		for _, d := range l.Details {
			bookIDs = append(bookIDs, d.LoanDetailBookID)
			detailIDs = append(detailIDs, d.LoanDetailID)
		}
	}

	db := s.db.WithContext(ctx)

	var users []userNameRow
	if err := db.Table("users").Select("user_id, user_name").Where("user_id IN ?", userIDs).Scan(&users).Error; err != nil {
		return nil, err
	}
	names := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		names[u.UserID] = u.UserName
	}

	// buku yang sudah soft-delete tetap ditampilkan judulnya
	titles := map[uuid.UUID]string{}
	if len(bookIDs) > 0 {
		var books []bookTitleRow
		if err := db.Table("books").Select("book_id, book_title").Where("book_id IN ?", bookIDs).Scan(&books).Error; err != nil {
			return nil, err
		}
		for _, b := range books {
			titles[b.BookID] = b.BookTitle
		}
	}

	fineByDetail := map[uuid.UUID]uuid.UUID{}
	if len(detailIDs) > 0 {
		var fines []fineLinkRow
		if err := db.Table("fines").Select("fine_id, fine_loan_detail_id").Where("fine_loan_detail_id IN ?", detailIDs).Scan(&fines).Error; err != nil {
			return nil, err
		}
		for _, f := range fines {
			fineByDetail[f.FineLoanDetailID] = f.FineID
		}
	}

	for i, l := range loans {
		v := service.LoanView{
			Loan:       l,
			UserName:   names[l.LoanUserID],
			BookTitles: map[uuid.UUID]string{},
			FineIDs:    map[uuid.UUID]uuid.UUID{},
		}
		for _, d := range l.Details {
			if t, ok := titles[d.LoanDetailBookID]; ok {
				v.BookTitles[d.LoanDetailBookID] = t
			}
			if fid, ok := fineByDetail[d.LoanDetailID]; ok {
				v.FineIDs[d.LoanDetailID] = fid
			}
		}
		views[i] = v
	}
	return views, nil
}

func (s *GormStore) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	var n int64
	if err := s.db.WithContext(ctx).Table("users").Where("user_id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GormStore) Audit(ctx context.Context, e auditService.Entry) error {
	return auditService.Record(ctx, s.db, e)
}
