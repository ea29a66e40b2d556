package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biblioteca_backend/internals/constants"
	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	"biblioteca_backend/internals/features/circulation/reservations/model"
	"biblioteca_backend/internals/features/circulation/reservations/service"
	helper "biblioteca_backend/internals/helpers"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

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

// GetBookStock: FOR SHARE supaya stok tidak berubah selama reservasi dibuat.
func (s *GormStore) GetBookStock(ctx context.Context, bookID uuid.UUID) (*service.BookStock, error) {
	var b bookModel.BookModel
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "SHARE"}).
		Select("book_id", "book_title", "book_available_copies").
		Where("book_id = ?", bookID).
		First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &service.BookStock{BookID: b.BookID, Title: b.BookTitle, Available: b.BookAvailableCopies}, nil
}

func (s *GormStore) Insert(ctx context.Context, r *model.ReservationModel) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *GormStore) Get(ctx context.Context, id uuid.UUID) (*model.ReservationModel, error) {
	var r model.ReservationModel
	err := s.db.WithContext(ctx).Where("reservation_id = ?", id).First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w (%s)", service.ErrReservationNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *GormStore) SaveStatus(ctx context.Context, r *model.ReservationModel, version int64) error {
	res := s.db.WithContext(ctx).
		Model(&model.ReservationModel{}).
		Where("reservation_id = ? AND reservation_row_version = ?", r.ReservationID, version).
		Updates(map[string]any{
			"reservation_status":      r.ReservationStatus,
			"reservation_row_version": gorm.Expr("reservation_row_version + 1"),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("reserva %s: %w", r.ReservationID, helper.ErrConcurrencyConflict)
	}
	r.ReservationRowVersion = version + 1
	return nil
}

func (s *GormStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Where("reservation_id = ?", id).Delete(&model.ReservationModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w (%s)", service.ErrReservationNotFound, id)
	}
	return nil
}

type idRow struct {
	ReservationID uuid.UUID
}

// ExpirePending: satu UPDATE ... RETURNING, aman dijalankan paralel dengan request.
func (s *GormStore) ExpirePending(ctx context.Context, now time.Time) ([]uuid.UUID, error) {
	var rows []idRow
	err := s.db.WithContext(ctx).Raw(`
		UPDATE reservations
		   SET reservation_status = ?,
		       reservation_row_version = reservation_row_version + 1
		 WHERE reservation_status = ?
		   AND reservation_expires_at < ?
		RETURNING reservation_id`,
		constants.ReservationStatusExpired, constants.ReservationStatusPending, now).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ReservationID)
	}
	return ids, nil
}

// =====================================================
// Read side (join ke books & users)
// =====================================================

type viewRow struct {
	model.ReservationModel
	BookTitle string
	UserName  string
}

func (s *GormStore) viewQuery(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Table("reservations AS r").
		Select("r.*, b.book_title AS book_title, u.user_name AS user_name").
		Joins("LEFT JOIN books b ON b.book_id = r.reservation_book_id").
		Joins("LEFT JOIN users u ON u.user_id = r.reservation_user_id")
}

func (v viewRow) toView() service.ReservationView {
	return service.ReservationView{Reservation: v.ReservationModel, BookTitle: v.BookTitle, UserName: v.UserName}
}

func (s *GormStore) View(ctx context.Context, id uuid.UUID) (*service.ReservationView, error) {
	var rows []viewRow
	if err := s.viewQuery(ctx).Where("r.reservation_id = ?", id).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w (%s)", service.ErrReservationNotFound, id)
	}
	v := rows[0].toView()
	return &v, nil
}

func applyFilter(q *gorm.DB, f service.ListFilter) *gorm.DB {
	if f.UserID != nil {
		q = q.Where("r.reservation_user_id = ?", *f.UserID)
	}
	if f.BookID != nil {
		q = q.Where("r.reservation_book_id = ?", *f.BookID)
	}
	if f.Status != "" {
		q = q.Where("r.reservation_status = ?", f.Status)
	}
	return q
}

func (s *GormStore) List(ctx context.Context, f service.ListFilter) ([]service.ReservationView, int64, error) {
	var total int64
	if err := applyFilter(s.db.WithContext(ctx).Table("reservations AS r"), f).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []viewRow
	if err := applyFilter(s.viewQuery(ctx), f).
		Order("r.reservation_date DESC").
		Offset(f.Offset).
		Limit(f.Limit).
		Scan(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]service.ReservationView, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toView())
	}
	return out, total, nil
}

func (s *GormStore) Audit(ctx context.Context, e auditService.Entry) error {
	return auditService.Record(ctx, s.db, e)
}
