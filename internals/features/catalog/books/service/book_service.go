package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	authorModel "biblioteca_backend/internals/features/catalog/authors/model"
	"biblioteca_backend/internals/features/catalog/books/model"
	categoryModel "biblioteca_backend/internals/features/catalog/categories/model"
	publisherModel "biblioteca_backend/internals/features/catalog/publishers/model"
	helper "biblioteca_backend/internals/helpers"
	helperOSS "biblioteca_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const slugMaxLen = 160

var (
	ErrBookNotFound      = fmt.Errorf("%w: libro no encontrado", helper.ErrNotFound)
	ErrCategoryNotFound  = fmt.Errorf("%w: la categoría no existe", helper.ErrValidation)
	ErrPublisherNotFound = fmt.Errorf("%w: la editorial no existe", helper.ErrValidation)
	ErrAuthorNotFound    = fmt.Errorf("%w: uno o más autores no existen", helper.ErrValidation)
	ErrBookOnLoan        = fmt.Errorf("%w: el libro tiene préstamos activos", helper.ErrValidation)
)

type BookInput struct {
	Title           string
	ISBN            *string
	PublicationYear *int
	AvailableCopies int
	CategoryID      uuid.UUID
	PublisherID     uuid.UUID
	AuthorIDs       []uuid.UUID
}

type AuthorRef struct {
	AuthorID       uuid.UUID
	AuthorFullName string
}

type BookView struct {
	Book          model.BookModel
	CategoryName  string
	PublisherName string
	Authors       []AuthorRef
}

type ListFilter struct {
	Q           string
	CategoryID  *uuid.UUID
	PublisherID *uuid.UUID
	AuthorID    *uuid.UUID
	Offset      int
	Limit       int
}

type Service struct {
	DB     *gorm.DB
	Covers helperOSS.CoverStorage
}

func NewService(db *gorm.DB, covers helperOSS.CoverStorage) *Service {
	return &Service{DB: db, Covers: covers}
}

// uniqueIDs: buang duplikat & uuid.Nil, urut supaya query deterministik.
func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// checkRefs: kategori, penerbit & semua penulis harus ada (400 kalau tidak).
func checkRefs(ctx context.Context, tx *gorm.DB, in BookInput, authorIDs []uuid.UUID) error {
	var n int64
	if err := tx.WithContext(ctx).Model(&categoryModel.CategoryModel{}).Where("category_id = ?", in.CategoryID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrCategoryNotFound
	}

	if err := tx.WithContext(ctx).Model(&publisherModel.PublisherModel{}).Where("publisher_id = ?", in.PublisherID).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrPublisherNotFound
	}

	if len(authorIDs) == 0 {
		return nil
	}
	var found []uuid.UUID
	if err := tx.WithContext(ctx).Model(&authorModel.AuthorModel{}).Where("author_id IN ?", authorIDs).Pluck("author_id", &found).Error; err != nil {
		return err
	}
	if len(found) != len(authorIDs) {
		return ErrAuthorNotFound
	}
	return nil
}

func replaceAuthors(ctx context.Context, tx *gorm.DB, bookID uuid.UUID, authorIDs []uuid.UUID) error {
	if err := tx.WithContext(ctx).Where("book_author_book_id = ?", bookID).Delete(&model.BookAuthorModel{}).Error; err != nil {
		return err
	}
	if len(authorIDs) == 0 {
		return nil
	}
	now := time.Now().UTC()
	links := make([]model.BookAuthorModel, 0, len(authorIDs))
	for _, aid := range authorIDs {
		links = append(links, model.BookAuthorModel{BookAuthorBookID: bookID, BookAuthorAuthorID: aid, BookAuthorCreatedAt: now})
	}
	return tx.WithContext(ctx).Create(&links).Error
}

// =====================================================
// Mutasi
// =====================================================

func (s *Service) Create(ctx context.Context, in BookInput) (*BookView, error) {
	authorIDs := uniqueIDs(in.AuthorIDs)
	var id uuid.UUID

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkRefs(ctx, tx, in, authorIDs); err != nil {
			return err
		}
		slug, err := helper.EnsureUniqueSlugCI(ctx, tx, "books", "book_slug", helper.Slugify(in.Title, slugMaxLen), nil, slugMaxLen)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		b := model.BookModel{
			BookID:              uuid.New(),
			BookTitle:           in.Title,
			BookISBN:            in.ISBN,
			BookPublicationYear: in.PublicationYear,
			BookSlug:            slug,
			BookAvailableCopies: in.AvailableCopies,
			BookCategoryID:      in.CategoryID,
			BookPublisherID:     in.PublisherID,
			BookRowVersion:      1,
			BookCreatedAt:       now,
			BookUpdatedAt:       now,
		}
		if err := tx.Create(&b).Error; err != nil {
			return err
		}
		id = b.BookID
		return replaceAuthors(ctx, tx, b.BookID, authorIDs)
	})
	if err != nil {
		return nil, err
	}
	log.Printf("[BOOKS][CREATE] ✅ book=%s authors=%d", id, len(authorIDs))
	return s.Get(ctx, id)
}

// Update: PUT penuh, relasi penulis diganti seluruhnya.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in BookInput) (*BookView, error) {
	authorIDs := uniqueIDs(in.AuthorIDs)

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.BookModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("book_id = ?", id).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}
		if err := checkRefs(ctx, tx, in, authorIDs); err != nil {
			return err
		}

		slug := b.BookSlug
		if strings.TrimSpace(in.Title) != b.BookTitle {
			exclude := func(q *gorm.DB) *gorm.DB { return q.Where("book_id <> ?", id) }
			if slug, err = helper.EnsureUniqueSlugCI(ctx, tx, "books", "book_slug", helper.Slugify(in.Title, slugMaxLen), exclude, slugMaxLen); err != nil {
				return err
			}
		}

		if err := tx.Model(&model.BookModel{}).Where("book_id = ?", id).Updates(map[string]any{
			"book_title":            in.Title,
			"book_isbn":             in.ISBN,
			"book_publication_year": in.PublicationYear,
			"book_slug":             slug,
			"book_available_copies": in.AvailableCopies,
			"book_category_id":      in.CategoryID,
			"book_publisher_id":     in.PublisherID,
			"book_row_version":      gorm.Expr("book_row_version + 1"),
			"book_updated_at":       time.Now().UTC(),
		}).Error; err != nil {
			return err
		}
		return replaceAuthors(ctx, tx, id, authorIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete: soft delete; ditolak selama buku masih dipinjam.
// Baris buku dikunci dulu supaya peminjaman yang sedang berjalan selesai sebelum dihitung.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.BookModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("book_id = ?", id).First(&b).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		if err != nil {
			return err
		}

		var onLoan int64
		if err := tx.Table("loan_details AS d").
			Joins("JOIN loans l ON l.loan_id = d.loan_detail_loan_id").
			Where("d.loan_detail_book_id = ? AND l.loan_returned_at IS NULL", id).
			Count(&onLoan).Error; err != nil {
			return err
		}
		if onLoan > 0 {
			return ErrBookOnLoan
		}

		res := tx.Where("book_id = ?", id).Delete(&model.BookModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookNotFound
		}
		return nil
	})
}

// SetCover: upload sampul baru, sampul lama dipindah ke trash.
func (s *Service) SetCover(ctx context.Context, id uuid.UUID, fh *multipart.FileHeader) (*BookView, error) {
	if s.Covers == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "Almacenamiento de imágenes no configurado")
	}

	var b model.BookModel
	err := s.DB.WithContext(ctx).Where("book_id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}

	url, key, err := s.Covers.UploadCover(ctx, id, fh)
	if err != nil {
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&model.BookModel{}).Where("book_id = ?", id).Updates(map[string]any{
		"book_cover_url":        url,
		"book_cover_object_key": key,
		"book_updated_at":       time.Now().UTC(),
	}).Error; err != nil {
		return nil, err
	}

	if b.BookCoverObjectKey != nil && *b.BookCoverObjectKey != "" {
		if err := s.Covers.MoveToTrash(ctx, *b.BookCoverObjectKey); err != nil {
			log.Printf("[BOOKS][COVER] ⚠️ sampul lama %s gagal dipindah: %v", *b.BookCoverObjectKey, err)
		}
	}
	log.Printf("[BOOKS][COVER] ✅ book=%s key=%s", id, key)
	return s.Get(ctx, id)
}

// =====================================================
// Read side
// =====================================================

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*BookView, error) {
	var b model.BookModel
	err := s.DB.WithContext(ctx).Where("book_id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBookNotFound
	}
	if err != nil {
		return nil, err
	}
	views, err := s.buildViews(ctx, []model.BookModel{b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]BookView, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.BookModel{})
	if t := strings.TrimSpace(f.Q); t != "" {
		q = q.Where("(book_title ILIKE ? OR book_isbn = ?)", "%"+t+"%", t)
	}
	if f.CategoryID != nil {
		q = q.Where("book_category_id = ?", *f.CategoryID)
	}
	if f.PublisherID != nil {
		q = q.Where("book_publisher_id = ?", *f.PublisherID)
	}
	if f.AuthorID != nil {
		q = q.Where("book_id IN (?)", s.DB.Table("book_authors").Select("book_author_book_id").Where("book_author_author_id = ?", *f.AuthorID))
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.BookModel
	if err := q.Order("book_title ASC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	views, err := s.buildViews(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

type nameRow struct {
	ID   uuid.UUID
	Name string
}

type bookAuthorRow struct {
	BookID         uuid.UUID
	AuthorID       uuid.UUID
	AuthorFullName string
}

// buildViews: nama kategori, penerbit & penulis diambil batch.
func (s *Service) buildViews(ctx context.Context, books []model.BookModel) ([]BookView, error) {
	views := make([]BookView, len(books))
	if len(books) == 0 {
		return views, nil
	}

	var bookIDs, catIDs, pubIDs []uuid.UUID
	for _, b := range books {
		bookIDs = append(bookIDs, b.BookID)
		catIDs = append(catIDs, b.BookCategoryID)
		pubIDs = append(pubIDs, b.BookPublisherID)
	}
	db := s.DB.WithContext(ctx)

	var cats []nameRow
	if err := db.Table("categories").Select("category_id AS id, category_name AS name").Where("category_id IN ?", uniqueIDs(catIDs)).Scan(&cats).Error; err != nil {
		return nil, err
	}
	var pubs []nameRow
	if err := db.Table("publishers").Select("publisher_id AS id, publisher_name AS name").Where("publisher_id IN ?", uniqueIDs(pubIDs)).Scan(&pubs).Error; err != nil {
		return nil, err
	}
	var links []bookAuthorRow
	if err := db.Table("book_authors AS ba").
		Select("ba.book_author_book_id AS book_id, a.author_id, a.author_full_name").
		Joins("JOIN authors a ON a.author_id = ba.book_author_author_id AND a.author_deleted_at IS NULL").
		Where("ba.book_author_book_id IN ?", bookIDs).
		Order("a.author_full_name ASC").
		Scan(&links).Error; err != nil {
		return nil, err
	}

	catNames := make(map[uuid.UUID]string, len(cats))
	for _, r := range cats {
		catNames[r.ID] = r.Name
	}
	pubNames := make(map[uuid.UUID]string, len(pubs))
	for _, r := range pubs {
		pubNames[r.ID] = r.Name
	}
	authors := map[uuid.UUID][]AuthorRef{}
	for _, l := range links {
		authors[l.BookID] = append(authors[l.BookID], AuthorRef{AuthorID: l.AuthorID, AuthorFullName: l.AuthorFullName})
	}

	for i, b := range books {
		views[i] = BookView{
			Book:          b,
			CategoryName:  catNames[b.BookCategoryID],
			PublisherName: pubNames[b.BookPublisherID],
			Authors:       authors[b.BookID],
		}
	}
	return views, nil
}
