// file: internals/features/catalog/books/model/book_model.go
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookModel struct {
	BookID uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:book_id" json:"book_id"`

	BookTitle           string  `gorm:"type:varchar(255);not null;column:book_title" json:"book_title"`
	BookISBN            *string `gorm:"type:varchar(20);column:book_isbn" json:"book_isbn,omitempty"`
	BookPublicationYear *int    `gorm:"type:int;column:book_publication_year" json:"book_publication_year,omitempty"`
	BookSlug            string  `gorm:"type:varchar(160);not null;column:book_slug;index" json:"book_slug"`

	// Stok tersedia; CHECK di DB + guarded UPDATE di repository.
	BookAvailableCopies int `gorm:"not null;default:0;column:book_available_copies;check:chk_books_available_copies_nonneg,book_available_copies >= 0" json:"book_available_copies"`

	BookCategoryID  uuid.UUID `gorm:"type:uuid;not null;column:book_category_id;index" json:"book_category_id"`
	BookPublisherID uuid.UUID `gorm:"type:uuid;not null;column:book_publisher_id;index" json:"book_publisher_id"`

	BookCoverURL       *string `gorm:"type:text;column:book_cover_url" json:"book_cover_url,omitempty"`
	BookCoverObjectKey *string `gorm:"type:text;column:book_cover_object_key" json:"-"`

	BookRowVersion int64 `gorm:"not null;default:1;column:book_row_version" json:"book_row_version"`

	BookCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:book_created_at" json:"book_created_at"`
	BookUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime;column:book_updated_at" json:"book_updated_at"`
	BookDeletedAt gorm.DeletedAt `gorm:"column:book_deleted_at;index" json:"-"`
}

func (BookModel) TableName() string { return "books" }

// BookAuthorModel: baris penghubung buku↔penulis. Baris ikut terhapus bila
// salah satu induk dihapus (FK ON DELETE CASCADE, lihat databases.AutoMigrate).
type BookAuthorModel struct {
	BookAuthorBookID    uuid.UUID `gorm:"type:uuid;primaryKey;column:book_author_book_id" json:"book_id"`
	BookAuthorAuthorID  uuid.UUID `gorm:"type:uuid;primaryKey;column:book_author_author_id;index" json:"author_id"`
	BookAuthorCreatedAt time.Time `gorm:"type:timestamptz;not null;default:now();column:book_author_created_at" json:"-"`
}

func (BookAuthorModel) TableName() string { return "book_authors" }
