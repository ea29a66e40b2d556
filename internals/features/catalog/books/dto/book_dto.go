package dto

import (
	"strings"
	"time"

	"biblioteca_backend/internals/features/catalog/books/service"

	"github.com/google/uuid"
)

// Dipakai untuk POST dan PUT (replace penuh, termasuk daftar penulis)
type BookRequest struct {
	BookTitle           string      `json:"book_title" validate:"required,max=255"`
	BookISBN            *string     `json:"book_isbn" validate:"omitempty,max=20"`
	BookPublicationYear *int        `json:"book_publication_year" validate:"omitempty,min=0,max=9999"`
	BookAvailableCopies int         `json:"book_available_copies" validate:"min=0"`
	BookCategoryID      uuid.UUID   `json:"book_category_id" validate:"required"`
	BookPublisherID     uuid.UUID   `json:"book_publisher_id" validate:"required"`
	AuthorIDs           []uuid.UUID `json:"author_ids" validate:"omitempty,max=20,dive,required"`
}

func (r BookRequest) ToInput() service.BookInput {
	in := service.BookInput{
		Title:           strings.TrimSpace(r.BookTitle),
		PublicationYear: r.BookPublicationYear,
		AvailableCopies: r.BookAvailableCopies,
		CategoryID:      r.BookCategoryID,
		PublisherID:     r.BookPublisherID,
		AuthorIDs:       r.AuthorIDs,
	}
	if r.BookISBN != nil {
		if v := strings.TrimSpace(*r.BookISBN); v != "" {
			in.ISBN = &v
		}
	}
	return in
}

type AuthorRef struct {
	AuthorID       uuid.UUID `json:"author_id"`
	AuthorFullName string    `json:"author_full_name"`
}

type BookResponse struct {
	BookID              uuid.UUID `json:"book_id"`
	BookTitle           string    `json:"book_title"`
	BookISBN            *string   `json:"book_isbn,omitempty"`
	BookPublicationYear *int      `json:"book_publication_year,omitempty"`
	BookSlug            string    `json:"book_slug"`
	BookAvailableCopies int       `json:"book_available_copies"`
	BookCoverURL        *string   `json:"book_cover_url,omitempty"`
	BookRowVersion      int64     `json:"book_row_version"`
	BookCreatedAt       time.Time `json:"book_created_at"`
	BookUpdatedAt       time.Time `json:"book_updated_at"`

	BookCategoryID  uuid.UUID   `json:"book_category_id"`
	CategoryName    string      `json:"category_name"`
	BookPublisherID uuid.UUID   `json:"book_publisher_id"`
	PublisherName   string      `json:"publisher_name"`
	Authors         []AuthorRef `json:"authors"`
}

func FromBookView(v *service.BookView) BookResponse {
	b := v.Book
	authors := make([]AuthorRef, 0, len(v.Authors))
	for _, a := range v.Authors {
		authors = append(authors, AuthorRef{AuthorID: a.AuthorID, AuthorFullName: a.AuthorFullName})
	}
	return BookResponse{
		BookID:              b.BookID,
		BookTitle:           b.BookTitle,
		BookISBN:            b.BookISBN,
		BookPublicationYear: b.BookPublicationYear,
		BookSlug:            b.BookSlug,
		BookAvailableCopies: b.BookAvailableCopies,
		BookCoverURL:        b.BookCoverURL,
		BookRowVersion:      b.BookRowVersion,
		BookCreatedAt:       b.BookCreatedAt,
		BookUpdatedAt:       b.BookUpdatedAt,
		BookCategoryID:      b.BookCategoryID,
		CategoryName:        v.CategoryName,
		BookPublisherID:     b.BookPublisherID,
		PublisherName:       v.PublisherName,
		Authors:             authors,
	}
}

func FromBookViews(vs []service.BookView) []BookResponse {
	out := make([]BookResponse, 0, len(vs))
	for i := range vs {
		out = append(out, FromBookView(&vs[i]))
	}
	return out
}
