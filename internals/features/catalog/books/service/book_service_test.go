package service

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	helper "biblioteca_backend/internals/helpers"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var bookCols = []string{
	"book_id", "book_title", "book_slug", "book_available_copies",
	"book_category_id", "book_publisher_id", "book_cover_object_key", "book_row_version",
	"book_created_at", "book_updated_at",
}

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func countRows(n int) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"count"}).AddRow(n)
}

type fixture struct {
	book, category, publisher uuid.UUID
	authors                   []uuid.UUID
	names                     map[uuid.UUID]string
}

func newFixture(nAuthors int) fixture {
	f := fixture{book: uuid.New(), category: uuid.New(), publisher: uuid.New(), names: map[uuid.UUID]string{}}
	for i := 0; i < nAuthors; i++ {
		id := uuid.New()
		f.authors = append(f.authors, id)
		f.names[id] = "Autor " + string(rune('A'+i))
	}
	return f
}

// expectView: SELECT buku + nama kategori/penerbit/penulis.
func expectView(mock sqlmock.Sqlmock, f fixture, coverKey any) {
	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "books" WHERE book_id = \$1 AND "books"."book_deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(
			f.book.String(), "Rayuela", "rayuela", 3,
			f.category.String(), f.publisher.String(), coverKey, 1, now, now,
		))
	mock.ExpectQuery(`FROM "categories"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(f.category.String(), "Novela"))
	mock.ExpectQuery(`FROM "publishers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(f.publisher.String(), "Sudamericana"))

	links := sqlmock.NewRows([]string{"book_id", "author_id", "author_full_name"})
	for _, a := range f.authors {
		links.AddRow(f.book.String(), a.String(), f.names[a])
	}
	mock.ExpectQuery(`FROM book_authors AS ba JOIN authors a`).WillReturnRows(links)
}

func expectRefs(mock sqlmock.Sqlmock, f fixture, foundAuthors int) {
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories" WHERE category_id = \$1`).WillReturnRows(countRows(1))
	mock.ExpectQuery(`SELECT count\(\*\) FROM "publishers" WHERE publisher_id = \$1`).WillReturnRows(countRows(1))
	found := sqlmock.NewRows([]string{"author_id"})
	for _, a := range f.authors[:foundAuthors] {
		found.AddRow(a.String())
	}
	mock.ExpectQuery(`SELECT "author_id" FROM "authors" WHERE author_id IN`).WillReturnRows(found)
}

func TestCreateBookWithAuthorsRoundTrip(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)
	f := newFixture(3)

	mock.ExpectBegin()
	expectRefs(mock, f, 3)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "books" WHERE LOWER\(book_slug\) = \$1`).WillReturnRows(countRows(0))
	mock.ExpectQuery(`INSERT INTO "books" .* RETURNING`).
		WillReturnRows(sqlmock.NewRows([]string{"book_id", "book_created_at", "book_updated_at"}).
			AddRow(f.book.String(), time.Now(), time.Now()))
	mock.ExpectExec(`DELETE FROM "book_authors" WHERE book_author_book_id = \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`INSERT INTO "book_authors" .* RETURNING "book_author_created_at"`).
		WillReturnRows(sqlmock.NewRows([]string{"book_author_created_at"}).
			AddRow(time.Now()).AddRow(time.Now()).AddRow(time.Now()))
	mock.ExpectCommit()
	expectView(mock, f, nil)

	// duplikat penulis di input digabung
	ids := append(append([]uuid.UUID{}, f.authors...), f.authors[0])
	v, err := svc.Create(context.Background(), BookInput{
		Title:           "Rayuela",
		AvailableCopies: 3,
		CategoryID:      f.category,
		PublisherID:     f.publisher,
		AuthorIDs:       ids,
	})
	require.NoError(t, err)

	assert.Equal(t, "Novela", v.CategoryName)
	assert.Equal(t, "Sudamericana", v.PublisherName)
	require.Len(t, v.Authors, 3)
	got := map[uuid.UUID]bool{}
	for _, a := range v.Authors {
		got[a.AuthorID] = true
	}
	for _, a := range f.authors {
		assert.True(t, got[a], a)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookUnknownAuthor(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)
	f := newFixture(2)

	mock.ExpectBegin()
	expectRefs(mock, f, 1)
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), BookInput{
		Title: "Ficciones", CategoryID: f.category, PublisherID: f.publisher, AuthorIDs: f.authors,
	})
	assert.ErrorIs(t, err, ErrAuthorNotFound)
	assert.Equal(t, 400, helper.StatusFromError(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateBookUnknownCategory(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT count\(\*\) FROM "categories"`).WillReturnRows(countRows(0))
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), BookInput{Title: "X", CategoryID: uuid.New(), PublisherID: uuid.New()})
	assert.ErrorIs(t, err, ErrCategoryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// expectBookLock: Delete mengunci baris buku sebelum menghitung peminjaman aktif.
func expectBookLock(mock sqlmock.Sqlmock, id uuid.UUID) {
	mock.ExpectQuery(`SELECT \* FROM "books" WHERE book_id = \$1 AND "books"."book_deleted_at" IS NULL .*FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(
			id.String(), "Rayuela", "rayuela", 1,
			uuid.NewString(), uuid.NewString(), nil, 1, time.Now(), time.Now(),
		))
}

func TestDeleteBookOnLoanRejected(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	expectBookLock(mock, id)
	mock.ExpectQuery(`SELECT count\(\*\) FROM loan_details AS d JOIN loans l`).WillReturnRows(countRows(2))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), id)
	assert.ErrorIs(t, err, ErrBookOnLoan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookSoftDeletes(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)
	id := uuid.New()

	mock.ExpectBegin()
	expectBookLock(mock, id)
	mock.ExpectQuery(`SELECT count\(\*\) FROM loan_details AS d JOIN loans l`).WillReturnRows(countRows(0))
	mock.ExpectExec(`UPDATE "books" SET "book_deleted_at"=\$1 WHERE book_id = \$2`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, svc.Delete(context.Background(), id))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteBookNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "books" WHERE book_id = \$1 .*FOR UPDATE`).WillReturnRows(sqlmock.NewRows(bookCols))
	mock.ExpectRollback()

	err := svc.Delete(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetBookNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil)

	mock.ExpectQuery(`SELECT \* FROM "books"`).WillReturnRows(sqlmock.NewRows(bookCols))

	_, err := svc.Get(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrBookNotFound)
	assert.Equal(t, 404, helper.StatusFromError(err))
}

type fakeCovers struct {
	uploaded uuid.UUID
	trashed  []string
}

func (f *fakeCovers) UploadCover(ctx context.Context, bookID uuid.UUID, fh *multipart.FileHeader) (string, string, error) {
	f.uploaded = bookID
	return "https://cdn.example/covers/new.webp", "covers/new.webp", nil
}

func (f *fakeCovers) MoveToTrash(ctx context.Context, key string) error {
	f.trashed = append(f.trashed, key)
	return nil
}

func TestSetCoverMovesOldObjectToTrash(t *testing.T) {
	db, mock := newMockDB(t)
	covers := &fakeCovers{}
	svc := NewService(db, covers)
	f := newFixture(0)

	mock.ExpectQuery(`SELECT \* FROM "books" WHERE book_id = \$1`).
		WillReturnRows(sqlmock.NewRows(bookCols).AddRow(
			f.book.String(), "Rayuela", "rayuela", 3,
			f.category.String(), f.publisher.String(), "covers/old.webp", 1, time.Now(), time.Now(),
		))
	mock.ExpectExec(`UPDATE "books" SET .*"book_cover_object_key"=`).WillReturnResult(sqlmock.NewResult(0, 1))
	expectView(mock, f, "covers/new.webp")

	_, err := svc.SetCover(context.Background(), f.book, &multipart.FileHeader{Filename: "c.png"})
	require.NoError(t, err)
	assert.Equal(t, f.book, covers.uploaded)
	assert.Equal(t, []string{"covers/old.webp"}, covers.trashed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetCoverWithoutStorage(t *testing.T) {
	db, _ := newMockDB(t)
	_, err := NewService(db, nil).SetCover(context.Background(), uuid.New(), &multipart.FileHeader{})
	assert.Equal(t, 503, helper.StatusFromError(err))
}

func TestUniqueIDs(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	out := uniqueIDs([]uuid.UUID{a, uuid.Nil, b, a})
	assert.Len(t, out, 2)
	assert.ElementsMatch(t, []uuid.UUID{a, b}, out)
}
