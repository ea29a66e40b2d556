package service

import (
	"context"
	"time"

	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	"biblioteca_backend/internals/features/circulation/loans/model"

	"github.com/google/uuid"
)

// BookStock: potongan data buku yang dibutuhkan alur peminjaman.
type BookStock struct {
	BookID    uuid.UUID
	Title     string
	Available int
}

// LoanView: peminjaman + data turunan untuk response.
type LoanView struct {
	Loan       model.LoanModel
	UserName   string
	BookTitles map[uuid.UUID]string    // by book id
	FineIDs    map[uuid.UUID]uuid.UUID // by loan detail id
}

type ListFilter struct {
	UserID *uuid.UUID
	Status string // "", active, returned, overdue
	Now    time.Time
	Offset int
	Limit  int
}

// Store: persistence untuk peminjaman. Semua method di dalam WithinTx
// harus memakai tx yang diberikan.
type Store interface {
	WithinTx(ctx context.Context, fn func(tx Store) error) error

	// LockBooks mengunci baris buku (FOR UPDATE). Buku yang tidak ada tidak masuk map.
	LockBooks(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BookStock, error)
	// AdjustStock menambah/mengurangi stok; gagal dengan ErrConcurrencyConflict
	// kalau hasilnya akan negatif atau baris hilang.
	AdjustStock(ctx context.Context, bookID uuid.UUID, delta int) error

	InsertLoan(ctx context.Context, loan *model.LoanModel) error
	// LockLoan mengunci peminjaman beserta detailnya; ErrNotFound kalau tidak ada.
	LockLoan(ctx context.Context, id uuid.UUID) (*model.LoanModel, error)
	MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) error
	InsertFines(ctx context.Context, fines []fineModel.FineModel) error
	DeleteLoan(ctx context.Context, loan *model.LoanModel) error

	GetLoanView(ctx context.Context, id uuid.UUID) (*LoanView, error)
	ListLoanViews(ctx context.Context, f ListFilter) ([]LoanView, int64, error)
	UserExists(ctx context.Context, id uuid.UUID) (bool, error)

	Audit(ctx context.Context, e auditService.Entry) error
}
