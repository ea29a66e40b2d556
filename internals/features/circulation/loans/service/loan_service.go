package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"biblioteca_backend/internals/constants"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	fineService "biblioteca_backend/internals/features/circulation/fines/service"
	"biblioteca_backend/internals/features/circulation/loans/model"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrDueDateNotFuture  = fmt.Errorf("%w: la fecha de devolución prevista debe ser posterior a la fecha actual", helper.ErrValidation)
	ErrInsufficientStock = fmt.Errorf("%w: stock insuficiente", helper.ErrValidation)
	ErrAlreadyReturned   = fmt.Errorf("%w: este préstamo ya fue devuelto", helper.ErrValidation)
	ErrEmptyLoan         = fmt.Errorf("%w: el préstamo debe tener al menos un libro", helper.ErrValidation)
	ErrInvalidQuantity   = fmt.Errorf("%w: la cantidad debe estar entre 1 y %d", helper.ErrValidation, constants.MaxLoanLineQuantity)
	ErrLoanNotFound      = fmt.Errorf("%w: préstamo no encontrado", helper.ErrNotFound)
	ErrBookNotFound      = fmt.Errorf("%w: libro no encontrado", helper.ErrNotFound)
	ErrBorrowerNotFound  = fmt.Errorf("%w: usuario no encontrado", helper.ErrValidation)
)

type LineInput struct {
	BookID   uuid.UUID
	Quantity int
}

type CreateInput struct {
	BorrowerID uuid.UUID // kosong = principal sendiri
	DueDate    time.Time
	Lines      []LineInput
}

type ReturnResult struct {
	View  *LoanView
	Fines []fineModel.FineModel
}

type Service struct {
	store    Store
	policy   helperAuth.Policy
	fineRate decimal.Decimal
	now      func() time.Time
}

func NewService(store Store, fineRate decimal.Decimal) *Service {
	return &Service{
		store:    store,
		policy:   helperAuth.DefaultPolicy,
		fineRate: fineRate,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithClock dipakai test untuk mengganti sumber waktu.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// mergeLines menggabungkan buku yang sama & validasi qty; hasil urut book id
// supaya urutan lock konsisten antar transaksi.
func mergeLines(lines []LineInput) ([]LineInput, error) {
	if len(lines) == 0 {
		return nil, ErrEmptyLoan
	}
	sum := make(map[uuid.UUID]int, len(lines))
	for _, l := range lines {
		if l.BookID == uuid.Nil {
			return nil, fmt.Errorf("%w: libro_id es obligatorio", helper.ErrValidation)
		}
		if l.Quantity < 1 || l.Quantity > constants.MaxLoanLineQuantity {
			return nil, ErrInvalidQuantity
		}
		sum[l.BookID] += l.Quantity
	}
	out := make([]LineInput, 0, len(sum))
	for id, q := range sum {
		// batas per buku berlaku juga setelah baris duplikat digabung
		if q > constants.MaxLoanLineQuantity {
			return nil, ErrInvalidQuantity
		}
		out = append(out, LineInput{BookID: id, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BookID.String() < out[j].BookID.String() })
	return out, nil
}

// Create membuat peminjaman beserta detailnya secara atomik.
func (s *Service) Create(ctx context.Context, actor helperAuth.Principal, in CreateInput) (*LoanView, error) {
	now := s.now()
	if !in.DueDate.After(now) {
		return nil, ErrDueDateNotFuture
	}
	lines, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	borrower := actor.UserID
	if in.BorrowerID != uuid.Nil && in.BorrowerID != actor.UserID {
		if !s.policy.IsAdmin(actor) {
			return nil, fmt.Errorf("%w: solo un administrador puede prestar a otro usuario", helper.ErrForbidden)
		}
		borrower = in.BorrowerID
	}

	var view *LoanView
	err = s.store.WithinTx(ctx, func(tx Store) error {
		if borrower != actor.UserID {
			ok, err := tx.UserExists(ctx, borrower)
			if err != nil {
				return err
			}
			if !ok {
				return ErrBorrowerNotFound
			}
		}

		ids := make([]uuid.UUID, len(lines))
		for i, l := range lines {
			ids[i] = l.BookID
		}
		books, err := tx.LockBooks(ctx, ids)
		if err != nil {
			return err
		}

		// validasi semua baris sebelum ada stok yang diubah
		for _, l := range lines {
			b, ok := books[l.BookID]
			if !ok {
				return fmt.Errorf("%w (%s)", ErrBookNotFound, l.BookID)
			}
			if l.Quantity > b.Available {
				return fmt.Errorf("%w para %q: disponibles %d, solicitados %d", ErrInsufficientStock, b.Title, b.Available, l.Quantity)
			}
		}

		loan := model.LoanModel{
			LoanID:      uuid.New(),
			LoanUserID:  borrower,
			LoanDate:    now,
			LoanDueDate: in.DueDate.UTC(),
		}
		for _, l := range lines {
			if err := tx.AdjustStock(ctx, l.BookID, -l.Quantity); err != nil {
				return err
			}
			loan.Details = append(loan.Details, model.LoanDetailModel{
				LoanDetailID:       uuid.New(),
				LoanDetailLoanID:   loan.LoanID,
				LoanDetailBookID:   l.BookID,
				LoanDetailQuantity: l.Quantity,
			})
		}
		if err := tx.InsertLoan(ctx, &loan); err != nil {
			return err
		}
		if err := tx.Audit(ctx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionLoanCreated,
			Entity:   auditService.EntityLoan,
			EntityID: loan.LoanID,
			Payload:  auditPayload(lines, borrower, loan.LoanDueDate),
		}); err != nil {
			return err
		}

		v, err := tx.GetLoanView(ctx, loan.LoanID)
		if err != nil {
			return err
		}
		view = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	loansCreated.Inc()
	log.Printf("[LOANS][CREATE] ✅ loan=%s user=%s lines=%d", view.Loan.LoanID, borrower, len(lines))
	return view, nil
}

func auditPayload(lines []LineInput, borrower uuid.UUID, due time.Time) map[string]any {
	items := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]any{"book_id": l.BookID, "quantity": l.Quantity})
	}
	return map[string]any{"user_id": borrower, "due_date": due, "lines": items}
}

// Return memproses pengembalian: stok kembali, denda dibuat per detail kalau telat.
func (s *Service) Return(ctx context.Context, actor helperAuth.Principal, loanID uuid.UUID) (*ReturnResult, error) {
	var res ReturnResult
	err := s.store.WithinTx(ctx, func(tx Store) error {
		loan, err := tx.LockLoan(ctx, loanID)
		if err != nil {
			return err
		}
		if loan.IsReturned() {
			return ErrAlreadyReturned
		}

		now := s.now()
		if now.Before(loan.LoanDate) {
			now = loan.LoanDate
		}
		if err := tx.MarkReturned(ctx, loan.LoanID, now); err != nil {
			return err
		}

		for _, d := range loan.Details {
			if err := tx.AdjustStock(ctx, d.LoanDetailBookID, d.LoanDetailQuantity); err != nil {
				return err
			}
			if now.After(loan.LoanDueDate) {
				res.Fines = append(res.Fines, fineService.NewPendingFine(loan.LoanUserID, d.LoanDetailID, loan.LoanDueDate, now, s.fineRate))
			}
		}
		if len(res.Fines) > 0 {
			if err := tx.InsertFines(ctx, res.Fines); err != nil {
				return err
			}
		}

		if err := tx.Audit(ctx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionLoanReturned,
			Entity:   auditService.EntityLoan,
			EntityID: loan.LoanID,
			Payload:  map[string]any{"returned_at": now, "fines": len(res.Fines)},
		}); err != nil {
			return err
		}

		v, err := tx.GetLoanView(ctx, loan.LoanID)
		if err != nil {
			return err
		}
		res.View = v
		return nil
	})
	if err != nil {
		return nil, err
	}

	loansReturned.Inc()
	finesGenerated.Add(float64(len(res.Fines)))
	log.Printf("[LOANS][RETURN] ✅ loan=%s fines=%d", loanID, len(res.Fines))
	return &res, nil
}

// Delete menghapus peminjaman; stok dikembalikan kalau belum dikembalikan.
func (s *Service) Delete(ctx context.Context, actor helperAuth.Principal, loanID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(tx Store) error {
		loan, err := tx.LockLoan(ctx, loanID)
		if err != nil {
			return err
		}
		restored := 0
		if !loan.IsReturned() {
			for _, d := range loan.Details {
				if err := tx.AdjustStock(ctx, d.LoanDetailBookID, d.LoanDetailQuantity); err != nil {
					return err
				}
				restored += d.LoanDetailQuantity
			}
		}
		if err := tx.DeleteLoan(ctx, loan); err != nil {
			return err
		}
		return tx.Audit(ctx, auditService.Entry{
			UserID:   &actor.UserID,
			Action:   auditService.ActionLoanDeleted,
			Entity:   auditService.EntityLoan,
			EntityID: loan.LoanID,
			Payload:  map[string]any{"user_id": loan.LoanUserID, "restored_copies": restored},
		})
	})
}

// Get: pemilik atau admin.
func (s *Service) Get(ctx context.Context, actor helperAuth.Principal, loanID uuid.UUID) (*LoanView, error) {
	v, err := s.store.GetLoanView(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if err := helperAuth.Authorize(s.policy, actor, v.Loan.LoanUserID, "el préstamo"); err != nil {
		return nil, err
	}
	return v, nil
}

// List: admin melihat semua (boleh filter user), pembaca hanya miliknya.
func (s *Service) List(ctx context.Context, actor helperAuth.Principal, f ListFilter) ([]LoanView, int64, error) {
	if !s.policy.IsAdmin(actor) {
		uid := actor.UserID
		f.UserID = &uid
	}
	switch f.Status {
	case "", "active", "returned", "overdue":
	default:
		return nil, 0, fmt.Errorf("%w: estado %q no soportado", helper.ErrValidation, f.Status)
	}
	f.Now = s.now()
	return s.store.ListLoanViews(ctx, f)
}
