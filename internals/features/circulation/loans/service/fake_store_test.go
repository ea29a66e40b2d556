package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	"biblioteca_backend/internals/features/circulation/loans/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/google/uuid"
)

// fakeStore: Store in-memory; WithinTx memulihkan snapshot kalau fn gagal.
type fakeStore struct {
	mu    sync.Mutex
	books map[uuid.UUID]*BookStock
	loans map[uuid.UUID]model.LoanModel
	fines []fineModel.FineModel
	users map[uuid.UUID]string
	audit []auditService.Entry

	failInsertFines bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		books: map[uuid.UUID]*BookStock{},
		loans: map[uuid.UUID]model.LoanModel{},
		users: map[uuid.UUID]string{},
	}
}

func (f *fakeStore) addBook(title string, available int) uuid.UUID {
	id := uuid.New()
	f.books[id] = &BookStock{BookID: id, Title: title, Available: available}
	return id
}

func (f *fakeStore) available(id uuid.UUID) int { return f.books[id].Available }

type snapshot struct {
	books map[uuid.UUID]BookStock
	loans map[uuid.UUID]model.LoanModel
	fines []fineModel.FineModel
	audit []auditService.Entry
}

func (f *fakeStore) snapshot() snapshot {
	s := snapshot{books: map[uuid.UUID]BookStock{}, loans: map[uuid.UUID]model.LoanModel{}}
	for k, v := range f.books {
		s.books[k] = *v
	}
	for k, v := range f.loans {
		v.Details = append([]model.LoanDetailModel(nil), v.Details...)
		s.loans[k] = v
	}
	s.fines = append(s.fines, f.fines...)
	s.audit = append(s.audit, f.audit...)
	return s
}

func (f *fakeStore) restore(s snapshot) {
	f.books = map[uuid.UUID]*BookStock{}
	for k, v := range s.books {
		b := v
		f.books[k] = &b
	}
	f.loans = s.loans
	f.fines = s.fines
	f.audit = s.audit
}

func (f *fakeStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshot()
	if err := fn(f); err != nil {
		f.restore(snap)
		return err
	}
	return nil
}

func (f *fakeStore) LockBooks(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]BookStock, error) {
	out := map[uuid.UUID]BookStock{}
	for _, id := range ids {
		if b, ok := f.books[id]; ok {
			out[id] = *b
		}
	}
	return out, nil
}

func (f *fakeStore) AdjustStock(ctx context.Context, bookID uuid.UUID, delta int) error {
	b, ok := f.books[bookID]
	if !ok && delta >= 0 {
		return nil
	}
	if !ok || b.Available+delta < 0 {
		return fmt.Errorf("libro %s: %w", bookID, helper.ErrConcurrencyConflict)
	}
	b.Available += delta
	return nil
}

func (f *fakeStore) InsertLoan(ctx context.Context, loan *model.LoanModel) error {
	f.loans[loan.LoanID] = *loan
	return nil
}

func (f *fakeStore) LockLoan(ctx context.Context, id uuid.UUID) (*model.LoanModel, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, ErrLoanNotFound
	}
	return &l, nil
}

func (f *fakeStore) MarkReturned(ctx context.Context, id uuid.UUID, at time.Time) error {
	l := f.loans[id]
	l.LoanReturnedAt = &at
	f.loans[id] = l
	return nil
}

func (f *fakeStore) InsertFines(ctx context.Context, fines []fineModel.FineModel) error {
	if f.failInsertFines {
		return fmt.Errorf("insert fines: boom")
	}
	f.fines = append(f.fines, fines...)
	return nil
}

func (f *fakeStore) DeleteLoan(ctx context.Context, loan *model.LoanModel) error {
	delete(f.loans, loan.LoanID)
	return nil
}

func (f *fakeStore) view(l model.LoanModel) LoanView {
	v := LoanView{
		Loan:       l,
		UserName:   f.users[l.LoanUserID],
		BookTitles: map[uuid.UUID]string{},
		FineIDs:    map[uuid.UUID]uuid.UUID{},
	}
	for _, d := range l.Details {
		if b, ok := f.books[d.LoanDetailBookID]; ok {
			v.BookTitles[b.BookID] = b.Title
		}
		for _, fn := range f.fines {
			if fn.FineLoanDetailID != nil && *fn.FineLoanDetailID == d.LoanDetailID {
				v.FineIDs[d.LoanDetailID] = fn.FineID
			}
		}
	}
	return v
}

func (f *fakeStore) GetLoanView(ctx context.Context, id uuid.UUID) (*LoanView, error) {
	l, ok := f.loans[id]
	if !ok {
		return nil, ErrLoanNotFound
	}
	v := f.view(l)
	return &v, nil
}

func (f *fakeStore) ListLoanViews(ctx context.Context, flt ListFilter) ([]LoanView, int64, error) {
	var out []LoanView
	for _, l := range f.loans {
		if flt.UserID != nil && l.LoanUserID != *flt.UserID {
			continue
		}
		switch flt.Status {
		case "active":
			if l.IsReturned() {
				continue
			}
		case "returned":
			if !l.IsReturned() {
				continue
			}
		case "overdue":
			if !l.IsOverdue(flt.Now) {
				continue
			}
		}
		out = append(out, f.view(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Loan.LoanDate.After(out[j].Loan.LoanDate) })
	return out, int64(len(out)), nil
}

func (f *fakeStore) UserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.users[id]
	return ok, nil
}

func (f *fakeStore) Audit(ctx context.Context, e auditService.Entry) error {
	f.audit = append(f.audit, e)
	return nil
}
