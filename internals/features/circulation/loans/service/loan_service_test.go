package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"biblioteca_backend/internals/constants"
	auditService "biblioteca_backend/internals/features/circulation/audit/service"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func newTestService() (*Service, *fakeStore, *clock) {
	st := newFakeStore()
	clk := &clock{now: t0}
	return NewService(st, decimal.NewFromInt(1)).WithClock(clk.Now), st, clk
}

func admin() helperAuth.Principal {
	return helperAuth.Principal{UserID: uuid.New(), UserName: "admin", Roles: []constants.Role{constants.RoleAdministrator}}
}

func reader() helperAuth.Principal {
	return helperAuth.Principal{UserID: uuid.New(), UserName: "lector", Roles: []constants.Role{constants.RoleReader}}
}

func TestCreateDecrementsStock(t *testing.T) {
	svc, st, _ := newTestService()
	book := st.addBook("Rayuela", 10)
	actor := admin()

	v, err := svc.Create(context.Background(), actor, CreateInput{
		DueDate: t0.AddDate(0, 0, 5),
		Lines:   []LineInput{{BookID: book, Quantity: 2}},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, st.available(book))
	assert.Nil(t, v.Loan.LoanReturnedAt)
	assert.Equal(t, actor.UserID, v.Loan.LoanUserID)
	require.Len(t, v.Loan.Details, 1)
	assert.Equal(t, 2, v.Loan.Details[0].LoanDetailQuantity)
	assert.Equal(t, "Rayuela", v.BookTitles[book])
	require.Len(t, st.audit, 1)
	assert.Equal(t, auditService.ActionLoanCreated, st.audit[0].Action)
}

func TestCreateRejectsPastOrPresentDueDate(t *testing.T) {
	svc, st, _ := newTestService()
	book := st.addBook("Ficciones", 3)

	for _, due := range []time.Time{t0, t0.Add(-time.Hour)} {
		_, err := svc.Create(context.Background(), admin(), CreateInput{
			DueDate: due,
			Lines:   []LineInput{{BookID: book, Quantity: 1}},
		})
		assert.ErrorIs(t, err, ErrDueDateNotFuture)
		assert.ErrorIs(t, err, helper.ErrValidation)
	}
	assert.Equal(t, 3, st.available(book))
}

func TestCreateInsufficientStockLeavesStockUnchanged(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 5)
	b := st.addBook("B", 1)

	_, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 7),
		Lines: []LineInput{
			{BookID: a, Quantity: 2},
			{BookID: b, Quantity: 2},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Contains(t, err.Error(), "disponibles 1")

	assert.Equal(t, 5, st.available(a))
	assert.Equal(t, 1, st.available(b))
	assert.Empty(t, st.loans)
	assert.Empty(t, st.audit)
}

func TestCreateMergesDuplicateLinesBeforeCheckingStock(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 3)

	_, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 7),
		Lines:   []LineInput{{BookID: a, Quantity: 2}, {BookID: a, Quantity: 2}},
	})
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.Equal(t, 3, st.available(a))
}

func TestCreateMergedQuantityRespectsLineLimit(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 50)
	due := t0.AddDate(0, 0, 7)

	_, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: due,
		Lines:   []LineInput{{BookID: a, Quantity: 3}, {BookID: a, Quantity: 3}},
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.ErrorIs(t, err, helper.ErrValidation)
	assert.Equal(t, 50, st.available(a))

	v, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: due,
		Lines:   []LineInput{{BookID: a, Quantity: 2}, {BookID: a, Quantity: 3}},
	})
	require.NoError(t, err)
	require.Len(t, v.Loan.Details, 1)
	assert.Equal(t, constants.MaxLoanLineQuantity, v.Loan.Details[0].LoanDetailQuantity)
	assert.Equal(t, 45, st.available(a))
}

func TestCreateMissingBookIsNotFound(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 5)

	_, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 7),
		Lines:   []LineInput{{BookID: a, Quantity: 1}, {BookID: uuid.New(), Quantity: 1}},
	})
	assert.ErrorIs(t, err, helper.ErrNotFound)
	assert.Equal(t, 5, st.available(a))
}

func TestCreateValidatesLines(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 50)
	due := t0.AddDate(0, 0, 1)

	_, err := svc.Create(context.Background(), admin(), CreateInput{DueDate: due})
	assert.ErrorIs(t, err, ErrEmptyLoan)

	for _, q := range []int{0, -1, constants.MaxLoanLineQuantity + 1} {
		_, err = svc.Create(context.Background(), admin(), CreateInput{DueDate: due, Lines: []LineInput{{BookID: a, Quantity: q}}})
		assert.ErrorIs(t, err, ErrInvalidQuantity, "qty %d", q)
	}
}

func TestCreateForAnotherUser(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 4)
	borrower := uuid.New()
	st.users[borrower] = "maria"

	v, err := svc.Create(context.Background(), admin(), CreateInput{
		BorrowerID: borrower,
		DueDate:    t0.AddDate(0, 0, 3),
		Lines:      []LineInput{{BookID: a, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, borrower, v.Loan.LoanUserID)
	assert.Equal(t, "maria", v.UserName)

	_, err = svc.Create(context.Background(), admin(), CreateInput{
		BorrowerID: uuid.New(),
		DueDate:    t0.AddDate(0, 0, 3),
		Lines:      []LineInput{{BookID: a, Quantity: 1}},
	})
	assert.ErrorIs(t, err, ErrBorrowerNotFound)

	_, err = svc.Create(context.Background(), reader(), CreateInput{
		BorrowerID: borrower,
		DueDate:    t0.AddDate(0, 0, 3),
		Lines:      []LineInput{{BookID: a, Quantity: 1}},
	})
	assert.ErrorIs(t, err, helper.ErrForbidden)
	assert.Equal(t, 3, st.available(a))
}

func TestReturnLateCreatesOneFinePerLine(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 10)
	b := st.addBook("B", 3)
	actor := admin()

	v, err := svc.Create(context.Background(), actor, CreateInput{
		DueDate: t0.AddDate(0, 0, 5),
		Lines:   []LineInput{{BookID: a, Quantity: 2}, {BookID: b, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, 8, st.available(a))

	clk.now = t0.AddDate(0, 0, 5+7)
	res, err := svc.Return(context.Background(), actor, v.Loan.LoanID)
	require.NoError(t, err)

	assert.Equal(t, 10, st.available(a))
	assert.Equal(t, 3, st.available(b))
	require.NotNil(t, res.View.Loan.LoanReturnedAt)
	assert.Equal(t, clk.now, *res.View.Loan.LoanReturnedAt)

	require.Len(t, res.Fines, 2)
	for _, f := range res.Fines {
		assert.Equal(t, constants.FineStatusPending, f.FineStatus)
		assert.True(t, f.FineAmount.Equal(decimal.NewFromInt(7)), f.FineAmount.String())
		assert.Equal(t, actor.UserID, f.FineUserID)
		assert.Equal(t, clk.now, f.FineGeneratedAt)
	}
	assert.Len(t, res.View.FineIDs, 2)
}

func TestReturnOnTimeCreatesNoFine(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 1)
	v, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 5),
		Lines:   []LineInput{{BookID: a, Quantity: 1}},
	})
	require.NoError(t, err)

	clk.now = t0.AddDate(0, 0, 5)
	res, err := svc.Return(context.Background(), admin(), v.Loan.LoanID)
	require.NoError(t, err)
	assert.Empty(t, res.Fines)
	assert.Equal(t, 1, st.available(a))
}

func TestReturnTwiceIsRejectedAndStockIncrementedOnce(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 4)
	v, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 2),
		Lines:   []LineInput{{BookID: a, Quantity: 3}},
	})
	require.NoError(t, err)

	clk.now = t0.AddDate(0, 0, 1)
	_, err = svc.Return(context.Background(), admin(), v.Loan.LoanID)
	require.NoError(t, err)

	_, err = svc.Return(context.Background(), admin(), v.Loan.LoanID)
	assert.ErrorIs(t, err, ErrAlreadyReturned)
	assert.Equal(t, 4, st.available(a))
}

func TestReturnUnknownLoan(t *testing.T) {
	svc, _, _ := newTestService()
	_, err := svc.Return(context.Background(), admin(), uuid.New())
	assert.True(t, errors.Is(err, helper.ErrNotFound))
}

func TestReturnRollsBackWhenFineInsertFails(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 2)
	v, err := svc.Create(context.Background(), admin(), CreateInput{
		DueDate: t0.AddDate(0, 0, 1),
		Lines:   []LineInput{{BookID: a, Quantity: 2}},
	})
	require.NoError(t, err)

	st.failInsertFines = true
	clk.now = t0.AddDate(0, 0, 10)
	_, err = svc.Return(context.Background(), admin(), v.Loan.LoanID)
	require.Error(t, err)

	assert.Equal(t, 0, st.available(a))
	assert.Nil(t, st.loans[v.Loan.LoanID].LoanReturnedAt)
}

func TestDeleteRestoresStockOnlyWhenNotReturned(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 6)

	open, err := svc.Create(context.Background(), admin(), CreateInput{DueDate: t0.AddDate(0, 0, 3), Lines: []LineInput{{BookID: a, Quantity: 2}}})
	require.NoError(t, err)
	closed, err := svc.Create(context.Background(), admin(), CreateInput{DueDate: t0.AddDate(0, 0, 3), Lines: []LineInput{{BookID: a, Quantity: 1}}})
	require.NoError(t, err)
	assert.Equal(t, 3, st.available(a))

	clk.now = t0.AddDate(0, 0, 1)
	_, err = svc.Return(context.Background(), admin(), closed.Loan.LoanID)
	require.NoError(t, err)
	assert.Equal(t, 4, st.available(a))

	require.NoError(t, svc.Delete(context.Background(), admin(), closed.Loan.LoanID))
	assert.Equal(t, 4, st.available(a))

	require.NoError(t, svc.Delete(context.Background(), admin(), open.Loan.LoanID))
	assert.Equal(t, 6, st.available(a))
	assert.Empty(t, st.loans)
}

func TestGetAndListRespectOwnership(t *testing.T) {
	svc, st, _ := newTestService()
	a := st.addBook("A", 10)
	owner := reader()
	stranger := reader()
	st.users[owner.UserID] = owner.UserName

	v, err := svc.Create(context.Background(), admin(), CreateInput{
		BorrowerID: owner.UserID,
		DueDate:    t0.AddDate(0, 0, 3),
		Lines:      []LineInput{{BookID: a, Quantity: 1}},
	})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), admin(), CreateInput{DueDate: t0.AddDate(0, 0, 3), Lines: []LineInput{{BookID: a, Quantity: 1}}})
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, v.Loan.LoanID)
	require.NoError(t, err)
	assert.Equal(t, v.Loan.LoanID, got.Loan.LoanID)

	_, err = svc.Get(context.Background(), stranger, v.Loan.LoanID)
	assert.ErrorIs(t, err, helper.ErrForbidden)

	_, err = svc.Get(context.Background(), admin(), v.Loan.LoanID)
	assert.NoError(t, err)

	mine, total, err := svc.List(context.Background(), owner, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, owner.UserID, mine[0].Loan.LoanUserID)

	none, _, err := svc.List(context.Background(), stranger, ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, total, err := svc.List(context.Background(), admin(), ListFilter{Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	_, _, err = svc.List(context.Background(), admin(), ListFilter{Status: "perdido"})
	assert.ErrorIs(t, err, helper.ErrValidation)
}

func TestListOverdue(t *testing.T) {
	svc, st, clk := newTestService()
	a := st.addBook("A", 10)
	_, err := svc.Create(context.Background(), admin(), CreateInput{DueDate: t0.AddDate(0, 0, 1), Lines: []LineInput{{BookID: a, Quantity: 1}}})
	require.NoError(t, err)
	_, err = svc.Create(context.Background(), admin(), CreateInput{DueDate: t0.AddDate(0, 0, 9), Lines: []LineInput{{BookID: a, Quantity: 1}}})
	require.NoError(t, err)

	clk.now = t0.AddDate(0, 0, 3)
	overdue, total, err := svc.List(context.Background(), admin(), ListFilter{Status: "overdue", Limit: 20})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, t0.AddDate(0, 0, 1), overdue[0].Loan.LoanDueDate)
}
