package service

import (
	"errors"
	"testing"
	"time"

	"biblioteca_backend/internals/constants"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysLateTruncates(t *testing.T) {
	due := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(0), DaysLate(due, due))
	assert.Equal(t, int64(0), DaysLate(due, due.Add(-time.Hour)))
	assert.Equal(t, int64(0), DaysLate(due, due.Add(23*time.Hour)))
	assert.Equal(t, int64(7), DaysLate(due, due.Add(7*24*time.Hour+5*time.Hour)))
}

func TestFineAmountUsesRate(t *testing.T) {
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	got := FineAmount(due, due.Add(3*24*time.Hour), decimal.RequireFromString("0.75"))
	assert.True(t, got.Equal(decimal.RequireFromString("2.25")), got.String())
}

func TestNewPendingFine(t *testing.T) {
	user, detail := uuid.New(), uuid.New()
	due := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	ret := due.Add(2 * 24 * time.Hour)

	f := NewPendingFine(user, detail, due, ret, decimal.NewFromInt(1))
	assert.Equal(t, constants.FineStatusPending, f.FineStatus)
	assert.Equal(t, user, f.FineUserID)
	require.NotNil(t, f.FineLoanDetailID)
	assert.Equal(t, detail, *f.FineLoanDetailID)
	assert.True(t, f.FineAmount.Equal(decimal.NewFromInt(2)))
	assert.Equal(t, ret, f.FineGeneratedAt)
	assert.Nil(t, f.FinePaidAt)
}

func TestApplyFineStatusPendingToPaid(t *testing.T) {
	now := time.Now()
	f := &fineModel.FineModel{FineStatus: constants.FineStatusPending}

	changed, err := ApplyFineStatus(f, "pagada", now)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, constants.FineStatusPaid, f.FineStatus)
	require.NotNil(t, f.FinePaidAt)
	assert.Equal(t, now, *f.FinePaidAt)

	// idempoten: tanggal bayar tidak ditimpa
	changed, err = ApplyFineStatus(f, "Pagada", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, now, *f.FinePaidAt)
}

func TestApplyFineStatusTerminalStates(t *testing.T) {
	paidAt := time.Now()
	paid := &fineModel.FineModel{FineStatus: constants.FineStatusPaid, FinePaidAt: &paidAt}
	_, err := ApplyFineStatus(paid, constants.FineStatusVoided, time.Now())
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	voided := &fineModel.FineModel{FineStatus: constants.FineStatusVoided}
	_, err = ApplyFineStatus(voided, constants.FineStatusPaid, time.Now())
	assert.True(t, errors.Is(err, helper.ErrValidation))
	assert.Nil(t, voided.FinePaidAt)

	_, err = ApplyFineStatus(voided, constants.FineStatusPending, time.Now())
	assert.Error(t, err)
}

func TestApplyFineStatusVoid(t *testing.T) {
	f := &fineModel.FineModel{FineStatus: constants.FineStatusPending}
	changed, err := ApplyFineStatus(f, " ANULADA ", time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, constants.FineStatusVoided, f.FineStatus)
	assert.Nil(t, f.FinePaidAt)
}

func TestApplyFineStatusUnknown(t *testing.T) {
	f := &fineModel.FineModel{FineStatus: constants.FineStatusPending}
	_, err := ApplyFineStatus(f, "perdonada", time.Now())
	assert.True(t, errors.Is(err, helper.ErrValidation))
	assert.Equal(t, constants.FineStatusPending, f.FineStatus)
}
