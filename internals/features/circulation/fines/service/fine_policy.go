package service

import (
	"fmt"
	"strings"
	"time"

	"biblioteca_backend/internals/constants"
	fineModel "biblioteca_backend/internals/features/circulation/fines/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrInvalidTransition = fmt.Errorf("%w: transición de estado no permitida", helper.ErrValidation)

// DaysLate: hari penuh keterlambatan (dibulatkan ke bawah), 0 kalau tidak telat.
func DaysLate(due, returned time.Time) int64 {
	if !returned.After(due) {
		return 0
	}
	return int64(returned.Sub(due) / (24 * time.Hour))
}

// FineAmount = hari telat × tarif per hari, dua desimal.
func FineAmount(due, returned time.Time, ratePerDay decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(DaysLate(due, returned)).Mul(ratePerDay).Round(2)
}

// NewPendingFine membuat denda untuk satu detail peminjaman.
func NewPendingFine(userID, loanDetailID uuid.UUID, due, returned time.Time, ratePerDay decimal.Decimal) fineModel.FineModel {
	detailID := loanDetailID
	return fineModel.FineModel{
		FineID:           uuid.New(),
		FineUserID:       userID,
		FineLoanDetailID: &detailID,
		FineAmount:       FineAmount(due, returned, ratePerDay),
		FineGeneratedAt:  returned,
		FineStatus:       constants.FineStatusPending,
	}
}

// NormalizeFineStatus menerima status case-insensitive dan mengembalikan bentuk kanonik.
func NormalizeFineStatus(s string) (string, bool) {
	s = strings.TrimSpace(s)
	for _, st := range []string{constants.FineStatusPending, constants.FineStatusPaid, constants.FineStatusVoided} {
		if strings.EqualFold(s, st) {
			return st, true
		}
	}
	return "", false
}

// ApplyFineStatus menjalankan mesin status denda:
// Pendiente → Pagada | Anulada; Pagada & Anulada final.
// Status yang sama diulang = no-op, fine_paid_at hanya diisi sekali.
func ApplyFineStatus(f *fineModel.FineModel, requested string, now time.Time) (bool, error) {
	next, ok := NormalizeFineStatus(requested)
	if !ok {
		return false, fmt.Errorf("%w: estado %q desconocido", helper.ErrValidation, requested)
	}
	if next == f.FineStatus {
		return false, nil
	}
	if f.FineStatus != constants.FineStatusPending {
		return false, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, f.FineStatus, next)
	}

	switch next {
	case constants.FineStatusPaid:
		f.FineStatus = next
		if f.FinePaidAt == nil {
			t := now
			f.FinePaidAt = &t
		}
	case constants.FineStatusVoided:
		f.FineStatus = next
	default:
		return false, fmt.Errorf("%w: %s → %s", ErrInvalidTransition, f.FineStatus, next)
	}
	return true, nil
}
