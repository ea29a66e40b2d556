package dto

import (
	"time"

	"biblioteca_backend/internals/features/circulation/fines/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UpdateFineStatusRequest struct {
	Status string `json:"fine_status" validate:"required,max=50"`
	// opsional: kalau diisi harus sama dengan versi di DB
	RowVersion *int64 `json:"fine_row_version" validate:"omitempty,min=1"`
}

type FineResponse struct {
	FineID           uuid.UUID       `json:"fine_id"`
	FineAmount       decimal.Decimal `json:"fine_amount"`
	FineGeneratedAt  time.Time       `json:"fine_generated_at"`
	FinePaidAt       *time.Time      `json:"fine_paid_at"`
	FineStatus       string          `json:"fine_status"`
	FineLoanDetailID *uuid.UUID      `json:"fine_loan_detail_id"`
	FineRowVersion   int64           `json:"fine_row_version"`
	UserID           uuid.UUID       `json:"user_id"`
	UserName         string          `json:"user_name"`

	FinePaymentOrderID *string `json:"fine_payment_order_id,omitempty"`
}

func FromFineView(v service.FineView) FineResponse {
	f := v.Fine
	return FineResponse{
		FineID:             f.FineID,
		FineAmount:         f.FineAmount,
		FineGeneratedAt:    f.FineGeneratedAt,
		FinePaidAt:         f.FinePaidAt,
		FineStatus:         f.FineStatus,
		FineLoanDetailID:   f.FineLoanDetailID,
		FineRowVersion:     f.FineRowVersion,
		UserID:             f.FineUserID,
		UserName:           v.UserName,
		FinePaymentOrderID: f.FinePaymentOrderID,
	}
}

func FromFineViews(vs []service.FineView) []FineResponse {
	out := make([]FineResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, FromFineView(v))
	}
	return out
}
