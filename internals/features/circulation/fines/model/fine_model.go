package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type FineModel struct {
	FineID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:fine_id" json:"fine_id"`
	FineUserID       uuid.UUID       `gorm:"type:uuid;not null;column:fine_user_id;index" json:"fine_user_id"`
	FineLoanDetailID *uuid.UUID      `gorm:"type:uuid;uniqueIndex;column:fine_loan_detail_id" json:"fine_loan_detail_id,omitempty"`
	FineAmount       decimal.Decimal `gorm:"type:numeric(18,2);not null;column:fine_amount" json:"fine_amount"`
	FineGeneratedAt  time.Time       `gorm:"type:timestamptz;not null;column:fine_generated_at" json:"fine_generated_at"`
	FinePaidAt       *time.Time      `gorm:"type:timestamptz;column:fine_paid_at" json:"fine_paid_at,omitempty"`
	FineStatus       string          `gorm:"type:varchar(20);not null;column:fine_status;index" json:"fine_status"`

	// Pembayaran Midtrans (Snap)
	FinePaymentOrderID *string `gorm:"type:varchar(80);uniqueIndex;column:fine_payment_order_id" json:"fine_payment_order_id,omitempty"`
	FinePaymentToken   *string `gorm:"type:text;column:fine_payment_token" json:"-"`

	FineRowVersion int64 `gorm:"not null;default:1;column:fine_row_version" json:"fine_row_version"`
}

func (FineModel) TableName() string { return "fines" }
