package model

import (
	"time"

	"github.com/google/uuid"
)

type LoanModel struct {
	LoanID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:loan_id" json:"loan_id"`
	LoanUserID     uuid.UUID  `gorm:"type:uuid;not null;column:loan_user_id;index" json:"loan_user_id"`
	LoanDate       time.Time  `gorm:"type:timestamptz;not null;column:loan_date" json:"loan_date"`
	LoanDueDate    time.Time  `gorm:"type:timestamptz;not null;column:loan_due_date;index" json:"loan_due_date"`
	LoanReturnedAt *time.Time `gorm:"type:timestamptz;column:loan_returned_at" json:"loan_returned_at,omitempty"`

	Details []LoanDetailModel `gorm:"foreignKey:LoanDetailLoanID;references:LoanID;constraint:OnDelete:CASCADE" json:"details,omitempty"`
}

func (LoanModel) TableName() string { return "loans" }

func (l LoanModel) IsReturned() bool { return l.LoanReturnedAt != nil }

// IsOverdue: belum kembali dan sudah lewat jatuh tempo.
func (l LoanModel) IsOverdue(now time.Time) bool {
	return l.LoanReturnedAt == nil && now.After(l.LoanDueDate)
}

type LoanDetailModel struct {
	LoanDetailID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:loan_detail_id" json:"loan_detail_id"`
	LoanDetailLoanID   uuid.UUID `gorm:"type:uuid;not null;column:loan_detail_loan_id;index" json:"loan_detail_loan_id"`
	LoanDetailBookID   uuid.UUID `gorm:"type:uuid;not null;column:loan_detail_book_id;index" json:"loan_detail_book_id"`
	LoanDetailQuantity int       `gorm:"not null;column:loan_detail_quantity;check:chk_loan_details_quantity_pos,loan_detail_quantity >= 1" json:"loan_detail_quantity"`
}

func (LoanDetailModel) TableName() string { return "loan_details" }
