package dto

import (
	"time"

	"biblioteca_backend/internals/features/circulation/loans/service"

	"github.com/google/uuid"
)

/* =========================================================
   REQUEST
========================================================= */

type LoanDetailRequest struct {
	BookID   uuid.UUID `json:"book_id" validate:"required"`
	Quantity int       `json:"quantity" validate:"required,min=1,max=5"`
}

type CreateLoanRequest struct {
	// opsional, hanya admin; kosong = peminjam adalah user login
	UserID  *uuid.UUID          `json:"loan_user_id"`
	DueDate time.Time           `json:"loan_due_date" validate:"required"`
	Details []LoanDetailRequest `json:"loan_details" validate:"required,min=1,dive"`
}

func (r CreateLoanRequest) ToInput() service.CreateInput {
	in := service.CreateInput{DueDate: r.DueDate}
	if r.UserID != nil {
		in.BorrowerID = *r.UserID
	}
	for _, d := range r.Details {
		in.Lines = append(in.Lines, service.LineInput{BookID: d.BookID, Quantity: d.Quantity})
	}
	return in
}

/* =========================================================
   RESPONSE
========================================================= */

type LoanDetailResponse struct {
	LoanDetailID uuid.UUID  `json:"loan_detail_id"`
	BookID       uuid.UUID  `json:"book_id"`
	BookTitle    string     `json:"book_title"`
	Quantity     int        `json:"quantity"`
	FineID       *uuid.UUID `json:"fine_id,omitempty"`
}

type LoanResponse struct {
	LoanID         uuid.UUID            `json:"loan_id"`
	LoanDate       time.Time            `json:"loan_date"`
	LoanDueDate    time.Time            `json:"loan_due_date"`
	LoanReturnedAt *time.Time           `json:"loan_returned_at"`
	LoanIsOverdue  bool                 `json:"loan_is_overdue"`
	UserID         uuid.UUID            `json:"user_id"`
	UserName       string               `json:"user_name"`
	Details        []LoanDetailResponse `json:"loan_details"`
}

func FromLoanView(v service.LoanView, now time.Time) LoanResponse {
	out := LoanResponse{
		LoanID:         v.Loan.LoanID,
		LoanDate:       v.Loan.LoanDate,
		LoanDueDate:    v.Loan.LoanDueDate,
		LoanReturnedAt: v.Loan.LoanReturnedAt,
		LoanIsOverdue:  v.Loan.IsOverdue(now),
		UserID:         v.Loan.LoanUserID,
		UserName:       v.UserName,
		Details:        make([]LoanDetailResponse, 0, len(v.Loan.Details)),
	}
	for _, d := range v.Loan.Details {
		row := LoanDetailResponse{
			LoanDetailID: d.LoanDetailID,
			BookID:       d.LoanDetailBookID,
			BookTitle:    v.BookTitles[d.LoanDetailBookID],
			Quantity:     d.LoanDetailQuantity,
		}
		if fid, ok := v.FineIDs[d.LoanDetailID]; ok {
			id := fid
			row.FineID = &id
		}
		out.Details = append(out.Details, row)
	}
	return out
}

func FromLoanViews(vs []service.LoanView, now time.Time) []LoanResponse {
	out := make([]LoanResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, FromLoanView(v, now))
	}
	return out
}

type ReturnLoanResponse struct {
	Loan         LoanResponse `json:"loan"`
	FinesCreated int          `json:"fines_created"`
}
