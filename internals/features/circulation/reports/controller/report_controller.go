package controller

import (
	"time"

	"biblioteca_backend/internals/constants"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReportController struct {
	DB  *gorm.DB
	now func() time.Time
}

func NewReportController(db *gorm.DB) *ReportController {
	return &ReportController{DB: db, now: func() time.Time { return time.Now().UTC() }}
}

// Summary: ringkasan perpustakaan, satu query agregat.
type Summary struct {
	TotalBooks         int64           `json:"total_books"`
	TotalCopies        int64           `json:"total_copies_available"`
	ActiveLoans        int64           `json:"active_loans"`
	OverdueLoans       int64           `json:"overdue_loans"`
	PendingFines       int64           `json:"pending_fines"`
	PendingFinesAmount decimal.Decimal `json:"pending_fines_amount"`
	ActiveReservations int64           `json:"active_reservations"`
	GeneratedAt        time.Time       `json:"generated_at" gorm:"-"`
}

const summarySQL = `
SELECT
  (SELECT COUNT(*) FROM books WHERE book_deleted_at IS NULL)                                   AS total_books,
  (SELECT COALESCE(SUM(book_available_copies), 0) FROM books WHERE book_deleted_at IS NULL)    AS total_copies,
  (SELECT COUNT(*) FROM loans WHERE loan_returned_at IS NULL)                                  AS active_loans,
  (SELECT COUNT(*) FROM loans WHERE loan_returned_at IS NULL AND loan_due_date < ?)            AS overdue_loans,
  (SELECT COUNT(*) FROM fines WHERE fine_status = ?)                                           AS pending_fines,
  (SELECT COALESCE(SUM(fine_amount), 0) FROM fines WHERE fine_status = ?)                      AS pending_fines_amount,
  (SELECT COUNT(*) FROM reservations WHERE reservation_status = ? AND reservation_expires_at >= ?) AS active_reservations
`

// 📊 GET /api/reportes/resumen
func (ctrl *ReportController) Summary(c *fiber.Ctx) error {
	now := ctrl.now()

	var s Summary
	if err := ctrl.DB.WithContext(c.UserContext()).Raw(summarySQL,
		now,
		constants.FineStatusPending,
		constants.FineStatusPending,
		constants.ReservationStatusPending, now,
	).Scan(&s).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	s.GeneratedAt = now
	return helper.JsonOK(c, "ok", s)
}
