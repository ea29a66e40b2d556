package controller

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"biblioteca_backend/internals/constants"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSummary(t *testing.T) {
	sqlDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	ctrl := NewReportController(db)
	ctrl.now = func() time.Time { return now }

	mock.ExpectQuery(`SELECT\s+\(SELECT COUNT\(\*\) FROM books`).
		WithArgs(now, constants.FineStatusPending, constants.FineStatusPending, constants.ReservationStatusPending, now).
		WillReturnRows(sqlmock.NewRows([]string{
			"total_books", "total_copies", "active_loans", "overdue_loans",
			"pending_fines", "pending_fines_amount", "active_reservations",
		}).AddRow(12, 40, 5, 2, 3, "21.00", 4))

	app := fiber.New()
	app.Get("/reportes/resumen", ctrl.Summary)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/reportes/resumen", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body struct {
		Data Summary `json:"data"`
	}
	require.NoError(t, sonic.Unmarshal(raw, &body))
	assert.EqualValues(t, 12, body.Data.TotalBooks)
	assert.EqualValues(t, 2, body.Data.OverdueLoans)
	assert.True(t, body.Data.PendingFinesAmount.Equal(decimal.RequireFromString("21")))
	assert.EqualValues(t, 4, body.Data.ActiveReservations)
	assert.NoError(t, mock.ExpectationsWereMet())
}
