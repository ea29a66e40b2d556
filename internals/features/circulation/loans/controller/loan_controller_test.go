package controller

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"biblioteca_backend/internals/constants"
	"biblioteca_backend/internals/features/circulation/loans/model"
	"biblioteca_backend/internals/features/circulation/loans/service"
	helper "biblioteca_backend/internals/helpers"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubStore: hanya read side yang diisi; method lain panic kalau terpanggil.
type stubStore struct {
	service.Store
	views map[uuid.UUID]service.LoanView
}

func (s stubStore) GetLoanView(ctx context.Context, id uuid.UUID) (*service.LoanView, error) {
	v, ok := s.views[id]
	if !ok {
		return nil, service.ErrLoanNotFound
	}
	return &v, nil
}

func newTestApp(store service.Store, userID uuid.UUID, roles ...constants.Role) *fiber.App {
	ctrl := &LoanController{Svc: service.NewService(store, decimal.NewFromInt(1))}

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(helper.LocUserID, userID)
		c.Locals(helper.LocUserRoles, roles)
		return c.Next()
	})
	app.Get("/prestamos/:id", ctrl.Get)
	app.Post("/prestamos", ctrl.Create)
	return app
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	require.NoError(t, sonic.Unmarshal(raw, &out))
	return out
}

func sampleView(owner uuid.UUID) service.LoanView {
	loanID, bookID := uuid.New(), uuid.New()
	now := time.Now().UTC()
	return service.LoanView{
		Loan: model.LoanModel{
			LoanID:      loanID,
			LoanUserID:  owner,
			LoanDate:    now,
			LoanDueDate: now.AddDate(0, 0, 5),
			Details: []model.LoanDetailModel{{
				LoanDetailID:       uuid.New(),
				LoanDetailLoanID:   loanID,
				LoanDetailBookID:   bookID,
				LoanDetailQuantity: 2,
			}},
		},
		UserName:   "lector1",
		BookTitles: map[uuid.UUID]string{bookID: "Cien años de soledad"},
		FineIDs:    map[uuid.UUID]uuid.UUID{},
	}
}

func TestGetLoanAsOwner(t *testing.T) {
	owner := uuid.New()
	v := sampleView(owner)
	app := newTestApp(stubStore{views: map[uuid.UUID]service.LoanView{v.Loan.LoanID: v}}, owner, constants.RoleReader)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/prestamos/"+v.Loan.LoanID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body := decodeBody(t, resp)
	data := body["data"].(map[string]any)
	assert.Equal(t, "lector1", data["user_name"])
	details := data["loan_details"].([]any)
	require.Len(t, details, 1)
	assert.Equal(t, "Cien años de soledad", details[0].(map[string]any)["book_title"])
}

func TestGetLoanOfAnotherReaderIsForbidden(t *testing.T) {
	v := sampleView(uuid.New())
	app := newTestApp(stubStore{views: map[uuid.UUID]service.LoanView{v.Loan.LoanID: v}}, uuid.New(), constants.RoleReader)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/prestamos/"+v.Loan.LoanID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "FORBIDDEN", decodeBody(t, resp)["error_code"])
}

func TestGetLoanAsAdminAndNotFound(t *testing.T) {
	v := sampleView(uuid.New())
	app := newTestApp(stubStore{views: map[uuid.UUID]service.LoanView{v.Loan.LoanID: v}}, uuid.New(), constants.RoleAdministrator)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/prestamos/"+v.Loan.LoanID.String(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/prestamos/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/prestamos/abc", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestCreateLoanValidation(t *testing.T) {
	app := newTestApp(stubStore{}, uuid.New(), constants.RoleAdministrator)

	cases := map[string]string{
		"no details":   `{"loan_due_date":"2099-01-01T00:00:00Z","loan_details":[]}`,
		"qty too high": `{"loan_due_date":"2099-01-01T00:00:00Z","loan_details":[{"book_id":"` + uuid.NewString() + `","quantity":9}]}`,
		"no due date":  `{"loan_details":[{"book_id":"` + uuid.NewString() + `","quantity":1}]}`,
	}
	for name, payload := range cases {
		req := httptest.NewRequest(http.MethodPost, "/prestamos", strings.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err, name)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, name)
		assert.Equal(t, "VALIDATION_ERROR", decodeBody(t, resp)["error_code"], name)
	}
}

func TestCreateLoanPastDueDate(t *testing.T) {
	app := newTestApp(stubStore{}, uuid.New(), constants.RoleAdministrator)

	payload := `{"loan_due_date":"2001-01-01T00:00:00Z","loan_details":[{"book_id":"` + uuid.NewString() + `","quantity":1}]}`
	req := httptest.NewRequest(http.MethodPost, "/prestamos", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, decodeBody(t, resp)["message"], "posterior a la fecha actual")
}
