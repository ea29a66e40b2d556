package controller

import (
	"strings"
	"time"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/features/circulation/loans/dto"
	"biblioteca_backend/internals/features/circulation/loans/repository"
	"biblioteca_backend/internals/features/circulation/loans/service"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LoanController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewLoanController(db *gorm.DB) *LoanController {
	store := repository.NewGormStore(db)
	return &LoanController{DB: db, Svc: service.NewService(store, configs.FineRatePerDay)}
}

// =======================
// ➕ POST /api/prestamos
// =======================
func (ctrl *LoanController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.CreateLoanRequest
	if ok, err := helper.ParseAndValidate(c, &body); !ok {
		return err
	}

	v, err := ctrl.Svc.Create(c.UserContext(), p, body.ToInput())
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Préstamo creado", dto.FromLoanView(*v, time.Now().UTC()))
}

// =======================
// 📄 GET /api/prestamos?status=&user_id=&page=&per_page=
// =======================
func (ctrl *LoanController) List(c *fiber.Ctx) error {
	return ctrl.list(c, strings.ToLower(strings.TrimSpace(c.Query("status"))))
}

// 📄 GET /api/prestamos/vencidos
func (ctrl *LoanController) ListOverdue(c *fiber.Ctx) error {
	return ctrl.list(c, "overdue")
}

func (ctrl *LoanController) list(c *fiber.Ctx, status string) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Status: status, Offset: paging.Offset, Limit: paging.Limit}

	// filter user_id hanya berlaku untuk admin; pembaca selalu dipaksa ke miliknya
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		uid, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "user_id no válido")
		}
		f.UserID = &uid
	}

	rows, total, err := ctrl.Svc.List(c.UserContext(), p, f)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromLoanViews(rows, time.Now().UTC()), helper.BuildPagination(total, paging, len(rows)))
}

// 🔍 GET /api/prestamos/:id
func (ctrl *LoanController) Get(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	v, err := ctrl.Svc.Get(c.UserContext(), p, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromLoanView(*v, time.Now().UTC()))
}

// ↩️ PUT /api/prestamos/:id/devolver
func (ctrl *LoanController) Return(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ctrl.Svc.Return(c.UserContext(), p, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	msg := "Préstamo devuelto"
	if len(res.Fines) > 0 {
		msg = "Préstamo devuelto con retraso; multa generada"
	}
	return helper.JsonUpdated(c, msg, dto.ReturnLoanResponse{
		Loan:         dto.FromLoanView(*res.View, time.Now().UTC()),
		FinesCreated: len(res.Fines),
	})
}

// 🗑️ DELETE /api/prestamos/:id
func (ctrl *LoanController) Delete(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	if err := ctrl.Svc.Delete(c.UserContext(), p, id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c)
}
