package controller

import (
	"strings"

	"biblioteca_backend/internals/features/circulation/reservations/dto"
	"biblioteca_backend/internals/features/circulation/reservations/repository"
	"biblioteca_backend/internals/features/circulation/reservations/service"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewReservationController(db *gorm.DB) *ReservationController {
	return &ReservationController{DB: db, Svc: service.NewService(repository.NewGormStore(db))}
}

// ➕ POST /api/reservas
func (ctrl *ReservationController) Create(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.CreateReservationRequest
	if ok, err := helper.ParseAndValidate(c, &body); !ok {
		return err
	}

	v, err := ctrl.Svc.Create(c.UserContext(), p, body.BookID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Reserva creada", dto.FromReservationView(*v))
}

// 📄 GET /api/reservas?status=&user_id=&book_id=
func (ctrl *ReservationController) List(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Status: c.Query("status"), Offset: paging.Offset, Limit: paging.Limit}
	for key, dst := range map[string]**uuid.UUID{"user_id": &f.UserID, "book_id": &f.BookID} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, key+" no válido")
		}
		*dst = &id
	}

	rows, total, err := ctrl.Svc.List(c.UserContext(), p, f)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromReservationViews(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🔍 GET /api/reservas/:id
func (ctrl *ReservationController) Get(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.FromReservationView(*v))
}

// ✏️ PUT /api/reservas/:id/estado
func (ctrl *ReservationController) UpdateStatus(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.UpdateReservationStatusRequest
	if ok, err := helper.ParseAndValidate(c, &body); !ok {
		return err
	}

	v, err := ctrl.Svc.UpdateStatus(c.UserContext(), p, id, body.Status, body.RowVersion)
	if err != nil {
		return helper.FromUpdateError(c, err)
	}
	return helper.JsonUpdated(c, "Estado de la reserva actualizado", dto.FromReservationView(*v))
}

// 🗑️ DELETE /api/reservas/:id
func (ctrl *ReservationController) Delete(c *fiber.Ctx) error {
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
