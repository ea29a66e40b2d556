package controller

import (
	"log"
	"strings"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/features/circulation/fines/dto"
	"biblioteca_backend/internals/features/circulation/fines/service"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FineController struct {
	DB  *gorm.DB
	Svc *service.Service
}

// NewFineController: gateway Midtrans hanya aktif kalau MIDTRANS_SERVER_KEY diisi.
func NewFineController(db *gorm.DB) *FineController {
	serverKey := configs.GetEnv("MIDTRANS_SERVER_KEY")
	var gw service.PaymentGateway
	if serverKey != "" {
		gw = service.NewSnapGateway(serverKey, configs.GetEnvBool("MIDTRANS_USE_PROD", false))
	} else {
		log.Println("⚠️ MIDTRANS_SERVER_KEY kosong, pembayaran denda online nonaktif")
	}
	return &FineController{DB: db, Svc: service.NewService(db, gw, serverKey)}
}

// 📄 GET /api/multas?status=&user_id=
func (ctrl *FineController) List(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	paging := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Status: c.Query("status"), Offset: paging.Offset, Limit: paging.Limit}
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
	return helper.JsonList(c, "ok", dto.FromFineViews(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🔍 GET /api/multas/:id
func (ctrl *FineController) Get(c *fiber.Ctx) error {
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
	return helper.JsonOK(c, "ok", dto.FromFineView(*v))
}

// ✏️ PUT /api/multas/:id/estado
func (ctrl *FineController) UpdateStatus(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var body dto.UpdateFineStatusRequest
	if ok, err := helper.ParseAndValidate(c, &body); !ok {
		return err
	}

	v, err := ctrl.Svc.UpdateStatus(c.UserContext(), p, id, body.Status, body.RowVersion)
	if err != nil {
		return helper.FromUpdateError(c, err)
	}
	return helper.JsonUpdated(c, "Estado de la multa actualizado", dto.FromFineView(*v))
}

// 🗑️ DELETE /api/multas/:id
func (ctrl *FineController) Delete(c *fiber.Ctx) error {
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

// 💳 POST /api/multas/:id/pagar
func (ctrl *FineController) Pay(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	res, err := ctrl.Svc.StartPayment(c.UserContext(), p, id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Transacción de pago creada", res)
}

// 🔔 POST /api/multas/notification (publik, dipanggil Midtrans)
func (ctrl *FineController) Notification(c *fiber.Ctx) error {
	var n service.Notification
	if err := c.BodyParser(&n); err != nil {
		log.Println("[FINES][WEBHOOK] payload tidak valid:", err)
		return helper.JsonError(c, fiber.StatusBadRequest, "Payload no válido")
	}
	log.Printf("[FINES][WEBHOOK] 📄 order=%s status=%s", n.OrderID, n.TransactionStatus)

	outcome, err := ctrl.Svc.HandleNotification(c.UserContext(), n)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	// Midtrans cukup menerima 200; order yang tidak dikenal juga dibalas 200 supaya tidak retry terus
	return c.JSON(fiber.Map{"status": outcome, "order_id": n.OrderID})
}
