package route

import (
	"biblioteca_backend/internals/features/circulation/fines/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// FineRoutes: /notification tetap lewat AuthMiddleware tapi masuk skipPaths.
func FineRoutes(api fiber.Router, db *gorm.DB) {
	fineCtrl := controller.NewFineController(db)
	adminOnly := authMiddleware.AdminOnly("multas")

	g := api.Group("/multas")
	g.Post("/notification", fineCtrl.Notification) // 🔔 webhook Midtrans
	g.Get("/", fineCtrl.List)
	g.Get("/:id", fineCtrl.Get)
	g.Post("/:id/pagar", fineCtrl.Pay)                     // 💳 pemilik denda
	g.Put("/:id/estado", adminOnly, fineCtrl.UpdateStatus) // ✏️ Pendiente → Pagada | Anulada
	g.Delete("/:id", adminOnly, fineCtrl.Delete)
}
