package route

import (
	"biblioteca_backend/internals/features/circulation/audit/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuditRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuditController(db)
	api.Get("/auditoria", authMiddleware.AdminOnly("ver la auditoría"), ctrl.List)
}
