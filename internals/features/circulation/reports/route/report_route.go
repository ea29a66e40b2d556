package route

import (
	"biblioteca_backend/internals/features/circulation/reports/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ReportRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewReportController(db)
	api.Get("/reportes/resumen", authMiddleware.AdminOnly("ver reportes"), ctrl.Summary)
}
