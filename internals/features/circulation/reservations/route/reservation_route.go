package route

import (
	"biblioteca_backend/internals/features/circulation/reservations/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func ReservationRoutes(api fiber.Router, db *gorm.DB) {
	resCtrl := controller.NewReservationController(db)

	g := api.Group("/reservas")
	g.Get("/", resCtrl.List)
	g.Get("/:id", resCtrl.Get)
	g.Post("/", resCtrl.Create)
	g.Put("/:id/estado", authMiddleware.AdminOnly("reservas"), resCtrl.UpdateStatus)
	g.Delete("/:id", resCtrl.Delete) // pemilik atau admin
}
