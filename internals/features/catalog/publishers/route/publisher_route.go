package route

import (
	"biblioteca_backend/internals/features/catalog/publishers/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func PublisherRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewPublisherController(db)
	adminOnly := authMiddleware.AdminOnly("editoriales")

	g := api.Group("/editoriales")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", adminOnly, ctrl.Create)
	g.Put("/:id", adminOnly, ctrl.Update)
	g.Delete("/:id", adminOnly, ctrl.Delete)
}
