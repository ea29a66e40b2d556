package route

import (
	"biblioteca_backend/internals/features/catalog/authors/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func AuthorRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewAuthorController(db)
	adminOnly := authMiddleware.AdminOnly("autores")

	g := api.Group("/autores")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", adminOnly, ctrl.Create)
	g.Put("/:id", adminOnly, ctrl.Update)
	g.Delete("/:id", adminOnly, ctrl.Delete)
}
