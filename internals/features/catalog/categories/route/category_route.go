package route

import (
	"biblioteca_backend/internals/features/catalog/categories/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CategoryRoutes(api fiber.Router, db *gorm.DB) {
	ctrl := controller.NewCategoryController(db)
	adminOnly := authMiddleware.AdminOnly("categorias")

	g := api.Group("/categorias")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", adminOnly, ctrl.Create)
	g.Put("/:id", adminOnly, ctrl.Update)
	g.Delete("/:id", adminOnly, ctrl.Delete)
}
