package route

import (
	"biblioteca_backend/internals/features/catalog/books/controller"
	helperOSS "biblioteca_backend/internals/helpers/oss"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func BookRoutes(api fiber.Router, db *gorm.DB, covers helperOSS.CoverStorage) {
	ctrl := controller.NewBookController(db, covers)
	adminOnly := authMiddleware.AdminOnly("libros")

	g := api.Group("/libros")
	g.Get("/", ctrl.List)
	g.Get("/:id", ctrl.Get)
	g.Post("/", adminOnly, ctrl.Create)
	g.Put("/:id", adminOnly, ctrl.Update)
	g.Delete("/:id", adminOnly, ctrl.Delete)
	g.Post("/:id/portada", adminOnly, ctrl.UploadCover)
}
