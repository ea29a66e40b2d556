package route

import (
	userController "biblioteca_backend/internals/features/users/user/controller"
	authMiddleware "biblioteca_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UserAdminRoutes: manajemen akun, hanya Administrador.
func UserAdminRoutes(api fiber.Router, db *gorm.DB) {
	userCtrl := userController.NewUserController(db)

	users := api.Group("/usuarios", authMiddleware.AdminOnly("gestionar usuarios"))
	users.Get("/", userCtrl.GetUsers)
	users.Get("/:id", userCtrl.GetUser)
	users.Patch("/:id/estado", userCtrl.UpdateStatus)
	users.Put("/:id/roles", userCtrl.UpdateRoles)
}
