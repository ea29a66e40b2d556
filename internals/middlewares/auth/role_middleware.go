package auth

import (
	"log"

	"biblioteca_backend/internals/constants"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
)

// OnlyRoles: lolos kalau user punya salah satu role yang diizinkan.
func OnlyRoles(message string, allowed []constants.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		roles, ok := c.Locals(helper.LocUserRoles).([]constants.Role)
		if !ok {
			return helper.JsonError(c, fiber.StatusUnauthorized, "Información de rol ausente")
		}
		for _, have := range roles {
			for _, want := range allowed {
				if have == want {
					return c.Next()
				}
			}
		}

		log.Printf("[AUTH] role %v ditolak untuk %s %s", roles, c.Method(), c.Path())
		if message == "" {
			message = "No tiene permisos para este recurso"
		}
		return helper.JsonError(c, fiber.StatusForbidden, message)
	}
}

// AdminOnly: shortcut untuk mutasi katalog & sirkulasi.
func AdminOnly(feature string) fiber.Handler {
	return OnlyRoles(constants.RoleErrorAdmin(feature), constants.AdminOnly)
}
