// internals/middlewares/auth/auth_middleware.go
package auth

import (
	"context"
	"errors"
	"log"
	"strings"

	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Path publik yang di-skip auth (webhook dsb.)
var skipPaths = map[string]struct{}{
	"/api/multas/notification": {},
}

// isSkipPath: "/x/" dan "/x" dianggap sama, mengikuti routing Fiber yang tidak strict.
func isSkipPath(path string) bool {
	if p := strings.TrimRight(path, "/"); p != "" {
		path = p
	}
	_, ok := skipPaths[path]
	return ok
}

// Checks: dependensi yang dipakai middleware, dipisah supaya bisa di-stub di test.
type Checks struct {
	Settings      func() helperAuth.TokenSettings
	IsBlacklisted func(ctx context.Context, raw string) (bool, error)
	IsUserActive  func(ctx context.Context, userID uuid.UUID) (bool, error)
}

// AuthMiddleware versi produksi: blacklist & status user dicek ke DB.
func AuthMiddleware(db *gorm.DB) fiber.Handler {
	return NewAuthMiddleware(Checks{
		Settings: helperAuth.SettingsFromEnv,
		IsBlacklisted: func(ctx context.Context, raw string) (bool, error) {
			return helperAuth.IsBlacklisted(ctx, db, raw, helperAuth.SettingsFromEnv().Secret)
		},
		IsUserActive: func(ctx context.Context, userID uuid.UUID) (bool, error) {
			return isUserActive(ctx, db, userID)
		},
	})
}

func NewAuthMiddleware(chk Checks) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// 1) Skip path tertentu
		if isSkipPath(c.Path()) {
			return c.Next()
		}

		// 2) Ambil Authorization
		tokenString, err := extractBearerToken(c)
		if err != nil {
			return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
		}

		// 3) Parse & verifikasi JWT (signature, exp, iss, aud)
		claims, err := helperAuth.ParseAccessToken(chk.Settings(), tokenString)
		if err != nil {
			log.Println("[AUTH] token ditolak:", err)
			return helper.JsonError(c, fiber.StatusUnauthorized, "Token no válido o expirado")
		}

		// 4) Cek blacklist (logout)
		if chk.IsBlacklisted != nil {
			bl, err := chk.IsBlacklisted(c.UserContext(), tokenString)
			if err != nil {
				log.Println("[AUTH][ERROR] cek blacklist:", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "")
			}
			if bl {
				return helper.JsonError(c, fiber.StatusUnauthorized, "La sesión fue cerrada. Inicie sesión de nuevo.")
			}
		}

		// 5) User masih aktif?
		userID := uuid.MustParse(claims.Subject)
		if chk.IsUserActive != nil {
			active, err := chk.IsUserActive(c.UserContext(), userID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return helper.JsonError(c, fiber.StatusUnauthorized, "Usuario no encontrado")
				}
				log.Println("[AUTH][ERROR] cek user aktif:", err)
				return helper.JsonError(c, fiber.StatusInternalServerError, "")
			}
			if !active {
				return helper.JsonError(c, fiber.StatusUnauthorized, "La cuenta está desactivada")
			}
		}

		// 6) Simpan klaim ke locals
		storeClaimsToLocals(c, userID, claims)
		helper.SetRawAccessToken(c, tokenString)
		return c.Next()
	}
}
