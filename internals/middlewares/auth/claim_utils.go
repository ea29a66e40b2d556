// internals/middlewares/auth/claims_utils.go
package auth

import (
	"context"
	"errors"
	"strings"

	"biblioteca_backend/internals/constants"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func extractBearerToken(c *fiber.Ctx) (string, error) {
	auth := strings.TrimSpace(c.Get("Authorization"))
	if auth == "" {
		return "", errors.New("No se proporcionó token")
	}
	// toleransi spasi ganda & case-insensitive
	fields := strings.Fields(auth)
	if len(fields) != 2 || !strings.EqualFold(fields[0], "Bearer") {
		return "", errors.New("Formato de token no válido")
	}
	tok := strings.Trim(strings.TrimSpace(fields[1]), "\"'")
	if tok == "" {
		return "", errors.New("Token vacío")
	}
	return tok, nil
}

func isUserActive(ctx context.Context, db *gorm.DB, userID uuid.UUID) (bool, error) {
	var row struct {
		UserIsActive bool
	}
	if err := db.WithContext(ctx).
		Table("users").
		Select("user_is_active").
		Where("user_id = ?", userID).
		Take(&row).Error; err != nil {
		return false, err
	}
	return row.UserIsActive, nil
}

func storeClaimsToLocals(c *fiber.Ctx, userID uuid.UUID, claims *helperAuth.AccessClaims) {
	c.Locals(helper.LocUserID, userID.String())
	c.Locals(helper.LocUserName, claims.UniqueName)

	roles := make([]constants.Role, 0, len(claims.Roles))
	for _, s := range claims.Roles {
		if r, ok := constants.ParseRole(s); ok {
			roles = append(roles, r)
		}
	}
	c.Locals(helper.LocUserRoles, roles)
	c.Locals(helper.LocUserRole, constants.HighestRole(claims.Roles))
}
