package helper

import (
	"fmt"

	"biblioteca_backend/internals/constants"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Principal adalah identitas yang sudah diverifikasi middleware JWT.
type Principal struct {
	UserID   uuid.UUID
	UserName string
	Roles    []constants.Role
}

func (p Principal) HasRole(role constants.Role) bool {
	for _, r := range p.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Policy: satu-satunya tempat keputusan "pemilik atau admin".
type Policy interface {
	IsAdmin(p Principal) bool
	CanAccess(p Principal, ownerID uuid.UUID) bool
}

type ownerOrAdminPolicy struct{}

// DefaultPolicy: admin boleh semuanya, selain itu hanya milik sendiri.
var DefaultPolicy Policy = ownerOrAdminPolicy{}

func (ownerOrAdminPolicy) IsAdmin(p Principal) bool {
	return p.HasRole(constants.RoleAdministrator)
}

func (pol ownerOrAdminPolicy) CanAccess(p Principal, ownerID uuid.UUID) bool {
	if pol.IsAdmin(p) {
		return true
	}
	return p.UserID != uuid.Nil && p.UserID == ownerID
}

// Authorize mengembalikan ErrForbidden kalau principal bukan pemilik/admin.
func Authorize(pol Policy, p Principal, ownerID uuid.UUID, what string) error {
	if pol.CanAccess(p, ownerID) {
		return nil
	}
	return fmt.Errorf("%w: %s pertenece a otro usuario", helper.ErrForbidden, what)
}

// PrincipalFromCtx membaca locals yang diisi AuthMiddleware.
func PrincipalFromCtx(c *fiber.Ctx) (Principal, error) {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return Principal{}, err
	}
	p := Principal{UserID: userID}
	if name, ok := c.Locals(helper.LocUserName).(string); ok {
		p.UserName = name
	}
	switch rs := c.Locals(helper.LocUserRoles).(type) {
	case []constants.Role:
		p.Roles = rs
	case []string:
		for _, s := range rs {
			if r, ok := constants.ParseRole(s); ok {
				p.Roles = append(p.Roles, r)
			}
		}
	}
	return p, nil
}
