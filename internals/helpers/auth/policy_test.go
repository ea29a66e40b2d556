package helper

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"biblioteca_backend/internals/constants"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOwnerOrAdminPolicy(t *testing.T) {
	owner := uuid.New()
	other := uuid.New()

	reader := Principal{UserID: owner, Roles: []constants.Role{constants.RoleReader}}
	admin := Principal{UserID: other, Roles: []constants.Role{constants.RoleAdministrator}}
	stranger := Principal{UserID: other, Roles: []constants.Role{constants.RoleReader}}

	assert.True(t, DefaultPolicy.CanAccess(reader, owner))
	assert.True(t, DefaultPolicy.CanAccess(admin, owner))
	assert.False(t, DefaultPolicy.CanAccess(stranger, owner))
	assert.False(t, DefaultPolicy.CanAccess(Principal{}, uuid.Nil))

	err := Authorize(DefaultPolicy, stranger, owner, "el préstamo")
	assert.True(t, errors.Is(err, helper.ErrForbidden))
	assert.NoError(t, Authorize(DefaultPolicy, admin, owner, "el préstamo"))
}

func TestPrincipalFromCtx(t *testing.T) {
	id := uuid.New()
	var got Principal

	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		c.Locals(helper.LocUserID, id.String())
		c.Locals(helper.LocUserName, "ana")
		c.Locals(helper.LocUserRoles, []string{"Lector", "desconocido"})
		p, err := PrincipalFromCtx(c)
		if err != nil {
			return err
		}
		got = p
		return c.SendStatus(fiber.StatusOK)
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, got.UserID)
	assert.Equal(t, "ana", got.UserName)
	assert.Equal(t, []constants.Role{constants.RoleReader}, got.Roles)
	assert.False(t, DefaultPolicy.IsAdmin(got))
}

func TestPrincipalFromCtxWithoutLogin(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error {
		_, err := PrincipalFromCtx(c)
		return err
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
