package controller

import (
	"biblioteca_backend/internals/features/users/auth/service"
	userDTO "biblioteca_backend/internals/features/users/user/dto"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Svc *service.Service
}

func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{DB: db, Svc: service.NewService(db)}
}

// POST /api/auth/register
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req userDTO.RegisterRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req.Normalize()

	user, err := ac.Svc.Register(c.UserContext(), service.RegisterInput{
		UserName: req.UserName,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Usuario creado exitosamente. Rol asignado: Lector", userDTO.ToUserResponse(user))
}

// POST /api/auth/login
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req userDTO.LoginRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	res, err := ac.Svc.Login(c.UserContext(), req.UserName, req.Password)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Inicio de sesión exitoso", res)
}

// POST /api/auth/login-google
func (ac *AuthController) LoginGoogle(c *fiber.Ctx) error {
	var req userDTO.GoogleLoginRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	res, err := ac.Svc.LoginGoogle(c.UserContext(), req.IDToken)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Inicio de sesión exitoso", res)
}

// POST /api/auth/logout
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	if err := ac.Svc.Logout(c.UserContext(), helper.GetRawAccessToken(c)); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "Sesión cerrada", nil)
}

// GET /api/auth/me
func (ac *AuthController) Me(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	user, err := ac.Svc.Me(c.UserContext(), p.UserID)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", userDTO.ToUserResponse(user))
}

// POST /api/auth/change-password
func (ac *AuthController) ChangePassword(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	var req userDTO.ChangePasswordRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	if err := ac.Svc.ChangePassword(c.UserContext(), p.UserID, req.CurrentPassword, req.NewPassword); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Contraseña actualizada", nil)
}
