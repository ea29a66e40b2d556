package controller

import (
	"errors"
	"log"
	"strings"

	"biblioteca_backend/internals/constants"
	"biblioteca_backend/internals/features/users/user/dto"
	"biblioteca_backend/internals/features/users/user/model"
	helper "biblioteca_backend/internals/helpers"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB *gorm.DB
}

func NewUserController(db *gorm.DB) *UserController {
	return &UserController{DB: db}
}

// GET /api/usuarios?q=&role=&page=&per_page=
func (uc *UserController) GetUsers(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := uc.DB.WithContext(c.UserContext()).Model(&model.UserModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		like := "%" + s + "%"
		q = q.Where("(user_name ILIKE ? OR user_email ILIKE ? OR user_full_name ILIKE ?)", like, like, like)
	}
	if raw := strings.TrimSpace(c.Query("role")); raw != "" {
		r, ok := constants.ParseRole(raw)
		if !ok {
			return helper.JsonError(c, fiber.StatusBadRequest, "role no válido")
		}
		q = q.Where("? = ANY(user_roles)", r.String())
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var users []model.UserModel
	if err := q.Order("user_name ASC").Offset(paging.Offset).Limit(paging.Limit).Find(&users).Error; err != nil {
		log.Println("[ERROR] Failed to fetch users:", err)
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToUserResponseList(users), helper.BuildPagination(total, paging, len(users)))
}

// GET /api/usuarios/:id
func (uc *UserController) GetUser(c *fiber.Ctx) error {
	user, err := uc.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToUserResponse(user))
}

// PATCH /api/usuarios/:id/estado: admin tidak bisa menonaktifkan dirinya sendiri
func (uc *UserController) UpdateStatus(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	user, err := uc.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateUserStatusRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	if user.UserID == p.UserID && !*req.UserIsActive {
		return helper.JsonError(c, fiber.StatusBadRequest, "No puede desactivar su propia cuenta")
	}

	if err := uc.DB.WithContext(c.UserContext()).Model(user).Update("user_is_active", *req.UserIsActive).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	user.UserIsActive = *req.UserIsActive
	log.Printf("[USERS] %s is_active=%v oleh %s", user.UserName, user.UserIsActive, p.UserName)
	return helper.JsonUpdated(c, "Estado actualizado", dto.ToUserResponse(user))
}

// PUT /api/usuarios/:id/roles: replace penuh
func (uc *UserController) UpdateRoles(c *fiber.Ctx) error {
	p, err := helperAuth.PrincipalFromCtx(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	user, err := uc.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.UpdateUserRolesRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}

	next := model.UserModel{}
	for _, s := range req.UserRoles {
		if r, ok := constants.ParseRole(s); ok {
			next.AddRole(r)
		}
	}
	if user.UserID == p.UserID && !next.HasRole(constants.RoleAdministrator) {
		return helper.JsonError(c, fiber.StatusBadRequest, "No puede quitarse el rol de administrador")
	}

	if err := uc.DB.WithContext(c.UserContext()).Model(user).Update("user_roles", next.UserRoles).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	user.UserRoles = next.UserRoles
	return helper.JsonUpdated(c, "Roles actualizados", dto.ToUserResponse(user))
}

func (uc *UserController) find(c *fiber.Ctx) (*model.UserModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var user model.UserModel
	err = uc.DB.WithContext(c.UserContext()).Where("user_id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Usuario no encontrado")
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
