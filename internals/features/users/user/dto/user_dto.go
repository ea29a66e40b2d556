package dto

import (
	"strings"
	"time"

	uModel "biblioteca_backend/internals/features/users/user/model"

	"github.com/google/uuid"
)

/* =======================================================
   REQUEST DTOs
   ======================================================= */

// RegisterRequest: POST /api/auth/register
type RegisterRequest struct {
	UserName string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=100"`
	FullName string `json:"full_name" validate:"required,max=150"`
}

// Normalize: trim & lowercase email
func (r *RegisterRequest) Normalize() {
	r.UserName = strings.TrimSpace(r.UserName)
	r.FullName = strings.TrimSpace(r.FullName)
	r.Email = strings.TrimSpace(strings.ToLower(r.Email))
}

// LoginRequest: username boleh diisi email juga
type LoginRequest struct {
	UserName string `json:"username" validate:"required,max=255"`
	Password string `json:"password" validate:"required"`
}

type GoogleLoginRequest struct {
	IDToken string `json:"id_token" validate:"required"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=100"`
}

// UpdateUserStatusRequest: admin aktif/nonaktifkan akun
type UpdateUserStatusRequest struct {
	UserIsActive *bool `json:"user_is_active" validate:"required"`
}

// UpdateUserRolesRequest: replace penuh daftar role
type UpdateUserRolesRequest struct {
	UserRoles []string `json:"user_roles" validate:"required,min=1,dive,oneof=Administrador Lector"`
}

/* =======================================================
   RESPONSE DTOs
   ======================================================= */

type UserResponse struct {
	UserID           uuid.UUID `json:"user_id"`
	UserName         string    `json:"user_name"`
	UserEmail        string    `json:"user_email"`
	UserFullName     string    `json:"user_full_name"`
	UserRoles        []string  `json:"user_roles"`
	UserIsActive     bool      `json:"user_is_active"`
	UserHasGoogle    bool      `json:"user_has_google"`
	UserRegisteredAt time.Time `json:"user_registered_at"`
	UserUpdatedAt    time.Time `json:"user_updated_at"`
}

// ToUserResponse: password & google id tidak pernah ikut keluar
func ToUserResponse(m *uModel.UserModel) UserResponse {
	roles := []string(m.UserRoles)
	if roles == nil {
		roles = []string{}
	}
	return UserResponse{
		UserID:           m.UserID,
		UserName:         m.UserName,
		UserEmail:        m.UserEmail,
		UserFullName:     m.UserFullName,
		UserRoles:        roles,
		UserIsActive:     m.UserIsActive,
		UserHasGoogle:    m.UserGoogleID != nil && *m.UserGoogleID != "",
		UserRegisteredAt: m.UserRegisteredAt,
		UserUpdatedAt:    m.UserUpdatedAt,
	}
}

func ToUserResponseList(ms []uModel.UserModel) []UserResponse {
	out := make([]UserResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToUserResponse(&ms[i]))
	}
	return out
}
