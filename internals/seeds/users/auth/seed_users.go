package user

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"biblioteca_backend/internals/configs"
	"biblioteca_backend/internals/constants"
	authHelper "biblioteca_backend/internals/features/users/auth/helper"
	"biblioteca_backend/internals/features/users/user/model"

	"gorm.io/gorm"
)

type AdminSeed struct {
	UserName string
	Email    string
	Password string
	FullName string
}

// DefaultAdmin: bisa ditimpa lewat ENV ADMIN_*.
func DefaultAdmin() AdminSeed {
	return AdminSeed{
		UserName: configs.GetEnv("ADMIN_USERNAME", "admin"),
		Email:    configs.GetEnv("ADMIN_EMAIL", "admin@biblioteca.com"),
		Password: configs.GetEnv("ADMIN_PASSWORD", "Admin123*"),
		FullName: configs.GetEnv("ADMIN_FULL_NAME", "Administrador del Sistema"),
	}
}

// SeedAdmin: pastikan ada akun administrador. Kalau user sudah ada tapi belum
// punya role admin, role ditambahkan.
func SeedAdmin(ctx context.Context, db *gorm.DB, in AdminSeed) error {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var existing model.UserModel
	err := db.WithContext(ctx).
		Where("LOWER(user_name) = ? OR LOWER(user_email) = ?", strings.ToLower(in.UserName), email).
		First(&existing).Error
	switch {
	case err == nil:
		if existing.HasRole(constants.RoleAdministrator) {
			log.Printf("ℹ️ Admin '%s' sudah ada, dilewati.", existing.UserName)
			return nil
		}
		existing.AddRole(constants.RoleAdministrator)
		return db.WithContext(ctx).Model(&model.UserModel{}).
			Where("user_id = ?", existing.UserID).
			Update("user_roles", existing.UserRoles).Error
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	hash, err := authHelper.HashPassword(in.Password)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	admin := model.UserModel{
		UserName:         in.UserName,
		UserEmail:        email,
		UserPassword:     hash,
		UserFullName:     in.FullName,
		UserIsActive:     true,
		UserRegisteredAt: now,
		UserUpdatedAt:    now,
	}
	admin.AddRole(constants.RoleAdministrator)
	if err := db.WithContext(ctx).Create(&admin).Error; err != nil {
		return err
	}
	log.Printf("✅ Admin '%s' dibuat", admin.UserName)
	return nil
}
