// internals/features/users/auth/repository/auth_repository.go
package repository

import (
	"context"
	"strings"
	"time"

	userModel "biblioteca_backend/internals/features/users/user/model"
	helperAuth "biblioteca_backend/internals/helpers/auth"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

/* ====================== USER ====================== */

// FindUserByUsernameOrEmail: pencarian case-insensitive.
func FindUserByUsernameOrEmail(ctx context.Context, db *gorm.DB, identifier string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	id := strings.ToLower(strings.TrimSpace(identifier))
	if err := db.WithContext(ctx).
		Where("LOWER(user_name) = ? OR LOWER(user_email) = ?", id, id).
		First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByGoogleID(ctx context.Context, db *gorm.DB, googleID string) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Where("user_google_id = ?", googleID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func FindUserByID(ctx context.Context, db *gorm.DB, userID uuid.UUID) (*userModel.UserModel, error) {
	var user userModel.UserModel
	if err := db.WithContext(ctx).Where("user_id = ?", userID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// IsUserNameOrEmailTaken: cek duplikat sebelum insert (unique index tetap jadi penjaga terakhir)
func IsUserNameOrEmailTaken(ctx context.Context, db *gorm.DB, userName, email string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&userModel.UserModel{}).
		Where("LOWER(user_name) = ? OR LOWER(user_email) = ?", strings.ToLower(userName), strings.ToLower(email)).
		Count(&n).Error
	return n > 0, err
}

func CreateUser(ctx context.Context, db *gorm.DB, user *userModel.UserModel) error {
	return db.WithContext(ctx).Create(user).Error
}

func LinkGoogleID(ctx context.Context, db *gorm.DB, userID uuid.UUID, googleID string) error {
	return db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_google_id", googleID).Error
}

func UpdateUserPassword(ctx context.Context, db *gorm.DB, userID uuid.UUID, hash string) error {
	return db.WithContext(ctx).Model(&userModel.UserModel{}).
		Where("user_id = ?", userID).
		Update("user_password", hash).Error
}

/* ====================== BLACKLIST TOKEN ====================== */

func BlacklistToken(ctx context.Context, db *gorm.DB, raw, secret string, expiresAt time.Time) error {
	return helperAuth.BlacklistToken(ctx, db, raw, secret, expiresAt)
}

// CleanupExpiredBlacklist: hapus token yang exp-nya sudah lewat lebih dari grace.
func CleanupExpiredBlacklist(ctx context.Context, db *gorm.DB, grace time.Duration) (int64, error) {
	return helperAuth.PurgeExpired(ctx, db, time.Now().UTC().Add(-grace))
}
