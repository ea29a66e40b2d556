package model

import (
	"time"

	"biblioteca_backend/internals/constants"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// UserModel merepresentasikan tabel users (peminjam & pustakawan).
type UserModel struct {
	UserID       uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:user_id" json:"user_id"`
	UserName     string         `gorm:"type:varchar(50);not null;uniqueIndex;column:user_name" json:"user_name"`
	UserEmail    string         `gorm:"type:varchar(255);not null;uniqueIndex;column:user_email" json:"user_email"`
	UserPassword string         `gorm:"type:text;not null;column:user_password" json:"-"`
	UserFullName string         `gorm:"type:varchar(150);not null;default:'';column:user_full_name" json:"user_full_name"`
	UserRoles    pq.StringArray `gorm:"type:text[];not null;default:'{}';column:user_roles" json:"user_roles"`
	UserGoogleID *string        `gorm:"type:varchar(255);uniqueIndex;column:user_google_id" json:"-"`
	UserIsActive bool           `gorm:"not null;default:true;column:user_is_active" json:"user_is_active"`

	UserRegisteredAt time.Time `gorm:"type:timestamptz;not null;default:now();column:user_registered_at" json:"user_registered_at"`
	UserUpdatedAt    time.Time `gorm:"type:timestamptz;not null;default:now();autoUpdateTime;column:user_updated_at" json:"user_updated_at"`
}

func (UserModel) TableName() string { return "users" }

func (u UserModel) HasRole(r constants.Role) bool {
	for _, s := range u.UserRoles {
		if got, ok := constants.ParseRole(s); ok && got == r {
			return true
		}
	}
	return false
}

// AddRole: idempoten.
func (u *UserModel) AddRole(r constants.Role) {
	if !u.HasRole(r) {
		u.UserRoles = append(u.UserRoles, r.String())
	}
}
