package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuthorModel struct {
	AuthorID       uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:author_id" json:"author_id"`
	AuthorFullName string    `gorm:"type:varchar(150);not null;column:author_full_name" json:"author_full_name"`

	AuthorCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:author_created_at" json:"author_created_at"`
	AuthorUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime;column:author_updated_at" json:"author_updated_at"`
	AuthorDeletedAt gorm.DeletedAt `gorm:"column:author_deleted_at;index" json:"-"`
}

func (AuthorModel) TableName() string { return "authors" }
