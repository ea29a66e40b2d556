package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryModel struct {
	CategoryID   uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:category_id" json:"category_id"`
	CategoryName string    `gorm:"type:varchar(100);not null;column:category_name" json:"category_name"`

	CategoryCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:category_created_at" json:"category_created_at"`
	CategoryUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime;column:category_updated_at" json:"category_updated_at"`
	CategoryDeletedAt gorm.DeletedAt `gorm:"column:category_deleted_at;index" json:"-"`
}

func (CategoryModel) TableName() string { return "categories" }
