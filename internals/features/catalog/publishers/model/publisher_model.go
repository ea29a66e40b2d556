package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PublisherModel struct {
	PublisherID      uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:publisher_id" json:"publisher_id"`
	PublisherName    string    `gorm:"type:varchar(150);not null;column:publisher_name" json:"publisher_name"`
	PublisherAddress *string   `gorm:"type:text;column:publisher_address" json:"publisher_address,omitempty"`

	PublisherCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:publisher_created_at" json:"publisher_created_at"`
	PublisherUpdatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();autoUpdateTime;column:publisher_updated_at" json:"publisher_updated_at"`
	PublisherDeletedAt gorm.DeletedAt `gorm:"column:publisher_deleted_at;index" json:"-"`
}

func (PublisherModel) TableName() string { return "publishers" }
