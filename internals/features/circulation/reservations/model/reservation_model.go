package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationModel struct {
	ReservationID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:reservation_id" json:"reservation_id"`
	ReservationUserID    uuid.UUID `gorm:"type:uuid;not null;column:reservation_user_id;index" json:"reservation_user_id"`
	ReservationBookID    uuid.UUID `gorm:"type:uuid;not null;column:reservation_book_id;index" json:"reservation_book_id"`
	ReservationDate      time.Time `gorm:"type:timestamptz;not null;column:reservation_date" json:"reservation_date"`
	ReservationExpiresAt time.Time `gorm:"type:timestamptz;not null;column:reservation_expires_at;index" json:"reservation_expires_at"`
	ReservationStatus    string    `gorm:"type:varchar(20);not null;column:reservation_status;index" json:"reservation_status"`

	ReservationRowVersion int64 `gorm:"not null;default:1;column:reservation_row_version" json:"reservation_row_version"`
}

func (ReservationModel) TableName() string { return "reservations" }
