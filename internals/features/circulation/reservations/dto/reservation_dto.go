package dto

import (
	"time"

	"biblioteca_backend/internals/features/circulation/reservations/service"

	"github.com/google/uuid"
)

type CreateReservationRequest struct {
	BookID uuid.UUID `json:"book_id" validate:"required"`
}

type UpdateReservationStatusRequest struct {
	Status     string `json:"reservation_status" validate:"required,max=50"`
	RowVersion *int64 `json:"reservation_row_version" validate:"omitempty,min=1"`
}

type ReservationResponse struct {
	ReservationID         uuid.UUID `json:"reservation_id"`
	ReservationDate       time.Time `json:"reservation_date"`
	ReservationExpiresAt  time.Time `json:"reservation_expires_at"`
	ReservationStatus     string    `json:"reservation_status"`
	ReservationRowVersion int64     `json:"reservation_row_version"`

	BookID    uuid.UUID `json:"book_id"`
	BookTitle string    `json:"book_title"`
	UserID    uuid.UUID `json:"user_id"`
	UserName  string    `json:"user_name"`
}

func FromReservationView(v service.ReservationView) ReservationResponse {
	r := v.Reservation
	return ReservationResponse{
		ReservationID:         r.ReservationID,
		ReservationDate:       r.ReservationDate,
		ReservationExpiresAt:  r.ReservationExpiresAt,
		ReservationStatus:     r.ReservationStatus,
		ReservationRowVersion: r.ReservationRowVersion,
		BookID:                r.ReservationBookID,
		BookTitle:             v.BookTitle,
		UserID:                r.ReservationUserID,
		UserName:              v.UserName,
	}
}

func FromReservationViews(vs []service.ReservationView) []ReservationResponse {
	out := make([]ReservationResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, FromReservationView(v))
	}
	return out
}
