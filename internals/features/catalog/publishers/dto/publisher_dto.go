package dto

import (
	"strings"
	"time"

	"biblioteca_backend/internals/features/catalog/publishers/model"

	"github.com/google/uuid"
)

type PublisherRequest struct {
	PublisherName    string  `json:"publisher_name" validate:"required,max=150"`
	PublisherAddress *string `json:"publisher_address" validate:"omitempty,max=255"`
}

// Normalize: alamat kosong disimpan sebagai NULL.
func (r PublisherRequest) Normalize() PublisherRequest {
	r.PublisherName = strings.TrimSpace(r.PublisherName)
	if r.PublisherAddress != nil {
		v := strings.TrimSpace(*r.PublisherAddress)
		if v == "" {
			r.PublisherAddress = nil
		} else {
			r.PublisherAddress = &v
		}
	}
	return r
}

type PublisherResponse struct {
	PublisherID        uuid.UUID `json:"publisher_id"`
	PublisherName      string    `json:"publisher_name"`
	PublisherAddress   *string   `json:"publisher_address"`
	PublisherCreatedAt time.Time `json:"publisher_created_at"`
	PublisherUpdatedAt time.Time `json:"publisher_updated_at"`
}

func ToPublisherResponse(m *model.PublisherModel) PublisherResponse {
	return PublisherResponse{
		PublisherID:        m.PublisherID,
		PublisherName:      m.PublisherName,
		PublisherAddress:   m.PublisherAddress,
		PublisherCreatedAt: m.PublisherCreatedAt,
		PublisherUpdatedAt: m.PublisherUpdatedAt,
	}
}

func ToPublisherResponseList(ms []model.PublisherModel) []PublisherResponse {
	out := make([]PublisherResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToPublisherResponse(&ms[i]))
	}
	return out
}
