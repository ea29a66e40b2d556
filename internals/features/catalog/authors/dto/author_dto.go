package dto

import (
	"strings"
	"time"

	"biblioteca_backend/internals/features/catalog/authors/model"

	"github.com/google/uuid"
)

// Dipakai untuk POST dan PUT (replace penuh)
type AuthorRequest struct {
	AuthorFullName string `json:"author_full_name" validate:"required,max=150"`
}

func (r AuthorRequest) Normalize() AuthorRequest {
	r.AuthorFullName = strings.TrimSpace(r.AuthorFullName)
	return r
}

type AuthorResponse struct {
	AuthorID        uuid.UUID `json:"author_id"`
	AuthorFullName  string    `json:"author_full_name"`
	AuthorCreatedAt time.Time `json:"author_created_at"`
	AuthorUpdatedAt time.Time `json:"author_updated_at"`
}

func ToAuthorResponse(m *model.AuthorModel) AuthorResponse {
	return AuthorResponse{
		AuthorID:        m.AuthorID,
		AuthorFullName:  m.AuthorFullName,
		AuthorCreatedAt: m.AuthorCreatedAt,
		AuthorUpdatedAt: m.AuthorUpdatedAt,
	}
}

func ToAuthorResponseList(ms []model.AuthorModel) []AuthorResponse {
	out := make([]AuthorResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToAuthorResponse(&ms[i]))
	}
	return out
}
