package dto

import (
	"strings"
	"time"

	"biblioteca_backend/internals/features/catalog/categories/model"

	"github.com/google/uuid"
)

type CategoryRequest struct {
	CategoryName string `json:"category_name" validate:"required,max=100"`
}

func (r CategoryRequest) Normalize() CategoryRequest {
	r.CategoryName = strings.TrimSpace(r.CategoryName)
	return r
}

type CategoryResponse struct {
	CategoryID        uuid.UUID `json:"category_id"`
	CategoryName      string    `json:"category_name"`
	CategoryCreatedAt time.Time `json:"category_created_at"`
	CategoryUpdatedAt time.Time `json:"category_updated_at"`
}

func ToCategoryResponse(m *model.CategoryModel) CategoryResponse {
	return CategoryResponse{
		CategoryID:        m.CategoryID,
		CategoryName:      m.CategoryName,
		CategoryCreatedAt: m.CategoryCreatedAt,
		CategoryUpdatedAt: m.CategoryUpdatedAt,
	}
}

func ToCategoryResponseList(ms []model.CategoryModel) []CategoryResponse {
	out := make([]CategoryResponse, 0, len(ms))
	for i := range ms {
		out = append(out, ToCategoryResponse(&ms[i]))
	}
	return out
}
