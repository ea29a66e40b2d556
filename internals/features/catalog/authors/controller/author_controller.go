package controller

import (
	"errors"
	"log"
	"strings"

	"biblioteca_backend/internals/features/catalog/authors/dto"
	"biblioteca_backend/internals/features/catalog/authors/model"
	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AuthorController struct {
	DB *gorm.DB
}

func NewAuthorController(db *gorm.DB) *AuthorController {
	return &AuthorController{DB: db}
}

// 🟢 GET /api/autores?q=&page=&per_page=
func (ctrl *AuthorController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := ctrl.DB.WithContext(c.UserContext()).Model(&model.AuthorModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("author_full_name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}

	var rows []model.AuthorModel
	if err := q.Order("author_full_name ASC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToAuthorResponseList(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🟢 GET /api/autores/:id
func (ctrl *AuthorController) Get(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToAuthorResponse(m))
}

// 🟢 POST /api/autores
func (ctrl *AuthorController) Create(c *fiber.Ctx) error {
	var req dto.AuthorRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.AuthorFullName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "author_full_name es obligatorio")
	}

	m := model.AuthorModel{AuthorFullName: req.AuthorFullName}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		log.Printf("[AUTHORS][CREATE] ❌ %v", err)
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Autor creado", dto.ToAuthorResponse(&m))
}

// 🟡 PUT /api/autores/:id
func (ctrl *AuthorController) Update(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.AuthorRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.AuthorFullName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "author_full_name es obligatorio")
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Model(m).Update("author_full_name", req.AuthorFullName).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Autor actualizado", dto.ToAuthorResponse(m))
}

// 🔴 DELETE /api/autores/:id
// Soft delete; relasi buku↔penulis milik author ini ikut dilepas.
func (ctrl *AuthorController) Delete(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	err = ctrl.DB.WithContext(c.UserContext()).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_author_author_id = ?", m.AuthorID).Delete(&bookModel.BookAuthorModel{}).Error; err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	log.Printf("[AUTHORS][DELETE] 🗑️ author=%s", m.AuthorID)
	return helper.JsonDeleted(c)
}

func (ctrl *AuthorController) find(c *fiber.Ctx) (*model.AuthorModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.AuthorModel
	err = ctrl.DB.WithContext(c.UserContext()).Where("author_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Autor no encontrado")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
