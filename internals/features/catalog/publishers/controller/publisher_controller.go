package controller

import (
	"errors"
	"strings"

	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	"biblioteca_backend/internals/features/catalog/publishers/dto"
	"biblioteca_backend/internals/features/catalog/publishers/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type PublisherController struct {
	DB *gorm.DB
}

func NewPublisherController(db *gorm.DB) *PublisherController {
	return &PublisherController{DB: db}
}

// 🟢 GET /api/editoriales
func (ctrl *PublisherController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.WithContext(c.UserContext()).Model(&model.PublisherModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("publisher_name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.PublisherModel
	if err := q.Order("publisher_name ASC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToPublisherResponseList(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🟢 GET /api/editoriales/:id
func (ctrl *PublisherController) Get(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToPublisherResponse(m))
}

// 🟢 POST /api/editoriales
func (ctrl *PublisherController) Create(c *fiber.Ctx) error {
	var req dto.PublisherRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.PublisherName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "publisher_name es obligatorio")
	}

	m := model.PublisherModel{PublisherName: req.PublisherName, PublisherAddress: req.PublisherAddress}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Editorial creada", dto.ToPublisherResponse(&m))
}

// 🟡 PUT /api/editoriales/:id
func (ctrl *PublisherController) Update(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.PublisherRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.PublisherName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "publisher_name es obligatorio")
	}

	// map supaya address NULL ikut ter-update
	if err := ctrl.DB.WithContext(c.UserContext()).Model(m).Updates(map[string]any{
		"publisher_name":    req.PublisherName,
		"publisher_address": req.PublisherAddress,
	}).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	m.PublisherName, m.PublisherAddress = req.PublisherName, req.PublisherAddress
	return helper.JsonUpdated(c, "Editorial actualizada", dto.ToPublisherResponse(m))
}

// 🔴 DELETE /api/editoriales/:id
func (ctrl *PublisherController) Delete(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var inUse int64
	if err := ctrl.DB.WithContext(c.UserContext()).
		Model(&bookModel.BookModel{}).
		Where("book_publisher_id = ?", m.PublisherID).
		Count(&inUse).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if inUse > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "La editorial tiene libros asociados")
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c)
}

func (ctrl *PublisherController) find(c *fiber.Ctx) (*model.PublisherModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.PublisherModel
	err = ctrl.DB.WithContext(c.UserContext()).Where("publisher_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Editorial no encontrada")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
