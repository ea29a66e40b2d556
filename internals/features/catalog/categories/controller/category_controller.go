package controller

import (
	"errors"
	"strings"

	bookModel "biblioteca_backend/internals/features/catalog/books/model"
	"biblioteca_backend/internals/features/catalog/categories/dto"
	"biblioteca_backend/internals/features/catalog/categories/model"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type CategoryController struct {
	DB *gorm.DB
}

func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{DB: db}
}

// 🟢 GET /api/categorias
func (ctrl *CategoryController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)

	q := ctrl.DB.WithContext(c.UserContext()).Model(&model.CategoryModel{})
	if s := strings.TrimSpace(c.Query("q")); s != "" {
		q = q.Where("category_name ILIKE ?", "%"+s+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	var rows []model.CategoryModel
	if err := q.Order("category_name ASC").Offset(paging.Offset).Limit(paging.Limit).Find(&rows).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.ToCategoryResponseList(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🟢 GET /api/categorias/:id
func (ctrl *CategoryController) Get(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.ToCategoryResponse(m))
}

// 🟢 POST /api/categorias
func (ctrl *CategoryController) Create(c *fiber.Ctx) error {
	var req dto.CategoryRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.CategoryName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "category_name es obligatorio")
	}

	m := model.CategoryModel{CategoryName: req.CategoryName}
	if err := ctrl.DB.WithContext(c.UserContext()).Create(&m).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Categoría creada", dto.ToCategoryResponse(&m))
}

// 🟡 PUT /api/categorias/:id
func (ctrl *CategoryController) Update(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.CategoryRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	req = req.Normalize()
	if req.CategoryName == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "category_name es obligatorio")
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Model(m).Update("category_name", req.CategoryName).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Categoría actualizada", dto.ToCategoryResponse(m))
}

// 🔴 DELETE /api/categorias/:id
// Ditolak selama masih ada buku aktif di kategori ini.
func (ctrl *CategoryController) Delete(c *fiber.Ctx) error {
	m, err := ctrl.find(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var inUse int64
	if err := ctrl.DB.WithContext(c.UserContext()).
		Model(&bookModel.BookModel{}).
		Where("book_category_id = ?", m.CategoryID).
		Count(&inUse).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	if inUse > 0 {
		return helper.JsonError(c, fiber.StatusBadRequest, "La categoría tiene libros asociados")
	}

	if err := ctrl.DB.WithContext(c.UserContext()).Delete(m).Error; err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c)
}

func (ctrl *CategoryController) find(c *fiber.Ctx) (*model.CategoryModel, error) {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return nil, err
	}
	var m model.CategoryModel
	err = ctrl.DB.WithContext(c.UserContext()).Where("category_id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fiber.NewError(fiber.StatusNotFound, "Categoría no encontrada")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
