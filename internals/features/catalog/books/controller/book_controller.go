package controller

import (
	"strings"

	"biblioteca_backend/internals/features/catalog/books/dto"
	"biblioteca_backend/internals/features/catalog/books/service"
	helper "biblioteca_backend/internals/helpers"
	helperOSS "biblioteca_backend/internals/helpers/oss"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BookController struct {
	DB  *gorm.DB
	Svc *service.Service
}

// covers boleh nil (OSS belum dikonfigurasi); upload sampul lalu dijawab 503.
func NewBookController(db *gorm.DB, covers helperOSS.CoverStorage) *BookController {
	return &BookController{DB: db, Svc: service.NewService(db, covers)}
}

// =======================
// 📄 GET /api/libros?q=&category_id=&publisher_id=&author_id=&page=&per_page=
// =======================
func (ctrl *BookController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)
	f := service.ListFilter{Q: c.Query("q"), Offset: paging.Offset, Limit: paging.Limit}

	for key, dst := range map[string]**uuid.UUID{
		"category_id":  &f.CategoryID,
		"publisher_id": &f.PublisherID,
		"author_id":    &f.AuthorID,
	} {
		raw := strings.TrimSpace(c.Query(key))
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, key+" no válido")
		}
		*dst = &id
	}

	rows, total, err := ctrl.Svc.List(c.UserContext(), f)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", dto.FromBookViews(rows), helper.BuildPagination(total, paging, len(rows)))
}

// 🔍 GET /api/libros/:id
func (ctrl *BookController) Get(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	v, err := ctrl.Svc.Get(c.UserContext(), id)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonOK(c, "ok", dto.FromBookView(v))
}

// ➕ POST /api/libros
func (ctrl *BookController) Create(c *fiber.Ctx) error {
	var req dto.BookRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	in := req.ToInput()
	if in.Title == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "book_title es obligatorio")
	}

	v, err := ctrl.Svc.Create(c.UserContext(), in)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonCreated(c, "Libro creado", dto.FromBookView(v))
}

// 🟡 PUT /api/libros/:id
func (ctrl *BookController) Update(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	var req dto.BookRequest
	if ok, err := helper.ParseAndValidate(c, &req); !ok {
		return err
	}
	in := req.ToInput()
	if in.Title == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "book_title es obligatorio")
	}

	v, err := ctrl.Svc.Update(c.UserContext(), id, in)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Libro actualizado", dto.FromBookView(v))
}

// 🔴 DELETE /api/libros/:id
func (ctrl *BookController) Delete(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	if err := ctrl.Svc.Delete(c.UserContext(), id); err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonDeleted(c)
}

// 🖼️ POST /api/libros/:id/portada (multipart: file|image|cover)
func (ctrl *BookController) UploadCover(c *fiber.Ctx) error {
	id, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	fh, err := helperOSS.GetImageFile(c)
	if err != nil {
		return helper.FromFiberError(c, err)
	}

	v, err := ctrl.Svc.SetCover(c.UserContext(), id, fh)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonUpdated(c, "Portada actualizada", dto.FromBookView(v))
}
