package controller

import (
	"strings"

	"biblioteca_backend/internals/features/circulation/audit/service"
	helper "biblioteca_backend/internals/helpers"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditController struct {
	DB *gorm.DB
}

func NewAuditController(db *gorm.DB) *AuditController {
	return &AuditController{DB: db}
}

var knownEntities = map[string]struct{}{
	service.EntityLoan:        {},
	service.EntityFine:        {},
	service.EntityReservation: {},
}

// 📜 GET /api/auditoria?entity=&entity_id=&page=&per_page=
func (ctrl *AuditController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 50, 200)
	f := service.ListFilter{Offset: paging.Offset, Limit: paging.Limit}

	if e := strings.ToLower(strings.TrimSpace(c.Query("entity"))); e != "" {
		if _, ok := knownEntities[e]; !ok {
			return helper.JsonError(c, fiber.StatusBadRequest, "entity no válida (loan|fine|reservation)")
		}
		f.Entity = e
	}
	if raw := strings.TrimSpace(c.Query("entity_id")); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "entity_id no válido")
		}
		f.EntityID = &id
	}

	rows, total, err := service.List(c.UserContext(), ctrl.DB, f)
	if err != nil {
		return helper.FromFiberError(c, err)
	}
	return helper.JsonList(c, "ok", rows, helper.BuildPagination(total, paging, len(rows)))
}
