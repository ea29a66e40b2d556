package service

import (
	"context"
	"log"
	"time"

	"biblioteca_backend/internals/features/circulation/audit/model"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Aksi yang dicatat
const (
	ActionLoanCreated         = "loan.created"
	ActionLoanReturned        = "loan.returned"
	ActionLoanDeleted         = "loan.deleted"
	ActionFineStatusChanged   = "fine.status_changed"
	ActionFinePaid            = "fine.paid"
	ActionFineDeleted         = "fine.deleted"
	ActionReservationCreated  = "reservation.created"
	ActionReservationStatus   = "reservation.status_changed"
	ActionReservationDeleted  = "reservation.deleted"
	ActionReservationsExpired = "reservation.expired"
)

const (
	EntityLoan        = "loan"
	EntityFine        = "fine"
	EntityReservation = "reservation"
)

type Entry struct {
	UserID   *uuid.UUID
	Action   string
	Entity   string
	EntityID uuid.UUID
	Payload  any
}

// ToModel: payload di-marshal ke JSON; kalau gagal payload dikosongkan.
func (e Entry) ToModel() model.AuditLogModel {
	m := model.AuditLogModel{
		AuditLogID:       uuid.New(),
		AuditLogUserID:   e.UserID,
		AuditLogAction:   e.Action,
		AuditLogEntity:   e.Entity,
		AuditLogEntityID: e.EntityID,

		AuditLogCreatedAt: time.Now().UTC(),
	}
	if e.Payload != nil {
		if b, err := sonic.Marshal(e.Payload); err == nil {
			m.AuditLogPayload = datatypes.JSON(b)
		} else {
			log.Printf("[AUDIT] payload %s tidak bisa di-marshal: %v", e.Action, err)
		}
	}
	return m
}

// Record menulis satu baris audit memakai db/tx yang diberikan.
func Record(ctx context.Context, db *gorm.DB, e Entry) error {
	m := e.ToModel()
	return db.WithContext(ctx).Create(&m).Error
}

type ListFilter struct {
	Entity   string
	EntityID *uuid.UUID
	Offset   int
	Limit    int
}

func List(ctx context.Context, db *gorm.DB, f ListFilter) ([]model.AuditLogModel, int64, error) {
	q := db.WithContext(ctx).Model(&model.AuditLogModel{})
	if f.Entity != "" {
		q = q.Where("audit_log_entity = ?", f.Entity)
	}
	if f.EntityID != nil {
		q = q.Where("audit_log_entity_id = ?", *f.EntityID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.AuditLogModel
	if err := q.Order("audit_log_created_at DESC").Offset(f.Offset).Limit(f.Limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
