package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AuditLogModel struct {
	AuditLogID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey;column:audit_log_id" json:"audit_log_id"`
	AuditLogUserID    *uuid.UUID     `gorm:"type:uuid;column:audit_log_user_id;index" json:"audit_log_user_id,omitempty"`
	AuditLogAction    string         `gorm:"type:varchar(40);not null;column:audit_log_action" json:"audit_log_action"`
	AuditLogEntity    string         `gorm:"type:varchar(40);not null;column:audit_log_entity;index" json:"audit_log_entity"`
	AuditLogEntityID  uuid.UUID      `gorm:"type:uuid;not null;column:audit_log_entity_id;index" json:"audit_log_entity_id"`
	AuditLogPayload   datatypes.JSON `gorm:"type:jsonb;column:audit_log_payload" json:"audit_log_payload,omitempty"`
	AuditLogCreatedAt time.Time      `gorm:"type:timestamptz;not null;default:now();column:audit_log_created_at" json:"audit_log_created_at"`
}

func (AuditLogModel) TableName() string { return "audit_logs" }
