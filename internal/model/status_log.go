package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RequestStatusLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RequestKind RequestKind    `gorm:"type:varchar(16);not null;index:idx_request_status_log_request" json:"request_kind"`
	RequestID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_request_status_log_request" json:"request_id"`
	OldStatus   *RequestStatus `gorm:"type:varchar(20)" json:"old_status"`
	NewStatus   RequestStatus  `gorm:"type:varchar(20);not null" json:"new_status"`
	Note        string         `gorm:"type:text" json:"note"`
	ChangedBy   *uuid.UUID     `gorm:"type:uuid" json:"changed_by"`
	CreatedAt   time.Time      `gorm:"autoCreateTime" json:"created_at"`
}

func (RequestStatusLog) TableName() string {
	return "request_status_log"
}

func (l *RequestStatusLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
