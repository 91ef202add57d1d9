package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Notification is the persisted record of a published swap event.
type Notification struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Event     string         `gorm:"size:50;not null;index" json:"event"`
	Message   string         `gorm:"type:text" json:"message"`
	SwapID    *uuid.UUID     `gorm:"type:uuid;index" json:"swap_id"`
	Payload   datatypes.JSON `json:"payload"`
	CreatedAt time.Time      `gorm:"not null;index" json:"created_at"`
}

func (Notification) TableName() string {
	return "notifications"
}
