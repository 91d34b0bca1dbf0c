package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusSuccess = "success"
	StatusWarning = "warning"
	StatusError   = "error"
)

const (
	ActionAssignmentLinksUploaded = "AssignmentLinksUploaded"
	ActionAssignmentCsvUploaded   = "AssignmentCsvUploaded"
	ActionAssignmentDistributed   = "AssignmentDistributed"
	ActionAIVideoUploaded         = "AIVideoUploaded"
	ActionAIVideoDeleted          = "AIVideoDeleted"
	ActionAIVideoAllocated        = "AIVideoAllocated"
)

// Log is an operator action trail entry.
type Log struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OperatorID    uuid.UUID `gorm:"type:uuid;not null;index" json:"operator_id"`
	OperatorEmail string    `gorm:"not null" json:"operator_email"`
	ActionType    string    `gorm:"not null;index" json:"action_type"`
	TargetUser    string    `json:"target_user,omitempty"`
	Details       string    `gorm:"not null" json:"details"`
	Status        string    `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt     time.Time `gorm:"not null;index" json:"created_at"`
}

func (Log) TableName() string { return "activity_logs" }

func (l *Log) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
