package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RecordStatus string

const (
	RecordPass    RecordStatus = "Pass"
	RecordWarning RecordStatus = "Warning"
	RecordFail    RecordStatus = "Fail"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

const TypeDailyAssignment = "Daily Assignment"

// Record is an append-only compliance event for one user.
type Record struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID    `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        string       `gorm:"not null" json:"type"`
	Status      RecordStatus `gorm:"type:varchar(16);not null" json:"status"`
	Severity    Severity     `gorm:"type:varchar(16);not null" json:"severity"`
	Details     string       `gorm:"not null" json:"details"`
	ActionTaken string       `gorm:"not null;default:'None'" json:"action_taken"`
	CreatedAt   time.Time    `gorm:"not null;index" json:"created_at"`
}

func (Record) TableName() string { return "compliance_records" }

func (r *Record) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	if r.ActionTaken == "" {
		r.ActionTaken = "None"
	}
	return nil
}
