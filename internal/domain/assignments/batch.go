package assignments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type LinkType string

const (
	LinkShort LinkType = "Short"
	LinkLong  LinkType = "Long"
)

func (t LinkType) Valid() bool { return t == LinkShort || t == LinkLong }

type BatchStatus string

const (
	BatchPending    BatchStatus = "Pending"
	BatchInProgress BatchStatus = "InProgress"
	BatchCompleted  BatchStatus = "Completed"
)

// BatchLink is one task of a batch. Links never change after creation.
type BatchLink struct {
	URL  string   `json:"url" validate:"required,url,startswith=http"`
	Type LinkType `json:"type" validate:"required,oneof=Short Long"`
}

// Batch is the shared task list issued for one calendar date.
type Batch struct {
	ID                uuid.UUID                      `gorm:"type:uuid;primaryKey" json:"id"`
	Date              string                         `gorm:"type:varchar(10);uniqueIndex;not null" json:"date"`
	Links             datatypes.JSONSlice[BatchLink] `gorm:"not null" json:"links"`
	TotalLinks        int                            `gorm:"not null;default:0" json:"total_links"`
	Status            BatchStatus                    `gorm:"type:varchar(16);not null;default:'Pending';index" json:"status"`
	CompletionRate    int                            `gorm:"not null;default:0" json:"completion_rate"`
	NonCompliantCount int                            `gorm:"not null;default:0" json:"non_compliant_count"`
	CreatedAt         time.Time                      `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time                      `gorm:"not null" json:"updated_at"`
}

func (Batch) TableName() string { return "assignment_batches" }

func (b *Batch) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsDistributed reports whether users may receive ledger entries for the batch.
func (b *Batch) IsDistributed() bool {
	return b != nil && (b.Status == BatchInProgress || b.Status == BatchCompleted)
}

// URLSet is the batch's current link set.
func (b *Batch) URLSet() map[string]struct{} {
	out := make(map[string]struct{}, len(b.Links))
	for _, l := range b.Links {
		out[l.URL] = struct{}{}
	}
	return out
}

func (b *Batch) HasLink(url string) bool {
	for _, l := range b.Links {
		if l.URL == url {
			return true
		}
	}
	return false
}
