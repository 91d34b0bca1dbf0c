package content

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VideoStatus string

const (
	VideoAvailable  VideoStatus = "Available"
	VideoAssigned   VideoStatus = "Assigned"
	VideoDownloaded VideoStatus = "Downloaded"
)

const DefaultVideoDescription = "Upload this video to your YouTube channel to complete your task!"

// AiVideo is one unit of reward inventory. The file itself lives in the object
// store; only its URL and key are kept here.
type AiVideo struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string      `gorm:"not null" json:"title"`
	Description string      `json:"description"`
	Topic       string      `gorm:"not null;index:idx_ai_video_topic_status,priority:1" json:"topic"`
	Type        string      `gorm:"type:varchar(8);not null" json:"type"`
	Status      VideoStatus `gorm:"type:varchar(16);not null;default:'Available';index:idx_ai_video_topic_status,priority:2" json:"status"`
	FileURL     string      `gorm:"not null" json:"file_url"`
	FileName    string      `gorm:"not null" json:"file_name"`
	AssignedTo  *uuid.UUID  `gorm:"type:uuid;index" json:"assigned_to"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`
}

func (AiVideo) TableName() string { return "ai_videos" }

func (v *AiVideo) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.Description == "" {
		v.Description = DefaultVideoDescription
	}
	return nil
}

// IsAssignedTo reports whether the video is bound to userID.
func (v *AiVideo) IsAssignedTo(userID uuid.UUID) bool {
	return v != nil && v.AssignedTo != nil && *v.AssignedTo == userID
}
