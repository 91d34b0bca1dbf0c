package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusApproved  = "Approved"
	StatusSuspended = "Suspended"

	RoleUser  = "user"
	RoleAdmin = "admin"

	YoutubeVerified  = "Verified"
	YoutubePending   = "Pending"
	YoutubeDeclined  = "Declined"
	YoutubeNotLinked = "Not Linked"
)

// User is the slice of the user directory the assignment engine reads.
type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	FullName      string    `gorm:"column:full_name" json:"full_name"`
	Status        string    `gorm:"not null;default:'Approved';index;column:status" json:"status"`
	Role          string    `gorm:"not null;default:'user';index;column:role" json:"role"`
	AdminRole     string    `gorm:"column:admin_role" json:"admin_role,omitempty"`
	SelectedTopic string    `gorm:"column:selected_topic;index" json:"selected_topic"`
	ChannelName   string    `gorm:"column:channel_name" json:"channel_name"`
	YoutubeStatus string    `gorm:"column:youtube_status;default:'Not Linked'" json:"youtube_status"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsEligibleForAssignments reports whether the user receives daily batches.
func (u *User) IsEligibleForAssignments() bool {
	return u != nil && u.Status == StatusApproved && u.Role == RoleUser
}
