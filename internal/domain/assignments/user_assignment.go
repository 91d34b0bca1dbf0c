package assignments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EntryStatus string

const (
	EntryInProgress EntryStatus = "InProgress"
	EntryCompleted  EntryStatus = "Completed"
)

// UserAssignment is one user's ledger entry against the batch of one date.
// (UserID, Date) is unique; TotalTasks is frozen at creation.
type UserAssignment struct {
	ID          uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID   `gorm:"type:uuid;not null;uniqueIndex:idx_user_assignment_user_date,priority:1;index" json:"user_id"`
	Date        string      `gorm:"type:varchar(10);not null;uniqueIndex:idx_user_assignment_user_date,priority:2;index" json:"date"`
	BatchID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"batch_id"`
	TotalTasks  int         `gorm:"not null" json:"total_tasks"`
	Status      EntryStatus `gorm:"type:varchar(16);not null;default:'InProgress';index" json:"status"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
	CreatedAt   time.Time   `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time   `gorm:"not null" json:"updated_at"`

	CompletedTasks []TaskCompletion `gorm:"foreignKey:AssignmentID" json:"completed_tasks"`
	Batch          *Batch           `gorm:"foreignKey:BatchID" json:"batch,omitempty"`
}

func (UserAssignment) TableName() string { return "user_assignments" }

func (ua *UserAssignment) BeforeCreate(tx *gorm.DB) error {
	if ua.ID == uuid.Nil {
		ua.ID = uuid.New()
	}
	return nil
}

// TaskCompletion records one completed link. (AssignmentID, Link) is unique, so
// a link can appear at most once in an entry's completed set.
type TaskCompletion struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_task_completion_assignment_link,priority:1" json:"assignment_id"`
	Link         string    `gorm:"type:text;not null;uniqueIndex:idx_task_completion_assignment_link,priority:2" json:"link"`
	CompletedAt  time.Time `gorm:"not null;index" json:"completed_at"`
}

func (TaskCompletion) TableName() string { return "user_assignment_completions" }

func (tc *TaskCompletion) BeforeCreate(tx *gorm.DB) error {
	if tc.ID == uuid.Nil {
		tc.ID = uuid.New()
	}
	return nil
}

// NewEntry builds the ledger entry a user gets for batch.
func NewEntry(userID uuid.UUID, batch *Batch) *UserAssignment {
	return &UserAssignment{
		UserID:     userID,
		Date:       batch.Date,
		BatchID:    batch.ID,
		TotalTasks: len(batch.Links),
		Status:     EntryInProgress,
	}
}

// CompletedSet is the distinct set of completed links.
func (ua *UserAssignment) CompletedSet() map[string]struct{} {
	out := make(map[string]struct{}, len(ua.CompletedTasks))
	for _, t := range ua.CompletedTasks {
		out[t.Link] = struct{}{}
	}
	return out
}

// HasCompleted reports whether link is already in the completed set.
func (ua *UserAssignment) HasCompleted(link string) bool {
	for _, t := range ua.CompletedTasks {
		if t.Link == link {
			return true
		}
	}
	return false
}

// CompletionRatio is |completed ∩ valid| / TotalTasks, where valid is the owning
// batch's link set. Entries without tasks score 0.
func (ua *UserAssignment) CompletionRatio(valid map[string]struct{}) float64 {
	if ua == nil || ua.TotalTasks <= 0 {
		return 0
	}
	n := 0
	for link := range ua.CompletedSet() {
		if _, ok := valid[link]; ok {
			n++
		}
	}
	return float64(n) / float64(ua.TotalTasks)
}
