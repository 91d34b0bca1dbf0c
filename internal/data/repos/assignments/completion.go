package assignments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type TaskCompletionRepo interface {
	Insert(dbc dbctx.Context, assignmentID uuid.UUID, link string, at time.Time) (bool, error)
	CountDistinct(dbc dbctx.Context, assignmentID uuid.UUID) (int64, error)
	ListByAssignment(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.TaskCompletion, error)
}

type taskCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTaskCompletionRepo(db *gorm.DB, baseLog *logger.Logger) TaskCompletionRepo {
	return &taskCompletionRepo{db: db, log: baseLog.With("repo", "TaskCompletionRepo")}
}

// Insert appends link to the entry's completed set. It reports false when the
// link was already there, which callers treat as an idempotent repeat.
func (r *taskCompletionRepo) Insert(dbc dbctx.Context, assignmentID uuid.UUID, link string, at time.Time) (bool, error) {
	row := &types.TaskCompletion{
		AssignmentID: assignmentID,
		Link:         link,
		CompletedAt:  at,
	}
	res := dbc.Conn(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "assignment_id"}, {Name: "link"}},
			DoNothing: true,
		}).
		Create(row)
	if res.Error != nil {
		return false, repos.MapError("TaskCompletionRepo.Insert", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *taskCompletionRepo) CountDistinct(dbc dbctx.Context, assignmentID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(r.db).
		Model(&types.TaskCompletion{}).
		Where("assignment_id = ?", assignmentID).
		Distinct("link").
		Count(&count).Error
	if err != nil {
		return 0, repos.MapError("TaskCompletionRepo.CountDistinct", err)
	}
	return count, nil
}

func (r *taskCompletionRepo) ListByAssignment(dbc dbctx.Context, assignmentID uuid.UUID) ([]*types.TaskCompletion, error) {
	var out []*types.TaskCompletion
	err := dbc.Conn(r.db).
		Where("assignment_id = ?", assignmentID).
		Order("completed_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, repos.MapError("TaskCompletionRepo.ListByAssignment", err)
	}
	return out, nil
}
