package activity

import (
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type ActivityLogRepo interface {
	Create(dbc dbctx.Context, entry *types.ActivityLog) error
	ListRecent(dbc dbctx.Context, actionType string, limit int) ([]*types.ActivityLog, error)
}

type activityLogRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewActivityLogRepo(db *gorm.DB, baseLog *logger.Logger) ActivityLogRepo {
	return &activityLogRepo{db: db, log: baseLog.With("repo", "ActivityLogRepo")}
}

func (r *activityLogRepo) Create(dbc dbctx.Context, entry *types.ActivityLog) error {
	if entry == nil {
		return nil
	}
	if err := dbc.Conn(r.db).Create(entry).Error; err != nil {
		return repos.MapError("ActivityLogRepo.Create", err)
	}
	return nil
}

// ListRecent returns newest entries first, optionally filtered by action type.
func (r *activityLogRepo) ListRecent(dbc dbctx.Context, actionType string, limit int) ([]*types.ActivityLog, error) {
	var out []*types.ActivityLog
	q := dbc.Conn(r.db).Order("created_at DESC")
	if actionType != "" {
		q = q.Where("action_type = ?", actionType)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, repos.MapError("ActivityLogRepo.ListRecent", err)
	}
	return out, nil
}
