package compliance

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type RecordRepo interface {
	Create(dbc dbctx.Context, rec *types.ComplianceRecord) error
	ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ComplianceRecord, error)
}

type recordRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordRepo(db *gorm.DB, baseLog *logger.Logger) RecordRepo {
	return &recordRepo{db: db, log: baseLog.With("repo", "ComplianceRecordRepo")}
}

func (r *recordRepo) Create(dbc dbctx.Context, rec *types.ComplianceRecord) error {
	if rec == nil {
		return nil
	}
	if err := dbc.Conn(r.db).Create(rec).Error; err != nil {
		return repos.MapError("ComplianceRecordRepo.Create", err)
	}
	return nil
}

// ListByUser returns newest records first. limit <= 0 means no limit.
func (r *recordRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, limit int) ([]*types.ComplianceRecord, error) {
	var out []*types.ComplianceRecord
	q := dbc.Conn(r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&out).Error; err != nil {
		return nil, repos.MapError("ComplianceRecordRepo.ListByUser", err)
	}
	return out, nil
}
