package assignments

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type BatchRepo interface {
	Create(dbc dbctx.Context, batch *types.Batch) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Batch, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Batch, error)
	GetByDate(dbc dbctx.Context, date string) (*types.Batch, error)
	ExistsForDate(dbc dbctx.Context, date string) (bool, error)
	List(dbc dbctx.Context) ([]*types.Batch, error)
	ClaimForDistribution(dbc dbctx.Context, id uuid.UUID) (bool, error)
	UpdateStats(dbc dbctx.Context, id uuid.UUID, completionRate, nonCompliant int, complete bool) error
}

type batchRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewBatchRepo(db *gorm.DB, baseLog *logger.Logger) BatchRepo {
	return &batchRepo{db: db, log: baseLog.With("repo", "BatchRepo")}
}

func (r *batchRepo) Create(dbc dbctx.Context, batch *types.Batch) error {
	if batch == nil {
		return nil
	}
	if batch.Status == "" {
		batch.Status = assignments.BatchPending
	}
	batch.TotalLinks = len(batch.Links)
	if err := dbc.Conn(r.db).Create(batch).Error; err != nil {
		return repos.MapError("BatchRepo.Create", err)
	}
	return nil
}

// GetByID returns nil without error when the batch does not exist.
func (r *batchRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Batch, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.Batch
	err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("BatchRepo.GetByID", err)
	}
	return &row, nil
}

func (r *batchRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Batch, error) {
	var out []*types.Batch
	if len(ids) == 0 {
		return out, nil
	}
	if err := dbc.Conn(r.db).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, repos.MapError("BatchRepo.GetByIDs", err)
	}
	return out, nil
}

// GetByDate returns nil without error when no batch exists for date.
func (r *batchRepo) GetByDate(dbc dbctx.Context, date string) (*types.Batch, error) {
	if date == "" {
		return nil, nil
	}
	var row types.Batch
	err := dbc.Conn(r.db).Where("date = ?", date).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("BatchRepo.GetByDate", err)
	}
	return &row, nil
}

func (r *batchRepo) ExistsForDate(dbc dbctx.Context, date string) (bool, error) {
	var count int64
	if err := dbc.Conn(r.db).Model(&types.Batch{}).Where("date = ?", date).Count(&count).Error; err != nil {
		return false, repos.MapError("BatchRepo.ExistsForDate", err)
	}
	return count > 0, nil
}

func (r *batchRepo) List(dbc dbctx.Context) ([]*types.Batch, error) {
	var out []*types.Batch
	if err := dbc.Conn(r.db).Order("date DESC").Find(&out).Error; err != nil {
		return nil, repos.MapError("BatchRepo.List", err)
	}
	return out, nil
}

// ClaimForDistribution moves a Pending batch to InProgress. It reports false when
// another caller already claimed it or the batch is in any other state.
func (r *batchRepo) ClaimForDistribution(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.Batch{}).
		Where("id = ? AND status = ?", id, assignments.BatchPending).
		Update("status", assignments.BatchInProgress)
	if res.Error != nil {
		return false, repos.MapError("BatchRepo.ClaimForDistribution", res.Error)
	}
	return res.RowsAffected == 1, nil
}

// UpdateStats writes the derived aggregates. complete flips an InProgress batch to
// Completed; a Completed batch never moves back.
func (r *batchRepo) UpdateStats(dbc dbctx.Context, id uuid.UUID, completionRate, nonCompliant int, complete bool) error {
	err := dbc.InTx(r.db, func(inner dbctx.Context) error {
		tx := inner.Conn(r.db)
		if err := tx.Model(&types.Batch{}).
			Where("id = ?", id).
			Updates(map[string]any{
				"completion_rate":     completionRate,
				"non_compliant_count": nonCompliant,
			}).Error; err != nil {
			return err
		}
		if !complete {
			return nil
		}
		return tx.Model(&types.Batch{}).
			Where("id = ? AND status = ?", id, assignments.BatchInProgress).
			Update("status", assignments.BatchCompleted).Error
	})
	return repos.MapError("BatchRepo.UpdateStats", err)
}
