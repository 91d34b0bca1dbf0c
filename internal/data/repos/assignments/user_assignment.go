package assignments

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// BatchAggregate is the raw material for a batch's derived statistics.
type BatchAggregate struct {
	Entries      int64
	TotalTasks   int64
	Completed    int64
	NotCompleted int64
}

type UserAssignmentRepo interface {
	EnsureForUsers(dbc dbctx.Context, batch *types.Batch, userIDs []uuid.UUID) ([]uuid.UUID, error)
	Ensure(dbc dbctx.Context, userID uuid.UUID, batch *types.Batch) (*types.UserAssignment, error)
	GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, date string) (*types.UserAssignment, error)
	LockByID(dbc dbctx.Context, id uuid.UUID) (*types.UserAssignment, error)
	ListByUserSince(dbc dbctx.Context, userID uuid.UUID, sinceDate string) ([]*types.UserAssignment, error)
	ListByBatch(dbc dbctx.Context, batchID uuid.UUID, status assignments.EntryStatus) ([]*types.UserAssignment, error)
	CountInProgressForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error)
	MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error)
	AggregateForBatch(dbc dbctx.Context, batchID uuid.UUID) (BatchAggregate, error)
}

type userAssignmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) UserAssignmentRepo {
	return &userAssignmentRepo{db: db, log: baseLog.With("repo", "UserAssignmentRepo")}
}

var userDateConflict = clause.OnConflict{
	Columns:   []clause.Column{{Name: "user_id"}, {Name: "date"}},
	DoNothing: true,
}

func withCompletions(db *gorm.DB) *gorm.DB {
	return db.Order("completed_at ASC")
}

// EnsureForUsers creates a ledger entry for every user that has none for the
// batch's date. Existing entries are left untouched. It returns the users whose
// entries were missing when the call started.
func (r *userAssignmentRepo) EnsureForUsers(dbc dbctx.Context, batch *types.Batch, userIDs []uuid.UUID) ([]uuid.UUID, error) {
	if batch == nil || len(userIDs) == 0 {
		return nil, nil
	}
	var missing []uuid.UUID
	err := dbc.InTx(r.db, func(inner dbctx.Context) error {
		tx := inner.Conn(r.db)

		var existing []uuid.UUID
		if err := tx.Model(&types.UserAssignment{}).
			Where("date = ? AND user_id IN ?", batch.Date, userIDs).
			Pluck("user_id", &existing).Error; err != nil {
			return err
		}
		have := make(map[uuid.UUID]struct{}, len(existing))
		for _, id := range existing {
			have[id] = struct{}{}
		}

		rows := make([]*types.UserAssignment, 0, len(userIDs))
		seen := make(map[uuid.UUID]struct{}, len(userIDs))
		for _, id := range userIDs {
			if _, ok := have[id]; ok {
				continue
			}
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}
			rows = append(rows, assignments.NewEntry(id, batch))
			missing = append(missing, id)
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Clauses(userDateConflict).CreateInBatches(rows, 200).Error
	})
	if err != nil {
		return nil, repos.MapError("UserAssignmentRepo.EnsureForUsers", err)
	}
	return missing, nil
}

// Ensure returns the user's entry for batch.Date, creating it first when absent.
// Concurrent callers converge on the single stored row.
func (r *userAssignmentRepo) Ensure(dbc dbctx.Context, userID uuid.UUID, batch *types.Batch) (*types.UserAssignment, error) {
	if batch == nil || userID == uuid.Nil {
		return nil, nil
	}
	row := assignments.NewEntry(userID, batch)
	if err := dbc.Conn(r.db).Clauses(userDateConflict).Create(row).Error; err != nil {
		return nil, repos.MapError("UserAssignmentRepo.Ensure", err)
	}
	return r.GetByUserAndDate(dbc, userID, batch.Date)
}

// GetByUserAndDate loads the entry with its completions and batch, or nil.
func (r *userAssignmentRepo) GetByUserAndDate(dbc dbctx.Context, userID uuid.UUID, date string) (*types.UserAssignment, error) {
	if userID == uuid.Nil || date == "" {
		return nil, nil
	}
	var row types.UserAssignment
	err := dbc.Conn(r.db).
		Preload("CompletedTasks", withCompletions).
		Preload("Batch").
		Where("user_id = ? AND date = ?", userID, date).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("UserAssignmentRepo.GetByUserAndDate", err)
	}
	return &row, nil
}

// LockByID loads the bare entry row under FOR UPDATE, or nil. Callers must be
// inside a transaction; SQLite has no row locks and serializes writers instead.
func (r *userAssignmentRepo) LockByID(dbc dbctx.Context, id uuid.UUID) (*types.UserAssignment, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.UserAssignment
	err := dbc.Conn(r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("UserAssignmentRepo.LockByID", err)
	}
	return &row, nil
}

func (r *userAssignmentRepo) ListByUserSince(dbc dbctx.Context, userID uuid.UUID, sinceDate string) ([]*types.UserAssignment, error) {
	var out []*types.UserAssignment
	if userID == uuid.Nil {
		return out, nil
	}
	err := dbc.Conn(r.db).
		Preload("CompletedTasks", withCompletions).
		Preload("Batch").
		Where("user_id = ? AND date >= ?", userID, sinceDate).
		Order("date ASC").
		Find(&out).Error
	if err != nil {
		return nil, repos.MapError("UserAssignmentRepo.ListByUserSince", err)
	}
	return out, nil
}

// ListByBatch lists a batch's entries. An empty status lists all of them.
func (r *userAssignmentRepo) ListByBatch(dbc dbctx.Context, batchID uuid.UUID, status assignments.EntryStatus) ([]*types.UserAssignment, error) {
	var out []*types.UserAssignment
	q := dbc.Conn(r.db).
		Preload("CompletedTasks", withCompletions).
		Where("batch_id = ?", batchID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, repos.MapError("UserAssignmentRepo.ListByBatch", err)
	}
	return out, nil
}

func (r *userAssignmentRepo) CountInProgressForUser(dbc dbctx.Context, userID uuid.UUID) (int64, error) {
	var count int64
	err := dbc.Conn(r.db).
		Model(&types.UserAssignment{}).
		Where("user_id = ? AND status = ?", userID, assignments.EntryInProgress).
		Count(&count).Error
	if err != nil {
		return 0, repos.MapError("UserAssignmentRepo.CountInProgressForUser", err)
	}
	return count, nil
}

// MarkCompleted flips an InProgress entry to Completed. Only the caller that
// performs the flip sees true.
func (r *userAssignmentRepo) MarkCompleted(dbc dbctx.Context, id uuid.UUID, at time.Time) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.UserAssignment{}).
		Where("id = ? AND status = ?", id, assignments.EntryInProgress).
		Updates(map[string]any{
			"status":       assignments.EntryCompleted,
			"completed_at": at,
		})
	if res.Error != nil {
		return false, repos.MapError("UserAssignmentRepo.MarkCompleted", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *userAssignmentRepo) AggregateForBatch(dbc dbctx.Context, batchID uuid.UUID) (BatchAggregate, error) {
	var agg BatchAggregate
	conn := dbc.Conn(r.db)

	var totals struct {
		Entries    int64
		TotalTasks int64
	}
	if err := conn.Model(&types.UserAssignment{}).
		Select("COUNT(*) AS entries, COALESCE(SUM(total_tasks), 0) AS total_tasks").
		Where("batch_id = ?", batchID).
		Scan(&totals).Error; err != nil {
		return agg, repos.MapError("UserAssignmentRepo.AggregateForBatch", err)
	}
	agg.Entries = totals.Entries
	agg.TotalTasks = totals.TotalTasks

	if err := conn.Model(&types.UserAssignment{}).
		Where("batch_id = ? AND status <> ?", batchID, assignments.EntryCompleted).
		Count(&agg.NotCompleted).Error; err != nil {
		return agg, repos.MapError("UserAssignmentRepo.AggregateForBatch", err)
	}

	if err := conn.Model(&types.TaskCompletion{}).
		Joins("JOIN user_assignments ON user_assignments.id = user_assignment_completions.assignment_id").
		Where("user_assignments.batch_id = ?", batchID).
		Count(&agg.Completed).Error; err != nil {
		return agg, repos.MapError("UserAssignmentRepo.AggregateForBatch", err)
	}
	return agg, nil
}
