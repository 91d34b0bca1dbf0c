package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// DistributionResult reports a successful distribution.
type DistributionResult struct {
	Batch          *types.Batch `json:"batch"`
	EligibleUsers  int          `json:"eligibleUsers"`
	EntriesCreated int          `json:"entriesCreated"`
}

// NonCompliantUser is one still-in-progress entry of a batch.
type NonCompliantUser struct {
	UserID         uuid.UUID `json:"_id"`
	Email          string    `json:"email"`
	TasksAssigned  int       `json:"tasksAssigned"`
	TasksCompleted int       `json:"tasksCompleted"`
}

type BatchService interface {
	Create(ctx context.Context, date string, links []types.BatchLink) (*types.Batch, error)
	Import(ctx context.Context, date, fileName string, raw []byte) (*types.Batch, error)
	List(ctx context.Context) ([]*types.Batch, error)
	Distribute(ctx context.Context, batchID uuid.UUID) (*DistributionResult, error)
	NonCompliantUsers(ctx context.Context, batchID uuid.UUID) ([]NonCompliantUser, error)
}

type batchService struct {
	db       *gorm.DB
	log      *logger.Logger
	batches  assignments.BatchRepo
	entries  assignments.UserAssignmentRepo
	users    user.UserRepo
	audit    AuditSink
	notifier AssignmentNotifier
	metrics  *observability.Metrics
	validate *validator.Validate
}

func NewBatchService(
	db *gorm.DB,
	log *logger.Logger,
	batches assignments.BatchRepo,
	entries assignments.UserAssignmentRepo,
	users user.UserRepo,
	audit AuditSink,
	notifier AssignmentNotifier,
	metrics *observability.Metrics,
) BatchService {
	if notifier == nil {
		notifier = NewAssignmentNotifier(nil)
	}
	return &batchService{
		db:       db,
		log:      log.With("service", "BatchService"),
		batches:  batches,
		entries:  entries,
		users:    users,
		audit:    audit,
		notifier: notifier,
		metrics:  metrics,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Create stores a Pending batch for date. Every link must be an http(s) URL
// typed Short or Long, and no URL may repeat.
func (s *batchService) Create(ctx context.Context, date string, links []types.BatchLink) (*types.Batch, error) {
	const op = "CreateBatch"
	if strings.TrimSpace(date) == "" || len(links) == 0 {
		return nil, types.Validation(op, "date and a non-empty array of links are required")
	}
	cleaned := make([]types.BatchLink, 0, len(links))
	seen := make(map[string]struct{}, len(links))
	for i, l := range links {
		l.URL = strings.TrimSpace(l.URL)
		if err := s.validate.Struct(l); err != nil {
			return nil, types.Validation(op, fmt.Sprintf("link %d is invalid: url must be http(s) and type Short or Long", i+1))
		}
		if _, dup := seen[l.URL]; dup {
			return nil, types.Validation(op, fmt.Sprintf("link %d duplicates %s", i+1, l.URL))
		}
		seen[l.URL] = struct{}{}
		cleaned = append(cleaned, l)
	}

	batch, err := s.store(ctx, op, date, cleaned)
	if err != nil {
		return nil, err
	}
	s.audit.OperatorAction(ctx, domactivity.ActionAssignmentLinksUploaded,
		fmt.Sprintf("Uploaded %d links for %s", len(cleaned), batch.Date), domactivity.StatusSuccess, "")
	return batch, nil
}

func (s *batchService) store(ctx context.Context, op, date string, links []types.BatchLink) (*types.Batch, error) {
	day, err := domassign.NormalizeDate(strings.TrimSpace(date))
	if err != nil {
		return nil, types.Validation(op, err.Error())
	}
	dbc := dbctx.With(ctx)
	exists, err := s.batches.ExistsForDate(dbc, day)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, types.Conflict(op, fmt.Sprintf("a batch for %s already exists", day))
	}
	batch := &types.Batch{Date: day, Links: links, Status: domassign.BatchPending}
	if err := s.batches.Create(dbc, batch); err != nil {
		if types.IsCode(err, types.CodeConflict) {
			return nil, types.Conflict(op, fmt.Sprintf("a batch for %s already exists", day))
		}
		s.log.Error("create batch failed", "date", day, "error", err)
		return nil, err
	}
	s.log.Info("batch created", "batch_id", batch.ID, "date", day, "links", len(links))
	return batch, nil
}

func (s *batchService) List(ctx context.Context) ([]*types.Batch, error) {
	return s.batches.List(dbctx.With(ctx))
}

// Distribute moves a Pending batch to InProgress and gives every eligible user
// a ledger entry. Entries that already exist are left untouched.
func (s *batchService) Distribute(ctx context.Context, batchID uuid.UUID) (*DistributionResult, error) {
	const op = "DistributeBatch"
	ctx, span := observability.Tracer().Start(ctx, "BatchService.Distribute")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID.String()))

	dbc := dbctx.With(ctx)
	batch, err := s.batches.GetByID(dbc, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, types.NotFound(op, "assignment batch not found")
	}

	var (
		eligible []uuid.UUID
		created  []uuid.UUID
	)
	err = dbc.InTx(s.db, func(inner dbctx.Context) error {
		claimed, err := s.batches.ClaimForDistribution(inner, batch.ID)
		if err != nil {
			return err
		}
		if !claimed {
			return types.InvalidState(op, "this batch has already been distributed")
		}
		if eligible, err = s.users.ListEligibleIDs(inner); err != nil {
			return err
		}
		created, err = s.entries.EnsureForUsers(inner, batch, eligible)
		return err
	})
	if err != nil {
		if types.IsCode(err, types.CodeInvalidState) {
			s.metrics.ObserveDistribution("already_distributed", 0)
		} else {
			s.metrics.ObserveDistribution("error", 0)
			s.log.Error("distribute batch failed", "batch_id", batch.ID, "error", err)
		}
		return nil, err
	}
	batch.Status = domassign.BatchInProgress

	s.metrics.ObserveDistribution("ok", len(created))
	s.log.Info("batch distributed", "batch_id", batch.ID, "date", batch.Date, "eligible", len(eligible), "created", len(created))
	s.notifier.BatchDistributed(ctx, created, batch)
	s.audit.OperatorAction(ctx, domactivity.ActionAssignmentDistributed,
		fmt.Sprintf("Distributed %d links to %d users for %s", len(batch.Links), len(eligible), batch.Date),
		domactivity.StatusSuccess, "")

	return &DistributionResult{
		Batch:          batch,
		EligibleUsers:  len(eligible),
		EntriesCreated: len(created),
	}, nil
}

func (s *batchService) NonCompliantUsers(ctx context.Context, batchID uuid.UUID) ([]NonCompliantUser, error) {
	dbc := dbctx.With(ctx)
	batch, err := s.batches.GetByID(dbc, batchID)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		return nil, types.NotFound("NonCompliantUsers", "assignment batch not found")
	}
	entries, err := s.entries.ListByBatch(dbc, batch.ID, domassign.EntryInProgress)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return []NonCompliantUser{}, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.UserID)
	}
	users, err := s.users.GetByIDs(dbc, ids)
	if err != nil {
		return nil, err
	}
	emails := make(map[uuid.UUID]string, len(users))
	for _, u := range users {
		emails[u.ID] = u.Email
	}

	out := make([]NonCompliantUser, 0, len(entries))
	for _, e := range entries {
		out = append(out, NonCompliantUser{
			UserID:         e.UserID,
			Email:          emails[e.UserID],
			TasksAssigned:  e.TotalTasks,
			TasksCompleted: len(e.CompletedSet()),
		})
	}
	return out, nil
}
