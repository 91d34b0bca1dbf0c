package services

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/clock"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// CompletionResult is the outcome of CompleteTask. Reward is nil on idempotent
// repeats and while the user still has in-progress entries.
type CompletionResult struct {
	Link      string                `json:"link"`
	Status    domassign.EntryStatus `json:"status"`
	Duplicate bool                  `json:"duplicate"`
	Reward    *Reward               `json:"reward"`
}

// Summary is the dashboard view of today's obligations.
type Summary struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
	Pending   int `json:"pending"`
}

type AssignmentService interface {
	Today(ctx context.Context, userID uuid.UUID) (*TodayView, error)
	Summary(ctx context.Context, userID uuid.UUID) (*Summary, error)
	CompleteTask(ctx context.Context, userID uuid.UUID, link string, isCarryOver bool) (*CompletionResult, error)
}

type assignmentService struct {
	db          *gorm.DB
	log         *logger.Logger
	clock       clock.Clock
	batches     assignments.BatchRepo
	entries     assignments.UserAssignmentRepo
	completions assignments.TaskCompletionRepo
	stats       BatchStatsService
	reward      RewardGate
	audit       AuditSink
	notifier    AssignmentNotifier
	metrics     *observability.Metrics
	ensureGroup singleflight.Group
}

func NewAssignmentService(
	db *gorm.DB,
	log *logger.Logger,
	clk clock.Clock,
	batches assignments.BatchRepo,
	entries assignments.UserAssignmentRepo,
	completions assignments.TaskCompletionRepo,
	stats BatchStatsService,
	reward RewardGate,
	audit AuditSink,
	notifier AssignmentNotifier,
	metrics *observability.Metrics,
) AssignmentService {
	if notifier == nil {
		notifier = NewAssignmentNotifier(nil)
	}
	return &assignmentService{
		db:          db,
		log:         log.With("service", "AssignmentService"),
		clock:       clk,
		batches:     batches,
		entries:     entries,
		completions: completions,
		stats:       stats,
		reward:      reward,
		audit:       audit,
		notifier:    notifier,
		metrics:     metrics,
	}
}

// Today merges yesterday's unfinished links with today's batch, creating
// today's ledger entry on first fetch.
func (s *assignmentService) Today(ctx context.Context, userID uuid.UUID) (*TodayView, error) {
	ctx, span := observability.Tracer().Start(ctx, "AssignmentService.Today")
	defer span.End()

	now := s.clock.Now()
	todayKey := domassign.DateKey(now)
	yesterdayKey := domassign.YesterdayKey(now)

	var (
		yesterday  *types.UserAssignment
		todayBatch *types.Batch
		todayEntry *types.UserAssignment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		e, err := s.entries.GetByUserAndDate(dbctx.With(gctx), userID, yesterdayKey)
		yesterday = e
		return err
	})
	g.Go(func() error {
		b, e, err := s.resolveToday(gctx, userID, todayKey)
		todayBatch, todayEntry = b, e
		return err
	})
	if err := g.Wait(); err != nil {
		s.log.Error("load today's assignments failed", "user_id", userID, "error", err)
		return nil, err
	}

	view := buildTodayView(yesterday, todayBatch, todayEntry)
	span.SetAttributes(
		attribute.Int("assignments.total", view.TotalCount),
		attribute.Int("assignments.completed", view.CompletedCount),
	)
	return view, nil
}

// resolveToday returns today's entry and the batch it lists. Entries are only
// created for distributed batches.
func (s *assignmentService) resolveToday(ctx context.Context, userID uuid.UUID, date string) (*types.Batch, *types.UserAssignment, error) {
	dbc := dbctx.With(ctx)
	entry, err := s.entries.GetByUserAndDate(dbc, userID, date)
	if err != nil {
		return nil, nil, err
	}
	if entry != nil {
		if entry.Batch == nil {
			if entry.Batch, err = s.batches.GetByID(dbc, entry.BatchID); err != nil {
				return nil, nil, err
			}
		}
		return entry.Batch, entry, nil
	}

	batch, err := s.batches.GetByDate(dbc, date)
	if err != nil {
		return nil, nil, err
	}
	if !batch.IsDistributed() {
		return nil, nil, nil
	}
	entry, err = s.ensureEntry(ctx, userID, batch)
	if err != nil {
		return nil, nil, err
	}
	return batch, entry, nil
}

// ensureEntry coalesces concurrent lazy creations in this process; the unique
// (user, date) index settles races between processes.
func (s *assignmentService) ensureEntry(ctx context.Context, userID uuid.UUID, batch *types.Batch) (*types.UserAssignment, error) {
	key := userID.String() + ":" + batch.Date
	v, err, _ := s.ensureGroup.Do(key, func() (any, error) {
		e, err := s.entries.Ensure(dbctx.With(ctx), userID, batch)
		if err != nil {
			return nil, err
		}
		s.metrics.IncLazyEntry()
		s.log.Debug("ledger entry ensured", "user_id", userID, "date", batch.Date)
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*types.UserAssignment), nil
}

func (s *assignmentService) Summary(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	now := s.clock.Now()
	dbc := dbctx.With(ctx)

	out := &Summary{}
	batch, err := s.batches.GetByDate(dbc, domassign.DateKey(now))
	if err != nil {
		return nil, err
	}
	if batch != nil {
		out.Total = len(batch.Links)
		entry, err := s.entries.GetByUserAndDate(dbc, userID, batch.Date)
		if err != nil {
			return nil, err
		}
		if entry != nil {
			valid := batch.URLSet()
			for link := range entry.CompletedSet() {
				if _, ok := valid[link]; ok {
					out.Completed++
				}
			}
		}
	}
	out.Pending = out.Total - out.Completed

	yesterday, err := s.entries.GetByUserAndDate(dbc, userID, domassign.YesterdayKey(now))
	if err != nil {
		return nil, err
	}
	out.Pending += len(carryOverItems(yesterday))
	return out, nil
}

// CompleteTask records link against today's entry, or yesterday's when
// isCarryOver is set. Repeats are successful no-ops. Links outside the entry's
// batch are rejected with a validation error.
func (s *assignmentService) CompleteTask(ctx context.Context, userID uuid.UUID, link string, isCarryOver bool) (*CompletionResult, error) {
	const op = "CompleteTask"
	ctx, span := observability.Tracer().Start(ctx, "AssignmentService.CompleteTask")
	defer span.End()

	link = strings.TrimSpace(link)
	if link == "" {
		return nil, types.Validation(op, "link is required")
	}

	now := s.clock.Now()
	date := domassign.DateKey(now)
	if isCarryOver {
		date = domassign.YesterdayKey(now)
	}
	span.SetAttributes(attribute.String("assignment.date", date), attribute.Bool("assignment.carry_over", isCarryOver))

	dbc := dbctx.With(ctx)
	entry, err := s.entries.GetByUserAndDate(dbc, userID, date)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, types.NotFound(op, "assignment not found for the specified date")
	}
	batch := entry.Batch
	if batch == nil {
		if batch, err = s.batches.GetByID(dbc, entry.BatchID); err != nil {
			return nil, err
		}
	}
	if batch == nil || !batch.HasLink(link) {
		return nil, types.Validation(op, "link is not part of this assignment")
	}

	var (
		inserted bool
		distinct int64
		flipped  bool
	)
	// The entry row lock serializes completions for one ledger entry so the
	// distinct count always sees every earlier insert.
	err = dbc.InTx(s.db, func(inner dbctx.Context) error {
		locked, err := s.entries.LockByID(inner, entry.ID)
		if err != nil {
			return err
		}
		if locked == nil {
			return types.NotFound(op, "assignment not found for the specified date")
		}
		entry.Status = locked.Status
		entry.TotalTasks = locked.TotalTasks
		if inserted, err = s.completions.Insert(inner, entry.ID, link, now); err != nil || !inserted {
			return err
		}
		if distinct, err = s.completions.CountDistinct(inner, entry.ID); err != nil {
			return err
		}
		if int(distinct) >= entry.TotalTasks {
			flipped, err = s.entries.MarkCompleted(inner, entry.ID, now)
		}
		return err
	})
	if err != nil {
		s.log.Error("record completion failed", "user_id", userID, "date", date, "error", err)
		return nil, err
	}

	if !inserted {
		s.metrics.ObserveCompletion("duplicate", isCarryOver, false)
		return &CompletionResult{Link: link, Status: entry.Status, Duplicate: true}, nil
	}

	status := entry.Status
	if flipped || int(distinct) >= entry.TotalTasks {
		status = domassign.EntryCompleted
	}
	s.metrics.ObserveCompletion("recorded", isCarryOver, flipped)
	s.notifier.TaskCompleted(ctx, userID, date, link, isCarryOver)
	if flipped {
		s.log.Info("assignment completed", "user_id", userID, "date", date)
		s.audit.CompliancePass(ctx, userID, date)
		s.notifier.AssignmentCompleted(ctx, userID, date)
	}

	if err := s.stats.Recompute(ctx, entry.BatchID); err != nil {
		s.metrics.IncSideEffectFailure("batch_stats")
	}

	return &CompletionResult{
		Link:   link,
		Status: status,
		Reward: s.reward.Evaluate(ctx, userID, status == domassign.EntryCompleted),
	}, nil
}
