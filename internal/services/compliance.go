package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/compliance"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	domcompliance "github.com/yungbote/assignment-backend/internal/domain/compliance"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/clock"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// MonthlyWindowDays is how far back monthly completion looks, inclusive of today.
const MonthlyWindowDays = 30

const defaultHistoryLimit = 50

type ComplianceService interface {
	Daily(ctx context.Context, userID uuid.UUID, date string) (int, error)
	Monthly(ctx context.Context, userID uuid.UUID) (int, error)
	Snapshot(ctx context.Context, userID uuid.UUID) (*types.ComplianceSnapshot, error)
	ForUser(ctx context.Context, userID uuid.UUID) (*types.ComplianceSnapshot, error)
	History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ComplianceRecord, error)
}

type complianceService struct {
	log     *logger.Logger
	clock   clock.Clock
	users   user.UserRepo
	batches assignments.BatchRepo
	entries assignments.UserAssignmentRepo
	records compliance.RecordRepo
}

func NewComplianceService(
	log *logger.Logger,
	clk clock.Clock,
	users user.UserRepo,
	batches assignments.BatchRepo,
	entries assignments.UserAssignmentRepo,
	records compliance.RecordRepo,
) ComplianceService {
	return &complianceService{
		log:     log.With("service", "ComplianceService"),
		clock:   clk,
		users:   users,
		batches: batches,
		entries: entries,
		records: records,
	}
}

// Daily is the whole percentage of date's batch links the user completed.
func (s *complianceService) Daily(ctx context.Context, userID uuid.UUID, date string) (int, error) {
	dbc := dbctx.With(ctx)
	entry, err := s.entries.GetByUserAndDate(dbc, userID, date)
	if err != nil {
		return 0, err
	}
	if entry == nil || entry.TotalTasks <= 0 {
		return 0, nil
	}
	batch, err := s.batchOf(dbc, entry)
	if err != nil {
		return 0, err
	}
	return domcompliance.Percent(entry.CompletionRatio(linkSet(batch))), nil
}

// Monthly averages each entry's own ratio over the trailing window.
func (s *complianceService) Monthly(ctx context.Context, userID uuid.UUID) (int, error) {
	now := s.clock.Now()
	today := domassign.DateKey(now)
	since := domassign.DaysAgoKey(now, MonthlyWindowDays)

	dbc := dbctx.With(ctx)
	entries, err := s.entries.ListByUserSince(dbc, userID, since)
	if err != nil {
		return 0, err
	}
	var (
		sum float64
		n   int
	)
	for _, e := range entries {
		if e.Date > today {
			continue
		}
		batch, err := s.batchOf(dbc, e)
		if err != nil {
			return 0, err
		}
		sum += e.CompletionRatio(linkSet(batch))
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return domcompliance.Percent(sum / float64(n)), nil
}

func (s *complianceService) Snapshot(ctx context.Context, userID uuid.UUID) (*types.ComplianceSnapshot, error) {
	ctx, span := observability.Tracer().Start(ctx, "ComplianceService.Snapshot")
	defer span.End()

	daily, err := s.Daily(ctx, userID, domassign.DateKey(s.clock.Now()))
	if err != nil {
		return nil, err
	}
	monthly, err := s.Monthly(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &types.ComplianceSnapshot{
		DailyCompletion:   daily,
		MonthlyCompletion: monthly,
		OverallStatus:     domcompliance.OverallStatus(monthly),
	}, nil
}

// ForUser is the operator view of another user's snapshot.
func (s *complianceService) ForUser(ctx context.Context, userID uuid.UUID) (*types.ComplianceSnapshot, error) {
	u, err := s.users.GetByID(dbctx.With(ctx), userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, types.NotFound("UserCompliance", "user not found")
	}
	return s.Snapshot(ctx, userID)
}

func (s *complianceService) History(ctx context.Context, userID uuid.UUID, limit int) ([]*types.ComplianceRecord, error) {
	if limit <= 0 || limit > 500 {
		limit = defaultHistoryLimit
	}
	return s.records.ListByUser(dbctx.With(ctx), userID, limit)
}

func (s *complianceService) batchOf(dbc dbctx.Context, e *types.UserAssignment) (*types.Batch, error) {
	if e.Batch != nil {
		return e.Batch, nil
	}
	b, err := s.batches.GetByID(dbc, e.BatchID)
	if err != nil {
		return nil, err
	}
	e.Batch = b
	return b, nil
}

func linkSet(b *types.Batch) map[string]struct{} {
	if b == nil {
		return map[string]struct{}{}
	}
	return b.URLSet()
}
