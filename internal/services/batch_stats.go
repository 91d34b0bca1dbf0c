package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	domcompliance "github.com/yungbote/assignment-backend/internal/domain/compliance"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// BatchStatsService recomputes a batch's completion rate and non-compliant
// count from every ledger entry tied to it.
type BatchStatsService interface {
	Recompute(ctx context.Context, batchID uuid.UUID) error
}

type batchStatsService struct {
	log     *logger.Logger
	batches assignments.BatchRepo
	entries assignments.UserAssignmentRepo
	locker  Locker
	metrics *observability.Metrics
}

func NewBatchStatsService(
	log *logger.Logger,
	batches assignments.BatchRepo,
	entries assignments.UserAssignmentRepo,
	locker Locker,
	metrics *observability.Metrics,
) BatchStatsService {
	if locker == nil {
		locker = NewLocalLocker(0)
	}
	return &batchStatsService{
		log:     log.With("service", "BatchStatsService"),
		batches: batches,
		entries: entries,
		locker:  locker,
		metrics: metrics,
	}
}

// Recompute runs a full recomputation under the batch's lock. A batch whose
// entries are all Completed moves to Completed.
func (s *batchStatsService) Recompute(ctx context.Context, batchID uuid.UUID) error {
	ctx, span := observability.Tracer().Start(ctx, "BatchStatsService.Recompute")
	defer span.End()
	span.SetAttributes(attribute.String("batch.id", batchID.String()))

	start := time.Now()
	release, ok, err := s.locker.Acquire(ctx, "batch-stats:"+batchID.String())
	if err != nil {
		s.metrics.ObserveBatchRecompute("error", 0)
		s.log.Warn("batch stats lock failed", "batch_id", batchID, "error", err)
		return err
	}
	if !ok {
		s.metrics.ObserveBatchRecompute("skipped", 0)
		s.log.Info("batch stats lock busy; skipping", "batch_id", batchID)
		return nil
	}
	defer release()

	dbc := dbctx.With(ctx)
	agg, err := s.entries.AggregateForBatch(dbc, batchID)
	if err != nil {
		s.metrics.ObserveBatchRecompute("error", 0)
		s.log.Warn("batch aggregate read failed", "batch_id", batchID, "error", err)
		return err
	}
	if agg.Entries == 0 {
		s.metrics.ObserveBatchRecompute("skipped", 0)
		return nil
	}

	rate := 0
	if agg.TotalTasks > 0 {
		rate = domcompliance.Percent(float64(agg.Completed) / float64(agg.TotalTasks))
	}
	complete := agg.NotCompleted == 0
	if err := s.batches.UpdateStats(dbc, batchID, rate, int(agg.NotCompleted), complete); err != nil {
		s.metrics.ObserveBatchRecompute("error", 0)
		s.log.Warn("batch stats write failed", "batch_id", batchID, "error", err)
		return err
	}
	s.metrics.ObserveBatchRecompute("ok", time.Since(start))
	s.log.Debug("batch stats recomputed",
		"batch_id", batchID,
		"completion_rate", rate,
		"non_compliant", agg.NotCompleted,
		"completed", complete,
	)
	return nil
}
