package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos/activity"
	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/compliance"
	"github.com/yungbote/assignment-backend/internal/data/repos/content"
	"github.com/yungbote/assignment-backend/internal/data/repos/testutil"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/ctxutil"
	"github.com/yungbote/assignment-backend/internal/realtime"
)

// October 19th 2026 is an odd day of the month.
var (
	oddDay  = time.Date(2026, time.October, 19, 10, 0, 0, 0, time.UTC)
	evenDay = time.Date(2026, time.October, 20, 10, 0, 0, 0, time.UTC)
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}

type recordingEmitter struct {
	mu   sync.Mutex
	msgs []realtime.SSEMessage
}

func (e *recordingEmitter) Emit(ctx context.Context, msg realtime.SSEMessage) {
	e.mu.Lock()
	e.msgs = append(e.msgs, msg)
	e.mu.Unlock()
}

func (e *recordingEmitter) Count(event realtime.SSEEvent, channel string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, m := range e.msgs {
		if m.Event == event && (channel == "" || m.Channel == channel) {
			n++
		}
	}
	return n
}

type harness struct {
	db      *gorm.DB
	clock   *testClock
	metrics *observability.Metrics
	emitter *recordingEmitter

	batchRepo  assignments.BatchRepo
	entryRepo  assignments.UserAssignmentRepo
	userRepo   user.UserRepo
	videoRepo  content.AiVideoRepo
	recordRepo compliance.RecordRepo
	logRepo    activity.ActivityLogRepo

	stats       BatchStatsService
	reward      RewardGate
	assignments AssignmentService
	compliance  ComplianceService
	batches     BatchService
	videos      AiVideoService
}

func newHarness(t *testing.T, now time.Time) *harness {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)

	h := &harness{
		db:         db,
		clock:      &testClock{now: now},
		metrics:    observability.NewMetrics(),
		emitter:    &recordingEmitter{},
		batchRepo:  assignments.NewBatchRepo(db, log),
		entryRepo:  assignments.NewUserAssignmentRepo(db, log),
		userRepo:   user.NewUserRepo(db, log),
		videoRepo:  content.NewAiVideoRepo(db, log),
		recordRepo: compliance.NewRecordRepo(db, log),
		logRepo:    activity.NewActivityLogRepo(db, log),
	}
	completions := assignments.NewTaskCompletionRepo(db, log)
	notifier := NewAssignmentNotifier(h.emitter)
	audit := NewAuditSink(log, h.recordRepo, h.logRepo, h.metrics)

	h.stats = NewBatchStatsService(log, h.batchRepo, h.entryRepo, NewLocalLocker(time.Second), h.metrics)
	h.reward = NewRewardGate(log, h.clock, h.userRepo, h.entryRepo, h.videoRepo, notifier, h.metrics)
	h.assignments = NewAssignmentService(db, log, h.clock, h.batchRepo, h.entryRepo, completions, h.stats, h.reward, audit, notifier, h.metrics)
	h.compliance = NewComplianceService(log, h.clock, h.userRepo, h.batchRepo, h.entryRepo, h.recordRepo)
	h.batches = NewBatchService(db, log, h.batchRepo, h.entryRepo, h.userRepo, audit, notifier, h.metrics)
	h.videos = NewAiVideoService(log, h.userRepo, h.entryRepo, h.videoRepo, audit)
	return h
}

// operatorCtx returns a context carrying a seeded operator principal.
func (h *harness) operatorCtx(t *testing.T) context.Context {
	t.Helper()
	ctx := context.Background()
	op := testutil.SeedUser(t, ctx, h.db, "ops-"+uuid.NewString()[:8]+"@example.com", testutil.AsAdmin("TECHNICIAN"))
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{
		UserID:    op.ID,
		Email:     op.Email,
		Role:      op.Role,
		AdminRole: op.AdminRole,
	})
}

func (h *harness) entry(t *testing.T, userID uuid.UUID, date string) *types.UserAssignment {
	t.Helper()
	var e types.UserAssignment
	err := h.db.Preload("CompletedTasks").Where("user_id = ? AND date = ?", userID, date).First(&e).Error
	if err != nil {
		t.Fatalf("load entry %s: %v", date, err)
	}
	return &e
}

func (h *harness) countEntries(t *testing.T, where string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := h.db.Model(&types.UserAssignment{}).Where(where, args...).Count(&n).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	return n
}

func dbcOf(ctx context.Context) dbctx.Context { return dbctx.With(ctx) }
