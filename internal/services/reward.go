package services

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/content"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	domcontent "github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/clock"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

const maxRewardClaimAttempts = 3

// Reward is reported once a user has cleared every in-progress entry.
type Reward struct {
	AiVideoUnlocked bool           `json:"aiVideoUnlocked"`
	AssignedVideo   *types.AiVideo `json:"assignedVideo"`
}

// RewardGate decides whether a completion unlocks an AI video. It never fails
// the completion: storage errors are logged and reported as no reward.
type RewardGate interface {
	Evaluate(ctx context.Context, userID uuid.UUID, entryCompleted bool) *Reward
}

type rewardGate struct {
	log      *logger.Logger
	clock    clock.Clock
	users    user.UserRepo
	entries  assignments.UserAssignmentRepo
	videos   content.AiVideoRepo
	notifier AssignmentNotifier
	metrics  *observability.Metrics
}

func NewRewardGate(
	log *logger.Logger,
	clk clock.Clock,
	users user.UserRepo,
	entries assignments.UserAssignmentRepo,
	videos content.AiVideoRepo,
	notifier AssignmentNotifier,
	metrics *observability.Metrics,
) RewardGate {
	if notifier == nil {
		notifier = NewAssignmentNotifier(nil)
	}
	return &rewardGate{
		log:      log.With("service", "RewardGate"),
		clock:    clk,
		users:    users,
		entries:  entries,
		videos:   videos,
		notifier: notifier,
		metrics:  metrics,
	}
}

// Evaluate returns nil while the user still has in-progress entries. Otherwise
// it returns a Reward, unlocked only on odd days for a completed entry when a
// topic-matching video is available.
func (g *rewardGate) Evaluate(ctx context.Context, userID uuid.UUID, entryCompleted bool) *Reward {
	ctx, span := observability.Tracer().Start(ctx, "RewardGate.Evaluate")
	defer span.End()

	dbc := dbctx.With(ctx)
	pending, err := g.entries.CountInProgressForUser(dbc, userID)
	if err != nil {
		g.fail("count_pending", userID, err)
		return nil
	}
	if pending > 0 {
		g.metrics.ObserveRewardGate("pending")
		return nil
	}

	reward := &Reward{}
	if !entryCompleted {
		g.metrics.ObserveRewardGate("not_completed")
		return reward
	}
	if !domassign.IsOddDay(g.clock.Now()) {
		g.metrics.ObserveRewardGate("even_day")
		return reward
	}

	u, err := g.users.GetByID(dbc, userID)
	if err != nil {
		g.fail("load_user", userID, err)
		return reward
	}
	if u == nil || u.SelectedTopic == "" {
		g.metrics.ObserveRewardGate("no_topic")
		return reward
	}
	span.SetAttributes(attribute.String("reward.topic", u.SelectedTopic))

	var tried []uuid.UUID
	for attempt := 0; attempt < maxRewardClaimAttempts; attempt++ {
		video, err := g.videos.FirstAvailableForTopic(dbc, u.SelectedTopic, tried)
		if err != nil {
			g.fail("find_video", userID, err)
			return reward
		}
		if video == nil {
			break
		}
		claimed, err := g.videos.ClaimForUser(dbc, video.ID, userID)
		if err != nil {
			g.fail("claim_video", userID, err)
			return reward
		}
		if !claimed {
			tried = append(tried, video.ID)
			continue
		}
		video.Status = domcontent.VideoAssigned
		video.AssignedTo = &userID
		reward.AiVideoUnlocked = true
		reward.AssignedVideo = video

		g.metrics.ObserveRewardGate("unlocked")
		g.log.Info("AI video unlocked", "user_id", userID, "video_id", video.ID, "topic", video.Topic)
		g.notifier.AiVideoUnlocked(ctx, userID, video)
		return reward
	}

	g.metrics.ObserveRewardGate("no_inventory")
	return reward
}

func (g *rewardGate) fail(stage string, userID uuid.UUID, err error) {
	g.metrics.ObserveRewardGate("error")
	g.metrics.IncSideEffectFailure("reward_gate")
	g.log.Warn("reward gate failed", "stage", stage, "user_id", userID, "error", err)
}
