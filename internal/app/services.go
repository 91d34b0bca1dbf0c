package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/platform/clock"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
	"github.com/yungbote/assignment-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Assignments services.AssignmentService
	Compliance  services.ComplianceService
	Batches     services.BatchService
	AiVideos    services.AiVideoService

	BatchStats services.BatchStatsService
	Reward     services.RewardGate
	Audit      services.AuditSink
	Notifier   services.AssignmentNotifier
}

func wireServices(
	db *gorm.DB,
	log *logger.Logger,
	cfg Config,
	clk clock.Clock,
	repos Repos,
	clients Clients,
	metrics *observability.Metrics,
) Services {
	log.Info("Wiring services...")

	var locker services.Locker
	if clients.Redis != nil {
		locker = services.NewRedisLocker(clients.Redis, "batch-stats:", cfg.BatchLockTTL)
	} else {
		locker = services.NewLocalLocker(cfg.BatchLockTTL)
	}

	emitter := &services.BusEmitter{Bus: clients.SSEBus, Log: log}
	notifier := services.NewAssignmentNotifier(emitter)
	audit := services.NewAuditSink(log, repos.Compliance, repos.ActivityLog, metrics)

	stats := services.NewBatchStatsService(log, repos.Batch, repos.Entry, locker, metrics)
	reward := services.NewRewardGate(log, clk, repos.User, repos.Entry, repos.AiVideo, notifier, metrics)

	return Services{
		Auth: services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Assignments: services.NewAssignmentService(
			db, log, clk,
			repos.Batch, repos.Entry, repos.Completion,
			stats, reward, audit, notifier, metrics,
		),
		Compliance: services.NewComplianceService(log, clk, repos.User, repos.Batch, repos.Entry, repos.Compliance),
		Batches:    services.NewBatchService(db, log, repos.Batch, repos.Entry, repos.User, audit, notifier, metrics),
		AiVideos:   services.NewAiVideoService(log, repos.User, repos.Entry, repos.AiVideo, audit),

		BatchStats: stats,
		Reward:     reward,
		Audit:      audit,
		Notifier:   notifier,
	}
}
