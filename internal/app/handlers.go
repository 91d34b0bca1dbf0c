package app

import (
	"gorm.io/gorm"

	httpH "github.com/yungbote/assignment-backend/internal/http/handlers"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
	"github.com/yungbote/assignment-backend/internal/realtime"
)

type Handlers struct {
	Assignment *httpH.AssignmentHandler
	Compliance *httpH.ComplianceHandler
	Batch      *httpH.BatchHandler
	AiVideo    *httpH.AiVideoHandler
	Realtime   *httpH.RealtimeHandler
	Health     *httpH.HealthHandler
}

func wireHandlers(db *gorm.DB, log *logger.Logger, services Services, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Assignment: httpH.NewAssignmentHandler(services.Assignments),
		Compliance: httpH.NewComplianceHandler(services.Compliance),
		Batch:      httpH.NewBatchHandler(services.Batches),
		AiVideo:    httpH.NewAiVideoHandler(services.AiVideos),
		Realtime:   httpH.NewRealtimeHandler(log, hub),
		Health:     httpH.NewHealthHandler(db),
	}
}
