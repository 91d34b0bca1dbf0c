package app

import (
	"fmt"

	"github.com/yungbote/assignment-backend/internal/domain/access"
	apphttp "github.com/yungbote/assignment-backend/internal/http"
	httpMW "github.com/yungbote/assignment-backend/internal/http/middleware"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, services Services, handlers Handlers, metrics *observability.Metrics) (*apphttp.Server, error) {
	log.Info("Wiring router...")
	matrix, err := access.Default()
	if err != nil {
		return nil, fmt.Errorf("load capability matrix: %w", err)
	}
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return apphttp.NewServer(apphttp.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, services.Auth, matrix),

		AssignmentHandler: handlers.Assignment,
		ComplianceHandler: handlers.Compliance,
		BatchHandler:      handlers.Batch,
		AiVideoHandler:    handlers.AiVideo,
		RealtimeHandler:   handlers.Realtime,
		HealthHandler:     handlers.Health,
	}), nil
}
