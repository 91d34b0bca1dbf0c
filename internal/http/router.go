package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/yungbote/assignment-backend/internal/domain/access"
	httpH "github.com/yungbote/assignment-backend/internal/http/handlers"
	httpMW "github.com/yungbote/assignment-backend/internal/http/middleware"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	AllowedOrigins []string
	RequestTimeout time.Duration

	AuthMiddleware *httpMW.AuthMiddleware

	AssignmentHandler *httpH.AssignmentHandler
	ComplianceHandler *httpH.ComplianceHandler
	BatchHandler      *httpH.BatchHandler
	AiVideoHandler    *httpH.AiVideoHandler
	RealtimeHandler   *httpH.RealtimeHandler
	HealthHandler     *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))
	r.Use(httpMW.RequestTimeout(cfg.RequestTimeout, "/api/sse/"))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
		r.GET("/readyz", cfg.HealthHandler.Ready)
	}

	api := r.Group("/api")
	if cfg.AuthMiddleware == nil {
		return r
	}
	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Realtime (SSE)
	if cfg.RealtimeHandler != nil {
		protected.GET("/sse/stream", cfg.RealtimeHandler.SSEStream)
	}

	// End-user assignments
	if cfg.AssignmentHandler != nil {
		protected.GET("/assignments", cfg.AssignmentHandler.Today)
		protected.GET("/assignments/summary", cfg.AssignmentHandler.Summary)
		protected.POST("/assignments/complete", cfg.AssignmentHandler.Complete)
	}
	if cfg.ComplianceHandler != nil {
		protected.GET("/compliance", cfg.ComplianceHandler.Mine)
		protected.GET("/compliance/history", cfg.ComplianceHandler.History)
	}
	if cfg.AiVideoHandler != nil {
		protected.GET("/ai-videos", cfg.AiVideoHandler.Mine)
		protected.POST("/ai-videos/mark-downloaded", cfg.AiVideoHandler.MarkDownloaded)
	}

	admin := protected.Group("/admin")

	// Operator: batches
	if cfg.BatchHandler != nil {
		batches := admin.Group("/assignments", cfg.AuthMiddleware.RequireCapability(access.CapManageAssignments))
		batches.GET("", cfg.BatchHandler.List)
		batches.POST("/upload", cfg.BatchHandler.Upload)
		batches.POST("/upload-csv", cfg.BatchHandler.UploadCSV)
		batches.POST("/:batchId/distribute", cfg.BatchHandler.Distribute)
		batches.GET("/:batchId/non-compliant", cfg.BatchHandler.NonCompliant)
	}

	// Operator: compliance
	if cfg.ComplianceHandler != nil {
		admin.GET("/users/:userId/compliance",
			cfg.AuthMiddleware.RequireCapability(access.CapViewCompliance),
			cfg.ComplianceHandler.ForUser)
	}

	// Operator: AI video inventory
	if cfg.AiVideoHandler != nil {
		videos := admin.Group("/ai-videos", cfg.AuthMiddleware.RequireCapability(access.CapManageVideos))
		videos.GET("", cfg.AiVideoHandler.List)
		videos.POST("", cfg.AiVideoHandler.Create)
		videos.POST("/allocate", cfg.AiVideoHandler.Allocate)
		videos.DELETE("/:videoId", cfg.AiVideoHandler.Delete)
	}

	return r
}
