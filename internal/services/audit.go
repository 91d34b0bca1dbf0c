package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/data/repos/activity"
	"github.com/yungbote/assignment-backend/internal/data/repos/compliance"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domcompliance "github.com/yungbote/assignment-backend/internal/domain/compliance"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/ctxutil"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// AuditSink appends compliance and operator activity records. Failures are
// logged and never returned.
type AuditSink interface {
	CompliancePass(ctx context.Context, userID uuid.UUID, date string)
	OperatorAction(ctx context.Context, actionType, details, status, targetUser string)
}

type auditSink struct {
	log        *logger.Logger
	records    compliance.RecordRepo
	activities activity.ActivityLogRepo
	metrics    *observability.Metrics
}

func NewAuditSink(log *logger.Logger, records compliance.RecordRepo, activities activity.ActivityLogRepo, metrics *observability.Metrics) AuditSink {
	return &auditSink{
		log:        log.With("service", "AuditSink"),
		records:    records,
		activities: activities,
		metrics:    metrics,
	}
}

func (s *auditSink) CompliancePass(ctx context.Context, userID uuid.UUID, date string) {
	rec := &types.ComplianceRecord{
		UserID:   userID,
		Type:     domcompliance.TypeDailyAssignment,
		Status:   domcompliance.RecordPass,
		Severity: domcompliance.SeverityInfo,
		Details:  fmt.Sprintf("Successfully completed all tasks for %s.", date),
	}
	if err := s.records.Create(dbctx.With(ctx), rec); err != nil {
		s.metrics.IncSideEffectFailure("compliance_record")
		s.log.Warn("compliance record failed", "user_id", userID, "date", date, "error", err)
	}
}

func (s *auditSink) OperatorAction(ctx context.Context, actionType, details, status, targetUser string) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		s.log.Debug("operator action without principal", "action", actionType)
		return
	}
	if strings.TrimSpace(status) == "" {
		status = domactivity.StatusSuccess
	}
	entry := &types.ActivityLog{
		OperatorID:    rd.UserID,
		OperatorEmail: rd.Email,
		ActionType:    actionType,
		TargetUser:    targetUser,
		Details:       details,
		Status:        status,
	}
	if err := s.activities.Create(dbctx.With(ctx), entry); err != nil {
		s.metrics.IncSideEffectFailure("activity_log")
		s.log.Warn("activity log failed", "action", actionType, "operator_id", rd.UserID, "error", err)
	}
}
