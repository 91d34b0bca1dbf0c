package services

import (
	"context"

	"github.com/google/uuid"

	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/realtime"
)

type AssignmentNotifier interface {
	TaskCompleted(ctx context.Context, userID uuid.UUID, date, link string, isCarryOver bool)
	AssignmentCompleted(ctx context.Context, userID uuid.UUID, date string)
	AiVideoUnlocked(ctx context.Context, userID uuid.UUID, video *types.AiVideo)
	BatchDistributed(ctx context.Context, userIDs []uuid.UUID, batch *types.Batch)
}

type assignmentNotifier struct {
	emit SSEEmitter
}

func NewAssignmentNotifier(emit SSEEmitter) AssignmentNotifier {
	return &assignmentNotifier{emit: emit}
}

func (n *assignmentNotifier) send(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data map[string]any) {
	if n == nil || n.emit == nil || userID == uuid.Nil {
		return
	}
	n.emit.Emit(ctx, realtime.SSEMessage{
		Channel: userID.String(),
		Event:   event,
		Data:    data,
	})
}

func (n *assignmentNotifier) TaskCompleted(ctx context.Context, userID uuid.UUID, date, link string, isCarryOver bool) {
	n.send(ctx, userID, realtime.SSEEventAssignmentTaskCompleted, map[string]any{
		"date":        date,
		"link":        link,
		"isCarryOver": isCarryOver,
	})
}

func (n *assignmentNotifier) AssignmentCompleted(ctx context.Context, userID uuid.UUID, date string) {
	n.send(ctx, userID, realtime.SSEEventAssignmentCompleted, map[string]any{"date": date})
}

func (n *assignmentNotifier) AiVideoUnlocked(ctx context.Context, userID uuid.UUID, video *types.AiVideo) {
	n.send(ctx, userID, realtime.SSEEventAiVideoUnlocked, map[string]any{"video": video})
}

func (n *assignmentNotifier) BatchDistributed(ctx context.Context, userIDs []uuid.UUID, batch *types.Batch) {
	if batch == nil {
		return
	}
	for _, id := range userIDs {
		n.send(ctx, id, realtime.SSEEventBatchDistributed, map[string]any{
			"batchId":    batch.ID,
			"date":       batch.Date,
			"totalTasks": len(batch.Links),
		})
	}
}
