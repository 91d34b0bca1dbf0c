package realtime

type SSEEvent string

const (
	SSEEventAssignmentTaskCompleted SSEEvent = "AssignmentTaskCompleted"
	SSEEventAssignmentCompleted     SSEEvent = "AssignmentCompleted"
	SSEEventAiVideoUnlocked         SSEEvent = "AiVideoUnlocked"
	SSEEventBatchDistributed        SSEEvent = "BatchDistributed"
)

type SSEMessage struct {
	Channel string   `json:"channel"`
	Event   SSEEvent `json:"event"`
	Data    any      `json:"data,omitempty"`
}
