package domain

import (
	"github.com/yungbote/assignment-backend/internal/domain/activity"
	"github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/domain/compliance"
	"github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/domain/user"
)

type User = user.User

type Batch = assignments.Batch
type BatchLink = assignments.BatchLink
type BatchStatus = assignments.BatchStatus
type LinkType = assignments.LinkType
type UserAssignment = assignments.UserAssignment
type TaskCompletion = assignments.TaskCompletion
type EntryStatus = assignments.EntryStatus

type AiVideo = content.AiVideo
type VideoStatus = content.VideoStatus

type ComplianceRecord = compliance.Record
type ComplianceSnapshot = compliance.Snapshot

type ActivityLog = activity.Log

// Models lists every persisted entity, in migration order.
func Models() []any {
	return []any{
		&User{},
		&Batch{},
		&UserAssignment{},
		&TaskCompletion{},
		&AiVideo{},
		&ComplianceRecord{},
		&ActivityLog{},
	}
}
