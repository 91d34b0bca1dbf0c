package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos/activity"
	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/compliance"
	"github.com/yungbote/assignment-backend/internal/data/repos/content"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type Repos struct {
	User user.UserRepo

	Batch       assignments.BatchRepo
	Entry       assignments.UserAssignmentRepo
	Completion  assignments.TaskCompletionRepo
	Compliance  compliance.RecordRepo
	ActivityLog activity.ActivityLogRepo
	AiVideo     content.AiVideoRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: user.NewUserRepo(db, log),

		Batch:       assignments.NewBatchRepo(db, log),
		Entry:       assignments.NewUserAssignmentRepo(db, log),
		Completion:  assignments.NewTaskCompletionRepo(db, log),
		Compliance:  compliance.NewRecordRepo(db, log),
		ActivityLog: activity.NewActivityLogRepo(db, log),
		AiVideo:     content.NewAiVideoRepo(db, log),
	}
}
