package content

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type AiVideoRepo interface {
	Create(dbc dbctx.Context, video *types.AiVideo) error
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AiVideo, error)
	List(dbc dbctx.Context) ([]*types.AiVideo, error)
	Delete(dbc dbctx.Context, id uuid.UUID) (bool, error)
	ListAvailable(dbc dbctx.Context, topic string) ([]*types.AiVideo, error)
	FirstAvailableForTopic(dbc dbctx.Context, topic string, exclude []uuid.UUID) (*types.AiVideo, error)
	ClaimForUser(dbc dbctx.Context, videoID, userID uuid.UUID) (bool, error)
	GetAssignedTo(dbc dbctx.Context, userID uuid.UUID) (*types.AiVideo, error)
	ListDownloadedBy(dbc dbctx.Context, userID uuid.UUID) ([]*types.AiVideo, error)
	MarkDownloaded(dbc dbctx.Context, videoID, userID uuid.UUID, from content.VideoStatus) (bool, error)
}

type aiVideoRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAiVideoRepo(db *gorm.DB, baseLog *logger.Logger) AiVideoRepo {
	return &aiVideoRepo{db: db, log: baseLog.With("repo", "AiVideoRepo")}
}

func (r *aiVideoRepo) Create(dbc dbctx.Context, video *types.AiVideo) error {
	if video == nil {
		return nil
	}
	if video.Status == "" {
		video.Status = content.VideoAvailable
	}
	if err := dbc.Conn(r.db).Create(video).Error; err != nil {
		return repos.MapError("AiVideoRepo.Create", err)
	}
	return nil
}

func (r *aiVideoRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.AiVideo, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	var row types.AiVideo
	if err := dbc.Conn(r.db).Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("AiVideoRepo.GetByID", err)
	}
	return &row, nil
}

func (r *aiVideoRepo) List(dbc dbctx.Context) ([]*types.AiVideo, error) {
	var out []*types.AiVideo
	if err := dbc.Conn(r.db).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, repos.MapError("AiVideoRepo.List", err)
	}
	return out, nil
}

func (r *aiVideoRepo) Delete(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).Where("id = ?", id).Delete(&types.AiVideo{})
	if res.Error != nil {
		return false, repos.MapError("AiVideoRepo.Delete", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ListAvailable lists Available videos. An empty topic matches every topic.
func (r *aiVideoRepo) ListAvailable(dbc dbctx.Context, topic string) ([]*types.AiVideo, error) {
	var out []*types.AiVideo
	q := dbc.Conn(r.db).Where("status = ?", content.VideoAvailable)
	if topic != "" {
		q = q.Where("topic = ?", topic)
	}
	if err := q.Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, repos.MapError("AiVideoRepo.ListAvailable", err)
	}
	return out, nil
}

// FirstAvailableForTopic returns the oldest Available video for topic, skipping
// exclude, or nil when the pool is empty.
func (r *aiVideoRepo) FirstAvailableForTopic(dbc dbctx.Context, topic string, exclude []uuid.UUID) (*types.AiVideo, error) {
	var row types.AiVideo
	q := dbc.Conn(r.db).Where("status = ? AND topic = ?", content.VideoAvailable, topic)
	if len(exclude) > 0 {
		q = q.Where("id NOT IN ?", exclude)
	}
	if err := q.Order("created_at ASC").First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("AiVideoRepo.FirstAvailableForTopic", err)
	}
	return &row, nil
}

// ClaimForUser binds an Available video to userID. It reports false when the
// video was taken by someone else first.
func (r *aiVideoRepo) ClaimForUser(dbc dbctx.Context, videoID, userID uuid.UUID) (bool, error) {
	res := dbc.Conn(r.db).
		Model(&types.AiVideo{}).
		Where("id = ? AND status = ?", videoID, content.VideoAvailable).
		Updates(map[string]any{
			"status":      content.VideoAssigned,
			"assigned_to": userID,
		})
	if res.Error != nil {
		return false, repos.MapError("AiVideoRepo.ClaimForUser", res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (r *aiVideoRepo) GetAssignedTo(dbc dbctx.Context, userID uuid.UUID) (*types.AiVideo, error) {
	var row types.AiVideo
	err := dbc.Conn(r.db).
		Where("assigned_to = ? AND status = ?", userID, content.VideoAssigned).
		Order("updated_at DESC").
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("AiVideoRepo.GetAssignedTo", err)
	}
	return &row, nil
}

func (r *aiVideoRepo) ListDownloadedBy(dbc dbctx.Context, userID uuid.UUID) ([]*types.AiVideo, error) {
	var out []*types.AiVideo
	err := dbc.Conn(r.db).
		Where("assigned_to = ? AND status = ?", userID, content.VideoDownloaded).
		Order("updated_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, repos.MapError("AiVideoRepo.ListDownloadedBy", err)
	}
	return out, nil
}

// MarkDownloaded moves a video from status from to Downloaded, binding it to
// userID. It reports false when the video changed underneath the caller.
func (r *aiVideoRepo) MarkDownloaded(dbc dbctx.Context, videoID, userID uuid.UUID, from content.VideoStatus) (bool, error) {
	q := dbc.Conn(r.db).
		Model(&types.AiVideo{}).
		Where("id = ? AND status = ?", videoID, from)
	if from == content.VideoAssigned {
		q = q.Where("assigned_to = ?", userID)
	}
	res := q.Updates(map[string]any{
		"status":      content.VideoDownloaded,
		"assigned_to": userID,
	})
	if res.Error != nil {
		return false, repos.MapError("AiVideoRepo.MarkDownloaded", res.Error)
	}
	return res.RowsAffected == 1, nil
}
