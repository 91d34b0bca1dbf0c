package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/data/repos/assignments"
	"github.com/yungbote/assignment-backend/internal/data/repos/content"
	"github.com/yungbote/assignment-backend/internal/data/repos/user"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domcontent "github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/observability"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

// VideoUserView is what an end user sees of the AI video inventory.
type VideoUserView struct {
	AssignedVideo   *types.AiVideo   `json:"assignedVideo"`
	AvailableVideos []*types.AiVideo `json:"availableVideos"`
	VideoHistory    []*types.AiVideo `json:"videoHistory"`
	ChannelName     string           `json:"channelName"`
	CanDownload     bool             `json:"canDownload"`
}

// VideoInput is the metadata of an uploaded video. The file itself is stored
// elsewhere; FileURL and FileName point at it.
type VideoInput struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Topic       string `json:"topic" validate:"required"`
	Type        string `json:"type" validate:"required"`
	FileURL     string `json:"fileUrl" validate:"required,url"`
	FileName    string `json:"fileName" validate:"required"`
}

type AiVideoService interface {
	UserView(ctx context.Context, userID uuid.UUID) (*VideoUserView, error)
	MarkDownloaded(ctx context.Context, userID, videoID uuid.UUID) (*types.AiVideo, error)
	List(ctx context.Context) ([]*types.AiVideo, error)
	Create(ctx context.Context, in VideoInput) (*types.AiVideo, error)
	Delete(ctx context.Context, videoID uuid.UUID) error
	Allocate(ctx context.Context) (int, error)
}

type aiVideoService struct {
	log      *logger.Logger
	users    user.UserRepo
	entries  assignments.UserAssignmentRepo
	videos   content.AiVideoRepo
	audit    AuditSink
	validate *validator.Validate
}

func NewAiVideoService(
	log *logger.Logger,
	users user.UserRepo,
	entries assignments.UserAssignmentRepo,
	videos content.AiVideoRepo,
	audit AuditSink,
) AiVideoService {
	return &aiVideoService{
		log:      log.With("service", "AiVideoService"),
		users:    users,
		entries:  entries,
		videos:   videos,
		audit:    audit,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// UserView lists the user's assigned and downloaded videos. The topic pool is
// shown only once every ledger entry is complete.
func (s *aiVideoService) UserView(ctx context.Context, userID uuid.UUID) (*VideoUserView, error) {
	dbc := dbctx.With(ctx)
	u, err := s.users.GetByID(dbc, userID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, types.NotFound("AiVideoView", "user not found")
	}
	pending, err := s.entries.CountInProgressForUser(dbc, userID)
	if err != nil {
		return nil, err
	}

	view := &VideoUserView{
		ChannelName:     u.ChannelName,
		CanDownload:     pending == 0,
		AvailableVideos: []*types.AiVideo{},
	}
	if view.AssignedVideo, err = s.videos.GetAssignedTo(dbc, userID); err != nil {
		return nil, err
	}
	if view.CanDownload && u.SelectedTopic != "" {
		if view.AvailableVideos, err = s.videos.ListAvailable(dbc, u.SelectedTopic); err != nil {
			return nil, err
		}
	}
	if view.VideoHistory, err = s.videos.ListDownloadedBy(dbc, userID); err != nil {
		return nil, err
	}
	if view.VideoHistory == nil {
		view.VideoHistory = []*types.AiVideo{}
	}
	return view, nil
}

func (s *aiVideoService) MarkDownloaded(ctx context.Context, userID, videoID uuid.UUID) (*types.AiVideo, error) {
	const op = "MarkDownloaded"
	dbc := dbctx.With(ctx)

	pending, err := s.entries.CountInProgressForUser(dbc, userID)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		return nil, types.Forbidden(op, "you must complete all pending assignments before downloading")
	}

	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return nil, err
	}
	if video == nil {
		return nil, types.NotFound(op, "video not found")
	}
	if video.AssignedTo != nil && !video.IsAssignedTo(userID) {
		return nil, types.Forbidden(op, "this video is assigned to another user")
	}

	switch {
	case video.Status == domcontent.VideoAvailable:
	case video.Status == domcontent.VideoAssigned && video.IsAssignedTo(userID):
	default:
		return nil, types.InvalidState(op, "this video cannot be downloaded")
	}

	ok, err := s.videos.MarkDownloaded(dbc, video.ID, userID, video.Status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.InvalidState(op, "this video is no longer available")
	}
	video.Status = domcontent.VideoDownloaded
	video.AssignedTo = &userID
	s.log.Info("AI video downloaded", "user_id", userID, "video_id", video.ID)
	return video, nil
}

func (s *aiVideoService) List(ctx context.Context) ([]*types.AiVideo, error) {
	return s.videos.List(dbctx.With(ctx))
}

func (s *aiVideoService) Create(ctx context.Context, in VideoInput) (*types.AiVideo, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Topic = strings.TrimSpace(in.Topic)
	in.Type = strings.TrimSpace(in.Type)
	if err := s.validate.Struct(in); err != nil {
		return nil, types.Validation("CreateAiVideo", "title, topic, type and an uploaded file are required")
	}
	video := &types.AiVideo{
		Title:       in.Title,
		Description: strings.TrimSpace(in.Description),
		Topic:       in.Topic,
		Type:        in.Type,
		Status:      domcontent.VideoAvailable,
		FileURL:     in.FileURL,
		FileName:    in.FileName,
	}
	if err := s.videos.Create(dbctx.With(ctx), video); err != nil {
		s.log.Error("create AI video failed", "title", in.Title, "error", err)
		return nil, err
	}
	s.audit.OperatorAction(ctx, domactivity.ActionAIVideoUploaded,
		fmt.Sprintf("Uploaded video: %s", video.Title), domactivity.StatusSuccess, "")
	return video, nil
}

func (s *aiVideoService) Delete(ctx context.Context, videoID uuid.UUID) error {
	const op = "DeleteAiVideo"
	dbc := dbctx.With(ctx)
	video, err := s.videos.GetByID(dbc, videoID)
	if err != nil {
		return err
	}
	if video == nil {
		return types.NotFound(op, "video not found")
	}
	deleted, err := s.videos.Delete(dbc, videoID)
	if err != nil {
		return err
	}
	if !deleted {
		return types.NotFound(op, "video not found")
	}
	s.audit.OperatorAction(ctx, domactivity.ActionAIVideoDeleted,
		fmt.Sprintf("Deleted video: %s", video.Title), domactivity.StatusWarning, "")
	return nil
}

// Allocate hands each Available video to the next candidate whose topic
// matches, one video per user, and returns how many were assigned.
func (s *aiVideoService) Allocate(ctx context.Context) (int, error) {
	const op = "AllocateAiVideos"
	ctx, span := observability.Tracer().Start(ctx, "AiVideoService.Allocate")
	defer span.End()

	dbc := dbctx.With(ctx)
	available, err := s.videos.ListAvailable(dbc, "")
	if err != nil {
		return 0, err
	}
	if len(available) == 0 {
		return 0, types.NotFound(op, "no available videos to allocate")
	}
	candidates, err := s.users.ListAllocationCandidates(dbc)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, types.NotFound(op, "no eligible users need a video assignment right now")
	}

	byTopic := make(map[string][]uuid.UUID)
	for _, u := range candidates {
		byTopic[u.SelectedTopic] = append(byTopic[u.SelectedTopic], u.ID)
	}

	allocated := 0
	for _, v := range available {
		queue := byTopic[v.Topic]
		if len(queue) == 0 {
			continue
		}
		claimed, err := s.videos.ClaimForUser(dbc, v.ID, queue[0])
		if err != nil {
			s.log.Error("allocate AI video failed", "video_id", v.ID, "error", err)
			return allocated, err
		}
		if !claimed {
			continue
		}
		byTopic[v.Topic] = queue[1:]
		allocated++
	}

	s.log.Info("AI videos allocated", "count", allocated)
	s.audit.OperatorAction(ctx, domactivity.ActionAIVideoAllocated,
		fmt.Sprintf("Allocated %d videos to users based on topic preference.", allocated), domactivity.StatusSuccess, "")
	return allocated, nil
}
