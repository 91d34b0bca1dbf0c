package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/assignment-backend/internal/data/repos"
	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/domain/user"
	"github.com/yungbote/assignment-backend/internal/pkg/dbctx"
	"github.com/yungbote/assignment-backend/internal/platform/logger"
)

type UserRepo interface {
	Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error)
	GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error)
	GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error)
	ListEligibleIDs(dbc dbctx.Context) ([]uuid.UUID, error)
	ListAllocationCandidates(dbc dbctx.Context) ([]*types.User, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

func (ur *userRepo) Create(dbc dbctx.Context, users []*types.User) ([]*types.User, error) {
	if len(users) == 0 {
		return []*types.User{}, nil
	}
	if err := dbc.Conn(ur.db).Create(&users).Error; err != nil {
		return nil, repos.MapError("UserRepo.Create", err)
	}
	return users, nil
}

// GetByID returns nil without error for unknown users.
func (ur *userRepo) GetByID(dbc dbctx.Context, userID uuid.UUID) (*types.User, error) {
	if userID == uuid.Nil {
		return nil, nil
	}
	var row types.User
	if err := dbc.Conn(ur.db).Where("id = ?", userID).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, repos.MapError("UserRepo.GetByID", err)
	}
	return &row, nil
}

func (ur *userRepo) GetByIDs(dbc dbctx.Context, userIDs []uuid.UUID) ([]*types.User, error) {
	var results []*types.User
	if len(userIDs) == 0 {
		return results, nil
	}
	if err := dbc.Conn(ur.db).Where("id IN ?", userIDs).Find(&results).Error; err != nil {
		return nil, repos.MapError("UserRepo.GetByIDs", err)
	}
	return results, nil
}

// ListEligibleIDs returns approved, non-admin users.
func (ur *userRepo) ListEligibleIDs(dbc dbctx.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := dbc.Conn(ur.db).
		Model(&types.User{}).
		Where("status = ? AND role = ?", user.StatusApproved, user.RoleUser).
		Order("created_at ASC").
		Pluck("id", &ids).Error
	if err != nil {
		return nil, repos.MapError("UserRepo.ListEligibleIDs", err)
	}
	return ids, nil
}

// ListAllocationCandidates returns eligible, YouTube-verified users that do not
// currently hold an Assigned video, oldest account first.
func (ur *userRepo) ListAllocationCandidates(dbc dbctx.Context) ([]*types.User, error) {
	var out []*types.User
	conn := dbc.Conn(ur.db)
	holders := conn.Session(&gorm.Session{NewDB: true}).
		Model(&types.AiVideo{}).
		Select("assigned_to").
		Where("status = ? AND assigned_to IS NOT NULL", content.VideoAssigned)
	err := conn.
		Where("status = ? AND role = ? AND youtube_status = ?", user.StatusApproved, user.RoleUser, user.YoutubeVerified).
		Where("selected_topic IS NOT NULL AND selected_topic <> ''").
		Where("id NOT IN (?)", holders).
		Order("created_at ASC").
		Find(&out).Error
	if err != nil {
		return nil, repos.MapError("UserRepo.ListAllocationCandidates", err)
	}
	return out, nil
}
