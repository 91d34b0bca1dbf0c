package testutil

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/assignment-backend/internal/domain"
	"github.com/yungbote/assignment-backend/internal/domain/assignments"
	"github.com/yungbote/assignment-backend/internal/domain/content"
	"github.com/yungbote/assignment-backend/internal/domain/user"
)

// UserOption tweaks a seeded user.
type UserOption func(*types.User)

func WithTopic(topic string) UserOption {
	return func(u *types.User) { u.SelectedTopic = topic }
}

func WithStatus(status string) UserOption {
	return func(u *types.User) { u.Status = status }
}

func WithYoutubeStatus(status string) UserOption {
	return func(u *types.User) { u.YoutubeStatus = status }
}

func AsAdmin(adminRole string) UserOption {
	return func(u *types.User) {
		u.Role = user.RoleAdmin
		u.AdminRole = adminRole
	}
}

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string, opts ...UserOption) *types.User {
	tb.Helper()
	u := &types.User{
		ID:            uuid.New(),
		Email:         email,
		FullName:      "Test User",
		Status:        user.StatusApproved,
		Role:          user.RoleUser,
		SelectedTopic: "Finance",
		YoutubeStatus: user.YoutubeVerified,
	}
	for _, opt := range opts {
		opt(u)
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// Links builds n distinct batch links for date, alternating Short and Long.
func Links(date string, n int) []types.BatchLink {
	out := make([]types.BatchLink, 0, n)
	for i := 0; i < n; i++ {
		typ := assignments.LinkShort
		if i%2 == 1 {
			typ = assignments.LinkLong
		}
		out = append(out, types.BatchLink{
			URL:  fmt.Sprintf("https://youtube.com/watch?v=%s-%d", date, i),
			Type: typ,
		})
	}
	return out
}

func SeedBatch(tb testing.TB, ctx context.Context, tx *gorm.DB, date string, status types.BatchStatus, links []types.BatchLink) *types.Batch {
	tb.Helper()
	b := &types.Batch{
		ID:         uuid.New(),
		Date:       date,
		Links:      links,
		TotalLinks: len(links),
		Status:     status,
	}
	if err := tx.WithContext(ctx).Create(b).Error; err != nil {
		tb.Fatalf("seed batch: %v", err)
	}
	return b
}

func SeedEntry(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, batch *types.Batch, completed ...string) *types.UserAssignment {
	tb.Helper()
	e := assignments.NewEntry(userID, batch)
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed entry: %v", err)
	}
	now := time.Now().UTC()
	for i, link := range completed {
		tc := &types.TaskCompletion{
			AssignmentID: e.ID,
			Link:         link,
			CompletedAt:  now.Add(time.Duration(i) * time.Second),
		}
		if err := tx.WithContext(ctx).Create(tc).Error; err != nil {
			tb.Fatalf("seed completion: %v", err)
		}
		e.CompletedTasks = append(e.CompletedTasks, *tc)
	}
	if len(e.CompletedSet()) >= e.TotalTasks && e.TotalTasks > 0 {
		e.Status = assignments.EntryCompleted
		e.CompletedAt = PtrTime(now)
		if err := tx.WithContext(ctx).Model(e).Updates(map[string]any{
			"status":       e.Status,
			"completed_at": now,
		}).Error; err != nil {
			tb.Fatalf("seed entry status: %v", err)
		}
	}
	return e
}

func SeedVideo(tb testing.TB, ctx context.Context, tx *gorm.DB, topic string, status types.VideoStatus, assignedTo *uuid.UUID) *types.AiVideo {
	tb.Helper()
	v := &types.AiVideo{
		ID:         uuid.New(),
		Title:      "video " + topic,
		Topic:      topic,
		Type:       "Short",
		Status:     status,
		FileURL:    "https://cdn.example.com/" + uuid.NewString() + ".mp4",
		FileName:   "clip.mp4",
		AssignedTo: assignedTo,
	}
	if status == "" {
		v.Status = content.VideoAvailable
	}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed video: %v", err)
	}
	// Keep created_at ordering stable across quick successive seeds.
	time.Sleep(2 * time.Millisecond)
	return v
}

func PtrUUID(v uuid.UUID) *uuid.UUID { return &v }

func PtrTime(v time.Time) *time.Time { return &v }
