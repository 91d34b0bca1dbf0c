package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/assignment-backend/internal/data/repos/testutil"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	domcontent "github.com/yungbote/assignment-backend/internal/domain/content"
	domuser "github.com/yungbote/assignment-backend/internal/domain/user"
)

func TestUserViewHidesPoolWhilePending(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "view@example.com")
	testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAvailable, nil)
	testutil.SeedVideo(t, ctx, h.db, "Travel", domcontent.VideoAvailable, nil)
	testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoDownloaded, testutil.PtrUUID(u.ID))
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchInProgress, testutil.Links("2026-10-19", 1))
	testutil.SeedEntry(t, ctx, h.db, u.ID, b)

	view, err := h.videos.UserView(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserView: %v", err)
	}
	if view.CanDownload || len(view.AvailableVideos) != 0 {
		t.Fatalf("pending user: canDownload=%v available=%d", view.CanDownload, len(view.AvailableVideos))
	}
	if len(view.VideoHistory) != 1 {
		t.Fatalf("history: want=1 got=%d", len(view.VideoHistory))
	}

	if _, err := h.assignments.CompleteTask(ctx, u.ID, b.Links[0].URL, false); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}
	view, err = h.videos.UserView(ctx, u.ID)
	if err != nil {
		t.Fatalf("UserView: %v", err)
	}
	if !view.CanDownload {
		t.Fatalf("cleared user cannot download")
	}
	// The odd-day reward took the only Finance video.
	if view.AssignedVideo == nil || view.AssignedVideo.Topic != "Finance" {
		t.Fatalf("assigned video: %+v", view.AssignedVideo)
	}
	for _, v := range view.AvailableVideos {
		if v.Topic != "Finance" {
			t.Fatalf("off-topic video listed: %s", v.Topic)
		}
	}
}

func TestMarkDownloadedRules(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "dl@example.com")
	other := testutil.SeedUser(t, ctx, h.db, "other@example.com")

	free := testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAvailable, nil)
	mine := testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAssigned, testutil.PtrUUID(u.ID))
	theirs := testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAssigned, testutil.PtrUUID(other.ID))

	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchInProgress, testutil.Links("2026-10-19", 1))
	testutil.SeedEntry(t, ctx, h.db, u.ID, b)
	if _, err := h.videos.MarkDownloaded(ctx, u.ID, free.ID); !types.IsCode(err, types.CodeForbidden) {
		t.Fatalf("pending user: want forbidden got=%v", err)
	}
	if err := h.db.Model(&types.UserAssignment{}).Where("user_id = ?", u.ID).
		Update("status", domassign.EntryCompleted).Error; err != nil {
		t.Fatalf("complete entry: %v", err)
	}

	if _, err := h.videos.MarkDownloaded(ctx, u.ID, uuid.New()); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("missing video: want not_found got=%v", err)
	}
	if _, err := h.videos.MarkDownloaded(ctx, u.ID, theirs.ID); !types.IsCode(err, types.CodeForbidden) {
		t.Fatalf("someone else's video: want forbidden got=%v", err)
	}

	for _, v := range []*types.AiVideo{free, mine} {
		got, err := h.videos.MarkDownloaded(ctx, u.ID, v.ID)
		if err != nil {
			t.Fatalf("MarkDownloaded %s: %v", v.ID, err)
		}
		if got.Status != domcontent.VideoDownloaded || !got.IsAssignedTo(u.ID) {
			t.Fatalf("downloaded video: status=%s assignedTo=%v", got.Status, got.AssignedTo)
		}
	}
	if _, err := h.videos.MarkDownloaded(ctx, u.ID, mine.ID); !types.IsCode(err, types.CodeInvalidState) {
		t.Fatalf("already downloaded: want invalid_state got=%v", err)
	}
}

func TestAllocateByTopic(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)

	if _, err := h.videos.Allocate(ctx); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("empty inventory: want not_found got=%v", err)
	}

	fin := testutil.SeedUser(t, ctx, h.db, "fin@example.com", testutil.WithTopic("Finance"))
	travel := testutil.SeedUser(t, ctx, h.db, "travel@example.com", testutil.WithTopic("Travel"))
	testutil.SeedUser(t, ctx, h.db, "unverified@example.com", testutil.WithYoutubeStatus(domuser.YoutubePending))
	holder := testutil.SeedUser(t, ctx, h.db, "holder@example.com")
	testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAssigned, testutil.PtrUUID(holder.ID))

	testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAvailable, nil)
	testutil.SeedVideo(t, ctx, h.db, "Finance", domcontent.VideoAvailable, nil)
	testutil.SeedVideo(t, ctx, h.db, "Travel", domcontent.VideoAvailable, nil)
	testutil.SeedVideo(t, ctx, h.db, "Cooking", domcontent.VideoAvailable, nil)

	n, err := h.videos.Allocate(ctx)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if n != 2 {
		t.Fatalf("allocated: want=2 got=%d", n)
	}
	for _, id := range []uuid.UUID{fin.ID, travel.ID} {
		v, err := h.videoRepo.GetAssignedTo(dbcOf(ctx), id)
		if err != nil || v == nil {
			t.Fatalf("GetAssignedTo %s: v=%v err=%v", id, v, err)
		}
	}

	logs, err := h.logRepo.ListRecent(dbcOf(ctx), domactivity.ActionAIVideoAllocated, 10)
	if err != nil || len(logs) != 1 {
		t.Fatalf("allocation activity: n=%d err=%v", len(logs), err)
	}

	if _, err := h.videos.Allocate(ctx); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("no candidates left: want not_found got=%v", err)
	}
}

func TestCreateAndDeleteVideo(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)

	if _, err := h.videos.Create(ctx, VideoInput{Title: "x", Topic: "Finance"}); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("missing type and file: want validation got=%v", err)
	}
	v, err := h.videos.Create(ctx, VideoInput{
		Title:    "Budgeting 101",
		Topic:    "Finance",
		Type:     "Short",
		FileURL:  "https://cdn.example.com/budget.mp4",
		FileName: "budget.mp4",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if v.Status != domcontent.VideoAvailable || v.Description != domcontent.DefaultVideoDescription {
		t.Fatalf("created video: status=%s description=%q", v.Status, v.Description)
	}

	if err := h.videos.Delete(ctx, v.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := h.videos.Delete(ctx, v.ID); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("second delete: want not_found got=%v", err)
	}
	logs, err := h.logRepo.ListRecent(dbcOf(ctx), domactivity.ActionAIVideoDeleted, 10)
	if err != nil || len(logs) != 1 || logs[0].Status != domactivity.StatusWarning {
		t.Fatalf("delete activity: logs=%+v err=%v", logs, err)
	}
}
