package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/yungbote/assignment-backend/internal/data/repos/testutil"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domactivity "github.com/yungbote/assignment-backend/internal/domain/activity"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
	domuser "github.com/yungbote/assignment-backend/internal/domain/user"
	"github.com/yungbote/assignment-backend/internal/realtime"
)

func TestCreateBatchRejectsDuplicateDate(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)

	b, err := h.batches.Create(ctx, "2026-10-21", testutil.Links("2026-10-21", 3))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Status != domassign.BatchPending || b.TotalLinks != 3 {
		t.Fatalf("created batch: status=%s total=%d", b.Status, b.TotalLinks)
	}
	if _, err := h.batches.Create(ctx, "2026-10-21", testutil.Links("2026-10-21", 1)); !types.IsCode(err, types.CodeConflict) {
		t.Fatalf("second batch: want conflict got=%v", err)
	}

	logs, err := h.logRepo.ListRecent(dbcOf(ctx), domactivity.ActionAssignmentLinksUploaded, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("activity logs: want=1 got=%d", len(logs))
	}
}

func TestCreateBatchValidation(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()

	cases := []struct {
		name  string
		date  string
		links []types.BatchLink
	}{
		{"no links", "2026-10-21", nil},
		{"no date", "", testutil.Links("x", 1)},
		{"bad date", "21/10/2026", testutil.Links("x", 1)},
		{"bad type", "2026-10-21", []types.BatchLink{{URL: "https://a.example.com", Type: "Medium"}}},
		{"not http", "2026-10-21", []types.BatchLink{{URL: "ftp://a.example.com", Type: domassign.LinkShort}}},
		{"repeated url", "2026-10-21", []types.BatchLink{
			{URL: "https://a.example.com", Type: domassign.LinkShort},
			{URL: "https://a.example.com", Type: domassign.LinkLong},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := h.batches.Create(ctx, tc.date, tc.links); !types.IsCode(err, types.CodeValidation) {
				t.Fatalf("want validation got=%v", err)
			}
		})
	}
}

func TestDistributeBatch(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)

	a := testutil.SeedUser(t, ctx, h.db, "a@example.com")
	c := testutil.SeedUser(t, ctx, h.db, "c@example.com", testutil.WithTopic("Travel"))
	testutil.SeedUser(t, ctx, h.db, "suspended@example.com", testutil.WithStatus(domuser.StatusSuspended))
	noTopic := testutil.SeedUser(t, ctx, h.db, "notopic@example.com", testutil.WithTopic(""))
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchPending, testutil.Links("2026-10-19", 4))

	// One user already fetched lazily; distribution must leave that entry alone.
	existing := testutil.SeedEntry(t, ctx, h.db, a.ID, b, b.Links[0].URL)

	res, err := h.batches.Distribute(ctx, b.ID)
	if err != nil {
		t.Fatalf("Distribute: %v", err)
	}
	if res.EligibleUsers != 3 || res.EntriesCreated != 2 {
		t.Fatalf("result: eligible=%d created=%d", res.EligibleUsers, res.EntriesCreated)
	}
	if res.Batch.Status != domassign.BatchInProgress {
		t.Fatalf("batch status: %s", res.Batch.Status)
	}
	if n := h.countEntries(t, "date = ?", b.Date); n != 3 {
		t.Fatalf("entries: want=3 got=%d", n)
	}
	if n := h.countEntries(t, "user_id = ? AND date = ?", noTopic.ID, b.Date); n != 1 {
		t.Fatalf("user without topic: want=1 entry got=%d", n)
	}
	if e := h.entry(t, a.ID, b.Date); e.ID != existing.ID || len(e.CompletedTasks) != 1 {
		t.Fatalf("pre-existing entry replaced: id=%s completions=%d", e.ID, len(e.CompletedTasks))
	}
	if got := h.emitter.Count(realtime.SSEEventBatchDistributed, c.ID.String()); got != 1 {
		t.Fatalf("distributed event for new entry: want=1 got=%d", got)
	}

	if _, err := h.batches.Distribute(ctx, b.ID); !types.IsCode(err, types.CodeInvalidState) {
		t.Fatalf("second distribute: want invalid_state got=%v", err)
	}
	if n := h.countEntries(t, "date = ?", b.Date); n != 3 {
		t.Fatalf("entries after redistribute: want=3 got=%d", n)
	}
	if _, err := h.batches.Distribute(ctx, uuid.New()); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("unknown batch: want not_found got=%v", err)
	}
}

func TestNonCompliantUsers(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()

	done := testutil.SeedUser(t, ctx, h.db, "done@example.com")
	lagging := testutil.SeedUser(t, ctx, h.db, "lagging@example.com")
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchInProgress, testutil.Links("2026-10-19", 2))
	testutil.SeedEntry(t, ctx, h.db, done.ID, b, b.Links[0].URL, b.Links[1].URL)
	testutil.SeedEntry(t, ctx, h.db, lagging.ID, b, b.Links[1].URL)

	out, err := h.batches.NonCompliantUsers(ctx, b.ID)
	if err != nil {
		t.Fatalf("NonCompliantUsers: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("non-compliant: want=1 got=%d", len(out))
	}
	got := out[0]
	if got.UserID != lagging.ID || got.Email != lagging.Email || got.TasksAssigned != 2 || got.TasksCompleted != 1 {
		t.Fatalf("non-compliant row: %+v", got)
	}
	if _, err := h.batches.NonCompliantUsers(ctx, uuid.New()); !types.IsCode(err, types.CodeNotFound) {
		t.Fatalf("unknown batch: want not_found got=%v", err)
	}
}

func TestImportCSV(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)

	raw := []byte("url,type\n" +
		" https://youtube.com/watch?v=1 , Short\n" +
		"https://youtube.com/watch?v=2,Long\n" +
		"https://youtube.com/watch?v=3,long\n" +
		"notaurl,Short\n" +
		"https://youtube.com/watch?v=4\n" +
		"https://youtube.com/watch?v=1,Short\n")

	b, err := h.batches.Import(ctx, "2026-10-22", "links.csv", raw)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(b.Links) != 2 {
		t.Fatalf("links: want=2 got=%d (%+v)", len(b.Links), b.Links)
	}
	if b.Links[0].URL != "https://youtube.com/watch?v=1" || b.Links[1].Type != domassign.LinkLong {
		t.Fatalf("parsed links: %+v", b.Links)
	}

	if _, err := h.batches.Import(ctx, "2026-10-22", "links.csv", []byte("not,even\x00csv")); !types.IsCode(err, types.CodeConflict) {
		t.Fatalf("existing date: want conflict before parsing got=%v", err)
	}
	if _, err := h.batches.Import(ctx, "2026-10-23", "links.csv", []byte("url,type\nfoo,bar\n")); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("no valid rows: want validation got=%v", err)
	}
	if _, err := h.batches.Import(ctx, "2026-10-23", "links.csv", []byte("https://a.example.com,Short\n")); !types.IsCode(err, types.CodeValidation) {
		t.Fatalf("header-only rows: want validation got=%v", err)
	}
}

func TestImportXLSX(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"url", "type"},
		{"https://youtube.com/watch?v=a", "Short"},
		{"https://youtube.com/watch?v=b", "Long"},
		{"https://youtube.com/watch?v=c", "Other"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("SetSheetRow: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}

	b, err := h.batches.Import(ctx, "2026-10-24", "links.XLSX", buf.Bytes())
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if len(b.Links) != 2 {
		t.Fatalf("links: want=2 got=%d", len(b.Links))
	}
}
