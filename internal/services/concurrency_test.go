package services

import (
	"context"
	"sync"
	"testing"

	"github.com/yungbote/assignment-backend/internal/data/repos/testutil"
	types "github.com/yungbote/assignment-backend/internal/domain"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
)

func TestConcurrentSameLinkCompletionRecordsOnce(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "double@example.com")
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchInProgress, testutil.Links("2026-10-19", 3))
	e := testutil.SeedEntry(t, ctx, h.db, u.ID, b)
	link := b.Links[0].URL

	const callers = 2
	var wg sync.WaitGroup
	results := make([]*CompletionResult, callers)
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = h.assignments.CompleteTask(ctx, u.ID, link, false)
		}(i)
	}
	wg.Wait()

	duplicates := 0
	for i := 0; i < callers; i++ {
		if errs[i] != nil {
			t.Fatalf("CompleteTask[%d]: %v", i, errs[i])
		}
		if results[i].Duplicate {
			duplicates++
			if results[i].Reward != nil {
				t.Fatalf("CompleteTask[%d]: repeat carried a reward", i)
			}
		}
	}
	if duplicates != 1 {
		t.Fatalf("duplicates: want=1 got=%d", duplicates)
	}

	var stored int64
	if err := h.db.Model(&types.TaskCompletion{}).Where("assignment_id = ? AND link = ?", e.ID, link).Count(&stored).Error; err != nil {
		t.Fatalf("count completions: %v", err)
	}
	if stored != 1 {
		t.Fatalf("stored completions: want=1 got=%d", stored)
	}
}

func TestConcurrentFinalLinksCompleteEntry(t *testing.T) {
	h := newHarness(t, evenDay)
	ctx := context.Background()
	u := testutil.SeedUser(t, ctx, h.db, "finisher@example.com")
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-20", domassign.BatchInProgress, testutil.Links("2026-10-20", 4))
	testutil.SeedEntry(t, ctx, h.db, u.ID, b, b.Links[0].URL, b.Links[1].URL)

	remaining := []string{b.Links[2].URL, b.Links[3].URL}
	var wg sync.WaitGroup
	results := make([]*CompletionResult, len(remaining))
	errs := make([]error, len(remaining))
	for i, link := range remaining {
		wg.Add(1)
		go func(i int, link string) {
			defer wg.Done()
			results[i], errs[i] = h.assignments.CompleteTask(ctx, u.ID, link, false)
		}(i, link)
	}
	wg.Wait()

	for i := range remaining {
		if errs[i] != nil {
			t.Fatalf("CompleteTask[%d]: %v", i, errs[i])
		}
		if results[i].Duplicate {
			t.Fatalf("CompleteTask[%d]: distinct link flagged duplicate", i)
		}
	}

	got := h.entry(t, u.ID, b.Date)
	if got.Status != domassign.EntryCompleted {
		t.Fatalf("entry status: want=%s got=%s", domassign.EntryCompleted, got.Status)
	}
	if len(got.CompletedTasks) != 4 {
		t.Fatalf("completions: want=4 got=%d", len(got.CompletedTasks))
	}

	var passes int64
	if err := h.db.Model(&types.ComplianceRecord{}).Where("user_id = ?", u.ID).Count(&passes).Error; err != nil {
		t.Fatalf("count compliance records: %v", err)
	}
	if passes != 1 {
		t.Fatalf("compliance pass records: want=1 got=%d", passes)
	}
}

func TestConcurrentDistributeClaimsOnce(t *testing.T) {
	h := newHarness(t, oddDay)
	ctx := h.operatorCtx(t)
	for _, email := range []string{"d1@example.com", "d2@example.com", "d3@example.com"} {
		testutil.SeedUser(t, ctx, h.db, email)
	}
	b := testutil.SeedBatch(t, ctx, h.db, "2026-10-19", domassign.BatchPending, testutil.Links("2026-10-19", 2))

	const callers = 4
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.batches.Distribute(ctx, b.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for i, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case types.IsCode(err, types.CodeInvalidState):
		default:
			t.Fatalf("Distribute[%d]: want nil or invalid_state got=%v", i, err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("successful distributions: want=1 got=%d", succeeded)
	}
	if n := h.countEntries(t, "date = ?", b.Date); n != 3 {
		t.Fatalf("entries: want=3 got=%d", n)
	}
}
