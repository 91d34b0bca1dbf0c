package assignments

import (
	"testing"
	"time"
)

func TestDateKeys(t *testing.T) {
	now := time.Date(2026, time.March, 1, 0, 30, 0, 0, time.UTC)
	if got := DateKey(now); got != "2026-03-01" {
		t.Fatalf("DateKey: got=%s", got)
	}
	if got := YesterdayKey(now); got != "2026-02-28" {
		t.Fatalf("YesterdayKey across month: got=%s", got)
	}
	if got := DaysAgoKey(now, 30); got != "2026-01-30" {
		t.Fatalf("DaysAgoKey: got=%s", got)
	}
}

func TestNormalizeDate(t *testing.T) {
	if _, err := NormalizeDate("2026-13-01"); err == nil {
		t.Fatalf("expected error for month 13")
	}
	if _, err := NormalizeDate("01/02/2026"); err == nil {
		t.Fatalf("expected error for slash format")
	}
	got, err := NormalizeDate("2026-10-19")
	if err != nil || got != "2026-10-19" {
		t.Fatalf("NormalizeDate: got=%q err=%v", got, err)
	}
}

func TestIsOddDay(t *testing.T) {
	if !IsOddDay(time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("19th should be odd")
	}
	if IsOddDay(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("20th should be even")
	}
}

func TestCompletionRatioIgnoresLinksOutsideBatch(t *testing.T) {
	batch := &Batch{Links: []BatchLink{
		{URL: "https://a", Type: LinkShort},
		{URL: "https://b", Type: LinkLong},
		{URL: "https://c", Type: LinkShort},
		{URL: "https://d", Type: LinkShort},
	}}
	entry := &UserAssignment{
		TotalTasks: 4,
		CompletedTasks: []TaskCompletion{
			{Link: "https://a"},
			{Link: "https://b"},
			{Link: "https://gone"},
		},
	}
	if got := entry.CompletionRatio(batch.URLSet()); got != 0.5 {
		t.Fatalf("CompletionRatio: want=0.5 got=%v", got)
	}
	if got := (&UserAssignment{}).CompletionRatio(batch.URLSet()); got != 0 {
		t.Fatalf("zero-task ratio: got=%v", got)
	}
}
