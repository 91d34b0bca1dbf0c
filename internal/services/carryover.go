package services

import (
	"fmt"

	types "github.com/yungbote/assignment-backend/internal/domain"
	domassign "github.com/yungbote/assignment-backend/internal/domain/assignments"
)

const (
	TaskPending   = "pending"
	TaskCompleted = "completed"
)

// TaskItem is one row of a user's daily task list.
type TaskItem struct {
	ID          string             `json:"id"`
	Title       string             `json:"title"`
	YoutubeURL  string             `json:"youtubeUrl"`
	Type        domassign.LinkType `json:"type"`
	Status      string             `json:"status"`
	IsCarryOver bool               `json:"isCarryOver"`
}

// TodayView is today's task list with yesterday's unfinished links in front.
type TodayView struct {
	Assignments    []TaskItem `json:"assignments"`
	CompletedCount int        `json:"completedCount"`
	TotalCount     int        `json:"totalCount"`
}

// carryOverItems lists the batch links yesterday's entry still owes, in batch
// order. Only InProgress entries carry anything over.
func carryOverItems(yesterday *types.UserAssignment) []TaskItem {
	if yesterday == nil || yesterday.Status != domassign.EntryInProgress || yesterday.Batch == nil {
		return nil
	}
	done := yesterday.CompletedSet()
	out := make([]TaskItem, 0, len(yesterday.Batch.Links))
	for _, link := range yesterday.Batch.Links {
		if _, ok := done[link.URL]; ok {
			continue
		}
		n := len(out)
		out = append(out, TaskItem{
			ID:          fmt.Sprintf("carryover-%d", n),
			Title:       fmt.Sprintf("Carried Over Task #%d", n+1),
			YoutubeURL:  link.URL,
			Type:        link.Type,
			Status:      TaskPending,
			IsCarryOver: true,
		})
	}
	return out
}

// todayItems lists every link of today's batch marked against today's entry.
func todayItems(batch *types.Batch, today *types.UserAssignment) []TaskItem {
	if batch == nil {
		return nil
	}
	var done map[string]struct{}
	if today != nil {
		done = today.CompletedSet()
	}
	out := make([]TaskItem, 0, len(batch.Links))
	for i, link := range batch.Links {
		status := TaskPending
		if _, ok := done[link.URL]; ok {
			status = TaskCompleted
		}
		out = append(out, TaskItem{
			ID:          fmt.Sprintf("%s-%d", batch.ID, i),
			Title:       fmt.Sprintf("Today's Task #%d", i+1),
			YoutubeURL:  link.URL,
			Type:        link.Type,
			Status:      status,
			IsCarryOver: false,
		})
	}
	return out
}

func buildTodayView(yesterday *types.UserAssignment, batch *types.Batch, today *types.UserAssignment) *TodayView {
	items := append(carryOverItems(yesterday), todayItems(batch, today)...)
	if items == nil {
		items = []TaskItem{}
	}
	completed := 0
	for _, it := range items {
		if it.Status == TaskCompleted {
			completed++
		}
	}
	return &TodayView{
		Assignments:    items,
		CompletedCount: completed,
		TotalCount:     len(items),
	}
}
