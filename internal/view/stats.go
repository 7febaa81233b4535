package view

import (
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/models"
)

// Stats are independent counts over non-archived tasks; one task may be
// counted in several buckets.
type Stats struct {
	ActiveTasks    int `json:"activeTasks"`
	CompletedTasks int `json:"completedTasks"`
	ImportantTasks int `json:"importantTasks"`
	TodayTasks     int `json:"todayTasks"`
}

// ComputeStats expects the full, unfiltered task list of one owner.
func ComputeStats(tasks []models.Task, now time.Time) Stats {
	today := models.DateOf(now)

	var s Stats
	for _, t := range tasks {
		if t.Archived {
			continue
		}
		if t.Completed {
			s.CompletedTasks++
		} else {
			s.ActiveTasks++
		}
		if t.Important {
			s.ImportantTasks++
		}
		if isDueOn(t, today) {
			s.TodayTasks++
		}
	}
	return s
}

// IsOverdue reports whether t has a due date strictly before today.
// Completion does not matter.
func IsOverdue(t models.Task, now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(models.DateOf(now))
}
