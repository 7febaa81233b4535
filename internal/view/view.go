// Package view derives display-ready task lists and summary counts from a
// task snapshot. Everything here is pure: the same tasks, query and clock
// always produce the same result, and inputs are never mutated.
package view

import (
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/models"
)

// Category is a named predicate bucket used to filter the list.
type Category string

const (
	CategoryAll       Category = "all"
	CategoryToday     Category = "today"
	CategoryImportant Category = "important"
	CategoryCompleted Category = "completed"
	CategoryArchived  Category = "archived"
)

// SortKey selects the ordering of the list.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
)

// Query is the (category, search, sort) triple applied by Apply. An empty
// Category or SortKey is treated like any unrecognized value: no filtering
// and no reordering respectively.
type Query struct {
	Category Category
	Search   string
	SortBy   SortKey
}

// Apply filters by category, then by search text, then sorts. The result is
// a new slice; tasks is left as is.
func Apply(tasks []models.Task, q Query, now time.Time) []models.Task {
	out := FilterCategory(tasks, q.Category, now)
	out = Search(out, q.Search)
	return Sort(out, q.SortBy)
}

// FilterCategory keeps the tasks belonging to category c. Unknown categories
// pass everything through.
func FilterCategory(tasks []models.Task, c Category, now time.Time) []models.Task {
	today := models.DateOf(now)
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if inCategory(t, c, today) {
			out = append(out, t)
		}
	}
	return out
}

func inCategory(t models.Task, c Category, today models.Date) bool {
	switch c {
	case CategoryAll:
		return !t.Archived
	case CategoryToday:
		return isDueOn(t, today) && !t.Archived
	case CategoryImportant:
		return t.Important && !t.Archived
	case CategoryCompleted:
		return t.Completed && !t.Archived
	case CategoryArchived:
		return t.Archived
	default:
		return true
	}
}

// Search keeps tasks whose text or any tag contains query, ignoring case.
// An empty query keeps everything.
func Search(tasks []models.Task, query string) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	if query == "" {
		return append(out, tasks...)
	}
	needle := strings.ToLower(query)
	for _, t := range tasks {
		if matches(t, needle) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t models.Task, needle string) bool {
	if strings.Contains(strings.ToLower(t.Text), needle) {
		return true
	}
	for _, tag := range t.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// Sort orders a copy of tasks by key. Ties keep their original relative
// order; unknown keys return the copy unchanged.
func Sort(tasks []models.Task, key SortKey) []models.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []models.Task{}
	}
	switch key {
	case SortCreated:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case SortPriority:
		slices.SortStableFunc(out, func(a, b models.Task) int {
			return b.Priority.Weight() - a.Priority.Weight()
		})
	case SortDueDate:
		slices.SortStableFunc(out, compareDueDate)
	}
	return out
}

// compareDueDate puts dated tasks first, earliest first; undated tasks
// compare equal to each other.
func compareDueDate(a, b models.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	}
	return a.DueDate.Compare(*b.DueDate)
}

func isDueOn(t models.Task, day models.Date) bool {
	return t.DueDate != nil && *t.DueDate == day
}
