package view

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/models"
)

// CategoryInfo describes a sidebar bucket.
type CategoryInfo struct {
	ID   Category
	Name string
}

var Categories = []CategoryInfo{
	{ID: CategoryAll, Name: "All Tasks"},
	{ID: CategoryToday, Name: "Today"},
	{ID: CategoryImportant, Name: "Important"},
	{ID: CategoryCompleted, Name: "Completed"},
	{ID: CategoryArchived, Name: "Archived"},
}

var Priorities = []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow}

// PredefinedTags are offered as suggestions; any tag is accepted.
var PredefinedTags = []string{"Work", "Personal", "Shopping", "Health", "Learning", "Family"}

var SortKeys = []SortKey{SortCreated, SortPriority, SortDueDate}

// ParseCategory is strict, for inputs coming from a user; Apply itself
// tolerates unknown categories.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(string(c.ID), s) {
			return c.ID, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// ParseSortKey is strict like ParseCategory.
func ParseSortKey(s string) (SortKey, error) {
	for _, k := range SortKeys {
		if strings.EqualFold(string(k), s) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}
