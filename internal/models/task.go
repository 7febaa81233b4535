// Package models defines the task value shared by the server, the CLI
// client and the view engine.
package models

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// Priority is the urgency bucket of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// DefaultPriority is applied when a task is created without one.
const DefaultPriority = PriorityMedium

// ParsePriority rejects anything outside low/medium/high. Values are not
// coerced, so "HIGH" is an error too.
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if !p.Valid() {
		return "", common.NewValidationError("priority", "must be one of low, medium, high")
	}
	return p, nil
}

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Weight orders priorities for sorting; unknown priorities weigh 0.
func (p Priority) Weight() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

// Task is one user-owned to-do item.
type Task struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Completed bool      `json:"completed"`
	Priority  Priority  `json:"priority"`
	Tags      []string  `json:"tags"`
	DueDate   *Date     `json:"dueDate"`
	Archived  bool      `json:"archived"`
	Important bool      `json:"important"`
	OwnerID   string    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTask holds the caller-supplied fields of a task being created.
// Zero values mean "use the default".
type NewTask struct {
	Text     string
	Priority Priority
	Tags     []string
	DueDate  *Date
}

// Normalize trims the text, applies defaults and validates the result.
func (n NewTask) Normalize() (NewTask, error) {
	n.Text = strings.TrimSpace(n.Text)
	if n.Text == "" {
		return n, common.NewValidationError("", "Task text is required")
	}
	if n.Priority == "" {
		n.Priority = DefaultPriority
	}
	if !n.Priority.Valid() {
		return n, common.NewValidationError("priority", "must be one of low, medium, high")
	}
	n.Tags = normalizeTags(n.Tags)
	return n, nil
}

// normalizeTags drops blank and duplicate entries; the result is never nil.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
