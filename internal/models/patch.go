package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/common"
)

// TaskPatch is the allow-list of fields an update may change. A nil pointer
// means "leave unchanged". ClearDueDate removes the due date and wins over
// DueDate.
type TaskPatch struct {
	Text         *string
	Completed    *bool
	Priority     *Priority
	Tags         []string
	TagsSet      bool
	DueDate      *Date
	ClearDueDate bool
	Archived     *bool
	Important    *bool
}

// Patch field names as they appear on the wire.
const (
	FieldText      = "text"
	FieldCompleted = "completed"
	FieldPriority  = "priority"
	FieldTags      = "tags"
	FieldDueDate   = "dueDate"
	FieldArchived  = "archived"
	FieldImportant = "important"
)

// UnmarshalJSON reads only allow-listed keys; every other key is ignored.
// "dueDate": null or "" clears the date.
func (p *TaskPatch) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*p = TaskPatch{}

	if v, ok := raw[FieldText]; ok {
		if err := decodeField(FieldText, v, &p.Text); err != nil {
			return err
		}
	}
	if v, ok := raw[FieldCompleted]; ok {
		if err := decodeField(FieldCompleted, v, &p.Completed); err != nil {
			return err
		}
	}
	if v, ok := raw[FieldPriority]; ok {
		if err := decodeField(FieldPriority, v, &p.Priority); err != nil {
			return err
		}
	}
	if v, ok := raw[FieldTags]; ok {
		if err := decodeField(FieldTags, v, &p.Tags); err != nil {
			return err
		}
		p.TagsSet = true
	}
	if v, ok := raw[FieldDueDate]; ok {
		d, err := ParseOptionalDate(v)
		if err != nil {
			return common.NewValidationError(FieldDueDate, err.Error())
		}
		if d == nil {
			p.ClearDueDate = true
		} else {
			p.DueDate = d
		}
	}
	if v, ok := raw[FieldArchived]; ok {
		if err := decodeField(FieldArchived, v, &p.Archived); err != nil {
			return err
		}
	}
	if v, ok := raw[FieldImportant]; ok {
		if err := decodeField(FieldImportant, v, &p.Important); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON emits only the fields that are set.
func (p TaskPatch) MarshalJSON() ([]byte, error) {
	out := make(map[string]any)
	if p.Text != nil {
		out[FieldText] = *p.Text
	}
	if p.Completed != nil {
		out[FieldCompleted] = *p.Completed
	}
	if p.Priority != nil {
		out[FieldPriority] = *p.Priority
	}
	if p.TagsSet {
		tags := p.Tags
		if tags == nil {
			tags = []string{}
		}
		out[FieldTags] = tags
	}
	switch {
	case p.ClearDueDate:
		out[FieldDueDate] = nil
	case p.DueDate != nil:
		out[FieldDueDate] = p.DueDate.String()
	}
	if p.Archived != nil {
		out[FieldArchived] = *p.Archived
	}
	if p.Important != nil {
		out[FieldImportant] = *p.Important
	}
	return json.Marshal(out)
}

// IsEmpty reports whether the patch changes nothing.
func (p TaskPatch) IsEmpty() bool {
	return p.Text == nil && p.Completed == nil && p.Priority == nil && !p.TagsSet &&
		p.DueDate == nil && !p.ClearDueDate && p.Archived == nil && p.Important == nil
}

// Validate checks the values carried by the patch.
func (p TaskPatch) Validate() error {
	if p.Text != nil && strings.TrimSpace(*p.Text) == "" {
		return common.NewValidationError(FieldText, "task text must not be empty")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return common.NewValidationError(FieldPriority, "must be one of low, medium, high")
	}
	return nil
}

// ApplyTo copies the set fields onto t. It does not touch ID, OwnerID,
// CreatedAt or UpdatedAt.
func (p TaskPatch) ApplyTo(t *Task) {
	if p.Text != nil {
		t.Text = strings.TrimSpace(*p.Text)
	}
	if p.Completed != nil {
		t.Completed = *p.Completed
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.TagsSet {
		t.Tags = normalizeTags(p.Tags)
	}
	switch {
	case p.ClearDueDate:
		t.DueDate = nil
	case p.DueDate != nil:
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.Archived != nil {
		t.Archived = *p.Archived
	}
	if p.Important != nil {
		t.Important = *p.Important
	}
}

func decodeField(name string, raw json.RawMessage, dst any) error {
	if isNull(raw) {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return common.NewValidationError(name, fmt.Sprintf("invalid value: %v", err))
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
