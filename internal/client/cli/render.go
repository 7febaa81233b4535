package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/view"
)

func (a *App) renderTasks(tasks []models.Task) error {
	if len(tasks) == 0 {
		a.printf("No tasks found\n")
		return nil
	}

	now := a.now()
	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tDUE\tTAGS\tTEXT")
	for _, t := range tasks {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, doneMark(t), t.Priority, dueLabel(t, now), strings.Join(t.Tags, ","), textLabel(t))
	}
	return tw.Flush()
}

func doneMark(t models.Task) string {
	if t.Completed {
		return "[x]"
	}
	return "[ ]"
}

// dueLabel flags dates before today on tasks still open.
func dueLabel(t models.Task, now time.Time) string {
	if t.DueDate == nil {
		return "-"
	}
	if !t.Completed && view.IsOverdue(t, now) {
		return t.DueDate.String() + " (overdue)"
	}
	return t.DueDate.String()
}

func textLabel(t models.Task) string {
	label := t.Text
	if t.Important {
		label = "* " + label
	}
	if t.Archived {
		label += " (archived)"
	}
	return label
}

func (a *App) renderStats(s view.Stats) error {
	tw := tabwriter.NewWriter(a.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Active:\t%d\n", s.ActiveTasks)
	fmt.Fprintf(tw, "Completed:\t%d\n", s.CompletedTasks)
	fmt.Fprintf(tw, "Important:\t%d\n", s.ImportantTasks)
	fmt.Fprintf(tw, "Today:\t%d\n", s.TodayTasks)
	return tw.Flush()
}
