package cli

import (
	"errors"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/models"
	"github.com/dmitrijs2005/gophtasks/internal/view"
	"github.com/spf13/cobra"
)

var errNothingToChange = errors.New("nothing to change, pass at least one of --text, --priority, --tag, --due, --no-due")

func (a *App) listCommand() *cobra.Command {
	var category, search, sortBy string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show your tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			q := view.Query{Search: search}
			if category != "" {
				c, err := view.ParseCategory(category)
				if err != nil {
					return err
				}
				q.Category = c
			}
			if sortBy != "" {
				k, err := view.ParseSortKey(sortBy)
				if err != nil {
					return err
				}
				q.SortBy = k
			}

			tasks, err := a.api.ListTasks(cmd.Context(), q)
			if err != nil {
				return a.check(err)
			}
			return a.renderTasks(tasks)
		},
	}

	cmd.Flags().StringVar(&category, "category", "", oneOf(categoryNames()))
	cmd.Flags().StringVarP(&search, "search", "q", "", "only tasks whose text or tags contain this")
	cmd.Flags().StringVar(&sortBy, "sort", "", oneOf(sortKeyNames()))
	_ = cmd.RegisterFlagCompletionFunc("category", completeFrom(categoryNames()))
	_ = cmd.RegisterFlagCompletionFunc("sort", completeFrom(sortKeyNames()))
	return cmd
}

func (a *App) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show task counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			s, err := a.api.Stats(cmd.Context())
			if err != nil {
				return a.check(err)
			}
			return a.renderStats(s)
		},
	}
}

func (a *App) addCommand() *cobra.Command {
	var (
		priority string
		tags     []string
		due      string
	)

	cmd := &cobra.Command{
		Use:   "add <text>...",
		Short: "Create a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			n := models.NewTask{Text: strings.Join(args, " "), Tags: tags}
			if priority != "" {
				p, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				n.Priority = p
			}
			if due != "" {
				d, err := models.ParseDate(due)
				if err != nil {
					return err
				}
				n.DueDate = &d
			}

			task, err := a.api.CreateTask(cmd.Context(), n)
			if err != nil {
				return a.check(err)
			}
			a.printf("Created task %s\n", task.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&priority, "priority", "p", "", oneOf(priorityNames())+" (default medium)")
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "tag to attach, repeatable; e.g. "+strings.Join(view.PredefinedTags, ", "))
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	registerTaskCompletions(cmd)
	return cmd
}

func (a *App) editCommand() *cobra.Command {
	var (
		text     string
		priority string
		tags     []string
		due      string
		noDue    bool
	)

	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Change the text, priority, tags or due date of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}

			var p models.TaskPatch
			flags := cmd.Flags()
			if flags.Changed("text") {
				p.Text = &text
			}
			if flags.Changed("priority") {
				pr, err := models.ParsePriority(priority)
				if err != nil {
					return err
				}
				p.Priority = &pr
			}
			if flags.Changed("tag") {
				p.Tags = tags
				p.TagsSet = true
			}
			if flags.Changed("due") {
				d, err := models.ParseDate(due)
				if err != nil {
					return err
				}
				p.DueDate = &d
			}
			p.ClearDueDate = noDue

			if p.IsEmpty() {
				return errNothingToChange
			}
			if err := p.Validate(); err != nil {
				return err
			}

			return a.update(cmd, args[0], p)
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "new task text")
	cmd.Flags().StringVarP(&priority, "priority", "p", "", oneOf(priorityNames()))
	cmd.Flags().StringArrayVarP(&tags, "tag", "t", nil, "replace the tags, repeatable; --tag '' clears them")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD")
	cmd.Flags().BoolVar(&noDue, "no-due", false, "remove the due date")
	cmd.MarkFlagsMutuallyExclusive("due", "no-due")
	registerTaskCompletions(cmd)
	return cmd
}

type toggle struct {
	use   string
	short string
	set   func(p *models.TaskPatch, v *bool)
	value bool
}

// toggleCommands are the one-flag updates: done/undone, archive/unarchive
// and star/unstar.
func (a *App) toggleCommands() []*cobra.Command {
	completed := func(p *models.TaskPatch, v *bool) { p.Completed = v }
	archived := func(p *models.TaskPatch, v *bool) { p.Archived = v }
	important := func(p *models.TaskPatch, v *bool) { p.Important = v }

	toggles := []toggle{
		{"done", "Mark a task completed", completed, true},
		{"undone", "Mark a task not completed", completed, false},
		{"archive", "Archive a task", archived, true},
		{"unarchive", "Bring a task back from the archive", archived, false},
		{"star", "Mark a task important", important, true},
		{"unstar", "Unmark a task as important", important, false},
	}

	cmds := make([]*cobra.Command, 0, len(toggles))
	for _, t := range toggles {
		cmds = append(cmds, &cobra.Command{
			Use:   t.use + " <id>",
			Short: t.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.requireLogin(); err != nil {
					return err
				}
				v := t.value
				var p models.TaskPatch
				t.set(&p, &v)
				return a.update(cmd, args[0], p)
			},
		})
	}
	return cmds
}

func (a *App) update(cmd *cobra.Command, id string, p models.TaskPatch) error {
	task, err := a.api.UpdateTask(cmd.Context(), id, p)
	if err != nil {
		return a.check(err)
	}
	a.printf("Updated task %s\n", task.ID)
	return a.renderTasks([]models.Task{*task})
}

func (a *App) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireLogin(); err != nil {
				return err
			}
			task, err := a.api.DeleteTask(cmd.Context(), args[0])
			if err != nil {
				return a.check(err)
			}
			if task != nil {
				a.printf("Task deleted successfully: %s\n", task.Text)
			} else {
				a.printf("Task deleted successfully\n")
			}
			return nil
		},
	}
}
