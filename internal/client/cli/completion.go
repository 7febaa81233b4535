package cli

import (
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/view"
	"github.com/spf13/cobra"
)

func priorityNames() []string {
	out := make([]string, 0, len(view.Priorities))
	for _, p := range view.Priorities {
		out = append(out, string(p))
	}
	return out
}

func categoryNames() []string {
	out := make([]string, 0, len(view.Categories))
	for _, c := range view.Categories {
		out = append(out, string(c.ID))
	}
	return out
}

func sortKeyNames() []string {
	out := make([]string, 0, len(view.SortKeys))
	for _, k := range view.SortKeys {
		out = append(out, string(k))
	}
	return out
}

// oneOf renders values for flag help, e.g. "high, medium or low".
func oneOf(values []string) string {
	if len(values) < 2 {
		return strings.Join(values, "")
	}
	return strings.Join(values[:len(values)-1], ", ") + " or " + values[len(values)-1]
}

func completeFrom(values []string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		out := make([]string, 0, len(values))
		for _, v := range values {
			if strings.HasPrefix(strings.ToLower(v), strings.ToLower(toComplete)) {
				out = append(out, v)
			}
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	}
}

// registerTaskCompletions offers the known priorities and the suggested
// tags; any tag is still accepted.
func registerTaskCompletions(cmd *cobra.Command) {
	_ = cmd.RegisterFlagCompletionFunc("priority", completeFrom(priorityNames()))
	_ = cmd.RegisterFlagCompletionFunc("tag", completeFrom(view.PredefinedTags))
}
