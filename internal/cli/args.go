package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

// requireCategories validates that categories are named or --all is set,
// but not both.
func requireCategories(cmd *cobra.Command, args []string) error {
	all, _ := cmd.Flags().GetBool("all")
	if all && len(args) > 0 {
		return fmt.Errorf("invalid argument: --all cannot be combined with category names")
	}
	if !all && len(args) == 0 {
		return fmt.Errorf(`missing required argument: <category>... or --all

Usage: %s

Example:
  %s aggregated-transaction top-user

Use 'pulseload categories' to see available categories.`, cmd.UseLine(), cmd.CommandPath())
	}
	return nil
}

// parseCategories resolves category names, reporting every unknown one.
// Repeated names are run once.
func parseCategories(args []string) ([]pulse.Category, error) {
	var (
		cats    []pulse.Category
		unknown []string
		seen    = make(map[pulse.Category]bool)
	)
	for _, arg := range args {
		c, err := pulse.ParseCategory(arg)
		if err != nil {
			unknown = append(unknown, arg)
			continue
		}
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%s: %w", strings.Join(unknown, ", "), pulse.ErrUnknownCategory)
	}
	return cats, nil
}
