package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the corpus categories and their tables",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTABLE\tNATURAL KEY\tPATH")
	for _, c := range pulse.AllCategories {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c, c.Table().Name, c.NaturalKey(), cfg.CategoryRoot(cfg.Corpus.Root, c))
	}
	return w.Flush()
}
