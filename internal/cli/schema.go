package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pulseload/internal/logging"
	"github.com/vvka-141/pulseload/internal/store"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

var schemaCmd = &cobra.Command{
	Use:   "schema [category...]",
	Short: "Print or apply CREATE TABLE statements",
	Long: `Schema prints CREATE TABLE IF NOT EXISTS statements for the store dialect.
With --apply the statements are executed against the store instead.
Without category arguments every category is included.

Examples:
  pulseload schema --store mysql
  pulseload schema top-user --store sqlite --sqlite-path pulse.db --apply`,
	RunE: runSchema,
}

type schemaFlagValues struct {
	store storeFlags
	apply bool
}

var schemaFlags schemaFlagValues

func init() {
	rootCmd.AddCommand(schemaCmd)
	registerStoreFlags(schemaCmd, &schemaFlags.store)
	schemaCmd.Flags().BoolVar(&schemaFlags.apply, "apply", false,
		"Execute the statements against the store")
}

func runSchema(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cats := pulse.AllCategories
	if len(args) > 0 {
		if cats, err = parseCategories(args); err != nil {
			return err
		}
	}

	if !schemaFlags.apply {
		dialect, err := parseDriver(firstNonEmpty(schemaFlags.store.driver, cfg.Store.Driver))
		if err != nil {
			return err
		}
		for _, c := range cats {
			fmt.Fprintf(cmd.OutOrStdout(), "%s;\n\n", store.CreateTableStatement(dialect, c.Table()))
		}
		return nil
	}

	logger := logging.NewConsoleLogger(getVerboseFlag(cmd))
	target, err := resolveStore(schemaFlags.store, cfg.Store, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(commandContext(cmd), cfg.TimeoutOr(pulse.DefaultTimeout))
	defer cancel()
	s, err := target.open(ctx)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := store.EnsureSchema(ctx, s, cats...); err != nil {
		return err
	}
	logger.Info("created %d table(s) in %s", len(cats), target.describe)
	return nil
}
