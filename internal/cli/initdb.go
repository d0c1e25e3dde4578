package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"vulnguardian/pkg/postgres"
)

// NewInitDBCommand creates the initdb command.
func NewInitDBCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "initdb",
		Short: "Create missing tables and exit",
		Long: `Create the tables of every enabled module that do not exist yet.

Existing tables are never altered or dropped, so the command is safe to run
repeatedly. The database must be reachable.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInitDB(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
}

func runInitDB(ctx context.Context, opts *RootOptions, out io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	log := newLogger(cfg, out)

	pcfg := poolConfig(cfg)
	pcfg.ConnectOnOpen = true

	pool, err := postgres.Open(ctx, pcfg, log)
	if err != nil {
		return fmt.Errorf("open database pool: %w", err)
	}
	defer func() {
		_ = pool.Close()
	}()

	return postgres.EnsureSchema(ctx, pool, buildRegistry(enabledModules(cfg, opts.Modules)))
}
