// Package cli wires configuration, the database pool and the HTTP surface into commands.
package cli

import (
	"net/http"

	"github.com/spf13/cobra"
)

// Module is a feature module that contributes tables and routes.
// Enabled modules register their models before the schema is ensured and
// have their routes mounted under /api/v1/{Name}.
type Module struct {
	Name   string
	Models []any
	Routes http.Handler
}

// RootOptions holds global flags for all commands.
type RootOptions struct {
	EnvFile string
	Modules []Module
}

// NewRootCommand creates the root command. Running it without a subcommand serves HTTP.
func NewRootCommand(modules ...Module) *cobra.Command {
	opts := &RootOptions{Modules: modules}
	serve := NewServeCommand(opts)

	cmd := &cobra.Command{
		Use:           "vulnguardian",
		Short:         "VulnGuardian vulnerability management server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          serve.RunE,
	}

	cmd.PersistentFlags().StringVar(&opts.EnvFile, "env-file", "", "dotenv override file (default $ENV_FILE or .env)")

	cmd.AddCommand(serve)
	cmd.AddCommand(NewInitDBCommand(opts))

	return cmd
}
