// Package commands defines all Cobra CLI commands for the immiai binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/RichieRish05/ImmiAI/internal/audit"
	"github.com/RichieRish05/ImmiAI/internal/config"
	"github.com/RichieRish05/ImmiAI/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "immiai",
		Short: "ImmiAI — immigration rights assistant powered by LLMs",
		Long: `ImmiAI is an AI assistant that helps people understand their rights
during encounters with immigration enforcement.

It answers know-your-rights questions grounded in a curated knowledge base,
collects community activity reports, and forwards emergency recordings to a
designated attorney.

Model provider is selected via the MODEL_PROVIDER environment variable
or a YAML config file (~/.immiai/config.yaml).
See 'immiai --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.immiai/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewServeCmd(),
		NewIngestCmd(),
		NewVersionCmd(),
	)

	return root
}
