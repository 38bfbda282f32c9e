package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/RichieRish05/ImmiAI/internal/version"
)

// NewVersionCmd constructs the `immiai version` subcommand.
// It prints the binary version, git commit, and build date injected at
// build time via -ldflags. Falls back to "dev"/"unknown" for local builds.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the immiai version, git commit, and build date",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("immiai %s (commit: %s, built: %s)\n",
				version.Version, version.Commit, version.BuildDate)
		},
	}
}
