// internal/cli/fmt.go
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [args...]",
	Short: "Run the project's formatter",
	Long: `Realize the descriptor's formatter output and run it from the
project directory. Arguments are passed through; with none the
formatter runs on the whole project.

Examples:
  shellpin fmt
  shellpin fmt flake.nix modules/`,
	RunE: runFmt,
}

func runFmt(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager()
	if err != nil {
		return err
	}

	system, err := targetSystem()
	if err != nil {
		return err
	}

	return m.Fmt(ctx, system, args)
}
