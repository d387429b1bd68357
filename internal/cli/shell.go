// internal/cli/shell.go
package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var shellPrint bool

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Enter the project's dev shell",
	Long: `Realize every package of the default dev shell for the target
system, compose them into a profile, and start an interactive shell
with the profile on the PATH.

Examples:
  shellpin shell
  shellpin shell --system=aarch64-linux
  shellpin shell --print`,
	Args: cobra.NoArgs,
	RunE: runShell,
}

func init() {
	shellCmd.Flags().BoolVar(&shellPrint, "print", false, "print the activation script instead of entering the shell")
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager()
	if err != nil {
		return err
	}

	system, err := targetSystem()
	if err != nil {
		return err
	}

	return m.Shell(ctx, system, shellPrint)
}
