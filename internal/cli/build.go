// internal/cli/build.go
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:   "build [attribute...]",
	Short: "Realize one or more outputs",
	Long: `Realize outputs by attribute path and print the resulting store
paths. Custom packages are built from source after their hash is
verified; catalog packages come from the binary cache via the
lockfile.

Examples:
  shellpin build packages.x86_64-linux.darglint
  shellpin build devShells.x86_64-linux.default
  shellpin build formatter.aarch64-darwin`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBuild,
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager()
	if err != nil {
		return err
	}

	for _, attr := range args {
		fmt.Printf("Building %s...\n", attr)
		path, err := m.Build(ctx, attr)
		if err != nil {
			return err
		}
		fmt.Printf("✓ %s -> %s\n", attr, path)
	}

	return nil
}
