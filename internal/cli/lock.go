// internal/cli/lock.go
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var lockSync bool

var lockCmd = &cobra.Command{
	Use:   "lock",
	Short: "Pin every package reference in the lockfile",
	Long: `Resolve each catalog package for every supported system and write
shellpin.lock. Custom packages are pinned by their source hash and
never appear in the lockfile.

Examples:
  shellpin lock
  shellpin lock --sync`,
	Args: cobra.NoArgs,
	RunE: runLock,
}

func init() {
	lockCmd.Flags().BoolVar(&lockSync, "sync", false, "refresh catalog metadata before resolving")
}

func runLock(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	m, err := newManager()
	if err != nil {
		return err
	}

	if lockSync {
		fmt.Println("Syncing catalog metadata...")
		if err := m.SyncCatalog(); err != nil {
			fmt.Fprintf(os.Stderr, "⚠️  Catalog sync failed: %v\n", err)
		}
	}

	fmt.Println("Resolving packages...")
	if err := m.Lock(ctx); err != nil {
		return err
	}

	fmt.Println("✓ Wrote shellpin.lock")
	return nil
}
