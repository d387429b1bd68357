// pkg/catalog/sync.go
package catalog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// DefaultBranch is the catalog repository branch synced by default
const DefaultBranch = "main"

// Sync shallow-clones the catalog repository and copies its packages/
// tree into <cacheDir>/catalog, replacing whatever was there
func Sync(repoURL, cacheDir string) error {
	tempDir, err := os.MkdirTemp("", "shellpin-catalog-*")
	if err != nil {
		return fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(tempDir)

	fmt.Printf("Updating catalog from %s...\n", repoURL)

	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           repoURL,
		ReferenceName: plumbing.NewBranchReferenceName(DefaultBranch),
		SingleBranch:  true,
		Depth:         1,
		Progress:      os.Stdout,
	})
	if err != nil {
		return fmt.Errorf("git clone failed: %w", err)
	}

	catalogDir := filepath.Join(cacheDir, "catalog")
	if err := os.RemoveAll(catalogDir); err != nil {
		return fmt.Errorf("clearing old catalog: %w", err)
	}

	if err := copyDir(filepath.Join(tempDir, "packages"), catalogDir); err != nil {
		return fmt.Errorf("copying catalog entries: %w", err)
	}

	fmt.Println("Catalog updated successfully.")
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}

func copyDir(src, dst string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dst, 0755); err != nil {
		return err
	}

	for _, entry := range entries {
		srcPath := filepath.Join(src, entry.Name())
		dstPath := filepath.Join(dst, entry.Name())

		if entry.IsDir() {
			if err := copyDir(srcPath, dstPath); err != nil {
				return err
			}
		} else {
			if err := copyFile(srcPath, dstPath); err != nil {
				return err
			}
		}
	}

	return nil
}
