// pkg/catalog/catalog.go
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

var (
	// ErrPackageNotFound indicates a name with no catalog entry
	ErrPackageNotFound = errors.New("package not found")

	// ErrNotLocked indicates a package with no lockfile entry for the
	// target system
	ErrNotLocked = errors.New("package not locked")
)

// Entry is one <name>/index.toml metadata file from the synced catalog
type Entry struct {
	Name        string   `toml:"name"`
	Attribute   string   `toml:"attribute"` // nixpkgs attribute, defaults to Name
	Description string   `toml:"description"`
	Outputs     []string `toml:"outputs"`
}

// Catalog provides lookup into the synced catalog directory
type Catalog struct {
	dir string
}

// New creates a Catalog pointed at the synced catalog directory
func New(cacheDir string) *Catalog {
	return &Catalog{
		dir: filepath.Join(cacheDir, "catalog"),
	}
}

// Load reads and parses <name>/index.toml
func (c *Catalog) Load(name string) (*Entry, error) {
	path := filepath.Join(c.dir, name, "index.toml")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog: %w: %s", ErrPackageNotFound, name)
		}
		return nil, fmt.Errorf("catalog: reading entry for %s: %w", name, err)
	}

	var entry Entry
	if _, err := toml.Decode(string(data), &entry); err != nil {
		return nil, fmt.Errorf("catalog: failed to parse entry for %s: %w", name, err)
	}

	if entry.Name == "" {
		entry.Name = name
	}
	if entry.Attribute == "" {
		entry.Attribute = entry.Name
	}

	return &entry, nil
}

// Attribute resolves a friendly name to its nixpkgs attribute. Names
// absent from the catalog resolve to themselves: the catalog refines,
// it never gates.
func (c *Catalog) Attribute(name string) string {
	entry, err := c.Load(name)
	if err != nil {
		return name
	}
	return entry.Attribute
}
