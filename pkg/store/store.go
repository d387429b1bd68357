// pkg/store/store.go
package store

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"zombiezen.com/go/nix/nixbase32"
)

// Store is the local content-addressed store. Every realized package,
// whether fetched from the binary cache or built from source, lands in
// <root>/store/<hash32>-<name> and is never mutated afterwards.
type Store struct {
	root string
}

// New creates a store rooted at the given directory
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the store root directory
func (s *Store) Root() string {
	return s.root
}

// Dir returns the directory holding store paths
func (s *Store) Dir() string {
	return filepath.Join(s.root, "store")
}

// PathFor returns the store path for a realization identity. The hash
// component must come from PathHash (or be an upstream store hash).
func (s *Store) PathFor(hash, name string) string {
	return filepath.Join(s.Dir(), fmt.Sprintf("%s-%s", hash, name))
}

// Exists reports whether a store path has already been realized
func (s *Store) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// StageDir creates a staging directory on the same filesystem as the
// store, so a finished realization can be moved in with one rename
func (s *Store) StageDir() (string, error) {
	staging := filepath.Join(s.root, "staging")
	if err := os.MkdirAll(staging, 0755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}
	return os.MkdirTemp(staging, "realize-*")
}

// Finalize moves a staged realization into its store path. An already
// realized path wins; the stage is discarded.
func (s *Store) Finalize(stage, path string) error {
	if err := os.MkdirAll(s.Dir(), 0755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}

	if s.Exists(path) {
		os.RemoveAll(stage)
		return nil
	}

	if err := os.Rename(stage, path); err != nil {
		return fmt.Errorf("finalizing store path: %w", err)
	}
	return nil
}

// PathHash derives the 32-character store hash for a realization
// identity. Identical identity parts always produce the same hash.
func PathHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	encoded := nixbase32.EncodeToString(sum[:])
	return encoded[:32]
}
