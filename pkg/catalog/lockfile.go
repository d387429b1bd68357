// pkg/catalog/lockfile.go
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/shellpin/shellpin/pkg/platform"
)

// DefaultLockName is the lockfile shellpin keeps next to the descriptor
const DefaultLockName = "shellpin.lock"

// LockVersion is the current lockfile format version
const LockVersion = 1

// Locked is one pinned upstream artifact for one system
type Locked struct {
	Attribute   string `json:"attribute"`
	NameVersion string `json:"nameVersion"`
	StoreHash   string `json:"storeHash"`
}

// Lockfile pins every catalog package reference to exact upstream
// artifacts, per system. It is written only by an explicit lock run;
// realization reads it and never resolves behind the user's back.
type Lockfile struct {
	Version  int                          `json:"version"`
	Packages map[string]map[string]Locked `json:"packages"` // name -> system -> artifact
}

// NewLockfile creates an empty lockfile at the current version
func NewLockfile() *Lockfile {
	return &Lockfile{
		Version:  LockVersion,
		Packages: make(map[string]map[string]Locked),
	}
}

// LoadLockfile reads a lockfile from disk
func LoadLockfile(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lockfile: %w", err)
	}

	var lf Lockfile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parsing lockfile: %w", err)
	}

	if lf.Version != LockVersion {
		return nil, fmt.Errorf("lockfile version %d not supported (want %d)", lf.Version, LockVersion)
	}
	if lf.Packages == nil {
		lf.Packages = make(map[string]map[string]Locked)
	}

	return &lf, nil
}

// Save writes the lockfile to disk
func (lf *Lockfile) Save(path string) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling lockfile: %w", err)
	}

	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("writing lockfile: %w", err)
	}

	return nil
}

// Pin records one resolved artifact
func (lf *Lockfile) Pin(name string, system platform.System, locked Locked) {
	systems, ok := lf.Packages[name]
	if !ok {
		systems = make(map[string]Locked)
		lf.Packages[name] = systems
	}
	systems[system.String()] = locked
}

// Lookup returns the pinned artifact for a package on a system. A
// missing entry means the user must re-lock; it is never resolved on
// the fly.
func (lf *Lockfile) Lookup(name string, system platform.System) (*Locked, error) {
	systems, ok := lf.Packages[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (run `shellpin lock`)", ErrNotLocked, name)
	}
	locked, ok := systems[system.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no entry for %s (run `shellpin lock`)", ErrNotLocked, name, system)
	}
	return &locked, nil
}

// Names returns the locked package names, sorted
func (lf *Lockfile) Names() []string {
	names := make([]string, 0, len(lf.Packages))
	for name := range lf.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
