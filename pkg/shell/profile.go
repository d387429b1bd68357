// pkg/shell/profile.go
package shell

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Entry is one realized package going into a profile, in shell order
type Entry struct {
	Name      string `json:"name"`
	StorePath string `json:"store_path"`
}

// Manifest is the metadata written next to a built profile
type Manifest struct {
	Name      string  `json:"name"`
	System    string  `json:"system"`
	Entries   []Entry `json:"entries"`
	CreatedAt string  `json:"created_at"`
}

// Profile is a composed dev shell: a bin/ directory of symlinks into
// store paths, rebuilt from scratch on every materialization
type Profile struct {
	dir string
}

// NewProfile creates a profile rooted at dir
func NewProfile(dir string) *Profile {
	return &Profile{dir: dir}
}

// Dir returns the profile root
func (p *Profile) Dir() string {
	return p.dir
}

// BinDir returns the directory that goes on the PATH
func (p *Profile) BinDir() string {
	return filepath.Join(p.dir, "bin")
}

// Build composes the profile from realized packages. Entries are
// processed in shell order and the first provider of a program name
// wins, so the descriptor's ordering is the precedence.
func (p *Profile) Build(name, system string, entries []Entry) error {
	if err := os.RemoveAll(p.dir); err != nil {
		return fmt.Errorf("clearing profile: %w", err)
	}

	binDir := p.BinDir()
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return fmt.Errorf("creating profile bin: %w", err)
	}

	for _, entry := range entries {
		if err := p.linkBinaries(entry, binDir); err != nil {
			return err
		}
	}

	return p.saveManifest(&Manifest{
		Name:      name,
		System:    system,
		Entries:   entries,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	})
}

func (p *Profile) linkBinaries(entry Entry, binDir string) error {
	srcBin := filepath.Join(entry.StorePath, "bin")
	files, err := os.ReadDir(srcBin)
	if err != nil {
		if os.IsNotExist(err) {
			// Package ships no programs; nothing to put on the PATH.
			return nil
		}
		return fmt.Errorf("reading %s: %w", srcBin, err)
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		link := filepath.Join(binDir, f.Name())
		if _, err := os.Lstat(link); err == nil {
			continue // earlier entry already provides this program
		}
		if err := os.Symlink(filepath.Join(srcBin, f.Name()), link); err != nil {
			return fmt.Errorf("linking %s from %s: %w", f.Name(), entry.Name, err)
		}
	}

	return nil
}

func (p *Profile) saveManifest(m *Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(p.dir, "profile.json"), data, 0644)
}

// LoadManifest reads the metadata of a previously built profile
func (p *Profile) LoadManifest() (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(p.dir, "profile.json"))
	if err != nil {
		return nil, fmt.Errorf("profile not built: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
