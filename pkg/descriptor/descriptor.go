// pkg/descriptor/descriptor.go
package descriptor

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shellpin/shellpin/pkg/platform"
)

// DefaultFileName is the descriptor file shellpin looks for in a project root
const DefaultFileName = "shellpin.yaml"

// Descriptor is the declarative environment definition: for every
// supported system it yields a development shell, an optional formatter
// reference, and a set of custom source-built packages.
type Descriptor struct {
	Description string                   `yaml:"description"`
	Systems     []platform.System        `yaml:"systems"`
	Shell       Shell                    `yaml:"shell"`
	Formatter   string                   `yaml:"formatter"`
	Packages    map[string]CustomPackage `yaml:"packages"`
}

// Shell declares the development shell: a name and an ordered list of
// package references to put on the PATH
type Shell struct {
	Name     string   `yaml:"name"`
	Packages []string `yaml:"packages"`
}

// CustomPackage is a build recipe for a package absent from the upstream
// catalog: a pinned source archive, the hash it must verify against, and
// the packaging convention used to build it
type CustomPackage struct {
	Version string `yaml:"version" json:"version"`
	Source  Source `yaml:"source" json:"source"`
	Build   string `yaml:"build" json:"build"`
	Check   bool   `yaml:"check" json:"check"`
}

// Source locates the package source archive on a package index and pins
// its expected content hash
type Source struct {
	Index string `yaml:"index" json:"index,omitempty"`
	Hash  string `yaml:"hash" json:"hash"`
}

// Load reads and parses a descriptor file
func Load(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading descriptor: %w", err)
	}
	return Parse(data)
}

// Parse parses descriptor yaml
func Parse(data []byte) (*Descriptor, error) {
	var d Descriptor
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parsing descriptor: %w", err)
	}

	if len(d.Systems) == 0 {
		d.Systems = append(d.Systems, platform.DefaultSystems...)
	}

	return &d, nil
}

// IsCustom reports whether name refers to a package declared in the
// descriptor's packages section rather than the upstream catalog
func (d *Descriptor) IsCustom(name string) bool {
	_, ok := d.Packages[name]
	return ok
}

// SupportsSystem reports whether the descriptor lists the given system
func (d *Descriptor) SupportsSystem(system platform.System) bool {
	for _, s := range d.Systems {
		if s == system {
			return true
		}
	}
	return false
}
