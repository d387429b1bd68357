// pkg/derivation/derivation.go
package derivation

import (
	"fmt"
	"strings"

	"github.com/shellpin/shellpin/pkg/descriptor"
	"github.com/shellpin/shellpin/pkg/platform"
)

// Derivation is a reproducible build recipe for one custom package:
// a pinned source archive, the hash it must verify against, and the
// packaging convention that turns the unpacked source into an
// installable artifact.
type Derivation struct {
	Name    string
	Version string
	System  platform.System
	Source  Source
	Build   string // build format name, e.g. "setuptools"
	Check   bool   // run the format's test phase between build and install
}

// Source pins where the archive comes from and what it must hash to
type Source struct {
	Index string // package index base URL
	Hash  Hash
}

// DefaultIndex is the source index used when a descriptor omits one
const DefaultIndex = "https://files.pythonhosted.org/packages/source"

// FromCustomPackage turns a descriptor recipe into a derivation for one
// system, parsing and normalizing the pinned hash
func FromCustomPackage(name string, pkg descriptor.CustomPackage, system platform.System) (*Derivation, error) {
	hash, err := ParseHash(pkg.Source.Hash)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", name, err)
	}

	index := pkg.Source.Index
	if index == "" {
		index = DefaultIndex
	}

	return &Derivation{
		Name:    name,
		Version: pkg.Version,
		System:  system,
		Source:  Source{Index: index, Hash: hash},
		Build:   pkg.Build,
		Check:   pkg.Check,
	}, nil
}

// NameVersion returns the "<name>-<version>" label used for store paths
// and archive names
func (d *Derivation) NameVersion() string {
	return fmt.Sprintf("%s-%s", d.Name, d.Version)
}

// SourceURL builds the archive URL following the source-index layout:
// <index>/<first-letter>/<name>/<name>-<version>.tar.gz. The URL depends
// only on name and version; a version bump without a matching hash
// update therefore fetches a different archive and fails verification.
func (d *Derivation) SourceURL() string {
	return fmt.Sprintf("%s/%s/%s/%s.tar.gz",
		strings.TrimSuffix(d.Source.Index, "/"),
		d.Name[:1], d.Name, d.NameVersion())
}
