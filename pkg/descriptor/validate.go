// pkg/descriptor/validate.go
package descriptor

import (
	"fmt"
)

// Validate checks the descriptor for structural problems. A descriptor
// that fails validation must never reach evaluation.
func (d *Descriptor) Validate() error {
	if len(d.Systems) == 0 {
		return fmt.Errorf("descriptor declares no systems")
	}

	seen := make(map[string]bool, len(d.Systems))
	for _, s := range d.Systems {
		if !s.IsValid() {
			return fmt.Errorf("unknown system %q", s)
		}
		if seen[s.String()] {
			return fmt.Errorf("duplicate system %q", s)
		}
		seen[s.String()] = true
	}

	if len(d.Shell.Packages) == 0 {
		return fmt.Errorf("shell declares no packages")
	}

	pkgSeen := make(map[string]bool, len(d.Shell.Packages))
	for _, name := range d.Shell.Packages {
		if name == "" {
			return fmt.Errorf("shell contains an empty package reference")
		}
		if pkgSeen[name] {
			return fmt.Errorf("shell lists package %q twice", name)
		}
		pkgSeen[name] = true
	}

	for name, pkg := range d.Packages {
		if name == "" {
			return fmt.Errorf("custom package with empty name")
		}
		if pkg.Version == "" {
			return fmt.Errorf("custom package %q has no version", name)
		}
		if pkg.Source.Hash == "" {
			return fmt.Errorf("custom package %q has no source hash", name)
		}
		if pkg.Build == "" {
			return fmt.Errorf("custom package %q has no build format", name)
		}
	}

	return nil
}
