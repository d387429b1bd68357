// pkg/descriptor/eval.go
package descriptor

import (
	"fmt"
	"sort"

	"github.com/shellpin/shellpin/pkg/platform"
)

// PackageRef is one resolved package reference in an evaluated output
type PackageRef struct {
	Name   string `json:"name"`
	Custom bool   `json:"custom,omitempty"` // declared in packages:, not the catalog
}

// DevShell is the evaluated devShells.<system>.default output
type DevShell struct {
	Name     string       `json:"name"`
	Packages []PackageRef `json:"packages"` // declared order preserved
}

// Outputs holds everything the descriptor produces for one system
type Outputs struct {
	System    platform.System          `json:"system"`
	DevShell  DevShell                 `json:"devShell"`
	Formatter *PackageRef              `json:"formatter,omitempty"`
	Packages  map[string]CustomPackage `json:"packages,omitempty"`
}

// Evaluate produces the outputs for one system. Evaluation is pure:
// no I/O, no clock, and the same descriptor and system always yield
// identical outputs. Systems outside the declared set fail, they never
// fall back to a neighbour.
func (d *Descriptor) Evaluate(system platform.System) (*Outputs, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	if !d.SupportsSystem(system) {
		return nil, fmt.Errorf("system %q not in supported set %v", system, d.Systems)
	}

	shellName := d.Shell.Name
	if shellName == "" {
		shellName = "devshell"
	}

	refs := make([]PackageRef, 0, len(d.Shell.Packages))
	for _, name := range d.Shell.Packages {
		refs = append(refs, PackageRef{Name: name, Custom: d.IsCustom(name)})
	}

	out := &Outputs{
		System: system,
		DevShell: DevShell{
			Name:     shellName,
			Packages: refs,
		},
		Packages: make(map[string]CustomPackage, len(d.Packages)),
	}

	if d.Formatter != "" {
		out.Formatter = &PackageRef{Name: d.Formatter, Custom: d.IsCustom(d.Formatter)}
	}

	for name, pkg := range d.Packages {
		out.Packages[name] = pkg
	}

	return out, nil
}

// EvaluateAll evaluates every declared system, in declaration order.
// Each system is evaluated independently; one failure aborts the lot.
func (d *Descriptor) EvaluateAll() ([]*Outputs, error) {
	all := make([]*Outputs, 0, len(d.Systems))
	for _, system := range d.Systems {
		out, err := d.Evaluate(system)
		if err != nil {
			return nil, err
		}
		all = append(all, out)
	}
	return all, nil
}

// PackageNames returns the custom package names in sorted order, so
// callers iterating outputs stay deterministic
func (o *Outputs) PackageNames() []string {
	names := make([]string, 0, len(o.Packages))
	for name := range o.Packages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
