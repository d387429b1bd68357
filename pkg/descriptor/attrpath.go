// pkg/descriptor/attrpath.go
package descriptor

import (
	"fmt"
	"strings"

	"github.com/shellpin/shellpin/pkg/platform"
)

// Output attribute kinds
const (
	KindDevShells = "devShells"
	KindFormatter = "formatter"
	KindPackages  = "packages"
)

// AttrPath addresses one evaluated output, flake-style:
// devShells.<system>.default, formatter.<system>, packages.<system>.<name>
type AttrPath struct {
	Kind   string
	System platform.System
	Name   string // "default" for devShells, package name for packages, empty for formatter
}

// ParseAttrPath parses a dotted attribute path
func ParseAttrPath(s string) (*AttrPath, error) {
	parts := strings.Split(s, ".")

	switch parts[0] {
	case KindFormatter:
		if len(parts) != 2 {
			return nil, fmt.Errorf("attribute path %q: want formatter.<system>", s)
		}
		return &AttrPath{Kind: KindFormatter, System: platform.System(parts[1])}, nil

	case KindDevShells, KindPackages:
		if len(parts) != 3 {
			return nil, fmt.Errorf("attribute path %q: want %s.<system>.<name>", s, parts[0])
		}
		if parts[2] == "" {
			return nil, fmt.Errorf("attribute path %q: empty attribute name", s)
		}
		return &AttrPath{Kind: parts[0], System: platform.System(parts[1]), Name: parts[2]}, nil

	default:
		return nil, fmt.Errorf("attribute path %q: unknown output kind %q", s, parts[0])
	}
}

// String reassembles the dotted form
func (a *AttrPath) String() string {
	if a.Kind == KindFormatter {
		return fmt.Sprintf("%s.%s", a.Kind, a.System)
	}
	return fmt.Sprintf("%s.%s.%s", a.Kind, a.System, a.Name)
}
