// errors.go
package shellpin

import (
	"errors"
	"fmt"

	"github.com/shellpin/shellpin/pkg/catalog"
	"github.com/shellpin/shellpin/pkg/derivation"
)

var (
	// ErrPackageNotFound indicates a package reference could not be resolved
	ErrPackageNotFound = catalog.ErrPackageNotFound

	// ErrHashMismatch indicates a source integrity verification failure
	ErrHashMismatch = derivation.ErrHashMismatch

	// ErrNotLocked indicates a package has no lockfile entry for the target system
	ErrNotLocked = catalog.ErrNotLocked

	// ErrSystemNotSupported indicates the system is not in the descriptor's supported set
	ErrSystemNotSupported = errors.New("system not supported")

	// ErrInvalidDescriptor indicates the descriptor failed validation
	ErrInvalidDescriptor = errors.New("invalid descriptor")
)

// Error wraps an error with the failing operation and output attribute
type Error struct {
	Op   string // Operation that failed (e.g., "build", "shell")
	Attr string // Output attribute path if applicable
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Attr != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Attr, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
