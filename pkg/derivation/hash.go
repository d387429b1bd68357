// pkg/derivation/hash.go
package derivation

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"zombiezen.com/go/nix/nixbase32"
)

// ErrHashMismatch is returned when fetched source does not match the
// hash pinned in the descriptor
var ErrHashMismatch = errors.New("hash mismatch")

const sha256Len = sha256.Size

// Hash is a pinned sha256 content hash, normalized to raw digest bytes
type Hash struct {
	digest []byte
}

// ParseHash accepts the hash forms a descriptor may pin:
// SRI ("sha256-<base64>"), prefixed ("sha256:<hex>" or
// "sha256:<nixbase32>"), and bare hex or nixbase32.
func ParseHash(s string) (Hash, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Hash{}, fmt.Errorf("empty hash")
	}

	rest := s
	switch {
	case strings.HasPrefix(s, "sha256-"):
		// SRI form is always base64.
		digest, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(s, "sha256-"))
		if err != nil {
			return Hash{}, fmt.Errorf("invalid SRI hash %q: %w", s, err)
		}
		if len(digest) != sha256Len {
			return Hash{}, fmt.Errorf("invalid SRI hash %q: %d digest bytes", s, len(digest))
		}
		return Hash{digest: digest}, nil

	case strings.HasPrefix(s, "sha256:"):
		rest = strings.TrimPrefix(s, "sha256:")

	case strings.Contains(s, ":") || strings.Contains(s, "-"):
		return Hash{}, fmt.Errorf("unsupported hash algorithm in %q (only sha256)", s)
	}

	switch len(rest) {
	case hex.EncodedLen(sha256Len):
		digest, err := hex.DecodeString(rest)
		if err != nil {
			return Hash{}, fmt.Errorf("invalid hex hash %q: %w", s, err)
		}
		return Hash{digest: digest}, nil

	case nixbase32.EncodedLen(sha256Len):
		digest, err := nixbase32.DecodeString(rest)
		if err != nil {
			return Hash{}, fmt.Errorf("invalid base32 hash %q: %w", s, err)
		}
		return Hash{digest: digest}, nil

	default:
		return Hash{}, fmt.Errorf("hash %q has no recognized sha256 encoding", s)
	}
}

// SumReader computes the hash of everything readable from r
func SumReader(r io.Reader) (Hash, error) {
	h := sha256.New()
	if _, err := io.Copy(h, r); err != nil {
		return Hash{}, fmt.Errorf("computing hash: %w", err)
	}
	return Hash{digest: h.Sum(nil)}, nil
}

// SumFile computes the hash of a file's contents
func SumFile(path string) (Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return Hash{}, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	return SumReader(f)
}

// IsZero reports whether the hash is unset
func (h Hash) IsZero() bool {
	return len(h.digest) == 0
}

// Equal reports whether two hashes carry the same digest
func (h Hash) Equal(other Hash) bool {
	return !h.IsZero() && bytes.Equal(h.digest, other.digest)
}

// SRI returns the canonical SRI form, the one error messages use
func (h Hash) SRI() string {
	return "sha256-" + base64.StdEncoding.EncodeToString(h.digest)
}

// Hex returns the lowercase hex form
func (h Hash) Hex() string {
	return hex.EncodeToString(h.digest)
}

// Base32 returns the nixbase32 form
func (h Hash) Base32() string {
	return nixbase32.EncodeToString(h.digest)
}

func (h Hash) String() string {
	return h.SRI()
}

// VerifyFile compares a file's content hash against h. A mismatch wraps
// ErrHashMismatch and names both hashes in SRI form.
func (h Hash) VerifyFile(path string) error {
	actual, err := SumFile(path)
	if err != nil {
		return err
	}
	if !h.Equal(actual) {
		return fmt.Errorf("%w: expected %s, got %s", ErrHashMismatch, h.SRI(), actual.SRI())
	}
	return nil
}
