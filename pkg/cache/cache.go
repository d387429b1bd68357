// pkg/cache/cache.go
package cache

import (
	"bufio"
	"compress/bzip2"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
	"zombiezen.com/go/nix/nar"

	"github.com/shellpin/shellpin/pkg/derivation"
	"github.com/shellpin/shellpin/pkg/fetch"
	"github.com/shellpin/shellpin/pkg/store"
)

// DefaultCacheURL is the public nixpkgs binary cache
const DefaultCacheURL = "https://cache.nixos.org"

// Compression identifiers a narinfo may carry
const (
	CompressionXZ    = "xz"
	CompressionBZip2 = "bzip2"
	CompressionNone  = "none"
)

// Cache realizes pinned upstream store hashes from a binary cache into
// the local store: narinfo metadata, NAR download, file-hash
// verification, decompression, extraction.
type Cache struct {
	url    string
	client *fetch.Client
	store  *store.Store
	logger *log.Logger
}

// Config configures a Cache
type Config struct {
	URL    string // DefaultCacheURL when empty
	Client *fetch.Client
	Store  *store.Store
	Logger *log.Logger
}

// New creates a binary cache client
func New(cfg *Config) *Cache {
	url := cfg.URL
	if url == "" {
		url = DefaultCacheURL
	}

	client := cfg.Client
	if client == nil {
		client = fetch.NewClient()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Cache{
		url:    url,
		client: client,
		store:  cfg.Store,
		logger: logger,
	}
}

// NARInfo retrieves metadata for a store hash
func (c *Cache) NARInfo(ctx context.Context, storeHash string) (*NARInfo, error) {
	url := fmt.Sprintf("%s/%s.narinfo", c.url, storeHash)
	c.logger.Printf("Fetching NAR info from: %s", url)

	content, err := c.client.GetString(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetching narinfo for %s: %w", storeHash, err)
	}

	info, err := parseNARInfo(content)
	if err != nil {
		return nil, fmt.Errorf("parsing narinfo for %s: %w", storeHash, err)
	}

	return info, nil
}

// StorePath returns where an upstream store hash lands locally
func (c *Cache) StorePath(storeHash, nameVersion string) string {
	return c.store.PathFor(storeHash, nameVersion)
}

// Realize downloads, verifies, and extracts one upstream store path.
// The archive hash from the narinfo is checked before extraction; a
// mismatch aborts the realization.
func (c *Cache) Realize(ctx context.Context, storeHash, nameVersion string) (string, error) {
	path := c.StorePath(storeHash, nameVersion)
	if c.store.Exists(path) {
		c.logger.Printf("✓ %s already realized: %s", nameVersion, path)
		return path, nil
	}

	info, err := c.NARInfo(ctx, storeHash)
	if err != nil {
		return "", err
	}

	workDir, err := os.MkdirTemp("", "shellpin-nar-*")
	if err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	narPath := filepath.Join(workDir, fmt.Sprintf("%s.nar.%s", nameVersion, info.Compression))
	if err := c.downloadNAR(ctx, info, narPath); err != nil {
		return "", fmt.Errorf("downloading %s: %w", nameVersion, err)
	}

	if err := c.verifyNAR(narPath, info); err != nil {
		return "", fmt.Errorf("verifying %s: %w", nameVersion, err)
	}

	stage, err := c.store.StageDir()
	if err != nil {
		return "", err
	}
	if err := c.extractNAR(narPath, stage, info.Compression); err != nil {
		os.RemoveAll(stage)
		return "", fmt.Errorf("extracting %s: %w", nameVersion, err)
	}

	if err := c.store.Finalize(stage, path); err != nil {
		return "", err
	}

	c.logger.Printf("✓ Realized %s -> %s", nameVersion, path)
	return path, nil
}

func (c *Cache) downloadNAR(ctx context.Context, info *NARInfo, destPath string) error {
	url := fmt.Sprintf("%s/%s", c.url, info.URL)
	c.logger.Printf("Downloading NAR from: %s", url)

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return c.client.Download(ctx, url, f)
}

// verifyNAR checks the downloaded archive against the narinfo FileHash
func (c *Cache) verifyNAR(narPath string, info *NARInfo) error {
	if info.FileHash == "" {
		return fmt.Errorf("narinfo for %s carries no FileHash", info.StorePath)
	}

	expected, err := derivation.ParseHash(info.FileHash)
	if err != nil {
		return fmt.Errorf("narinfo FileHash: %w", err)
	}

	if err := expected.VerifyFile(narPath); err != nil {
		return err
	}

	c.logger.Printf("  ✓ Archive hash verified")
	return nil
}

// extractNAR decompresses and unpacks a NAR archive into destPath
func (c *Cache) extractNAR(narPath, destPath, compression string) error {
	f, err := os.Open(narPath)
	if err != nil {
		return fmt.Errorf("opening NAR file: %w", err)
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	switch compression {
	case CompressionXZ:
		xzr, err := xz.NewReader(r)
		if err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
		r = xzr
	case CompressionBZip2:
		r = bzip2.NewReader(r)
	case CompressionNone, "":
		// already a plain NAR
	default:
		return fmt.Errorf("unsupported compression: %s", compression)
	}

	return extractPlainNAR(r, destPath)
}

func extractPlainNAR(r io.Reader, destPath string) error {
	if err := os.MkdirAll(destPath, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	nr := nar.NewReader(r)
	for {
		hdr, err := nr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading NAR entry: %w", err)
		}

		targetPath := filepath.Join(destPath, hdr.Path)

		switch hdr.Mode.Type() {
		case os.ModeDir:
			if err := os.MkdirAll(targetPath, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", targetPath, err)
			}

		case os.ModeSymlink:
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}
			if err := os.Symlink(hdr.LinkTarget, targetPath); err != nil {
				return fmt.Errorf("creating symlink: %w", err)
			}

		case 0: // regular file
			if err := os.MkdirAll(filepath.Dir(targetPath), 0755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}

			perm := os.FileMode(0644)
			if hdr.Mode&0111 != 0 {
				perm = 0755
			}

			out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("creating file %s: %w", targetPath, err)
			}

			written, err := io.Copy(out, nr)
			out.Close()
			if err != nil {
				return fmt.Errorf("writing file: %w", err)
			}
			if written != hdr.Size {
				return fmt.Errorf("size mismatch for %s", hdr.Path)
			}

		default:
			// Ignore other types
		}
	}

	return nil
}
