// pkg/derivation/unpack.go
package derivation

import (
	"archive/tar"
	"compress/bzip2"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	securejoin "github.com/cyphar/filepath-securejoin"
	"github.com/ulikunitz/xz"
)

// unpack extracts a source archive into destDir. Compression is picked
// by extension: .tar.gz/.tgz, .tar.xz, .tar.bz2.
func unpack(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	var r io.Reader
	switch {
	case strings.HasSuffix(archivePath, ".tar.gz"), strings.HasSuffix(archivePath, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(archivePath, ".tar.xz"):
		xzr, err := xz.NewReader(f)
		if err != nil {
			return fmt.Errorf("creating xz reader: %w", err)
		}
		r = xzr
	case strings.HasSuffix(archivePath, ".tar.bz2"):
		r = bzip2.NewReader(f)
	default:
		return fmt.Errorf("unsupported archive format: %s", filepath.Base(archivePath))
	}

	return extractTar(r, destDir)
}

func extractTar(r io.Reader, destDir string) error {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := securePath(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("creating directory %s: %w", target, err)
			}

		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return fmt.Errorf("creating symlink: %w", err)
			}

		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("creating parent directory: %w", err)
			}

			perm := os.FileMode(0644)
			if hdr.FileInfo().Mode()&0111 != 0 {
				perm = 0755
			}

			out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
			if err != nil {
				return fmt.Errorf("creating file %s: %w", target, err)
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return fmt.Errorf("writing file %s: %w", target, err)
			}
			out.Close()

		default:
			// Ignore other entry types
		}
	}

	return nil
}

// securePath joins a tar entry name under destDir, rejecting escapes.
// Resolution goes through any symlinks earlier entries created, with
// destDir as the root, so a link pointing outside the destination can
// never redirect a later write.
func securePath(destDir, name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes destination", name)
	}

	target, err := securejoin.SecureJoin(destDir, clean)
	if err != nil {
		return "", fmt.Errorf("archive entry %q: %w", name, err)
	}
	return target, nil
}

// sourceRoot returns the directory to build from. Source archives
// conventionally unpack to a single <name>-<version>/ directory; when
// exactly one directory comes out, build from it.
func sourceRoot(destDir string) (string, error) {
	entries, err := os.ReadDir(destDir)
	if err != nil {
		return "", fmt.Errorf("reading unpacked source: %w", err)
	}

	if len(entries) == 1 && entries[0].IsDir() {
		return filepath.Join(destDir, entries[0].Name()), nil
	}
	return destDir, nil
}
