// pkg/derivation/builder.go
package derivation

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/shellpin/shellpin/pkg/fetch"
	"github.com/shellpin/shellpin/pkg/store"
)

// Builder realizes derivations: fetch the pinned source, verify it
// against the declared hash, and only then hand it to the build format.
type Builder struct {
	client  *fetch.Client
	store   *store.Store
	formats map[string]Format
	logger  *log.Logger
}

// BuilderConfig configures a Builder
type BuilderConfig struct {
	Client  *fetch.Client
	Store   *store.Store
	Formats map[string]Format // DefaultFormats() when nil
	Logger  *log.Logger
}

// NewBuilder creates a builder
func NewBuilder(cfg *BuilderConfig) *Builder {
	formats := cfg.Formats
	if formats == nil {
		formats = DefaultFormats()
	}

	client := cfg.Client
	if client == nil {
		client = fetch.NewClient()
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Builder{
		client:  client,
		store:   cfg.Store,
		formats: formats,
		logger:  logger,
	}
}

// KnownFormat reports whether a build format name is registered
func (b *Builder) KnownFormat(name string) bool {
	_, ok := b.formats[name]
	return ok
}

// StorePath returns where a derivation's artifact lives once realized.
// The path depends only on the derivation's identity, so identical
// recipes realize to identical paths.
func (b *Builder) StorePath(drv *Derivation) string {
	hash := store.PathHash("drv", drv.Name, drv.Version, drv.Source.Hash.SRI(), drv.Build, drv.System.String())
	return b.store.PathFor(hash, drv.NameVersion())
}

// Realize fetches, verifies, and builds a derivation, returning the
// store path of the installed artifact. The integrity check strictly
// precedes the build: a source that does not match the pinned hash is
// rejected before the build format sees a single byte of it.
func (b *Builder) Realize(ctx context.Context, drv *Derivation) (string, error) {
	format, ok := b.formats[drv.Build]
	if !ok {
		return "", fmt.Errorf("unknown build format %q for package %s", drv.Build, drv.Name)
	}

	path := b.StorePath(drv)
	if b.store.Exists(path) {
		b.logger.Printf("✓ %s already realized: %s", drv.NameVersion(), path)
		return path, nil
	}

	workDir, err := os.MkdirTemp("", "shellpin-src-*")
	if err != nil {
		return "", fmt.Errorf("creating work directory: %w", err)
	}
	defer os.RemoveAll(workDir)

	// Fetch
	url := drv.SourceURL()
	archivePath := filepath.Join(workDir, drv.NameVersion()+".tar.gz")
	b.logger.Printf("Fetching %s", url)
	if err := b.download(ctx, url, archivePath); err != nil {
		return "", fmt.Errorf("fetching source for %s: %w", drv.NameVersion(), err)
	}

	// Verify
	if err := drv.Source.Hash.VerifyFile(archivePath); err != nil {
		return "", fmt.Errorf("verifying source for %s: %w", drv.NameVersion(), err)
	}
	b.logger.Printf("✓ Source verified: %s", drv.Source.Hash.SRI())

	// Unpack
	unpackDir := filepath.Join(workDir, "src")
	if err := unpack(archivePath, unpackDir); err != nil {
		return "", fmt.Errorf("unpacking source for %s: %w", drv.NameVersion(), err)
	}
	srcRoot, err := sourceRoot(unpackDir)
	if err != nil {
		return "", err
	}

	// Build into a stage, then move into the store
	stage, err := b.store.StageDir()
	if err != nil {
		return "", err
	}

	env := &BuildEnv{
		SourceDir: srcRoot,
		OutputDir: stage,
		Check:     drv.Check,
		Logger:    b.logger,
	}
	if err := format.Build(ctx, env); err != nil {
		os.RemoveAll(stage)
		return "", fmt.Errorf("building %s with %s: %w", drv.NameVersion(), drv.Build, err)
	}

	if err := b.store.Finalize(stage, path); err != nil {
		return "", err
	}

	b.logger.Printf("✓ Built %s -> %s", drv.NameVersion(), path)
	return path, nil
}

func (b *Builder) download(ctx context.Context, url, dest string) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	return b.client.Download(ctx, url, f)
}
