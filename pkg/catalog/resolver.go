// pkg/catalog/resolver.go
package catalog

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/shellpin/shellpin/pkg/fetch"
	"github.com/shellpin/shellpin/pkg/platform"
)

// DefaultHydraURL is the upstream build farm queried for store paths
const DefaultHydraURL = "https://hydra.nixos.org"

// hydraBuildInfo is the JSON Hydra returns for a job's latest build
type hydraBuildInfo struct {
	ID           int `json:"id"`
	BuildStatus  int `json:"buildstatus"` // 0 = succeeded
	Buildoutputs map[string]struct {
		Path string `json:"path"`
	} `json:"buildoutputs"`
}

// Resolver turns opaque package names into pinned upstream artifacts.
// Version and provenance are owned entirely by the upstream catalog;
// the resolver only records what upstream currently serves.
type Resolver struct {
	client   *fetch.Client
	catalog  *Catalog
	hydraURL string
	logger   *log.Logger
}

// ResolverConfig configures a Resolver
type ResolverConfig struct {
	Client   *fetch.Client
	Catalog  *Catalog // optional friendly-name metadata
	HydraURL string   // DefaultHydraURL when empty
	Logger   *log.Logger
}

// NewResolver creates a resolver
func NewResolver(cfg *ResolverConfig) *Resolver {
	client := cfg.Client
	if client == nil {
		client = fetch.NewClient()
	}

	hydraURL := cfg.HydraURL
	if hydraURL == "" {
		hydraURL = DefaultHydraURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Resolver{
		client:   client,
		catalog:  cfg.Catalog,
		hydraURL: hydraURL,
		logger:   logger,
	}
}

// Resolve pins one package name for one system: catalog metadata maps
// the name to a nixpkgs attribute, Hydra maps the attribute to the
// store hash the binary cache serves
func (r *Resolver) Resolve(ctx context.Context, name string, system platform.System) (*Locked, error) {
	attr := name
	if r.catalog != nil {
		attr = r.catalog.Attribute(name)
	}

	url := fmt.Sprintf("%s/job/nixos/trunk-combined/nixpkgs.%s.%s/latest", r.hydraURL, attr, system)
	r.logger.Printf("Resolving %q via %s", name, url)

	var buildInfo hydraBuildInfo
	if err := r.client.GetJSON(ctx, url, &buildInfo); err != nil {
		return nil, fmt.Errorf("%w: %s for %s: %v", ErrPackageNotFound, name, system, err)
	}

	if buildInfo.BuildStatus != 0 {
		r.logger.Printf("⚠️  Latest build for %q has status %d", name, buildInfo.BuildStatus)
	}

	out, ok := buildInfo.Buildoutputs["out"]
	if !ok {
		for _, o := range buildInfo.Buildoutputs {
			out = o
			break
		}
	}
	if out.Path == "" {
		return nil, fmt.Errorf("no outputs in build info for %s on %s", name, system)
	}

	hash, nameVersion, err := splitStorePath(out.Path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", name, err)
	}

	r.logger.Printf("✓ Resolved %q -> %s (%s)", name, nameVersion, hash)

	return &Locked{
		Attribute:   attr,
		NameVersion: nameVersion,
		StoreHash:   hash,
	}, nil
}

// splitStorePath splits /nix/store/<hash>-<name>-<version> into its
// hash and name-version parts
func splitStorePath(path string) (hash, nameVersion string, err error) {
	base := strings.TrimPrefix(path, "/nix/store/")
	hash, nameVersion, ok := strings.Cut(base, "-")
	if !ok || hash == "" || nameVersion == "" {
		return "", "", fmt.Errorf("invalid store path format: %s", path)
	}
	return hash, nameVersion, nil
}
