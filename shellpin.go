// shellpin.go
package shellpin

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/shellpin/shellpin/pkg/cache"
	"github.com/shellpin/shellpin/pkg/catalog"
	"github.com/shellpin/shellpin/pkg/core"
	"github.com/shellpin/shellpin/pkg/derivation"
	"github.com/shellpin/shellpin/pkg/descriptor"
	"github.com/shellpin/shellpin/pkg/fetch"
	"github.com/shellpin/shellpin/pkg/platform"
	"github.com/shellpin/shellpin/pkg/shell"
	"github.com/shellpin/shellpin/pkg/store"
)

// Re-export descriptor types for convenience
type (
	Descriptor    = descriptor.Descriptor
	Outputs       = descriptor.Outputs
	AttrPath      = descriptor.AttrPath
	CustomPackage = descriptor.CustomPackage
	System        = platform.System
	Config        = core.Config
)

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return core.DefaultConfig()
}

// Manager evaluates a project's descriptor and realizes its outputs
type Manager struct {
	projectDir string
	config     *core.Config
	desc       *descriptor.Descriptor
	cache      *cache.Cache
	builder    *derivation.Builder
	resolver   *catalog.Resolver
	logger     *log.Logger
}

// NewManager loads the descriptor in projectDir and wires up the
// realization machinery
func NewManager(projectDir string, cfg *core.Config) (*Manager, error) {
	if cfg == nil {
		cfg = core.DefaultConfig()
	}

	desc, err := descriptor.Load(filepath.Join(projectDir, descriptor.DefaultFileName))
	if err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	logger := core.NewLogger(cfg.Debug)
	client := fetch.NewClientWithTimeout(cfg.Timeout())
	st := store.New(cfg.StoreRoot)

	cat := catalog.New(filepath.Join(cfg.StoreRoot, "cache"))

	m := &Manager{
		projectDir: projectDir,
		config:     cfg,
		desc:       desc,
		logger:     logger,
		cache: cache.New(&cache.Config{
			URL:    cfg.CacheURL,
			Client: client,
			Store:  st,
			Logger: logger,
		}),
		builder: derivation.NewBuilder(&derivation.BuilderConfig{
			Client: client,
			Store:  st,
			Logger: logger,
		}),
		resolver: catalog.NewResolver(&catalog.ResolverConfig{
			Client:   client,
			Catalog:  cat,
			HydraURL: cfg.HydraURL,
			Logger:   logger,
		}),
	}

	for name, pkg := range desc.Packages {
		if !m.builder.KnownFormat(pkg.Build) {
			return nil, fmt.Errorf("%w: package %q uses unknown build format %q", ErrInvalidDescriptor, name, pkg.Build)
		}
	}

	return m, nil
}

// Descriptor returns the loaded descriptor
func (m *Manager) Descriptor() *descriptor.Descriptor {
	return m.desc
}

// Eval evaluates the descriptor for one system
func (m *Manager) Eval(system platform.System) (*descriptor.Outputs, error) {
	if !m.desc.SupportsSystem(system) {
		return nil, &Error{Op: "eval", Err: fmt.Errorf("%w: %s (descriptor lists %v)", ErrSystemNotSupported, system, m.desc.Systems)}
	}
	return m.desc.Evaluate(system)
}

// EvalAttr evaluates one addressed output: the dev shell, the
// formatter reference, or a custom package recipe
func (m *Manager) EvalAttr(attr string) (any, error) {
	path, err := descriptor.ParseAttrPath(attr)
	if err != nil {
		return nil, &Error{Op: "eval", Attr: attr, Err: err}
	}

	out, err := m.Eval(path.System)
	if err != nil {
		return nil, err
	}

	switch path.Kind {
	case descriptor.KindDevShells:
		if path.Name != "default" {
			return nil, &Error{Op: "eval", Attr: attr, Err: fmt.Errorf("unknown dev shell %q", path.Name)}
		}
		return out.DevShell, nil

	case descriptor.KindFormatter:
		if out.Formatter == nil {
			return nil, &Error{Op: "eval", Attr: attr, Err: fmt.Errorf("descriptor declares no formatter")}
		}
		return out.Formatter, nil

	case descriptor.KindPackages:
		pkg, ok := out.Packages[path.Name]
		if !ok {
			return nil, &Error{Op: "eval", Attr: attr, Err: fmt.Errorf("%w: %s", ErrPackageNotFound, path.Name)}
		}
		return pkg, nil

	default:
		return nil, &Error{Op: "eval", Attr: attr, Err: fmt.Errorf("unknown output kind %q", path.Kind)}
	}
}

// lockPath returns the project's lockfile location
func (m *Manager) lockPath() string {
	return filepath.Join(m.projectDir, catalog.DefaultLockName)
}

// Lock resolves every catalog package reference for every supported
// system and writes the lockfile
func (m *Manager) Lock(ctx context.Context) error {
	lf := catalog.NewLockfile()

	for _, system := range m.desc.Systems {
		out, err := m.desc.Evaluate(system)
		if err != nil {
			return &Error{Op: "lock", Err: err}
		}

		refs := out.DevShell.Packages
		if out.Formatter != nil {
			refs = append(refs, *out.Formatter)
		}

		for _, ref := range refs {
			if ref.Custom {
				continue // pinned by its source hash, not the lockfile
			}
			locked, err := m.resolver.Resolve(ctx, ref.Name, system)
			if err != nil {
				return &Error{Op: "lock", Attr: ref.Name, Err: err}
			}
			lf.Pin(ref.Name, system, *locked)
		}
	}

	if err := lf.Save(m.lockPath()); err != nil {
		return &Error{Op: "lock", Err: err}
	}

	m.logger.Printf("✓ Locked %d packages for %d systems", len(lf.Names()), len(m.desc.Systems))
	return nil
}

// SyncCatalog refreshes the local catalog metadata from its repository
func (m *Manager) SyncCatalog() error {
	return catalog.Sync(m.config.CatalogURL, filepath.Join(m.config.StoreRoot, "cache"))
}

// realizeRef realizes one package reference for one system: custom
// packages go through the derivation builder, catalog packages through
// the lockfile and the binary cache
func (m *Manager) realizeRef(ctx context.Context, ref descriptor.PackageRef, system platform.System) (shell.Entry, error) {
	if ref.Custom {
		drv, err := derivation.FromCustomPackage(ref.Name, m.desc.Packages[ref.Name], system)
		if err != nil {
			return shell.Entry{}, err
		}
		path, err := m.builder.Realize(ctx, drv)
		if err != nil {
			return shell.Entry{}, err
		}
		return shell.Entry{Name: ref.Name, StorePath: path}, nil
	}

	lf, err := catalog.LoadLockfile(m.lockPath())
	if err != nil {
		return shell.Entry{}, fmt.Errorf("%w: %s (run `shellpin lock` first)", ErrNotLocked, ref.Name)
	}
	locked, err := lf.Lookup(ref.Name, system)
	if err != nil {
		return shell.Entry{}, err
	}

	path, err := m.cache.Realize(ctx, locked.StoreHash, locked.NameVersion)
	if err != nil {
		return shell.Entry{}, err
	}
	return shell.Entry{Name: ref.Name, StorePath: path}, nil
}

// Build realizes one addressed output and returns its store path.
// devShells attributes realize the whole shell and return the profile
// directory.
func (m *Manager) Build(ctx context.Context, attr string) (string, error) {
	path, err := descriptor.ParseAttrPath(attr)
	if err != nil {
		return "", &Error{Op: "build", Attr: attr, Err: err}
	}

	out, err := m.Eval(path.System)
	if err != nil {
		return "", err
	}

	switch path.Kind {
	case descriptor.KindPackages:
		pkg, ok := out.Packages[path.Name]
		if !ok {
			return "", &Error{Op: "build", Attr: attr, Err: fmt.Errorf("%w: %s", ErrPackageNotFound, path.Name)}
		}
		drv, err := derivation.FromCustomPackage(path.Name, pkg, path.System)
		if err != nil {
			return "", &Error{Op: "build", Attr: attr, Err: err}
		}
		storePath, err := m.builder.Realize(ctx, drv)
		if err != nil {
			return "", &Error{Op: "build", Attr: attr, Err: err}
		}
		return storePath, nil

	case descriptor.KindFormatter:
		if out.Formatter == nil {
			return "", &Error{Op: "build", Attr: attr, Err: fmt.Errorf("descriptor declares no formatter")}
		}
		entry, err := m.realizeRef(ctx, *out.Formatter, path.System)
		if err != nil {
			return "", &Error{Op: "build", Attr: attr, Err: err}
		}
		return entry.StorePath, nil

	case descriptor.KindDevShells:
		if path.Name != "default" {
			return "", &Error{Op: "build", Attr: attr, Err: fmt.Errorf("unknown dev shell %q", path.Name)}
		}
		profile, err := m.materializeShell(ctx, out)
		if err != nil {
			return "", &Error{Op: "build", Attr: attr, Err: err}
		}
		return profile.Dir(), nil

	default:
		return "", &Error{Op: "build", Attr: attr, Err: fmt.Errorf("unknown output kind %q", path.Kind)}
	}
}

// materializeShell realizes every shell package in declared order and
// composes the profile
func (m *Manager) materializeShell(ctx context.Context, out *descriptor.Outputs) (*shell.Profile, error) {
	entries := make([]shell.Entry, 0, len(out.DevShell.Packages))
	for _, ref := range out.DevShell.Packages {
		entry, err := m.realizeRef(ctx, ref, out.System)
		if err != nil {
			return nil, fmt.Errorf("realizing %s: %w", ref.Name, err)
		}
		entries = append(entries, entry)
	}

	profileDir := filepath.Join(m.config.StoreRoot, "profiles", fmt.Sprintf("%s-%s", out.DevShell.Name, out.System))
	profile := shell.NewProfile(profileDir)
	if err := profile.Build(out.DevShell.Name, out.System.String(), entries); err != nil {
		return nil, err
	}
	return profile, nil
}

// Shell materializes the default dev shell for a system and either
// enters it or prints its activation script
func (m *Manager) Shell(ctx context.Context, system platform.System, print bool) error {
	out, err := m.Eval(system)
	if err != nil {
		return err
	}

	profile, err := m.materializeShell(ctx, out)
	if err != nil {
		return &Error{Op: "shell", Attr: fmt.Sprintf("devShells.%s.default", system), Err: err}
	}

	if print {
		fmt.Print(shell.ActivationScript(out.DevShell.Name, profile.BinDir()))
		return nil
	}
	return shell.Enter(out.DevShell.Name, profile.BinDir())
}

// Fmt realizes the formatter output and runs it with the given
// arguments from the project directory
func (m *Manager) Fmt(ctx context.Context, system platform.System, args []string) error {
	out, err := m.Eval(system)
	if err != nil {
		return err
	}
	if out.Formatter == nil {
		return &Error{Op: "fmt", Err: fmt.Errorf("descriptor declares no formatter")}
	}

	entry, err := m.realizeRef(ctx, *out.Formatter, system)
	if err != nil {
		return &Error{Op: "fmt", Attr: out.Formatter.Name, Err: err}
	}

	program, err := findProgram(entry)
	if err != nil {
		return &Error{Op: "fmt", Attr: out.Formatter.Name, Err: err}
	}

	if len(args) == 0 {
		args = []string{"."}
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = m.projectDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// findProgram picks the program to run from a realized formatter: the
// binary matching the package name, or the only one shipped
func findProgram(entry shell.Entry) (string, error) {
	binDir := filepath.Join(entry.StorePath, "bin")
	files, err := os.ReadDir(binDir)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("formatter %s ships no programs", entry.Name)
		}
		return "", fmt.Errorf("formatter %s: %w", entry.Name, err)
	}
	if len(files) == 0 {
		return "", fmt.Errorf("formatter %s ships no programs", entry.Name)
	}

	for _, f := range files {
		if f.Name() == entry.Name {
			return filepath.Join(binDir, f.Name()), nil
		}
	}
	return filepath.Join(binDir, files[0].Name()), nil
}
