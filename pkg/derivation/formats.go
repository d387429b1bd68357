// pkg/derivation/formats.go
package derivation

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
)

// Format is a named packaging convention that turns unpacked source
// into an installable artifact
type Format interface {
	// Name returns the format name used in descriptors
	Name() string

	// Build builds the source in env.SourceDir into env.OutputDir.
	// It runs env.Check's test phase only when requested.
	Build(ctx context.Context, env *BuildEnv) error
}

// BuildEnv is what a format gets to work with
type BuildEnv struct {
	SourceDir string // unpacked, verified source
	OutputDir string // staging directory that becomes the store path
	Check     bool   // run the format's test phase
	Logger    *log.Logger
}

// DefaultFormats returns the built-in build formats
func DefaultFormats() map[string]Format {
	formats := map[string]Format{}
	for _, f := range []Format{setuptoolsFormat{}, pyprojectFormat{}} {
		formats[f.Name()] = f
	}
	return formats
}

// setuptoolsFormat is the legacy setup-script convention:
// python3 setup.py build / test / install.
type setuptoolsFormat struct{}

func (setuptoolsFormat) Name() string { return "setuptools" }

func (f setuptoolsFormat) Build(ctx context.Context, env *BuildEnv) error {
	if _, err := os.Stat(env.SourceDir + "/setup.py"); err != nil {
		return fmt.Errorf("setuptools: no setup.py in source: %w", err)
	}

	if err := runBuildStep(ctx, env, "python3", "setup.py", "build"); err != nil {
		return fmt.Errorf("setuptools build: %w", err)
	}

	if env.Check {
		if err := runBuildStep(ctx, env, "python3", "setup.py", "test"); err != nil {
			return fmt.Errorf("setuptools check: %w", err)
		}
	}

	if err := runBuildStep(ctx, env, "python3", "setup.py", "install", "--prefix="+env.OutputDir); err != nil {
		return fmt.Errorf("setuptools install: %w", err)
	}

	return nil
}

// pyprojectFormat installs via pip, covering pyproject.toml sources
type pyprojectFormat struct{}

func (pyprojectFormat) Name() string { return "pyproject" }

func (f pyprojectFormat) Build(ctx context.Context, env *BuildEnv) error {
	if err := runBuildStep(ctx, env, "python3", "-m", "pip", "install", "--no-deps", "--prefix="+env.OutputDir, env.SourceDir); err != nil {
		return fmt.Errorf("pyproject install: %w", err)
	}

	if env.Check {
		if err := runBuildStep(ctx, env, "python3", "-m", "pytest", env.SourceDir); err != nil {
			return fmt.Errorf("pyproject check: %w", err)
		}
	}

	return nil
}

func runBuildStep(ctx context.Context, env *BuildEnv, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = env.SourceDir
	cmd.Env = append(os.Environ(), "PYTHONPATH=")
	if env.Logger != nil {
		env.Logger.Printf("running %s %v", name, args)
		cmd.Stdout = logWriter{env.Logger}
		cmd.Stderr = logWriter{env.Logger}
	}
	return cmd.Run()
}

type logWriter struct {
	logger *log.Logger
}

func (w logWriter) Write(p []byte) (int, error) {
	w.logger.Printf("%s", p)
	return len(p), nil
}
