package descriptor

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shellpin/shellpin/pkg/platform"
)

func loadTestDescriptor(t *testing.T) *Descriptor {
	t.Helper()
	d, err := Load(filepath.Join("testdata", "shellpin.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return d
}

func TestLoad(t *testing.T) {
	d := loadTestDescriptor(t)

	if len(d.Systems) != 4 {
		t.Errorf("Systems = %v, want 4 entries", d.Systems)
	}
	if d.Shell.Name != "dapla-toolbelt-automation" {
		t.Errorf("Shell.Name = %q", d.Shell.Name)
	}
	if d.Formatter != "nixpkgs-fmt" {
		t.Errorf("Formatter = %q", d.Formatter)
	}

	pkg, ok := d.Packages["darglint"]
	if !ok {
		t.Fatal("packages.darglint missing")
	}
	if pkg.Version != "1.8.1" {
		t.Errorf("darglint version = %q, want 1.8.1", pkg.Version)
	}
	if pkg.Build != "setuptools" {
		t.Errorf("darglint build = %q, want setuptools", pkg.Build)
	}
	if pkg.Check {
		t.Error("darglint check should be disabled")
	}
	if pkg.Source.Hash == "" {
		t.Error("darglint source hash missing")
	}
}

func TestParseDefaultsSystems(t *testing.T) {
	d, err := Parse([]byte("shell:\n  packages: [ripgrep]\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if !reflect.DeepEqual(d.Systems, platform.DefaultSystems) {
		t.Errorf("Systems = %v, want default set", d.Systems)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Descriptor)
		wantErr bool
	}{
		{"valid", func(d *Descriptor) {}, false},
		{"no systems", func(d *Descriptor) { d.Systems = nil }, true},
		{"unknown system", func(d *Descriptor) { d.Systems = []platform.System{"riscv64-linux"} }, true},
		{"duplicate system", func(d *Descriptor) {
			d.Systems = []platform.System{platform.X8664Linux, platform.X8664Linux}
		}, true},
		{"empty shell", func(d *Descriptor) { d.Shell.Packages = nil }, true},
		{"duplicate shell package", func(d *Descriptor) {
			d.Shell.Packages = []string{"black", "black"}
		}, true},
		{"package without version", func(d *Descriptor) {
			p := d.Packages["darglint"]
			p.Version = ""
			d.Packages["darglint"] = p
		}, true},
		{"package without hash", func(d *Descriptor) {
			p := d.Packages["darglint"]
			p.Source.Hash = ""
			d.Packages["darglint"] = p
		}, true},
		{"package without build format", func(d *Descriptor) {
			p := d.Packages["darglint"]
			p.Build = ""
			d.Packages["darglint"] = p
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := loadTestDescriptor(t)
			tt.mutate(d)
			err := d.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
