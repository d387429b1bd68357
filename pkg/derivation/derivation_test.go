package derivation

import (
	"testing"

	"github.com/shellpin/shellpin/pkg/descriptor"
	"github.com/shellpin/shellpin/pkg/platform"
)

func TestSourceURL(t *testing.T) {
	drv := &Derivation{
		Name:    "darglint",
		Version: "1.8.1",
		Source:  Source{Index: "https://files.pythonhosted.org/packages/source"},
	}

	want := "https://files.pythonhosted.org/packages/source/d/darglint/darglint-1.8.1.tar.gz"
	if got := drv.SourceURL(); got != want {
		t.Errorf("SourceURL() = %q, want %q", got, want)
	}

	// Trailing slash on the index must not double up.
	drv.Source.Index = "https://files.pythonhosted.org/packages/source/"
	if got := drv.SourceURL(); got != want {
		t.Errorf("SourceURL() with trailing slash = %q, want %q", got, want)
	}
}

func TestSourceURLTracksVersion(t *testing.T) {
	a := &Derivation{Name: "darglint", Version: "1.8.1", Source: Source{Index: DefaultIndex}}
	b := &Derivation{Name: "darglint", Version: "1.8.2", Source: Source{Index: DefaultIndex}}
	if a.SourceURL() == b.SourceURL() {
		t.Error("different versions must fetch different archives")
	}
}

func TestFromCustomPackage(t *testing.T) {
	pkg := descriptor.CustomPackage{
		Version: "1.8.1",
		Source: descriptor.Source{
			Hash: helloSRI,
		},
		Build: "setuptools",
	}

	drv, err := FromCustomPackage("darglint", pkg, platform.X8664Linux)
	if err != nil {
		t.Fatalf("FromCustomPackage() error = %v", err)
	}

	if drv.NameVersion() != "darglint-1.8.1" {
		t.Errorf("NameVersion() = %q", drv.NameVersion())
	}
	if drv.Source.Index != DefaultIndex {
		t.Errorf("Index = %q, want default", drv.Source.Index)
	}
	if drv.Source.Hash.Hex() != helloHex {
		t.Errorf("Hash = %q", drv.Source.Hash.Hex())
	}
	if drv.Check {
		t.Error("Check should default to false")
	}

	pkg.Source.Hash = "not-a-hash"
	if _, err := FromCustomPackage("darglint", pkg, platform.X8664Linux); err == nil {
		t.Error("FromCustomPackage() with bad hash should fail")
	}
}
