package catalog

import (
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/shellpin/shellpin/pkg/platform"
)

func TestLockfileRoundTrip(t *testing.T) {
	lf := NewLockfile()
	lf.Pin("black", platform.X8664Linux, Locked{
		Attribute:   "python311Packages.black",
		NameVersion: "black-24.4.2",
		StoreHash:   "8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s",
	})
	lf.Pin("black", platform.Aarch64Darwin, Locked{
		Attribute:   "python311Packages.black",
		NameVersion: "black-24.4.2",
		StoreHash:   "xjy4g9ndr7j9p2lvvqpbnbnikvbpmmv2",
	})

	path := filepath.Join(t.TempDir(), DefaultLockName)
	if err := lf.Save(path); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := LoadLockfile(path)
	if err != nil {
		t.Fatalf("LoadLockfile() error = %v", err)
	}
	if !reflect.DeepEqual(loaded.Packages, lf.Packages) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", loaded.Packages, lf.Packages)
	}

	locked, err := loaded.Lookup("black", platform.X8664Linux)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if locked.StoreHash != "8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s" {
		t.Errorf("StoreHash = %q", locked.StoreHash)
	}
}

func TestLockfileLookupMissing(t *testing.T) {
	lf := NewLockfile()
	lf.Pin("black", platform.X8664Linux, Locked{StoreHash: "aaaa"})

	if _, err := lf.Lookup("poetry", platform.X8664Linux); !errors.Is(err, ErrNotLocked) {
		t.Errorf("Lookup(unlocked name) error = %v, want ErrNotLocked", err)
	}
	if _, err := lf.Lookup("black", platform.Aarch64Linux); !errors.Is(err, ErrNotLocked) {
		t.Errorf("Lookup(unlocked system) error = %v, want ErrNotLocked", err)
	}
}

func TestLockfileVersionGate(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultLockName)
	lf := NewLockfile()
	lf.Version = 99
	if err := lf.Save(path); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadLockfile(path); err == nil {
		t.Error("LoadLockfile() of future version should fail")
	}
}

func TestLockfileNamesSorted(t *testing.T) {
	lf := NewLockfile()
	for _, name := range []string{"mypy", "black", "poetry"} {
		lf.Pin(name, platform.X8664Linux, Locked{})
	}

	want := []string{"black", "mypy", "poetry"}
	if got := lf.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
