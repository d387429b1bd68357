package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shellpin/shellpin/pkg/platform"
)

func TestResolve(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		want := "/job/nixos/trunk-combined/nixpkgs.ripgrep.x86_64-linux/latest"
		if r.URL.Path != want {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `{
			"id": 123,
			"buildstatus": 0,
			"buildoutputs": {
				"out": {"path": "/nix/store/8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s-ripgrep-14.1.0"}
			}
		}`)
	}))
	defer srv.Close()

	r := NewResolver(&ResolverConfig{HydraURL: srv.URL})

	locked, err := r.Resolve(context.Background(), "ripgrep", platform.X8664Linux)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if locked.StoreHash != "8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s" {
		t.Errorf("StoreHash = %q", locked.StoreHash)
	}
	if locked.NameVersion != "ripgrep-14.1.0" {
		t.Errorf("NameVersion = %q", locked.NameVersion)
	}
	if locked.Attribute != "ripgrep" {
		t.Errorf("Attribute = %q", locked.Attribute)
	}
}

func TestResolveUsesCatalogAttribute(t *testing.T) {
	cacheDir := t.TempDir()
	writeEntry(t, cacheDir, "black", "attribute = \"python311Packages.black\"\n")

	var requested string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requested = r.URL.Path
		fmt.Fprint(w, `{
			"buildstatus": 0,
			"buildoutputs": {
				"out": {"path": "/nix/store/xjy4g9ndr7j9p2lvvqpbnbnikvbpmmv2-black-24.4.2"}
			}
		}`)
	}))
	defer srv.Close()

	r := NewResolver(&ResolverConfig{HydraURL: srv.URL, Catalog: New(cacheDir)})

	locked, err := r.Resolve(context.Background(), "black", platform.Aarch64Linux)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want := "/job/nixos/trunk-combined/nixpkgs.python311Packages.black.aarch64-linux/latest"
	if requested != want {
		t.Errorf("requested %q, want %q", requested, want)
	}
	if locked.Attribute != "python311Packages.black" {
		t.Errorf("Attribute = %q", locked.Attribute)
	}
}

func TestResolveUnknownPackage(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	r := NewResolver(&ResolverConfig{HydraURL: srv.URL})
	_, err := r.Resolve(context.Background(), "no-such-tool", platform.X8664Linux)
	if !errors.Is(err, ErrPackageNotFound) {
		t.Errorf("Resolve() error = %v, want ErrPackageNotFound", err)
	}
}

func TestSplitStorePath(t *testing.T) {
	tests := []struct {
		path             string
		hash, nv         string
		wantErr          bool
	}{
		{"/nix/store/8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s-ripgrep-14.1.0", "8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s", "ripgrep-14.1.0", false},
		{"/nix/store/abc-x", "abc", "x", false},
		{"/nix/store/nodash", "", "", true},
		{"", "", "", true},
	}

	for _, tt := range tests {
		hash, nv, err := splitStorePath(tt.path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("splitStorePath(%q) expected error", tt.path)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitStorePath(%q) error = %v", tt.path, err)
			continue
		}
		if hash != tt.hash || nv != tt.nv {
			t.Errorf("splitStorePath(%q) = %q, %q", tt.path, hash, nv)
		}
	}
}
