package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPathHashDeterministic(t *testing.T) {
	a := PathHash("darglint", "1.8.1", "setuptools")
	b := PathHash("darglint", "1.8.1", "setuptools")
	if a != b {
		t.Errorf("PathHash not deterministic: %q != %q", a, b)
	}
	if len(a) != 32 {
		t.Errorf("PathHash length = %d, want 32", len(a))
	}

	if c := PathHash("darglint", "1.8.2", "setuptools"); c == a {
		t.Error("different identity produced the same hash")
	}
	// Part boundaries matter: ("ab","c") and ("a","bc") are distinct.
	if PathHash("ab", "c") == PathHash("a", "bc") {
		t.Error("part boundaries are not part of the identity")
	}
}

func TestFinalize(t *testing.T) {
	s := New(t.TempDir())

	stage, err := s.StageDir()
	if err != nil {
		t.Fatalf("StageDir() error = %v", err)
	}
	if err := os.WriteFile(filepath.Join(stage, "marker"), []byte("one"), 0644); err != nil {
		t.Fatal(err)
	}

	path := s.PathFor(PathHash("demo", "1.0"), "demo-1.0")
	if s.Exists(path) {
		t.Fatal("path should not exist before finalize")
	}
	if err := s.Finalize(stage, path); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if !s.Exists(path) {
		t.Fatal("path should exist after finalize")
	}
	data, err := os.ReadFile(filepath.Join(path, "marker"))
	if err != nil || string(data) != "one" {
		t.Fatalf("marker = %q, err = %v", data, err)
	}

	// A second realization of the same path must not clobber the first.
	stage2, err := s.StageDir()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(stage2, "marker"), []byte("two"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.Finalize(stage2, path); err != nil {
		t.Fatalf("second Finalize() error = %v", err)
	}
	data, _ = os.ReadFile(filepath.Join(path, "marker"))
	if string(data) != "one" {
		t.Errorf("existing store path was overwritten: marker = %q", data)
	}
	if _, err := os.Stat(stage2); !os.IsNotExist(err) {
		t.Error("discarded stage should be removed")
	}
}

func TestPathForShape(t *testing.T) {
	s := New("/srv/shellpin")
	hash := PathHash("ripgrep", "14.1.0")
	path := s.PathFor(hash, "ripgrep-14.1.0")

	if !strings.HasPrefix(path, "/srv/shellpin/store/") {
		t.Errorf("path = %q, want under /srv/shellpin/store", path)
	}
	if !strings.HasSuffix(path, "-ripgrep-14.1.0") {
		t.Errorf("path = %q, want name suffix", path)
	}
}
