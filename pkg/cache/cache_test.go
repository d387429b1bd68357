package cache

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"zombiezen.com/go/nix/nar"

	"github.com/shellpin/shellpin/pkg/derivation"
	"github.com/shellpin/shellpin/pkg/store"
)

const testStoreHash = "8ba4pp1vz3cwcg0g2z84mnw0pkfdcs5s"

// buildNAR produces an uncompressed NAR holding bin/hello
func buildNAR(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := nar.NewWriter(&buf)

	content := []byte("#!/bin/sh\necho hello\n")
	headers := []*nar.Header{
		{Path: "", Mode: fs.ModeDir | 0755},
		{Path: "bin", Mode: fs.ModeDir | 0755},
		{Path: "bin/hello", Mode: 0755, Size: int64(len(content))},
	}
	for _, hdr := range headers {
		if err := w.WriteHeader(hdr); err != nil {
			t.Fatalf("WriteHeader(%q): %v", hdr.Path, err)
		}
		if hdr.Mode.IsRegular() {
			if _, err := w.Write(content); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// serveCache runs a fake binary cache for one store hash
func serveCache(t *testing.T, narBytes []byte, fileHash string) *httptest.Server {
	t.Helper()

	narinfo := fmt.Sprintf(`StorePath: /nix/store/%s-hello-1.0
URL: nar/%s.nar
Compression: none
FileHash: %s
FileSize: %d
NarHash: %s
NarSize: %d
`, testStoreHash, testStoreHash, fileHash, len(narBytes), fileHash, len(narBytes))

	mux := http.NewServeMux()
	mux.HandleFunc("/"+testStoreHash+".narinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(narinfo))
	})
	mux.HandleFunc("/nar/"+testStoreHash+".nar", func(w http.ResponseWriter, r *http.Request) {
		w.Write(narBytes)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func TestRealize(t *testing.T) {
	narBytes := buildNAR(t)
	srv := serveCache(t, narBytes, "sha256:"+sha256Hex(narBytes))

	st := store.New(t.TempDir())
	c := New(&Config{URL: srv.URL, Store: st})

	path, err := c.Realize(context.Background(), testStoreHash, "hello-1.0")
	if err != nil {
		t.Fatalf("Realize() error = %v", err)
	}

	if filepath.Base(path) != testStoreHash+"-hello-1.0" {
		t.Errorf("store path = %q", path)
	}

	bin := filepath.Join(path, "bin", "hello")
	info, err := os.Stat(bin)
	if err != nil {
		t.Fatalf("extracted file missing: %v", err)
	}
	if info.Mode()&0111 == 0 {
		t.Error("bin/hello should be executable")
	}

	// Realizing again hits the store, no network needed.
	srv.Close()
	again, err := c.Realize(context.Background(), testStoreHash, "hello-1.0")
	if err != nil {
		t.Fatalf("second Realize() error = %v", err)
	}
	if again != path {
		t.Errorf("second Realize() = %q, want %q", again, path)
	}
}

func TestRealizeFileHashMismatch(t *testing.T) {
	narBytes := buildNAR(t)
	srv := serveCache(t, narBytes, "sha256:"+sha256Hex([]byte("other content")))

	st := store.New(t.TempDir())
	c := New(&Config{URL: srv.URL, Store: st})

	_, err := c.Realize(context.Background(), testStoreHash, "hello-1.0")
	if err == nil {
		t.Fatal("Realize() with bad FileHash should fail")
	}
	if !errors.Is(err, derivation.ErrHashMismatch) {
		t.Errorf("error %v should wrap ErrHashMismatch", err)
	}
	if st.Exists(c.StorePath(testStoreHash, "hello-1.0")) {
		t.Error("no store path may appear for a failed realization")
	}
}

func TestRealizeMissingUpstream(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	c := New(&Config{URL: srv.URL, Store: store.New(t.TempDir())})
	if _, err := c.Realize(context.Background(), "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "ghost-0.1"); err == nil {
		t.Fatal("Realize() of unknown hash should fail")
	}
}
