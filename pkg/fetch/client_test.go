package fetch

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/archive.tar.gz" {
			http.NotFound(w, r)
			return
		}
		if ua := r.Header.Get("User-Agent"); ua != "shellpin/0.1" {
			t.Errorf("User-Agent = %q", ua)
		}
		w.Write([]byte("archive-bytes"))
	}))
	defer srv.Close()

	c := NewClient()

	t.Run("ok", func(t *testing.T) {
		var buf bytes.Buffer
		if err := c.Download(context.Background(), srv.URL+"/archive.tar.gz", &buf); err != nil {
			t.Fatalf("Download() error = %v", err)
		}
		if buf.String() != "archive-bytes" {
			t.Errorf("body = %q", buf.String())
		}
	})

	t.Run("not found", func(t *testing.T) {
		var buf bytes.Buffer
		if err := c.Download(context.Background(), srv.URL+"/missing", &buf); err == nil {
			t.Fatal("Download() of missing file should fail")
		}
	})
}

func TestGetJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id": 7}`))
	}))
	defer srv.Close()

	var out struct {
		ID int `json:"id"`
	}
	if err := NewClient().GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON() error = %v", err)
	}
	if out.ID != 7 {
		t.Errorf("id = %d, want 7", out.ID)
	}
}

func TestGetRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := NewClient().Get(ctx, srv.URL); err == nil {
		t.Fatal("Get() should fail when the context expires")
	}
}
