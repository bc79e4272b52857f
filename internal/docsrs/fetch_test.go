package docsrs

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"cratedocs/internal/cache"
)

const fetchFixture = `{
	"root": 0,
	"format_version": 54,
	"index": {"0": {"id": 0, "name": "demo", "inner": {"module": {"items": []}}}},
	"paths": {"0": {"crate_id": 0, "path": ["demo"], "kind": "module"}},
	"external_crates": {}
}`

func compress(t *testing.T, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("creating zstd writer: %v", err)
	}
	if _, err := w.Write([]byte(data)); err != nil {
		t.Fatalf("compressing: %v", err)
	}
	w.Close()
	return buf.Bytes()
}

func newTestFetcher(t *testing.T, handler http.Handler) (*Fetcher, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := cache.New(t.TempDir(), time.Hour, srv.Client())
	if err != nil {
		t.Fatalf("creating cache: %v", err)
	}
	f, err := NewFetcher(c, 2)
	if err != nil {
		t.Fatalf("creating fetcher: %v", err)
	}
	f.base = srv.URL
	return f, srv
}

func TestFetchCrateDoc(t *testing.T) {
	t.Parallel()
	body := compress(t, fetchFixture)
	hits := 0
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/crate/demo/1.0.0/json" {
			http.NotFound(w, r)
			return
		}
		hits++
		w.Header().Set("Content-Type", "application/zstd")
		w.Write(body)
	}))

	ctx := context.Background()
	doc, err := f.FetchCrateDoc(ctx, "demo", "1.0.0")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	if doc.Name() != "demo" {
		t.Errorf("name = %q, want %q", doc.Name(), "demo")
	}

	// Second fetch is served from the LRU without touching the server.
	again, err := f.FetchCrateDoc(ctx, "demo", "1.0.0")
	if err != nil {
		t.Fatalf("refetching: %v", err)
	}
	if again != doc {
		t.Error("LRU returned a different document instance")
	}
	if hits != 1 {
		t.Errorf("server hit %d times, want 1", hits)
	}
}

func TestFetchCrateDocNotFound(t *testing.T) {
	t.Parallel()
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := f.FetchCrateDoc(context.Background(), "ancient", "0.1.0")
	if !IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Crate != "ancient" || nf.Version != "0.1.0" {
		t.Errorf("error = %+v, want ancient@0.1.0", err)
	}
}

func TestFetchCrateDocEvict(t *testing.T) {
	t.Parallel()
	body := compress(t, fetchFixture)
	f, _ := newTestFetcher(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(body)
	}))

	ctx := context.Background()
	first, err := f.FetchCrateDoc(ctx, "demo", "1.0.0")
	if err != nil {
		t.Fatalf("fetching: %v", err)
	}
	f.Evict("demo", "1.0.0")
	second, err := f.FetchCrateDoc(ctx, "demo", "1.0.0")
	if err != nil {
		t.Fatalf("refetching: %v", err)
	}
	if first == second {
		t.Error("eviction did not drop the cached instance")
	}
}
