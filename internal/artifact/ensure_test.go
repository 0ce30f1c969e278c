package artifact

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestEnsure_LocalSkipsDownload(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFiles(t, dir, bundleFiles(`{}`))

	bundle, err := Ensure(context.Background(), Source{ModelDir: dir, BlobURL: srv.URL}, newTestFetcher(time.Second), testLogger())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if bundle.Strategy != StrategyLocal {
		t.Errorf("Strategy = %s, want local", bundle.Strategy)
	}
	if hits.Load() != 0 {
		t.Errorf("expected no download, got %d requests", hits.Load())
	}
}

func TestEnsure_FetchesRemote(t *testing.T) {
	srv := serveBytes(t, zipBytes(t, bundleFiles(`{}`)))
	dir := filepath.Join(t.TempDir(), "models")

	bundle, err := Ensure(context.Background(), Source{ModelDir: dir, BlobURL: srv.URL}, newTestFetcher(time.Second), testLogger())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if bundle.Strategy != StrategyRemote {
		t.Errorf("Strategy = %s, want remote", bundle.Strategy)
	}

	// Second call finds the published bundle locally.
	bundle, err = Ensure(context.Background(), Source{ModelDir: dir, BlobURL: srv.URL}, newTestFetcher(time.Second), testLogger())
	if err != nil {
		t.Fatalf("Ensure: %v", err)
	}
	if bundle.Strategy != StrategyLocal {
		t.Errorf("Strategy = %s, want local", bundle.Strategy)
	}
}

func TestEnsure_NoSource(t *testing.T) {
	_, err := Ensure(context.Background(), Source{ModelDir: filepath.Join(t.TempDir(), "none")}, newTestFetcher(time.Second), testLogger())

	var cerr *ConfigurationError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigurationError, got %v", err)
	}
}
