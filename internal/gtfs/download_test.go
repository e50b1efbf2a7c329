package gtfs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestIsStaleOrMissing(t *testing.T) {
	dir := t.TempDir()

	if !isStaleOrMissing(filepath.Join(dir, "missing.zip"), time.Hour) {
		t.Error("missing file should be stale")
	}

	path := filepath.Join(dir, "feed.zip")
	if err := os.WriteFile(path, []byte("zip"), 0644); err != nil {
		t.Fatal(err)
	}
	if isStaleOrMissing(path, time.Hour) {
		t.Error("fresh file should not be stale")
	}

	old := time.Now().Add(-10 * 24 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}
	if !isStaleOrMissing(path, 7*24*time.Hour) {
		t.Error("10 day old file should be stale after 7 days")
	}
}

func TestFetcher_DownloadsOnce(t *testing.T) {
	raw := buildZip(t, feed)
	var hits atomic.Int32
	var gotKey atomic.Value

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotKey.Store(r.URL.Query().Get("app_key"))
		w.Write(raw)
	}))
	defer srv.Close()

	f := NewFetcher(t.TempDir(), time.Hour)
	f.AppID, f.AppKey = "id", "secret"

	ctx := context.Background()
	path, err := f.Fetch(ctx, srv.URL+"/gtfs.zip", "tmb.zip")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if key, _ := gotKey.Load().(string); key != "secret" {
		t.Errorf("expected app_key to be sent, got %q", key)
	}

	data, err := Parse(path)
	if err != nil {
		t.Fatalf("downloaded feed does not parse: %v", err)
	}
	if len(data.Routes) != 2 {
		t.Errorf("expected 2 routes, got %d", len(data.Routes))
	}

	if _, err := f.Fetch(ctx, srv.URL+"/gtfs.zip", "tmb.zip"); err != nil {
		t.Fatalf("second Fetch failed: %v", err)
	}
	if hits.Load() != 1 {
		t.Errorf("expected cached copy on second fetch, got %d downloads", hits.Load())
	}
}

func TestFetcher_ErrorKeepsCache(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cached := filepath.Join(dir, "tmb.zip")
	if err := os.WriteFile(cached, []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	os.Chtimes(cached, old, old)

	f := NewFetcher(dir, time.Hour)
	if _, err := f.Fetch(context.Background(), srv.URL, "tmb.zip"); err == nil {
		t.Fatal("expected error for 503 response")
	}

	content, err := os.ReadFile(cached)
	if err != nil || string(content) != "old" {
		t.Errorf("failed download must keep the cached file, got %q (%v)", content, err)
	}
}
