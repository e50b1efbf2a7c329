package gtfs

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// Fetcher downloads GTFS feeds into a local cache directory
type Fetcher struct {
	client   *http.Client
	cacheDir string
	maxAge   time.Duration
	// AppID and AppKey are sent as query parameters when set (TMB API)
	AppID  string
	AppKey string
}

// NewFetcher creates a fetcher that reuses cached files younger than maxAge
func NewFetcher(cacheDir string, maxAge time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 5 * time.Minute,
		},
		cacheDir: cacheDir,
		maxAge:   maxAge,
	}
}

// Fetch returns the path of the cached feed, downloading it first when the
// cached copy is missing or stale
func (f *Fetcher) Fetch(ctx context.Context, feedURL, name string) (string, error) {
	dest := filepath.Join(f.cacheDir, name)
	if !isStaleOrMissing(dest, f.maxAge) {
		log.Printf("Using cached %s", dest)
		return dest, nil
	}

	if err := os.MkdirAll(f.cacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache dir: %w", err)
	}

	log.Printf("Downloading %s...", feedURL)
	if err := f.download(ctx, feedURL, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (f *Fetcher) download(ctx context.Context, feedURL, dest string) error {
	u, err := url.Parse(feedURL)
	if err != nil {
		return fmt.Errorf("invalid feed url: %w", err)
	}
	if f.AppID != "" && f.AppKey != "" {
		q := u.Query()
		q.Set("app_id", f.AppID)
		q.Set("app_key", f.AppKey)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	// write next to the destination and rename so a failed download never
	// replaces a good cached copy
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".gtfs-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to read response: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), dest)
}

func isStaleOrMissing(path string, maxAge time.Duration) bool {
	info, err := os.Stat(path)
	if err != nil {
		return true
	}
	return time.Since(info.ModTime()) > maxAge
}
