// Package cache is a TTL disk cache for upstream HTTP responses. Every
// entry is keyed by the sha256 of its URL, so the same URL always lands
// in the same file regardless of which client asked for it.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
)

// DefaultTTL is how long entries stay valid when no TTL is configured.
const DefaultTTL = 24 * time.Hour

// HTTPError reports a non-2xx upstream response.
type HTTPError struct {
	Status int
	URL    string
	Body   string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("HTTP %d for %s: %s", e.Status, e.URL, e.Body)
	}
	return fmt.Sprintf("HTTP %d for %s", e.Status, e.URL)
}

// entry is the on-disk representation. The URL is stored alongside the
// body so a cache directory can be inspected by hand.
type entry struct {
	CachedAt int64  `json:"cached_at"`
	URL      string `json:"url"`
	Body     string `json:"body"`
}

// Cache is a read-through disk cache. Safe for concurrent use: writes go
// through a temp file rename and reads never mutate entries.
type Cache struct {
	dir    string
	ttl    time.Duration
	client *http.Client
}

// New opens (and creates if needed) a cache directory and prunes entries
// that outlived the TTL. A nil client falls back to http.DefaultClient.
func New(dir string, ttl time.Duration, client *http.Client) (*Cache, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if client == nil {
		client = http.DefaultClient
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating cache dir: %w", err)
	}
	c := &Cache{dir: dir, ttl: ttl, client: client}
	c.pruneExpired()
	return c, nil
}

func cacheKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) path(url string) string {
	return filepath.Join(c.dir, cacheKey(url)+".json")
}

// GetText fetches a URL as text, serving from disk when a fresh entry
// exists.
func (c *Cache) GetText(ctx context.Context, url string) (string, error) {
	if body, ok := c.readValid(url); ok {
		return body, nil
	}
	body, err := c.fetch(ctx, url, false)
	if err != nil {
		return "", err
	}
	c.write(url, body)
	return body, nil
}

// GetZstdText fetches a zstd-compressed URL and returns the decompressed
// text. The decompressed form is what gets cached, so repeat reads skip
// both the download and the decode.
func (c *Cache) GetZstdText(ctx context.Context, url string) (string, error) {
	if body, ok := c.readValid(url); ok {
		return body, nil
	}
	body, err := c.fetch(ctx, url, true)
	if err != nil {
		return "", err
	}
	c.write(url, body)
	return body, nil
}

// GetJSON fetches a URL and decodes its JSON body into T, read-through.
func GetJSON[T any](ctx context.Context, c *Cache, url string) (*T, error) {
	body, err := c.GetText(ctx, url)
	if err != nil {
		return nil, err
	}
	var out T
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", url, err)
	}
	return &out, nil
}

func (c *Cache) fetch(ctx context.Context, url string, compressed bool) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", &HTTPError{Status: resp.StatusCode, URL: url, Body: string(snippet)}
	}

	var body io.Reader = resp.Body
	if compressed {
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return "", fmt.Errorf("creating zstd reader: %w", err)
		}
		defer dec.Close()
		body = dec
	}

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", url, err)
	}
	return string(data), nil
}

// readValid returns the cached body for a URL if present and unexpired.
// Corrupt or expired entries are deleted on sight.
func (c *Cache) readValid(url string) (string, bool) {
	path := c.path(url)
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		os.Remove(path)
		return "", false
	}
	if time.Since(time.Unix(e.CachedAt, 0)) > c.ttl {
		os.Remove(path)
		return "", false
	}
	return e.Body, true
}

func (c *Cache) write(url, body string) {
	raw, err := json.Marshal(entry{
		CachedAt: time.Now().Unix(),
		URL:      url,
		Body:     body,
	})
	if err != nil {
		return
	}
	// Best effort: a failed cache write only costs a refetch later.
	tmp, err := os.CreateTemp(c.dir, "entry-*.tmp")
	if err != nil {
		return
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return
	}
	tmp.Close()
	os.Rename(tmp.Name(), c.path(url))
}

func (c *Cache) pruneExpired() {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if filepath.Ext(de.Name()) != ".json" {
			continue
		}
		path := filepath.Join(c.dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var e entry
		if err := json.Unmarshal(raw, &e); err != nil {
			os.Remove(path)
			continue
		}
		if time.Since(time.Unix(e.CachedAt, 0)) > c.ttl {
			os.Remove(path)
		}
	}
}

// Stats summarizes the on-disk cache contents.
type Stats struct {
	Dir        string `json:"dir"`
	Entries    int    `json:"entries"`
	TotalBytes int64  `json:"total_bytes"`
}

// Stats walks the cache directory and reports entry count and size.
func (c *Cache) Stats() Stats {
	st := Stats{Dir: c.dir}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return st
	}
	for _, de := range entries {
		if filepath.Ext(de.Name()) != ".json" {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		st.Entries++
		st.TotalBytes += info.Size()
	}
	return st
}

// Clear removes every cache entry.
func (c *Cache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return fmt.Errorf("reading cache dir: %w", err)
	}
	for _, de := range entries {
		if filepath.Ext(de.Name()) != ".json" {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, de.Name())); err != nil {
			return fmt.Errorf("removing %s: %w", de.Name(), err)
		}
	}
	return nil
}
