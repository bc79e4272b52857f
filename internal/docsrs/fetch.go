// Package docsrs fetches rustdoc JSON from docs.rs and decodes it into
// documents, with an in-memory LRU over the disk cache. Decoded
// documents routinely reach hundreds of megabytes of JSON, so the two
// cache layers matter: the LRU spares re-decoding, the disk cache
// spares re-downloading.
package docsrs

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	lru "github.com/hashicorp/golang-lru/v2"

	"cratedocs/internal/cache"
	"cratedocs/internal/rustdoc"
)

const docsRsBase = "https://docs.rs"

// DefaultLRUSize is how many decoded documents stay in memory.
const DefaultLRUSize = 4

// NotFoundError reports that docs.rs has no rustdoc JSON for a crate
// version. Common for old releases (docs.rs only builds JSON for
// recent toolchains) and for crates whose docs build failed.
type NotFoundError struct {
	Crate   string
	Version string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no rustdoc JSON on docs.rs for %s@%s: the version may predate JSON builds or its docs build failed", e.Crate, e.Version)
}

// IsNotFound reports whether err means docs.rs has no JSON for the
// requested version.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Fetcher retrieves and decodes rustdoc documents.
type Fetcher struct {
	cache *cache.Cache
	docs  *lru.Cache[string, *rustdoc.Crate]
	base  string
}

// NewFetcher builds a fetcher over the shared disk cache. size bounds
// the decoded-document LRU; zero means DefaultLRUSize.
func NewFetcher(c *cache.Cache, size int) (*Fetcher, error) {
	if size <= 0 {
		size = DefaultLRUSize
	}
	docs, err := lru.New[string, *rustdoc.Crate](size)
	if err != nil {
		return nil, fmt.Errorf("creating document cache: %w", err)
	}
	return &Fetcher{cache: c, docs: docs, base: docsRsBase}, nil
}

// FetchCrateDoc returns the decoded rustdoc document for a crate
// version: LRU first, then disk cache, then docs.rs. The version must
// already be resolved; "latest" is not accepted here because the LRU
// key must be stable.
func (f *Fetcher) FetchCrateDoc(ctx context.Context, name, version string) (*rustdoc.Crate, error) {
	key := name + "@" + version
	if doc, ok := f.docs.Get(key); ok {
		return doc, nil
	}

	url := fmt.Sprintf("%s/crate/%s/%s/json", f.base, name, version)
	body, err := f.cache.GetZstdText(ctx, url)
	if err != nil {
		var httpErr *cache.HTTPError
		if errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound {
			return nil, &NotFoundError{Crate: name, Version: version}
		}
		return nil, fmt.Errorf("fetching rustdoc JSON for %s: %w", key, err)
	}

	doc, err := rustdoc.DecodeCrate([]byte(body))
	if err != nil {
		return nil, fmt.Errorf("decoding rustdoc JSON for %s: %w", key, err)
	}
	f.docs.Add(key, doc)
	return doc, nil
}

// Evict drops a decoded document from the LRU. Used after cache clears
// so a stale in-memory document cannot outlive its disk entry.
func (f *Fetcher) Evict(name, version string) {
	f.docs.Remove(name + "@" + version)
}

// Purge drops every decoded document.
func (f *Fetcher) Purge() {
	f.docs.Purge()
}
