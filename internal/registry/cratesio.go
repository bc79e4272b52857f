package registry

import (
	"context"
	"fmt"
	"net/url"

	"cratedocs/internal/cache"
)

const cratesIOBase = "https://crates.io/api/v1"

// CrateInfo is the crate-level metadata record the API returns.
type CrateInfo struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Description      *string  `json:"description"`
	Homepage         *string  `json:"homepage"`
	Documentation    *string  `json:"documentation"`
	Repository       *string  `json:"repository"`
	Downloads        uint64   `json:"downloads"`
	RecentDownloads  *uint64  `json:"recent_downloads"`
	CreatedAt        string   `json:"created_at"`
	UpdatedAt        string   `json:"updated_at"`
	MaxStableVersion *string  `json:"max_stable_version"`
	MaxVersion       *string  `json:"max_version"`
	NewestVersion    *string  `json:"newest_version"`
	Categories       []string `json:"categories"`
	Keywords         []string `json:"keywords"`
}

// CrateResponse wraps a crate with its version and taxonomy listings.
type CrateResponse struct {
	Crate      CrateInfo     `json:"crate"`
	Versions   []VersionInfo `json:"versions"`
	Keywords   []Keyword     `json:"keywords"`
	Categories []Category    `json:"categories"`
}

// VersionInfo describes one published version.
type VersionInfo struct {
	ID          uint64              `json:"id"`
	Num         string              `json:"num"`
	DlPath      *string             `json:"dl_path"`
	ReadmePath  *string             `json:"readme_path"`
	License     *string             `json:"license"`
	Edition     *string             `json:"edition"`
	RustVersion *string             `json:"rust_version"`
	HasLib      *bool               `json:"has_lib"`
	Bins        []string            `json:"bins"`
	CrateSize   *uint64             `json:"crate_size"`
	Downloads   uint64              `json:"downloads"`
	Yanked      bool                `json:"yanked"`
	YankMessage *string             `json:"yank_message"`
	PublishedBy *Publisher          `json:"published_by"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   *string             `json:"updated_at"`
	Checksum    *string             `json:"checksum"`
	Features    map[string][]string `json:"features"`
}

type Publisher struct {
	ID     uint64  `json:"id"`
	Login  string  `json:"login"`
	Name   *string `json:"name"`
	Avatar *string `json:"avatar"`
}

type Keyword struct {
	ID        string `json:"id"`
	Keyword   string `json:"keyword"`
	CratesCnt uint64 `json:"crates_cnt"`
}

type Category struct {
	ID          string  `json:"id"`
	Category    string  `json:"category"`
	CratesCnt   uint64  `json:"crates_cnt"`
	Description *string `json:"description"`
}

// SearchResult is one page of crate search results.
type SearchResult struct {
	Crates []CrateInfo `json:"crates"`
	Meta   SearchMeta  `json:"meta"`
}

type SearchMeta struct {
	Total uint64 `json:"total"`
}

type VersionsResponse struct {
	Versions []VersionInfo `json:"versions"`
}

type DependenciesResponse struct {
	Dependencies []Dependency `json:"dependencies"`
}

// Dependency is one edge of a version's dependency list.
type Dependency struct {
	CrateID         string   `json:"crate_id"`
	Req             string   `json:"req"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features"`
	Target          *string  `json:"target"`
	Kind            *string  `json:"kind"`
	Downloads       *uint64  `json:"downloads"`
}

// ReverseDepsResponse pairs dependent edges with the versions that
// declare them: the API splits the two lists and keys them by version
// id.
type ReverseDepsResponse struct {
	Dependencies []ReverseDep        `json:"dependencies"`
	Versions     []ReverseDepVersion `json:"versions"`
	Meta         ReverseDepsMeta     `json:"meta"`
}

type ReverseDep struct {
	ID              uint64   `json:"id"`
	VersionID       uint64   `json:"version_id"`
	CrateID         string   `json:"crate_id"`
	Req             string   `json:"req"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features"`
	Kind            *string  `json:"kind"`
	Downloads       *uint64  `json:"downloads"`
}

type ReverseDepVersion struct {
	ID        uint64 `json:"id"`
	Num       string `json:"num"`
	CrateName string `json:"crate"`
	Downloads uint64 `json:"downloads"`
}

type ReverseDepsMeta struct {
	Total uint64 `json:"total"`
}

type DownloadsResponse struct {
	VersionDownloads []VersionDownload `json:"version_downloads"`
}

// VersionDownload is one day of download counts for one version id.
type VersionDownload struct {
	Version   uint64 `json:"version"`
	Downloads uint64 `json:"downloads"`
	Date      string `json:"date"`
}

// SearchParams are the knobs of the crate search endpoint.
type SearchParams struct {
	Query    string
	Category string
	Keyword  string
	Sort     string
	Page     int
	PerPage  int
}

// Client wraps the crates.io REST API. Every call goes through the disk
// cache, so within the TTL window repeated tool invocations cost no
// network traffic at all.
type Client struct {
	cache *cache.Cache
}

// NewClient builds a client over the shared cache.
func NewClient(c *cache.Cache) *Client {
	return &Client{cache: c}
}

// Search queries the registry's crate search.
func (c *Client) Search(ctx context.Context, p SearchParams) (*SearchResult, error) {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = 10
	}
	q := url.Values{}
	q.Set("q", p.Query)
	q.Set("page", fmt.Sprint(p.Page))
	q.Set("per_page", fmt.Sprint(p.PerPage))
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Keyword != "" {
		q.Set("keyword", p.Keyword)
	}
	if p.Sort != "" {
		q.Set("sort", p.Sort)
	}
	return cache.GetJSON[SearchResult](ctx, c.cache, cratesIOBase+"/crates?"+q.Encode())
}

// GetCrate fetches crate-level metadata including the version list.
func (c *Client) GetCrate(ctx context.Context, name string) (*CrateResponse, error) {
	return cache.GetJSON[CrateResponse](ctx, c.cache, fmt.Sprintf("%s/crates/%s", cratesIOBase, name))
}

// GetVersion fetches one version's metadata.
func (c *Client) GetVersion(ctx context.Context, name, version string) (*VersionInfo, error) {
	type wrapper struct {
		Version VersionInfo `json:"version"`
	}
	w, err := cache.GetJSON[wrapper](ctx, c.cache, fmt.Sprintf("%s/crates/%s/%s", cratesIOBase, name, version))
	if err != nil {
		return nil, err
	}
	return &w.Version, nil
}

// GetVersions fetches the full version history of a crate.
func (c *Client) GetVersions(ctx context.Context, name string) (*VersionsResponse, error) {
	return cache.GetJSON[VersionsResponse](ctx, c.cache, fmt.Sprintf("%s/crates/%s/versions", cratesIOBase, name))
}

// GetDependencies fetches the dependency list of one version.
func (c *Client) GetDependencies(ctx context.Context, name, version string) (*DependenciesResponse, error) {
	return cache.GetJSON[DependenciesResponse](ctx, c.cache, fmt.Sprintf("%s/crates/%s/%s/dependencies", cratesIOBase, name, version))
}

// GetReverseDeps fetches one page of crates depending on the given
// crate.
func (c *Client) GetReverseDeps(ctx context.Context, name string, page, perPage int) (*ReverseDepsResponse, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = 10
	}
	return cache.GetJSON[ReverseDepsResponse](ctx, c.cache,
		fmt.Sprintf("%s/crates/%s/reverse_dependencies?page=%d&per_page=%d", cratesIOBase, name, page, perPage))
}

// GetDownloads fetches the last 90 days of per-version download counts.
func (c *Client) GetDownloads(ctx context.Context, name, beforeDate string) (*DownloadsResponse, error) {
	u := fmt.Sprintf("%s/crates/%s/downloads", cratesIOBase, name)
	if beforeDate != "" {
		u += "?before_date=" + url.QueryEscape(beforeDate)
	}
	return cache.GetJSON[DownloadsResponse](ctx, c.cache, u)
}

// GetReadme fetches the rendered README HTML of one version.
func (c *Client) GetReadme(ctx context.Context, name, version string) (string, error) {
	u := fmt.Sprintf("%s/crates/%s/%s/readme", cratesIOBase, name, version)
	text, err := c.cache.GetText(ctx, u)
	if err != nil {
		return "", fmt.Errorf("fetching README for %s/%s: %w", name, version, err)
	}
	return text, nil
}

// ResolveVersion maps an empty or "latest" version request to the
// latest stable release via the sparse index; anything else passes
// through untouched.
func ResolveVersion(ctx context.Context, c *cache.Cache, name, version string) (string, error) {
	if version != "" && version != "latest" {
		return version, nil
	}
	lines, err := FetchIndex(ctx, c, name)
	if err != nil {
		return "", err
	}
	latest := FindLatestStable(lines)
	if latest == nil {
		return "", fmt.Errorf("no installable version of %s: every published version is yanked", name)
	}
	return latest.Vers, nil
}
