// Package registry talks to crates.io: the sparse index for version
// metadata and the REST API for everything richer. All requests flow
// through the shared disk cache and a rate limiter scoped to the API
// host.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/mod/semver"

	"cratedocs/internal/cache"
)

const indexBase = "https://index.crates.io"

// IndexLine is one line of the sparse index NDJSON: one published
// version of a crate.
type IndexLine struct {
	Name        string              `json:"name"`
	Vers        string              `json:"vers"`
	Deps        []DepEntry          `json:"deps"`
	Cksum       string              `json:"cksum"`
	Features    map[string][]string `json:"features"`
	Yanked      bool                `json:"yanked"`
	RustVersion *string             `json:"rust_version"`
	// Features2 carries the v2 feature syntax; merged with Features by
	// AllFeatures.
	Features2 map[string][]string `json:"features2"`
}

// AllFeatures merges the v1 and v2 feature tables. v2 entries win on
// name collision.
func (l *IndexLine) AllFeatures() map[string][]string {
	merged := make(map[string][]string, len(l.Features)+len(l.Features2))
	for k, v := range l.Features {
		merged[k] = v
	}
	for k, v := range l.Features2 {
		merged[k] = v
	}
	return merged
}

// DeclaredFeatureSet returns the feature names as a set.
func (l *IndexLine) DeclaredFeatureSet() map[string]struct{} {
	all := l.AllFeatures()
	set := make(map[string]struct{}, len(all))
	for name := range all {
		set[name] = struct{}{}
	}
	return set
}

// DepEntry is one dependency edge in an index line.
type DepEntry struct {
	Name            string   `json:"name"`
	Req             string   `json:"req"`
	Package         *string  `json:"package"`
	Kind            string   `json:"kind"`
	Optional        bool     `json:"optional"`
	DefaultFeatures bool     `json:"default_features"`
	Features        []string `json:"features"`
	Target          *string  `json:"target"`
}

// ComputeIndexPath maps a crate name to its sparse index path:
//
//	1 char:   1/{name}
//	2 chars:  2/{name}
//	3 chars:  3/{first}/{name}
//	4+ chars: {first2}/{next2}/{name}
func ComputeIndexPath(name string) (string, error) {
	n := strings.ToLower(name)
	switch len(n) {
	case 0:
		return "", fmt.Errorf("empty crate name")
	case 1:
		return "1/" + n, nil
	case 2:
		return "2/" + n, nil
	case 3:
		return "3/" + n[0:1] + "/" + n, nil
	default:
		return n[0:2] + "/" + n[2:4] + "/" + n, nil
	}
}

// FetchIndex downloads and parses all index lines for a crate.
func FetchIndex(ctx context.Context, c *cache.Cache, name string) ([]IndexLine, error) {
	path, err := ComputeIndexPath(name)
	if err != nil {
		return nil, err
	}
	text, err := c.GetText(ctx, indexBase+"/"+path)
	if err != nil {
		return nil, fmt.Errorf("fetching index for %s: %w", name, err)
	}
	return ParseNDJSON(text)
}

// ParseNDJSON parses newline-delimited JSON into index lines. Blank
// lines are skipped; a malformed line fails the whole parse.
func ParseNDJSON(text string) ([]IndexLine, error) {
	var lines []IndexLine
	for _, raw := range strings.Split(text, "\n") {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		var line IndexLine
		if err := json.Unmarshal([]byte(raw), &line); err != nil {
			return nil, fmt.Errorf("parsing index line: %w", err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// FindLatestStable picks the highest non-yanked stable version. When no
// stable version exists it falls back to the highest non-yanked version
// of any kind (a crate that only ever shipped pre-releases still
// deserves an answer). Returns nil when every version is yanked.
func FindLatestStable(lines []IndexLine) *IndexLine {
	var best *IndexLine
	for i := range lines {
		l := &lines[i]
		if l.Yanked || strings.Contains(l.Vers, "-") {
			continue
		}
		if best == nil || semverLess(best.Vers, l.Vers) {
			best = l
		}
	}
	if best != nil {
		return best
	}
	for i := range lines {
		l := &lines[i]
		if l.Yanked {
			continue
		}
		if best == nil || semverLess(best.Vers, l.Vers) {
			best = l
		}
	}
	return best
}

// SortVersionsDescending orders index lines newest release first.
func SortVersionsDescending(lines []IndexLine) {
	sort.SliceStable(lines, func(i, j int) bool {
		return semverLess(lines[j].Vers, lines[i].Vers)
	})
}

// FindVersion returns the index line for an exact version string.
func FindVersion(lines []IndexLine, version string) *IndexLine {
	for i := range lines {
		if lines[i].Vers == version {
			return &lines[i]
		}
	}
	return nil
}

// semverLess compares crate version strings, which lack the "v" prefix
// the semver package requires. Unparseable versions sort lowest.
func semverLess(a, b string) bool {
	va, vb := "v"+a, "v"+b
	if !semver.IsValid(va) {
		return semver.IsValid(vb)
	}
	if !semver.IsValid(vb) {
		return false
	}
	return semver.Compare(va, vb) < 0
}
