package rustdoc

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DecodeCrate decodes rustdoc JSON bytes into a Crate. A document without
// a root identifier is rejected as malformed; everything else decodes
// best-effort (unknown kinds survive as KindUnknown/TypeUnknown).
func DecodeCrate(data []byte) (*Crate, error) {
	var c Crate
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("unmarshaling rustdoc JSON: %w", err)
	}
	if c.Root == "" {
		return nil, ErrNoRoot
	}
	return &c, nil
}

// RootItem returns the root module item, or ErrNoRoot when the root
// identifier does not resolve in the index.
func (c *Crate) RootItem() (*Item, error) {
	item, ok := c.Index[c.Root]
	if !ok {
		return nil, ErrNoRoot
	}
	return &item, nil
}

// Name is the crate name as recorded in the root path entry, or "".
func (c *Crate) Name() string {
	if entry, ok := c.Paths[c.Root]; ok && len(entry.Path) > 0 {
		return entry.Path[0]
	}
	return ""
}

// sortedIndexIDs returns the index keys in ascending numeric order
// (lexicographic for non-numeric identifiers). Item identifiers are
// assigned in declaration order by the producer, so this is the stable
// iteration order every deterministic consumer uses.
func (c *Crate) sortedIndexIDs() []ID {
	ids := make([]ID, 0, len(c.Index))
	for id := range c.Index {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, aerr := strconv.ParseInt(string(ids[i]), 10, 64)
		b, berr := strconv.ParseInt(string(ids[j]), 10, 64)
		if aerr == nil && berr == nil {
			return a < b
		}
		if aerr == nil {
			return true
		}
		if berr == nil {
			return false
		}
		return ids[i] < ids[j]
	})
	return ids
}

// FindItemByPath resolves a fully-qualified path ("tokio::sync::Mutex")
// to an item identifier via the paths table. Exact match is tried first;
// then a subsequence fallback that tolerates re-export path differences
// (the canonical stored path may contain extra private module segments,
// e.g. "tokio::sync::mutex::Mutex"). Failure yields a NotFoundError; if
// the path names a `use` re-export of an external item, the error carries
// the source paths so callers can redirect the user.
func (c *Crate) FindItemByPath(crateName, target string) (ID, error) {
	targetParts := strings.Split(target, "::")

	for _, id := range c.sortedPathIDs() {
		entry := c.Paths[id]
		if entry.FullPath() == target {
			return id, nil
		}
	}

	for _, id := range c.sortedPathIDs() {
		entry := c.Paths[id]
		if pathSubsequenceMatch(entry.Path, targetParts) {
			return id, nil
		}
	}

	return "", &NotFoundError{
		Crate:           crateName,
		Path:            target,
		ReexportSources: c.reexportSources(targetParts[len(targetParts)-1]),
	}
}

func (c *Crate) sortedPathIDs() []ID {
	ids := make([]ID, 0, len(c.Paths))
	for id := range c.Paths {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// pathSubsequenceMatch reports whether target's non-crate components are
// a subsequence of stored's non-crate components, with matching crate
// names. ["sync", "Mutex"] matches stored ["sync", "mutex", "Mutex"].
func pathSubsequenceMatch(stored, target []string) bool {
	if len(stored) == 0 || len(target) < 2 {
		return false
	}
	if stored[0] != target[0] {
		return false
	}
	ti := 1
	for _, seg := range stored[1:] {
		if ti < len(target) && seg == target[ti] {
			ti++
		}
	}
	return ti == len(target)
}

// reexportSources finds `use` items matching the given name whose targets
// are absent from the paths table, returning their source paths (capped).
func (c *Crate) reexportSources(name string) []string {
	var sources []string
	for _, id := range c.sortedIndexIDs() {
		item := c.Index[id]
		if _, inPaths := c.Paths[id]; inPaths {
			continue
		}
		if item.Inner.Kind != KindUse || item.Inner.Use == nil {
			continue
		}
		if item.NameOr("") != name || item.Inner.Use.Source == "" {
			continue
		}
		sources = append(sources, item.Inner.Use.Source)
		if len(sources) == 3 {
			break
		}
	}
	return sources
}

// ExternalCrateName resolves a dependency's package name by crate ID.
// Prefers the name embedded in html_root_url (the Cargo name, hyphens)
// over the lib name (underscores).
func (c *Crate) ExternalCrateName(crateID int) string {
	ext, ok := c.ExternalCrates[strconv.Itoa(crateID)]
	if !ok {
		return ""
	}
	if name := docsRsName(ext.HTMLRootURL); name != "" {
		return name
	}
	return ext.Name
}
