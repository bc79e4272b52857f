package rustdoc

import (
	"sort"
	"strings"
	"unicode"
)

// Match scores, strongest first. Exactly one applies per name: rules are
// checked in descending order and the first hit wins, so a name matching
// both the boundary and substring rules scores ScoreBoundary.
const (
	ScoreExact     = 100 // case-insensitive exact name match
	ScorePrefix    = 80  // name starts with query
	ScoreBoundary  = 70  // query aligns with a word/segment boundary
	ScoreSubstring = 60  // name contains query
	ScorePathSeg   = 30  // a path segment contains query
)

// SearchOptions filter and bound a search.
type SearchOptions struct {
	// Kind restricts results to one item kind. User-friendly aliases
	// ("fn", "mod", "type") are normalized.
	Kind string
	// ModulePrefix restricts results to paths under the given prefix.
	ModulePrefix string
	// Limit caps the result count after sorting. Zero means 10.
	Limit int
	// DeclaredFeatures, when set, filters reconstructed feature gates to
	// names the crate actually declares.
	DeclaredFeatures map[string]struct{}
}

// SearchItems scores every named item against the query and returns the
// ranked summaries, best first. Filters apply before scoring. Ordering is
// deterministic: equal scores keep declaration order.
func SearchItems(doc *Crate, query string, opts SearchOptions) []ItemSummary {
	queryLower := strings.ToLower(query)
	kindFilter := normalizeKind(opts.Kind)
	limit := opts.Limit
	if limit <= 0 {
		limit = 10
	}

	var results []ItemSummary

	for _, id := range doc.sortedIndexIDs() {
		item := doc.Index[id]
		entry, ok := doc.Paths[id]
		if !ok {
			continue
		}

		itemKind := entry.Kind
		if kindFilter != "" && itemKind != kindFilter {
			continue
		}

		fullPath := entry.FullPath()
		if opts.ModulePrefix != "" && !strings.HasPrefix(fullPath, opts.ModulePrefix) {
			continue
		}

		name := item.NameOr("")
		if name == "" {
			continue
		}

		score := scoreName(name, query, queryLower)
		if score == 0 {
			score = scorePathSegments(entry.Path, queryLower)
		}
		if score == 0 {
			continue
		}

		results = append(results, ItemSummary{
			Path:                fullPath,
			Kind:                itemKind,
			Signature:           ItemSignature(&item, doc),
			DocSummary:          DocSummary(item.DocText()),
			FeatureRequirements: FeatureRequirements(item.AttrStrings(), opts.DeclaredFeatures),
			Score:               score,
		})
	}

	// Second pass: inherent methods. These live in the index but not in
	// paths; their qualified path comes from the enclosing impl block.
	if kindFilter == "" || kindFilter == "method" {
		parents := methodParents(doc)
		for _, id := range doc.sortedIndexIDs() {
			if _, inPaths := doc.Paths[id]; inPaths {
				continue
			}
			item := doc.Index[id]
			if item.Inner.Kind != KindFunction {
				continue
			}
			parentPath, ok := parents[id]
			if !ok {
				continue
			}
			if opts.ModulePrefix != "" && !strings.HasPrefix(parentPath, opts.ModulePrefix) {
				continue
			}
			name := item.NameOr("")
			if name == "" {
				continue
			}

			score := scoreName(name, query, queryLower)
			if score == 0 {
				score = scorePathSegments(strings.Split(parentPath, "::"), queryLower)
			}
			if score == 0 {
				continue
			}

			results = append(results, ItemSummary{
				Path:                parentPath + "::" + name,
				Kind:                "method",
				Signature:           FunctionSignature(&item, doc),
				DocSummary:          DocSummary(item.DocText()),
				FeatureRequirements: FeatureRequirements(item.AttrStrings(), opts.DeclaredFeatures),
				Score:               score,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > limit {
		results = results[:limit]
	}
	return results
}

// scoreName applies the name-match rules in descending score order.
// Prefix matching is case-sensitive; without that, every prefix match
// would shadow the boundary rule (e.g. "Parser" vs query "parse").
func scoreName(name, query, queryLower string) int {
	nameLower := strings.ToLower(name)
	switch {
	case nameLower == queryLower:
		return ScoreExact
	case strings.HasPrefix(name, query):
		return ScorePrefix
	case segmentStartsWith(name, queryLower):
		return ScoreBoundary
	case strings.Contains(nameLower, queryLower):
		return ScoreSubstring
	}
	return 0
}

func scorePathSegments(segments []string, queryLower string) int {
	for _, seg := range segments {
		if strings.Contains(strings.ToLower(seg), queryLower) {
			return ScorePathSeg
		}
	}
	return 0
}

// segmentStartsWith reports whether any word of the name begins with the
// query. Words split at underscores, path separators, and lower-to-upper
// case transitions, so "parse" aligns with a boundary in "Parser" and
// "try_parse" but not in "reparse".
func segmentStartsWith(name, queryLower string) bool {
	for _, seg := range splitWords(name) {
		if strings.HasPrefix(strings.ToLower(seg), queryLower) {
			return true
		}
	}
	return false
}

func splitWords(name string) []string {
	var words []string
	runes := []rune(name)
	start := 0
	for i := 0; i < len(runes); i++ {
		if runes[i] == '_' || runes[i] == ':' {
			if i > start {
				words = append(words, string(runes[start:i]))
			}
			start = i + 1
			continue
		}
		if i > start && unicode.IsUpper(runes[i]) && unicode.IsLower(runes[i-1]) {
			words = append(words, string(runes[start:i]))
			start = i
		}
	}
	if start < len(runes) {
		words = append(words, string(runes[start:]))
	}
	return words
}

// methodParents maps each inherent-impl method identifier to the full
// qualified path of its enclosing type. Trait-impl methods are excluded:
// they surface through the implementing type instead.
func methodParents(doc *Crate) map[ID]string {
	parents := make(map[ID]string)
	for _, id := range doc.sortedIndexIDs() {
		item := doc.Index[id]
		impl := item.Inner.Impl
		if item.Inner.Kind != KindImpl || impl == nil || impl.Trait != nil {
			continue
		}

		parentPath := ""
		if impl.For.Kind == TypeResolvedPath && impl.For.Path != nil {
			if entry, ok := doc.Paths[impl.For.Path.ID]; ok {
				parentPath = entry.FullPath()
			}
		}
		if parentPath == "" {
			parentPath = FormatType(&impl.For)
		}
		if parentPath == "" {
			continue
		}

		for _, methodID := range impl.Items {
			parents[methodID] = parentPath
		}
	}
	return parents
}

// normalizeKind maps user-facing kind aliases to rustdoc kind names.
func normalizeKind(kind string) string {
	switch kind {
	case "fn":
		return "function"
	case "mod":
		return "module"
	case "type":
		return "type_alias"
	case "const":
		return "constant"
	default:
		return kind
	}
}
