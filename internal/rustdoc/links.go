package rustdoc

import (
	"fmt"
	"regexp"
	"strings"
)

// DocLinkMap resolves an item's intra-doc links (markdown target text →
// item identifier) to docs.rs URLs, using the paths table for local items
// and external_crates for dependencies. Unresolvable targets are dropped;
// a nil map means nothing resolved.
func DocLinkMap(item *Item, doc *Crate, crateName, version string) map[string]string {
	if len(item.Links) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(item.Links))
	for target, id := range item.Links {
		if url := ItemURL(id, doc, crateName, version); url != "" {
			resolved[target] = url
		}
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

// ItemURL builds the docs.rs search URL for an item identifier, or ""
// when the identifier resolves in neither paths nor external_crates.
func ItemURL(id ID, doc *Crate, crateName, version string) string {
	entry, ok := doc.Paths[id]
	if !ok {
		return ""
	}
	fullPath := entry.FullPath()
	if entry.CrateID == 0 {
		return fmt.Sprintf("https://docs.rs/%s/%s/?search=%s", crateName, version, fullPath)
	}
	depName := doc.ExternalCrateName(entry.CrateID)
	if depName == "" {
		return ""
	}
	return fmt.Sprintf("https://docs.rs/%s/latest/?search=%s", depName, fullPath)
}

// docsRsNameRe pulls the crate name out of a docs.rs html_root_url, e.g.
// "https://docs.rs/tracing-core/0.1.36/x86_64-unknown-linux-gnu/".
var docsRsNameRe = regexp.MustCompile(`^https?://docs\.rs/([^/]+)/`)

func docsRsName(rootURL string) string {
	m := docsRsNameRe.FindStringSubmatch(rootURL)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// FirstParagraph returns the first markdown paragraph of a doc comment.
func FirstParagraph(docs string) string {
	docs = strings.TrimSpace(docs)
	if i := strings.Index(docs, "\n\n"); i >= 0 {
		return docs[:i]
	}
	return docs
}
