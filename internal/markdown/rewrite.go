// Package markdown post-processes rustdoc comment markdown before it is
// returned to clients: intra-doc link targets become docs.rs URLs.
package markdown

import (
	"sort"
	"strings"

	gm "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	gmparser "github.com/gomarkdown/markdown/parser"
)

// ResolveDocLinks rewrites intra-doc links in rustdoc markdown using the
// target-to-URL map derived from the item's link table.
//
// Two link shapes occur in doc comments:
//
//	[`JoinHandle`](JoinHandle)  inline, target in the destination
//	[`JoinHandle`]              shortcut, target is the bracket text
//
// Inline destinations are rewritten in place via the AST so surrounding
// formatting survives untouched. Shortcut links get reference
// definitions appended at the bottom, which is how CommonMark resolves
// them; an unresolved shortcut stays plain text, exactly as rustdoc
// renders it.
func ResolveDocLinks(src string, linkMap map[string]string) string {
	if len(linkMap) == 0 {
		return src
	}

	doc := gm.Parse([]byte(src), gmparser.NewWithExtensions(
		gmparser.CommonExtensions|gmparser.Autolink,
	))

	seen := make(map[string]bool)
	type replacement struct {
		oldDest string
		newDest string
	}
	var replacements []replacement

	ast.WalkFunc(doc, func(node ast.Node, entering bool) ast.WalkStatus {
		if !entering {
			return ast.GoToNext
		}
		if link, ok := node.(*ast.Link); ok {
			dest := string(link.Destination)
			if newDest, ok := linkMap[dest]; ok && !seen[dest] {
				seen[dest] = true
				replacements = append(replacements, replacement{dest, newDest})
			}
		}
		return ast.GoToNext
	})

	result := src
	for _, r := range replacements {
		result = strings.ReplaceAll(result, "]("+r.oldDest+")", "]("+r.newDest+")")
	}

	return result + shortcutDefinitions(src, linkMap)
}

// shortcutDefinitions builds the reference-definition block for shortcut
// links whose target appears in the map. Targets are emitted sorted so
// output is deterministic.
func shortcutDefinitions(src string, linkMap map[string]string) string {
	var targets []string
	for target, url := range linkMap {
		if url == "" {
			continue
		}
		// Both the plain and code-span spellings count as usage.
		if strings.Contains(src, "["+target+"]") || strings.Contains(src, "[`"+target+"`]") {
			if !strings.Contains(src, "["+target+"]:") {
				targets = append(targets, target)
			}
		}
	}
	if len(targets) == 0 {
		return ""
	}
	sort.Strings(targets)

	var b strings.Builder
	b.WriteString("\n")
	for _, target := range targets {
		b.WriteString("\n[")
		b.WriteString(target)
		b.WriteString("]: ")
		b.WriteString(linkMap[target])
		// The code-span form resolves through its own label.
		if strings.Contains(src, "[`"+target+"`]") {
			b.WriteString("\n[`")
			b.WriteString(target)
			b.WriteString("`]: ")
			b.WriteString(linkMap[target])
		}
	}
	b.WriteString("\n")
	return b.String()
}
