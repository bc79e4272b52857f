package rustdoc

import (
	"strings"
)

// ModuleNode is one module of the derived namespace tree. Built fresh per
// call and never retained by this package; the caller owns it outright.
type ModuleNode struct {
	Path       string         `json:"path"`
	DocSummary string         `json:"doc_summary,omitempty"`
	ItemCounts map[string]int `json:"item_counts"`
	Items      []ItemSummary  `json:"items,omitempty"`
	Children   []*ModuleNode  `json:"children,omitempty"`
}

// ItemSummary is a one-line description of an item: its qualified path,
// kind, display signature, doc excerpt, and reconstructed feature gates.
// Score is populated by search only.
type ItemSummary struct {
	Path                string   `json:"path"`
	Kind                string   `json:"kind"`
	Signature           string   `json:"signature,omitempty"`
	DocSummary          string   `json:"doc_summary,omitempty"`
	FeatureRequirements []string `json:"feature_requirements,omitempty"`
	Score               int      `json:"score,omitempty"`
}

// BuildModuleTree walks the document's module namespace depth-first from
// the root module and returns the resulting tree. Child identifiers keep
// their declaration order. Per-kind counts exclude `use` re-exports, and
// identifiers that resolve only through the paths table are skipped
// entirely (they are not locally defined). When includeItems is set,
// every resolved non-module child gets an ItemSummary.
//
// The namespace is acyclic by construction, but a duplicated or
// self-referential identifier in malformed input must not hang the walk:
// a per-path visited set cuts any repetition.
func BuildModuleTree(doc *Crate, includeItems bool) (*ModuleNode, error) {
	root, err := doc.RootItem()
	if err != nil {
		return nil, err
	}
	if root.Inner.Kind != KindModule || root.Inner.Module == nil {
		return nil, ErrNoRoot
	}

	visited := map[ID]bool{doc.Root: true}
	return buildModuleNode(doc, doc.Root, root, includeItems, visited), nil
}

func buildModuleNode(doc *Crate, id ID, item *Item, includeItems bool, visited map[ID]bool) *ModuleNode {
	node := &ModuleNode{
		Path:       modulePath(doc, id, item),
		DocSummary: DocSummary(item.DocText()),
		ItemCounts: map[string]int{},
	}

	for _, childID := range item.Inner.Module.Items {
		child, ok := doc.Index[childID]
		if !ok {
			// Present only in paths (unresolved re-export) or dangling.
			continue
		}

		kind := child.Inner.Kind
		if kind == KindUse {
			continue
		}

		kindName := string(kind)
		if kindName == "" {
			kindName = child.Inner.RawKind
		}
		if kindName == "" {
			kindName = "unknown"
		}
		node.ItemCounts[kindName]++

		if kind == KindModule && child.Inner.Module != nil {
			if visited[childID] {
				continue
			}
			visited[childID] = true
			node.Children = append(node.Children,
				buildModuleNode(doc, childID, &child, includeItems, visited))
			delete(visited, childID)
			continue
		}

		if includeItems {
			node.Items = append(node.Items, ItemSummary{
				Path:                node.Path + "::" + child.NameOr(string(childID)),
				Kind:                kindName,
				Signature:           ItemSignature(&child, doc),
				DocSummary:          DocSummary(child.DocText()),
				FeatureRequirements: FeatureRequirements(child.AttrStrings(), nil),
			})
		}
	}

	return node
}

func modulePath(doc *Crate, id ID, item *Item) string {
	if entry, ok := doc.Paths[id]; ok && len(entry.Path) > 0 {
		return entry.FullPath()
	}
	return item.NameOr(strings.TrimSpace(string(id)))
}
