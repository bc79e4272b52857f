package rustdoc

import (
	"strings"
)

// TraitImplMode controls which trait implementations CollectTraitImpls
// reports for a type.
type TraitImplMode string

const (
	// TraitImplsFiltered omits ubiquitous blanket traits (From, Into,
	// Borrow, Any, ...), keeping the signal-bearing impls.
	TraitImplsFiltered TraitImplMode = "filtered"
	TraitImplsAll      TraitImplMode = "all"
	TraitImplsNone     TraitImplMode = "none"
)

// blanketTraits are implemented for effectively every type; listing them
// per item is noise under the default mode.
var blanketTraits = map[string]bool{
	"From":      true,
	"Into":      true,
	"TryFrom":   true,
	"TryInto":   true,
	"Borrow":    true,
	"BorrowMut": true,
	"Any":       true,
	"ToOwned":   true,
}

// ImplRef describes one impl block from the point of view of either side:
// the trait being implemented and the type it is implemented for.
type ImplRef struct {
	Trait      string `json:"trait,omitempty"`
	For        string `json:"for"`
	IsNegative bool   `json:"is_negative,omitempty"`
}

// TraitImplementors lists the types in this document that implement the
// given trait path. Matching accepts the trait's last path component or
// the full path. Synthetic (compiler-generated) impls are skipped. An
// optional search filter narrows by implementing-type substring.
func TraitImplementors(doc *Crate, traitPath, search string, limit int) []ImplRef {
	traitLast := lastPathComponent(traitPath)
	searchLower := strings.ToLower(search)
	if limit <= 0 {
		limit = 50
	}

	var out []ImplRef
	for _, id := range doc.sortedIndexIDs() {
		impl := doc.Index[id].Inner.Impl
		if impl == nil || impl.IsSynthetic || impl.Trait == nil {
			continue
		}
		if !traitMatches(impl.Trait, traitPath, traitLast) {
			continue
		}
		forName := FormatType(&impl.For)
		if forName == "" {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(forName), searchLower) {
			continue
		}
		out = append(out, ImplRef{
			Trait:      impl.Trait.DisplayName(),
			For:        forName,
			IsNegative: impl.IsNegative,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

// TypeTraitImpls lists the traits implemented by the given type path.
func TypeTraitImpls(doc *Crate, typePath, search string, mode TraitImplMode, limit int) []ImplRef {
	if mode == TraitImplsNone {
		return nil
	}
	typeLast := lastPathComponent(typePath)
	searchLower := strings.ToLower(search)
	if limit <= 0 {
		limit = 50
	}

	var out []ImplRef
	for _, id := range doc.sortedIndexIDs() {
		impl := doc.Index[id].Inner.Impl
		if impl == nil || impl.IsSynthetic || impl.Trait == nil {
			continue
		}
		forName := FormatType(&impl.For)
		if lastPathComponent(baseTypeName(forName)) != typeLast {
			continue
		}
		traitName := impl.Trait.DisplayName()
		if mode == TraitImplsFiltered && blanketTraits[lastPathComponent(traitName)] {
			continue
		}
		if searchLower != "" && !strings.Contains(strings.ToLower(traitName), searchLower) {
			continue
		}
		out = append(out, ImplRef{
			Trait:      traitName,
			For:        forName,
			IsNegative: impl.IsNegative,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

// InherentMethods returns signatures of the inherent-impl methods of the
// type with the given identifier (a struct/enum/union item).
func InherentMethods(doc *Crate, item *Item) []ItemSummary {
	impls := implIDs(item)
	var out []ItemSummary
	for _, implID := range impls {
		implItem, ok := doc.Index[implID]
		if !ok || implItem.Inner.Impl == nil {
			continue
		}
		impl := implItem.Inner.Impl
		if impl.Trait != nil || impl.IsSynthetic {
			continue
		}
		for _, methodID := range impl.Items {
			method, ok := doc.Index[methodID]
			if !ok || method.Inner.Kind != KindFunction {
				continue
			}
			out = append(out, ItemSummary{
				Path:       method.NameOr(string(methodID)),
				Kind:       "method",
				Signature:  FunctionSignature(&method, doc),
				DocSummary: DocSummary(method.DocText()),
			})
		}
	}
	return out
}

// TraitMethods returns signatures of a trait's required and provided
// methods. Associated consts and types are skipped.
func TraitMethods(doc *Crate, item *Item) []ItemSummary {
	if item.Inner.Kind != KindTrait || item.Inner.Trait == nil {
		return nil
	}
	var out []ItemSummary
	for _, methodID := range item.Inner.Trait.Items {
		method, ok := doc.Index[methodID]
		if !ok || method.Inner.Kind != KindFunction {
			continue
		}
		out = append(out, ItemSummary{
			Path:       method.NameOr(string(methodID)),
			Kind:       "method",
			Signature:  FunctionSignature(&method, doc),
			DocSummary: DocSummary(method.DocText()),
		})
	}
	return out
}

func implIDs(item *Item) []ID {
	in := &item.Inner
	switch in.Kind {
	case KindStruct:
		if in.Struct != nil {
			return in.Struct.Impls
		}
	case KindEnum:
		if in.Enum != nil {
			return in.Enum.Impls
		}
	case KindUnion:
		if in.Union != nil {
			return in.Union.Impls
		}
	}
	return nil
}

func traitMatches(ref *PathRef, fullPath, last string) bool {
	name := ref.DisplayName()
	return name == last || name == fullPath ||
		strings.HasSuffix(fullPath, "::"+name) ||
		strings.HasSuffix(name, "::"+last)
}

func lastPathComponent(path string) string {
	if i := strings.LastIndex(path, "::"); i >= 0 {
		return path[i+2:]
	}
	return path
}

// baseTypeName strips a generic argument list: "Vec<T>" → "Vec".
func baseTypeName(name string) string {
	if i := strings.Index(name, "<"); i >= 0 {
		return name[:i]
	}
	return name
}
