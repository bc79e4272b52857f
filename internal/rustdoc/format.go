package rustdoc

import (
	"strings"
)

// FormatType renders a type expression as display text. It is a pure
// function of the subtree: identical input always yields an identical
// string. Unrecognized node kinds render as a placeholder carrying the
// raw kind tag instead of failing.
func FormatType(t *Type) string {
	if t == nil {
		return "()"
	}

	switch t.Kind {
	case TypePrimitive:
		return t.Primitive

	case TypeGeneric:
		return t.Generic

	case TypeResolvedPath:
		return formatPathRef(t.Path)

	case TypeDynTrait:
		return formatDynTrait(t.DynTrait)

	case TypeImplTrait:
		if bounds := FormatBounds(t.ImplTrait); bounds != "" {
			return "impl " + bounds
		}
		return "impl"

	case TypeBorrowedRef:
		return formatBorrowedRef(t.BorrowedRef)

	case TypeRawPointer:
		if t.RawPointer == nil {
			return "*const _"
		}
		if t.RawPointer.Mut() {
			return "*mut " + FormatType(t.RawPointer.Type)
		}
		return "*const " + FormatType(t.RawPointer.Type)

	case TypeSlice:
		return "[" + FormatType(t.Slice) + "]"

	case TypeArray:
		if t.Array == nil {
			return "[_; _]"
		}
		length := t.Array.Len
		if length == "" {
			length = "_"
		}
		return "[" + FormatType(&t.Array.Type) + "; " + length + "]"

	case TypeTuple:
		parts := make([]string, len(t.Tuple))
		for i := range t.Tuple {
			parts[i] = FormatType(&t.Tuple[i])
		}
		return "(" + strings.Join(parts, ", ") + ")"

	case TypeQualifiedPath:
		return formatQualifiedPath(t.QualifiedPath)

	case TypeFunctionPointer:
		return formatFunctionPointer(t.FunctionPointer)

	case TypeInfer:
		return "_"

	case TypeUnknown:
		return unknownPlaceholder(t.RawKind)
	}
	return unknownPlaceholder(t.RawKind)
}

func unknownPlaceholder(rawKind string) string {
	if rawKind == "" {
		rawKind = "?"
	}
	return "<unknown:" + rawKind + ">"
}

func formatPathRef(p *PathRef) string {
	if p == nil {
		return "_"
	}
	name := p.DisplayName()
	if p.Args == nil {
		return name
	}

	if ab := p.Args.AngleBracketed; ab != nil && len(ab.Args) > 0 {
		parts := make([]string, 0, len(ab.Args))
		for i := range ab.Args {
			if s := formatGenericArg(&ab.Args[i]); s != "" {
				parts = append(parts, s)
			}
		}
		if len(parts) > 0 {
			return name + "<" + strings.Join(parts, ", ") + ">"
		}
		return name
	}

	// Fn-trait sugar: Fn(A, B) -> C.
	if par := p.Args.Parenthesized; par != nil {
		inputs := make([]string, len(par.Inputs))
		for i := range par.Inputs {
			inputs[i] = FormatType(&par.Inputs[i])
		}
		out := name + "(" + strings.Join(inputs, ", ") + ")"
		if par.Output != nil {
			if ret := FormatType(par.Output); ret != "()" {
				out += " -> " + ret
			}
		}
		return out
	}

	return name
}

func formatGenericArg(a *GenericArg) string {
	switch {
	case a.Lifetime != "":
		return normalizeLifetime(a.Lifetime)
	case a.Type != nil:
		return FormatType(a.Type)
	case a.Const != nil:
		return a.Const.Expr
	case a.Infer:
		return "_"
	}
	return ""
}

func formatDynTrait(dt *DynTrait) string {
	if dt == nil || len(dt.Traits) == 0 {
		return "dyn"
	}
	parts := make([]string, 0, len(dt.Traits)+1)
	for i := range dt.Traits {
		parts = append(parts, formatPathRef(&dt.Traits[i].Trait))
	}
	if dt.Lifetime != nil && *dt.Lifetime != "" {
		parts = append(parts, normalizeLifetime(*dt.Lifetime))
	}
	return "dyn " + strings.Join(parts, " + ")
}

func formatBorrowedRef(r *BorrowedRef) string {
	if r == nil {
		return "&_"
	}
	var b strings.Builder
	b.WriteString("&")
	if r.Lifetime != nil && *r.Lifetime != "" {
		b.WriteString(normalizeLifetime(*r.Lifetime))
		b.WriteString(" ")
	}
	if r.Mut() {
		b.WriteString("mut ")
	}
	b.WriteString(FormatType(r.Type))
	return b.String()
}

func formatQualifiedPath(qp *QualifiedPath) string {
	if qp == nil {
		return "_"
	}
	selfType := FormatType(&qp.SelfType)
	if qp.Trait == nil || qp.Trait.DisplayName() == "_" {
		// No disambiguating trait: the T::Name shorthand.
		return selfType + "::" + qp.Name
	}
	return "<" + selfType + " as " + formatPathRef(qp.Trait) + ">::" + qp.Name
}

func formatFunctionPointer(fp *FunctionPointer) string {
	if fp == nil {
		return "fn()"
	}
	params := make([]string, 0, len(fp.Sig.Inputs))
	for i := range fp.Sig.Inputs {
		p := &fp.Sig.Inputs[i]
		name := p.Name
		if name == "" {
			name = "_"
		}
		params = append(params, name+": "+FormatType(&p.Type))
	}
	out := "fn(" + strings.Join(params, ", ") + ")"
	if fp.Sig.Output != nil {
		if ret := FormatType(fp.Sig.Output); ret != "()" {
			out += " -> " + ret
		}
	}
	return out
}

// FormatBounds renders a bound list as "Bound1 + Bound2". Unknown bound
// variants are skipped.
func FormatBounds(bounds []Bound) string {
	parts := make([]string, 0, len(bounds))
	for i := range bounds {
		b := &bounds[i]
		switch {
		case b.TraitBound != nil:
			s := formatPathRef(&b.TraitBound.Trait)
			if b.TraitBound.Modifier == "maybe" {
				s = "?" + s
			}
			parts = append(parts, s)
		case b.Outlives != "":
			parts = append(parts, normalizeLifetime(b.Outlives))
		}
	}
	return strings.Join(parts, " + ")
}

// normalizeLifetime ensures a leading apostrophe: producers emit both
// "'a" and bare "a".
func normalizeLifetime(lt string) string {
	if strings.HasPrefix(lt, "'") {
		return lt
	}
	return "'" + lt
}
