package rustdoc

import (
	"strings"
)

// GenericsClause renders the <...> parameter clause of a definition item,
// or "" when the item declares no generic parameters. The generics payload
// lives at a kind-dependent location, so this dispatches over the full
// closed kind set; a newly added kind must be slotted in here explicitly.
func GenericsClause(item *Item) string {
	g := itemGenerics(item)
	if g == nil {
		return ""
	}
	return formatGenericParams(g.Params)
}

// itemGenerics locates the generics payload for the item's kind.
func itemGenerics(item *Item) *Generics {
	if item == nil {
		return nil
	}
	in := &item.Inner
	switch in.Kind {
	case KindStruct:
		if in.Struct != nil {
			return &in.Struct.Generics
		}
	case KindUnion:
		if in.Union != nil {
			return &in.Union.Generics
		}
	case KindEnum:
		if in.Enum != nil {
			return &in.Enum.Generics
		}
	case KindTrait:
		if in.Trait != nil {
			return &in.Trait.Generics
		}
	case KindTraitAlias:
		if in.TraitAlias != nil {
			return &in.TraitAlias.Generics
		}
	case KindTypeAlias:
		if in.TypeAlias != nil {
			return &in.TypeAlias.Generics
		}
	case KindFunction:
		if in.Function != nil {
			return &in.Function.Generics
		}
	case KindImpl:
		if in.Impl != nil {
			return &in.Impl.Generics
		}
	case KindAssocType:
		if in.AssocType != nil {
			return &in.AssocType.Generics
		}
	case KindModule, KindExternCrate, KindUse, KindStructField, KindVariant,
		KindConstant, KindStatic, KindMacro, KindProcMacro, KindPrimitive,
		KindAssocConst, KindExternType, KindUnknown:
		// These kinds declare no generic parameters.
	}
	return nil
}

// formatGenericParams renders "<T: Bound, 'a, const N: usize>" preserving
// declaration order across parameter kinds. Synthetic impl-Trait params
// are skipped: they already appear in the parameter list.
func formatGenericParams(params []GenericParamDef) string {
	parts := make([]string, 0, len(params))
	for i := range params {
		p := &params[i]
		if strings.HasPrefix(p.Name, "impl ") {
			continue
		}
		switch {
		case p.Kind.Const != nil:
			parts = append(parts, "const "+p.Name+": "+FormatType(&p.Kind.Const.Type))
		case p.Kind.Type != nil:
			if p.Kind.Type.IsSynthetic {
				continue
			}
			if bounds := FormatBounds(p.Kind.Type.Bounds); bounds != "" {
				parts = append(parts, p.Name+": "+bounds)
			} else {
				parts = append(parts, p.Name)
			}
		case p.Kind.Lifetime != nil:
			parts = append(parts, normalizeLifetime(p.Name))
		default:
			parts = append(parts, p.Name)
		}
	}
	if len(parts) == 0 {
		return ""
	}
	return "<" + strings.Join(parts, ", ") + ">"
}

// formatWhereClause renders " where Subject: Bound1 + Bound2, ..." or ""
// when no renderable predicates exist.
func formatWhereClause(preds []WherePredicate) string {
	parts := make([]string, 0, len(preds))
	for i := range preds {
		bp := preds[i].BoundPredicate
		if bp == nil {
			continue
		}
		bounds := FormatBounds(bp.Bounds)
		if bounds == "" {
			continue
		}
		parts = append(parts, FormatType(&bp.Type)+": "+bounds)
	}
	if len(parts) == 0 {
		return ""
	}
	return " where " + strings.Join(parts, ", ")
}
