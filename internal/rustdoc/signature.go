package rustdoc

import (
	"fmt"
	"strings"
)

// FunctionSignature assembles the one-line display signature of a
// function item:
//
//	[async ][const ][unsafe ]fn name<G>(params) -> Ret where P1, P2
//
// The document is consulted only for the enclosing-type lookup helpers;
// formatting itself depends on nothing but the item payload. Non-function
// items return "".
func FunctionSignature(item *Item, doc *Crate) string {
	if item == nil || item.Inner.Function == nil {
		return ""
	}
	fn := item.Inner.Function

	var b strings.Builder
	if fn.Header.IsAsync {
		b.WriteString("async ")
	}
	if fn.Header.IsConst {
		b.WriteString("const ")
	}
	if fn.Header.IsUnsafe {
		b.WriteString("unsafe ")
	}

	b.WriteString("fn ")
	b.WriteString(item.NameOr("_"))
	b.WriteString(formatGenericParams(fn.Generics.Params))

	b.WriteString("(")
	b.WriteString(formatParams(fn.Sig.Inputs))
	if fn.Sig.IsCVariadic {
		if len(fn.Sig.Inputs) > 0 {
			b.WriteString(", ")
		}
		b.WriteString("...")
	}
	b.WriteString(")")

	if fn.Sig.Output != nil {
		if ret := FormatType(fn.Sig.Output); ret != "()" {
			b.WriteString(" -> ")
			b.WriteString(ret)
		}
	}

	b.WriteString(formatWhereClause(fn.Generics.WherePredicates))
	return b.String()
}

func formatParams(inputs []Param) string {
	parts := make([]string, 0, len(inputs))
	for i := range inputs {
		p := &inputs[i]
		if p.Name == "self" {
			parts = append(parts, receiverForm(&p.Type))
			continue
		}
		name := p.Name
		if name == "" || name == "_" {
			// impl-Trait-in-argument-position sugar drops the name;
			// synthesize one from the position so output is deterministic.
			name = fmt.Sprintf("arg%d", i)
		}
		parts = append(parts, name+": "+FormatType(&p.Type))
	}
	return strings.Join(parts, ", ")
}

// receiverForm maps any raw self-parameter encoding to one of exactly
// three receiver spellings: "self", "&self", or "&mut self" (the fourth
// canonical form, no receiver, is the absence of a self parameter).
// Producers emit the receiver as a bare Self generic, a borrowed
// reference, or occasionally a raw pointer; all collapse to these forms.
func receiverForm(t *Type) string {
	if t == nil {
		return "self"
	}
	switch t.Kind {
	case TypeBorrowedRef:
		if t.BorrowedRef != nil && t.BorrowedRef.Mut() {
			return "&mut self"
		}
		return "&self"
	case TypeRawPointer:
		if t.RawPointer != nil && t.RawPointer.Mut() {
			return "&mut self"
		}
		return "&self"
	default:
		return "self"
	}
}

// ItemSignature produces a one-line signature for any item kind: the full
// callable signature for functions, a declaration header for definitions,
// and "kind name" for everything else.
func ItemSignature(item *Item, doc *Crate) string {
	if item == nil {
		return ""
	}
	name := item.NameOr("_")
	in := &item.Inner
	switch in.Kind {
	case KindFunction:
		return FunctionSignature(item, doc)
	case KindStruct:
		return "struct " + name + GenericsClause(item)
	case KindUnion:
		return "union " + name + GenericsClause(item)
	case KindEnum:
		return "enum " + name + GenericsClause(item)
	case KindTrait:
		sig := "trait " + name + GenericsClause(item)
		if in.Trait != nil && in.Trait.IsUnsafe {
			sig = "unsafe " + sig
		}
		return sig
	case KindTraitAlias:
		return "trait " + name + GenericsClause(item)
	case KindTypeAlias:
		sig := "type " + name + GenericsClause(item)
		if in.TypeAlias != nil {
			sig += " = " + FormatType(&in.TypeAlias.Type)
		}
		return sig
	case KindConstant:
		if in.Constant != nil {
			return "const " + name + ": " + FormatType(&in.Constant.Type)
		}
		return "const " + name
	case KindStatic:
		if in.Static != nil {
			if in.Static.IsMutable {
				return "static mut " + name + ": " + FormatType(&in.Static.Type)
			}
			return "static " + name + ": " + FormatType(&in.Static.Type)
		}
		return "static " + name
	case KindAssocConst:
		if in.AssocConst != nil {
			return "const " + name + ": " + FormatType(&in.AssocConst.Type)
		}
		return "const " + name
	case KindAssocType:
		return "type " + name + GenericsClause(item)
	case KindMacro, KindProcMacro:
		return "macro " + name + "!"
	case KindModule:
		return "mod " + name
	default:
		kind := string(in.Kind)
		if kind == "" {
			kind = in.RawKind
		}
		if kind == "" {
			return name
		}
		return kind + " " + name
	}
}
