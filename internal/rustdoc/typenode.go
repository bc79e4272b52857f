package rustdoc

import (
	"encoding/json"
)

// TypeKind is the closed set of type-expression kinds.
type TypeKind string

const (
	TypePrimitive       TypeKind = "primitive"
	TypeGeneric         TypeKind = "generic"
	TypeResolvedPath    TypeKind = "resolved_path"
	TypeDynTrait        TypeKind = "dyn_trait"
	TypeImplTrait       TypeKind = "impl_trait"
	TypeBorrowedRef     TypeKind = "borrowed_ref"
	TypeRawPointer      TypeKind = "raw_pointer"
	TypeSlice           TypeKind = "slice"
	TypeArray           TypeKind = "array"
	TypeTuple           TypeKind = "tuple"
	TypeQualifiedPath   TypeKind = "qualified_path"
	TypeFunctionPointer TypeKind = "function_pointer"
	TypeInfer           TypeKind = "infer"
	TypeUnknown         TypeKind = ""
)

// Type is one node of a type expression: a tagged union over the kinds
// above. Purely structural; decoding never fails on an unrecognized kind,
// it yields TypeUnknown with the raw tag preserved.
type Type struct {
	Kind    TypeKind
	RawKind string

	Primitive       string
	Generic         string
	Path            *PathRef
	DynTrait        *DynTrait
	ImplTrait       []Bound
	BorrowedRef     *BorrowedRef
	RawPointer      *RawPointer
	Slice           *Type
	Array           *ArrayType
	Tuple           []Type
	QualifiedPath   *QualifiedPath
	FunctionPointer *FunctionPointer
}

func (t *Type) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		// The unit return type is encoded as null.
		t.Kind = TypeTuple
		t.Tuple = nil
		return nil
	}

	// A bare string is the "infer" placeholder in some producers.
	var s string
	if json.Unmarshal(data, &s) == nil {
		t.Kind = TypeInfer
		t.RawKind = s
		return nil
	}

	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		return err
	}

	// Trait references inside bounds arrive as a bare path object
	// ({"id": .., "path": ..}) without a resolved_path wrapper.
	if _, hasID := outer["id"]; hasID {
		if _, hasPath := outer["path"]; hasPath {
			t.Kind = TypeResolvedPath
			t.Path = &PathRef{}
			return json.Unmarshal(data, t.Path)
		}
	}

	var tag string
	var payload json.RawMessage
	for k, v := range outer {
		tag, payload = k, v
		break
	}
	t.RawKind = tag

	switch TypeKind(tag) {
	case TypePrimitive:
		t.Kind = TypePrimitive
		return json.Unmarshal(payload, &t.Primitive)
	case TypeGeneric:
		t.Kind = TypeGeneric
		return json.Unmarshal(payload, &t.Generic)
	case TypeResolvedPath:
		t.Kind = TypeResolvedPath
		t.Path = &PathRef{}
		return json.Unmarshal(payload, t.Path)
	case TypeDynTrait:
		t.Kind = TypeDynTrait
		t.DynTrait = &DynTrait{}
		return json.Unmarshal(payload, t.DynTrait)
	case TypeImplTrait:
		t.Kind = TypeImplTrait
		return json.Unmarshal(payload, &t.ImplTrait)
	case TypeBorrowedRef:
		t.Kind = TypeBorrowedRef
		t.BorrowedRef = &BorrowedRef{}
		return json.Unmarshal(payload, t.BorrowedRef)
	case TypeRawPointer:
		t.Kind = TypeRawPointer
		t.RawPointer = &RawPointer{}
		return json.Unmarshal(payload, t.RawPointer)
	case TypeSlice:
		t.Kind = TypeSlice
		t.Slice = &Type{}
		return json.Unmarshal(payload, t.Slice)
	case TypeArray:
		t.Kind = TypeArray
		t.Array = &ArrayType{}
		return json.Unmarshal(payload, t.Array)
	case TypeTuple:
		t.Kind = TypeTuple
		return json.Unmarshal(payload, &t.Tuple)
	case TypeQualifiedPath:
		t.Kind = TypeQualifiedPath
		t.QualifiedPath = &QualifiedPath{}
		return json.Unmarshal(payload, t.QualifiedPath)
	case TypeFunctionPointer:
		t.Kind = TypeFunctionPointer
		t.FunctionPointer = &FunctionPointer{}
		return json.Unmarshal(payload, t.FunctionPointer)
	case TypeInfer:
		t.Kind = TypeInfer
		return nil
	default:
		t.Kind = TypeUnknown
		return nil
	}
}

// PathRef is a reference to a named item, optionally with generic args.
// The target may or may not resolve in the document's paths table.
type PathRef struct {
	Name string       `json:"name"`
	Path string       `json:"path"`
	ID   ID           `json:"id"`
	Args *GenericArgs `json:"args"`
}

// DisplayName prefers the full path form; older producers only set name.
func (p *PathRef) DisplayName() string {
	if p.Path != "" {
		return p.Path
	}
	if p.Name != "" {
		return p.Name
	}
	return "_"
}

// GenericArgs is either angle-bracketed (<A, B>) or parenthesized
// (Fn(A) -> B sugar).
type GenericArgs struct {
	AngleBracketed *AngleBracketedArgs `json:"angle_bracketed"`
	Parenthesized  *ParenthesizedArgs  `json:"parenthesized"`
}

type AngleBracketedArgs struct {
	Args []GenericArg `json:"args"`
}

type ParenthesizedArgs struct {
	Inputs []Type `json:"inputs"`
	Output *Type  `json:"output"`
}

// GenericArg is one entry of an angle-bracketed argument list.
type GenericArg struct {
	Lifetime string
	Type     *Type
	Const    *ConstExpr
	Infer    bool
}

func (a *GenericArg) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		// "infer" arrives as a bare string in some versions.
		a.Infer = true
		return nil
	}
	var obj struct {
		Lifetime *string         `json:"lifetime"`
		Type     *Type           `json:"type"`
		Const    *ConstExpr      `json:"const"`
		Infer    json.RawMessage `json:"infer"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if obj.Lifetime != nil {
		a.Lifetime = *obj.Lifetime
	}
	a.Type = obj.Type
	a.Const = obj.Const
	a.Infer = len(obj.Infer) > 0
	return nil
}

type DynTrait struct {
	Traits   []PolyTrait `json:"traits"`
	Lifetime *string     `json:"lifetime"`
}

type PolyTrait struct {
	Trait PathRef `json:"trait"`
}

type BorrowedRef struct {
	Lifetime *string `json:"lifetime"`
	// The mutability flag was renamed across format versions; accept both.
	IsMutable  bool  `json:"is_mutable"`
	WasMutable bool  `json:"mutable"`
	Type       *Type `json:"type"`
}

func (r *BorrowedRef) Mut() bool { return r.IsMutable || r.WasMutable }

type RawPointer struct {
	IsMutable  bool  `json:"is_mutable"`
	WasMutable bool  `json:"mutable"`
	Type       *Type `json:"type"`
}

func (r *RawPointer) Mut() bool { return r.IsMutable || r.WasMutable }

type ArrayType struct {
	Type Type   `json:"type"`
	Len  string `json:"len"`
}

type QualifiedPath struct {
	Name     string       `json:"name"`
	SelfType Type         `json:"self_type"`
	Trait    *PathRef     `json:"trait"`
	Args     *GenericArgs `json:"args"`
}

type FunctionPointer struct {
	Sig      FnSig    `json:"sig"`
	IsUnsafe bool     `json:"is_unsafe"`
	Header   FnHeader `json:"header"`
}

// Bound is a generic bound: a trait bound, an outlives lifetime, or an
// unrecognized future variant (ignored when formatting).
type Bound struct {
	TraitBound *TraitBound
	Outlives   string
	Unknown    bool
}

func (b *Bound) UnmarshalJSON(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	if raw, ok := obj["trait_bound"]; ok {
		b.TraitBound = &TraitBound{}
		return json.Unmarshal(raw, b.TraitBound)
	}
	if raw, ok := obj["outlives"]; ok {
		return json.Unmarshal(raw, &b.Outlives)
	}
	b.Unknown = true
	return nil
}

type TraitBound struct {
	Trait    PathRef `json:"trait"`
	Modifier string  `json:"modifier"`
}

// Generics is an ordered generic parameter list plus where-predicates.
// Declaration order is significant and preserved.
type Generics struct {
	Params          []GenericParamDef `json:"params"`
	WherePredicates []WherePredicate  `json:"where_predicates"`
}

type GenericParamDef struct {
	Name string           `json:"name"`
	Kind GenericParamKind `json:"kind"`
}

// GenericParamKind is a one-key union over lifetime, type, and const
// parameter declarations.
type GenericParamKind struct {
	Lifetime *LifetimeParam
	Type     *TypeParam
	Const    *ConstParam
}

func (k *GenericParamKind) UnmarshalJSON(data []byte) error {
	var obj struct {
		Lifetime *LifetimeParam `json:"lifetime"`
		Type     *TypeParam     `json:"type"`
		Const    *ConstParam    `json:"const"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	k.Lifetime = obj.Lifetime
	k.Type = obj.Type
	k.Const = obj.Const
	return nil
}

type LifetimeParam struct {
	Outlives []string `json:"outlives"`
}

type TypeParam struct {
	Bounds      []Bound `json:"bounds"`
	Default     *Type   `json:"default"`
	IsSynthetic bool    `json:"is_synthetic"`
}

type ConstParam struct {
	Type    Type    `json:"type"`
	Default *string `json:"default"`
}

// WherePredicate is a one-key union; only bound predicates carry the
// Subject: Bound1 + Bound2 shape the formatter renders.
type WherePredicate struct {
	BoundPredicate    *BoundPredicate
	LifetimePredicate *LifetimePredicate
	EqPredicate       *EqPredicate
}

func (w *WherePredicate) UnmarshalJSON(data []byte) error {
	var obj struct {
		BoundPredicate    *BoundPredicate    `json:"bound_predicate"`
		LifetimePredicate *LifetimePredicate `json:"lifetime_predicate"`
		EqPredicate       *EqPredicate       `json:"eq_predicate"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	w.BoundPredicate = obj.BoundPredicate
	w.LifetimePredicate = obj.LifetimePredicate
	w.EqPredicate = obj.EqPredicate
	return nil
}

type BoundPredicate struct {
	Type   Type    `json:"type"`
	Bounds []Bound `json:"bounds"`
}

type LifetimePredicate struct {
	Lifetime string   `json:"lifetime"`
	Outlives []string `json:"outlives"`
}

type EqPredicate struct {
	Lhs Type `json:"lhs"`
	Rhs Type `json:"rhs"`
}
