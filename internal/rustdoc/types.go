package rustdoc

import (
	"encoding/json"
	"fmt"
)

// ID is a rustdoc item identifier. Recent format versions emit integers
// while index/paths map keys are strings; both decode to the string form.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("item id must be a string or number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Crate is a decoded rustdoc JSON document.
type Crate struct {
	Root           ID                       `json:"root"`
	CrateVersion   *string                  `json:"crate_version"`
	Index          map[ID]Item              `json:"index"`
	Paths          map[ID]PathEntry         `json:"paths"`
	ExternalCrates map[string]ExternalCrate `json:"external_crates"`
	FormatVersion  int                      `json:"format_version"`
}

// PathEntry locates an item in the module namespace. Entries exist for
// items that are referenced (e.g. re-exported) even when the item body is
// absent from Index.
type PathEntry struct {
	CrateID int      `json:"crate_id"`
	Path    []string `json:"path"`
	Kind    string   `json:"kind"`
}

// FullPath joins the path components with "::".
func (p *PathEntry) FullPath() string {
	out := ""
	for i, seg := range p.Path {
		if i > 0 {
			out += "::"
		}
		out += seg
	}
	return out
}

// ExternalCrate identifies a dependency crate.
type ExternalCrate struct {
	Name        string `json:"name"`
	HTMLRootURL string `json:"html_root_url"`
}

// Item is a single entry in the rustdoc index.
type Item struct {
	ID          ID            `json:"id"`
	CrateID     int           `json:"crate_id"`
	Name        *string       `json:"name"`
	Docs        *string       `json:"docs"`
	Visibility  Visibility    `json:"visibility"`
	Attrs       []Attr        `json:"attrs"`
	Deprecation *Deprecation  `json:"deprecation"`
	Links       map[string]ID `json:"links"`
	Inner       Inner         `json:"inner"`
}

// NameOr returns the item name, or fallback for anonymous items.
func (it *Item) NameOr(fallback string) string {
	if it.Name != nil && *it.Name != "" {
		return *it.Name
	}
	return fallback
}

// DocText returns the item's doc comment, or "".
func (it *Item) DocText() string {
	if it.Docs == nil {
		return ""
	}
	return *it.Docs
}

// AttrStrings returns the raw attribute text of each attr entry.
func (it *Item) AttrStrings() []string {
	out := make([]string, 0, len(it.Attrs))
	for _, a := range it.Attrs {
		if a.Raw != "" {
			out = append(out, a.Raw)
		}
	}
	return out
}

type Deprecation struct {
	Since *string `json:"since"`
	Note  *string `json:"note"`
}

// Visibility is "public", "default", "crate", or "restricted". Restricted
// visibility arrives as a one-field object carrying the parent path.
type Visibility string

func (v *Visibility) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = Visibility(s)
		return nil
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for k := range obj {
		*v = Visibility(k)
		return nil
	}
	return nil
}

// Attr is one attribute entry. Recent format versions wrap the attribute
// text in a one-field record (e.g. {"other": "#[...]"}); older ones emit
// bare strings. Both decode to the raw text.
type Attr struct {
	Raw string
}

func (a *Attr) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &a.Raw)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, raw := range obj {
		if len(raw) > 0 && raw[0] == '"' {
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				a.Raw = s
				return nil
			}
		}
		// Structured attr payload (e.g. repr); keep the JSON text.
		a.Raw = string(raw)
		return nil
	}
	return nil
}

// ItemKind is the closed set of item kinds this package understands.
// Unknown kinds decode to KindUnknown with the raw tag preserved on Inner,
// and are always handled best-effort rather than rejected.
type ItemKind string

const (
	KindModule      ItemKind = "module"
	KindExternCrate ItemKind = "extern_crate"
	KindUse         ItemKind = "use"
	KindStruct      ItemKind = "struct"
	KindStructField ItemKind = "struct_field"
	KindUnion       ItemKind = "union"
	KindEnum        ItemKind = "enum"
	KindVariant     ItemKind = "variant"
	KindFunction    ItemKind = "function"
	KindTrait       ItemKind = "trait"
	KindTraitAlias  ItemKind = "trait_alias"
	KindImpl        ItemKind = "impl"
	KindTypeAlias   ItemKind = "type_alias"
	KindConstant    ItemKind = "constant"
	KindStatic      ItemKind = "static"
	KindMacro       ItemKind = "macro"
	KindProcMacro   ItemKind = "proc_macro"
	KindPrimitive   ItemKind = "primitive"
	KindAssocConst  ItemKind = "assoc_const"
	KindAssocType   ItemKind = "assoc_type"
	KindExternType  ItemKind = "extern_type"
	KindUnknown     ItemKind = ""
)

// Inner is the kind-specific payload of an item. The JSON form is a
// one-key object whose key is the kind tag; decoding resolves the tag to
// an ItemKind and fills exactly one payload field.
type Inner struct {
	Kind    ItemKind
	RawKind string // original tag; meaningful when Kind == KindUnknown

	Module      *ModuleData
	Use         *UseData
	Struct      *StructData
	StructField *Type
	Union       *UnionData
	Enum        *EnumData
	Function    *FunctionData
	Trait       *TraitData
	TraitAlias  *TraitAliasData
	Impl        *ImplData
	TypeAlias   *TypeAliasData
	Constant    *ConstantData
	Static      *StaticData
	AssocConst  *AssocConstData
	AssocType   *AssocTypeData
}

func (in *Inner) UnmarshalJSON(data []byte) error {
	var outer map[string]json.RawMessage
	if err := json.Unmarshal(data, &outer); err != nil {
		// Some kinds (e.g. "extern_crate" in old formats) arrive as bare
		// strings; treat them as an unknown payload-less kind.
		var tag string
		if serr := json.Unmarshal(data, &tag); serr == nil {
			in.Kind = KindUnknown
			in.RawKind = tag
			return nil
		}
		return err
	}

	var tag string
	var payload json.RawMessage
	for k, v := range outer {
		tag, payload = k, v
		break
	}
	in.RawKind = tag

	decode := func(dst any) error {
		if len(payload) == 0 || string(payload) == "null" {
			return nil
		}
		return json.Unmarshal(payload, dst)
	}

	switch ItemKind(tag) {
	case KindModule:
		in.Kind = KindModule
		in.Module = &ModuleData{}
		return decode(in.Module)
	case KindUse:
		in.Kind = KindUse
		in.Use = &UseData{}
		return decode(in.Use)
	case KindStruct:
		in.Kind = KindStruct
		in.Struct = &StructData{}
		return decode(in.Struct)
	case KindStructField:
		in.Kind = KindStructField
		in.StructField = &Type{}
		return decode(in.StructField)
	case KindUnion:
		in.Kind = KindUnion
		in.Union = &UnionData{}
		return decode(in.Union)
	case KindEnum:
		in.Kind = KindEnum
		in.Enum = &EnumData{}
		return decode(in.Enum)
	case KindFunction:
		in.Kind = KindFunction
		in.Function = &FunctionData{}
		return decode(in.Function)
	case KindTrait:
		in.Kind = KindTrait
		in.Trait = &TraitData{}
		return decode(in.Trait)
	case KindTraitAlias:
		in.Kind = KindTraitAlias
		in.TraitAlias = &TraitAliasData{}
		return decode(in.TraitAlias)
	case KindImpl:
		in.Kind = KindImpl
		in.Impl = &ImplData{}
		return decode(in.Impl)
	case KindTypeAlias:
		in.Kind = KindTypeAlias
		in.TypeAlias = &TypeAliasData{}
		return decode(in.TypeAlias)
	case KindConstant:
		in.Kind = KindConstant
		in.Constant = &ConstantData{}
		return decode(in.Constant)
	case KindStatic:
		in.Kind = KindStatic
		in.Static = &StaticData{}
		return decode(in.Static)
	case KindAssocConst:
		in.Kind = KindAssocConst
		in.AssocConst = &AssocConstData{}
		return decode(in.AssocConst)
	case KindAssocType:
		in.Kind = KindAssocType
		in.AssocType = &AssocTypeData{}
		return decode(in.AssocType)
	case KindExternCrate:
		in.Kind = KindExternCrate
		return nil
	case KindVariant, KindMacro, KindProcMacro, KindPrimitive, KindExternType:
		// Recognized kinds whose payload the formatter never inspects.
		in.Kind = ItemKind(tag)
		return nil
	default:
		in.Kind = KindUnknown
		return nil
	}
}

type ModuleData struct {
	IsCrate    bool `json:"is_crate"`
	Items      []ID `json:"items"`
	IsStripped bool `json:"is_stripped"`
}

type UseData struct {
	Source string `json:"source"`
	Name   string `json:"name"`
	ID     *ID    `json:"id"`
	IsGlob bool   `json:"is_glob"`
}

type StructData struct {
	Kind     StructKind `json:"kind"`
	Generics Generics   `json:"generics"`
	Impls    []ID       `json:"impls"`
}

// StructKind is "unit", a tuple field list, or a plain field list.
type StructKind struct {
	Unit  bool
	Tuple []*ID
	Plain *PlainStruct
}

type PlainStruct struct {
	Fields            []ID `json:"fields"`
	HasStrippedFields bool `json:"has_stripped_fields"`
}

func (k *StructKind) UnmarshalJSON(data []byte) error {
	var s string
	if json.Unmarshal(data, &s) == nil {
		k.Unit = s == "unit"
		return nil
	}
	var obj struct {
		Tuple []*ID        `json:"tuple"`
		Plain *PlainStruct `json:"plain"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	k.Tuple = obj.Tuple
	k.Plain = obj.Plain
	return nil
}

type UnionData struct {
	Generics          Generics `json:"generics"`
	Fields            []ID     `json:"fields"`
	HasStrippedFields bool     `json:"has_stripped_fields"`
	Impls             []ID     `json:"impls"`
}

type EnumData struct {
	Generics            Generics `json:"generics"`
	Variants            []ID     `json:"variants"`
	HasStrippedVariants bool     `json:"has_stripped_variants"`
	Impls               []ID     `json:"impls"`
}

type FunctionData struct {
	Sig      FnSig    `json:"sig"`
	Generics Generics `json:"generics"`
	Header   FnHeader `json:"header"`
	HasBody  bool     `json:"has_body"`
}

type FnSig struct {
	Inputs      []Param `json:"inputs"`
	Output      *Type   `json:"output"`
	IsCVariadic bool    `json:"is_c_variadic"`
}

// Param is one function parameter. The JSON form is a two-element array
// of [name, type].
type Param struct {
	Name string
	Type Type
}

func (p *Param) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) > 0 {
		if err := json.Unmarshal(pair[0], &p.Name); err != nil {
			return fmt.Errorf("parameter name: %w", err)
		}
	}
	if len(pair) > 1 {
		if err := json.Unmarshal(pair[1], &p.Type); err != nil {
			return fmt.Errorf("parameter type: %w", err)
		}
	}
	return nil
}

type FnHeader struct {
	IsConst  bool `json:"is_const"`
	IsUnsafe bool `json:"is_unsafe"`
	IsAsync  bool `json:"is_async"`
}

type TraitData struct {
	IsAuto          bool     `json:"is_auto"`
	IsUnsafe        bool     `json:"is_unsafe"`
	Items           []ID     `json:"items"`
	Generics        Generics `json:"generics"`
	Bounds          []Bound  `json:"bounds"`
	Implementations []ID     `json:"implementations"`
}

type TraitAliasData struct {
	Generics Generics `json:"generics"`
	Params   []Bound  `json:"params"`
}

type ImplData struct {
	IsUnsafe    bool     `json:"is_unsafe"`
	Generics    Generics `json:"generics"`
	Trait       *PathRef `json:"trait"`
	For         Type     `json:"for"`
	Items       []ID     `json:"items"`
	IsNegative  bool     `json:"is_negative"`
	IsSynthetic bool     `json:"is_synthetic"`
}

type TypeAliasData struct {
	Type     Type     `json:"type"`
	Generics Generics `json:"generics"`
}

type ConstantData struct {
	Type  Type      `json:"type"`
	Const ConstExpr `json:"const"`
}

type ConstExpr struct {
	Expr      string  `json:"expr"`
	Value     *string `json:"value"`
	IsLiteral bool    `json:"is_literal"`
}

type StaticData struct {
	Type      Type   `json:"type"`
	IsMutable bool   `json:"is_mutable"`
	Expr      string `json:"expr"`
}

type AssocConstData struct {
	Type  Type    `json:"type"`
	Value *string `json:"value"`
}

type AssocTypeData struct {
	Generics Generics `json:"generics"`
	Bounds   []Bound  `json:"bounds"`
	Type     *Type    `json:"type"`
}
