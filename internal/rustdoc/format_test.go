package rustdoc

import (
	"encoding/json"
	"testing"
)

func decodeType(t *testing.T, raw string) *Type {
	t.Helper()
	var ty Type
	if err := json.Unmarshal([]byte(raw), &ty); err != nil {
		t.Fatalf("decoding type %s: %v", raw, err)
	}
	return &ty
}

func TestFormatType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "primitive_bare",
			json: `{"primitive":"u32"}`,
			want: "u32",
		},
		{
			name: "generic",
			json: `{"generic":"T"}`,
			want: "T",
		},
		{
			name: "resolved_path_plain",
			json: `{"resolved_path":{"path":"String","id":100,"args":{"angle_bracketed":{"args":[]}}}}`,
			want: "String",
		},
		{
			name: "resolved_path_one_arg",
			json: `{"resolved_path":{"path":"Vec","id":101,"args":{"angle_bracketed":{"args":[{"type":{"primitive":"u8"}}]}}}}`,
			want: "Vec<u8>",
		},
		{
			name: "resolved_path_nested_args",
			json: `{"resolved_path":{"path":"HashMap","id":102,"args":{"angle_bracketed":{"args":[{"type":{"resolved_path":{"path":"String","id":100}}},{"type":{"resolved_path":{"path":"Vec","id":101,"args":{"angle_bracketed":{"args":[{"type":{"primitive":"u8"}}]}}}}}]}}}}`,
			want: "HashMap<String, Vec<u8>>",
		},
		{
			name: "resolved_path_lifetime_arg",
			json: `{"resolved_path":{"path":"Cow","id":103,"args":{"angle_bracketed":{"args":[{"lifetime":"'a"},{"type":{"primitive":"str"}}]}}}}`,
			want: "Cow<'a, str>",
		},
		{
			name: "fn_trait_sugar",
			json: `{"resolved_path":{"path":"Fn","id":104,"args":{"parenthesized":{"inputs":[{"primitive":"u32"}],"output":{"primitive":"bool"}}}}}`,
			want: "Fn(u32) -> bool",
		},
		{
			name: "fn_trait_sugar_unit_output",
			json: `{"resolved_path":{"path":"FnMut","id":104,"args":{"parenthesized":{"inputs":[{"primitive":"u32"}],"output":null}}}}`,
			want: "FnMut(u32)",
		},
		{
			name: "borrowed_ref",
			json: `{"borrowed_ref":{"lifetime":null,"is_mutable":false,"type":{"primitive":"str"}}}`,
			want: "&str",
		},
		{
			name: "borrowed_ref_mut",
			json: `{"borrowed_ref":{"lifetime":null,"is_mutable":true,"type":{"generic":"T"}}}`,
			want: "&mut T",
		},
		{
			name: "borrowed_ref_lifetime",
			json: `{"borrowed_ref":{"lifetime":"'a","is_mutable":false,"type":{"primitive":"str"}}}`,
			want: "&'a str",
		},
		{
			name: "borrowed_ref_bare_lifetime",
			json: `{"borrowed_ref":{"lifetime":"a","is_mutable":true,"type":{"generic":"T"}}}`,
			want: "&'a mut T",
		},
		{
			name: "legacy_mutable_field",
			json: `{"borrowed_ref":{"mutable":true,"type":{"generic":"T"}}}`,
			want: "&mut T",
		},
		{
			name: "raw_pointer_const",
			json: `{"raw_pointer":{"is_mutable":false,"type":{"primitive":"u8"}}}`,
			want: "*const u8",
		},
		{
			name: "raw_pointer_mut",
			json: `{"raw_pointer":{"is_mutable":true,"type":{"primitive":"u8"}}}`,
			want: "*mut u8",
		},
		{
			name: "slice",
			json: `{"slice":{"primitive":"u8"}}`,
			want: "[u8]",
		},
		{
			name: "array",
			json: `{"array":{"type":{"primitive":"u8"},"len":"32"}}`,
			want: "[u8; 32]",
		},
		{
			name: "unit_tuple",
			json: `{"tuple":[]}`,
			want: "()",
		},
		{
			name: "tuple",
			json: `{"tuple":[{"primitive":"u32"},{"primitive":"bool"}]}`,
			want: "(u32, bool)",
		},
		{
			name: "dyn_trait",
			json: `{"dyn_trait":{"traits":[{"trait":{"path":"Error","id":200}}],"lifetime":null}}`,
			want: "dyn Error",
		},
		{
			name: "dyn_trait_multi_with_lifetime",
			json: `{"dyn_trait":{"traits":[{"trait":{"path":"Read","id":201}},{"trait":{"path":"Send","id":202}}],"lifetime":"'static"}}`,
			want: "dyn Read + Send + 'static",
		},
		{
			name: "impl_trait",
			json: `{"impl_trait":[{"trait_bound":{"trait":{"path":"Iterator","id":203},"modifier":"none"}}]}`,
			want: "impl Iterator",
		},
		{
			name: "impl_trait_maybe_sized",
			json: `{"impl_trait":[{"trait_bound":{"trait":{"path":"Read","id":201},"modifier":"none"}},{"trait_bound":{"trait":{"path":"Sized","id":204},"modifier":"maybe"}}]}`,
			want: "impl Read + ?Sized",
		},
		{
			name: "qualified_path_shorthand",
			json: `{"qualified_path":{"name":"Item","self_type":{"generic":"I"},"trait":null}}`,
			want: "I::Item",
		},
		{
			name: "qualified_path_disambiguated",
			json: `{"qualified_path":{"name":"Item","self_type":{"generic":"I"},"trait":{"path":"Iterator","id":203}}}`,
			want: "<I as Iterator>::Item",
		},
		{
			name: "function_pointer",
			json: `{"function_pointer":{"sig":{"inputs":[["x",{"primitive":"u32"}]],"output":{"primitive":"bool"}},"header":{}}}`,
			want: "fn(x: u32) -> bool",
		},
		{
			name: "infer_object",
			json: `{"infer":null}`,
			want: "_",
		},
		{
			name: "unknown_kind_placeholder",
			json: `{"pat":{"whatever":true}}`,
			want: "<unknown:pat>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ty := decodeType(t, tt.json)
			got := FormatType(ty)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			// Formatting is pure: a second pass over the same node must be
			// byte-identical.
			if again := FormatType(ty); again != got {
				t.Errorf("second pass got %q, first was %q", again, got)
			}
		})
	}
}

func TestFormatTypeNilIsUnit(t *testing.T) {
	t.Parallel()
	if got := FormatType(nil); got != "()" {
		t.Errorf("got %q, want %q", got, "()")
	}
}

func TestFormatTypeNullIsUnit(t *testing.T) {
	t.Parallel()
	ty := decodeType(t, `null`)
	if got := FormatType(ty); got != "()" {
		t.Errorf("got %q, want %q", got, "()")
	}
}

func TestFormatTypeNoEmptyBrackets(t *testing.T) {
	t.Parallel()
	// An empty angle-bracketed arg list must render without "<>".
	ty := decodeType(t, `{"resolved_path":{"path":"Duration","id":300,"args":{"angle_bracketed":{"args":[]}}}}`)
	if got := FormatType(ty); got != "Duration" {
		t.Errorf("got %q, want %q", got, "Duration")
	}
}

func TestFormatBounds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want string
	}{
		{
			name: "single",
			json: `[{"trait_bound":{"trait":{"path":"Clone","id":1},"modifier":"none"}}]`,
			want: "Clone",
		},
		{
			name: "trait_plus_outlives",
			json: `[{"trait_bound":{"trait":{"path":"Send","id":2},"modifier":"none"}},{"outlives":"'a"}]`,
			want: "Send + 'a",
		},
		{
			name: "unknown_variant_skipped",
			json: `[{"use":["Fut"]},{"trait_bound":{"trait":{"path":"Sync","id":3},"modifier":"none"}}]`,
			want: "Sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var bounds []Bound
			if err := json.Unmarshal([]byte(tt.json), &bounds); err != nil {
				t.Fatalf("decoding bounds: %v", err)
			}
			got := FormatBounds(bounds)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
