package rustdoc

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestDecodeCrate(t *testing.T) {
	t.Parallel()
	doc, err := DecodeCrate([]byte(treeFixture))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}
	if doc.Name() != "demo" {
		t.Errorf("name = %q, want %q", doc.Name(), "demo")
	}
	if doc.FormatVersion != 54 {
		t.Errorf("format version = %d, want 54", doc.FormatVersion)
	}
	if doc.CrateVersion == nil || *doc.CrateVersion != "1.2.3" {
		t.Errorf("crate version = %v, want 1.2.3", doc.CrateVersion)
	}
}

func TestDecodeCrateNoRoot(t *testing.T) {
	t.Parallel()
	if _, err := DecodeCrate([]byte(`{"index": {}, "paths": {}}`)); err != ErrNoRoot {
		t.Errorf("got %v, want ErrNoRoot", err)
	}
	if _, err := DecodeCrate([]byte(`not json`)); err == nil {
		t.Error("got nil error for malformed input")
	}
}

func TestIDDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want ID
	}{
		{"number", `42`, "42"},
		{"string", `"42"`, "42"},
		{"zero", `0`, "0"},
		{"large", `4294967296`, "4294967296"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var id ID
			if err := json.Unmarshal([]byte(tt.json), &id); err != nil {
				t.Fatalf("decoding %s: %v", tt.json, err)
			}
			if id != tt.want {
				t.Errorf("got %q, want %q", id, tt.want)
			}
		})
	}

	var id ID
	if err := json.Unmarshal([]byte(`true`), &id); err == nil {
		t.Error("got nil error for boolean id")
	}
}

func TestFindItemByPath(t *testing.T) {
	t.Parallel()
	doc, err := DecodeCrate([]byte(treeFixture))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	tests := []struct {
		name   string
		target string
		wantID ID
	}{
		{"exact", "demo::Config", "1"},
		{"exact_nested", "demo::sync::Mutex", "5"},
		{"subsequence_skips_private_module", "demo::Mutex", "5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := doc.FindItemByPath("demo", tt.target)
			if err != nil {
				t.Fatalf("lookup %q: %v", tt.target, err)
			}
			if id != tt.wantID {
				t.Errorf("got id %q, want %q", id, tt.wantID)
			}
		})
	}
}

func TestFindItemByPathNotFound(t *testing.T) {
	t.Parallel()
	doc, err := DecodeCrate([]byte(treeFixture))
	if err != nil {
		t.Fatalf("decoding: %v", err)
	}

	_, err = doc.FindItemByPath("demo", "demo::Missing")
	if !IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "demo::Missing") {
		t.Errorf("error %q does not name the missing path", err.Error())
	}
	if !strings.Contains(err.Error(), `"Missing"`) {
		t.Errorf("error %q does not suggest searching the item name", err.Error())
	}
}

func TestFindItemByPathReexportHint(t *testing.T) {
	t.Parallel()
	name := "Stream"
	doc := &Crate{
		Root: "0",
		Index: map[ID]Item{
			"0": {ID: "0", Inner: Inner{Kind: KindModule, Module: &ModuleData{Items: []ID{"1"}}}},
			"1": {ID: "1", Name: &name, Inner: Inner{Kind: KindUse, Use: &UseData{
				Source: "futures_core::stream::Stream",
				Name:   "Stream",
			}}},
		},
		Paths: map[ID]PathEntry{
			"0": {Path: []string{"demo"}, Kind: "module"},
		},
	}

	_, err := doc.FindItemByPath("demo", "demo::Stream")
	if !IsNotFound(err) {
		t.Fatalf("got %v, want NotFoundError", err)
	}
	if !strings.Contains(err.Error(), "futures_core::stream::Stream") {
		t.Errorf("error %q does not mention the re-export source", err.Error())
	}
}

func TestExternalCrateName(t *testing.T) {
	t.Parallel()
	doc := &Crate{
		ExternalCrates: map[string]ExternalCrate{
			"1": {Name: "tracing_core", HTMLRootURL: "https://docs.rs/tracing-core/0.1.36/x86_64-unknown-linux-gnu/"},
			"2": {Name: "alloc"},
		},
	}

	// The html_root_url carries the Cargo package name (hyphens); the lib
	// name has underscores.
	if got := doc.ExternalCrateName(1); got != "tracing-core" {
		t.Errorf("got %q, want %q", got, "tracing-core")
	}
	if got := doc.ExternalCrateName(2); got != "alloc" {
		t.Errorf("got %q, want %q", got, "alloc")
	}
	if got := doc.ExternalCrateName(3); got != "" {
		t.Errorf("got %q, want empty for unknown crate id", got)
	}
}

func TestVisibilityDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want Visibility
	}{
		{"public", `"public"`, "public"},
		{"default", `"default"`, "default"},
		{"restricted_object", `{"restricted": {"parent": 12, "path": "crate::internal"}}`, "restricted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var v Visibility
			if err := json.Unmarshal([]byte(tt.json), &v); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if v != tt.want {
				t.Errorf("got %q, want %q", v, tt.want)
			}
		})
	}
}

func TestAttrDecoding(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		json string
		want string
	}{
		{"bare_string", `"#[derive(Debug)]"`, "#[derive(Debug)]"},
		{"wrapped_other", `{"other": "#[serde(rename_all = \"snake_case\")]"}`, `#[serde(rename_all = "snake_case")]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var a Attr
			if err := json.Unmarshal([]byte(tt.json), &a); err != nil {
				t.Fatalf("decoding: %v", err)
			}
			if a.Raw != tt.want {
				t.Errorf("got %q, want %q", a.Raw, tt.want)
			}
		})
	}
}
