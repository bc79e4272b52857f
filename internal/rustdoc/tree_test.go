package rustdoc

import (
	"testing"
)

const treeFixture = `{
	"root": 0,
	"format_version": 54,
	"crate_version": "1.2.3",
	"external_crates": {},
	"index": {
		"0": {"id": 0, "name": "demo", "docs": "A demo crate. With more detail.", "inner": {"module": {"items": [1, 2, 3, 4, 7]}}},
		"1": {"id": 1, "name": "Config", "inner": {"struct": {"kind": {"plain": {"fields": []}}, "generics": {"params": []}}}},
		"2": {"id": 2, "name": "run", "inner": {"function": {"sig": {"inputs": [], "output": null}, "generics": {"params": []}, "header": {}}}},
		"3": {"id": 3, "name": "sync", "docs": "Synchronization primitives.", "inner": {"module": {"items": [5]}}},
		"4": {"id": 4, "name": "Mutex", "inner": {"use": {"source": "crate::sync::Mutex", "name": "Mutex", "id": 5}}},
		"5": {"id": 5, "name": "Mutex", "inner": {"struct": {"kind": {"plain": {"fields": []}}, "generics": {"params": [{"name": "T", "kind": {"type": {"bounds": []}}}]}}}},
		"7": {"id": 7, "name": "VERSION", "inner": {"constant": {"type": {"primitive": "u32"}, "const": {"expr": "1"}}}}
	},
	"paths": {
		"0": {"crate_id": 0, "path": ["demo"], "kind": "module"},
		"1": {"crate_id": 0, "path": ["demo", "Config"], "kind": "struct"},
		"2": {"crate_id": 0, "path": ["demo", "run"], "kind": "function"},
		"3": {"crate_id": 0, "path": ["demo", "sync"], "kind": "module"},
		"5": {"crate_id": 0, "path": ["demo", "sync", "Mutex"], "kind": "struct"},
		"7": {"crate_id": 0, "path": ["demo", "VERSION"], "kind": "constant"}
	}
}`

func TestBuildModuleTree(t *testing.T) {
	t.Parallel()
	doc, err := DecodeCrate([]byte(treeFixture))
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}

	root, err := BuildModuleTree(doc, false)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}

	if root.Path != "demo" {
		t.Errorf("root path = %q, want %q", root.Path, "demo")
	}
	if root.DocSummary != "A demo crate." {
		t.Errorf("root doc summary = %q, want %q", root.DocSummary, "A demo crate.")
	}

	// Re-exports never count; everything else does.
	wantCounts := map[string]int{"struct": 1, "function": 1, "module": 1, "constant": 1}
	for kind, n := range wantCounts {
		if root.ItemCounts[kind] != n {
			t.Errorf("count[%s] = %d, want %d", kind, root.ItemCounts[kind], n)
		}
	}
	if _, ok := root.ItemCounts["use"]; ok {
		t.Error("use re-export counted, want excluded")
	}

	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	sync := root.Children[0]
	if sync.Path != "demo::sync" {
		t.Errorf("child path = %q, want %q", sync.Path, "demo::sync")
	}
	if sync.ItemCounts["struct"] != 1 {
		t.Errorf("sync struct count = %d, want 1", sync.ItemCounts["struct"])
	}

	if len(root.Items) != 0 {
		t.Errorf("includeItems off: got %d items, want 0", len(root.Items))
	}
}

func TestBuildModuleTreeWithItems(t *testing.T) {
	t.Parallel()
	doc, err := DecodeCrate([]byte(treeFixture))
	if err != nil {
		t.Fatalf("decoding fixture: %v", err)
	}

	root, err := BuildModuleTree(doc, true)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}

	// Declaration order of non-module, non-use children.
	wantPaths := []string{"demo::Config", "demo::run", "demo::VERSION"}
	if len(root.Items) != len(wantPaths) {
		t.Fatalf("got %d items, want %d", len(root.Items), len(wantPaths))
	}
	for i, want := range wantPaths {
		if root.Items[i].Path != want {
			t.Errorf("item[%d] = %q, want %q", i, root.Items[i].Path, want)
		}
	}
	if root.Items[0].Signature != "struct Config" {
		t.Errorf("signature = %q, want %q", root.Items[0].Signature, "struct Config")
	}

	sync := root.Children[0]
	if len(sync.Items) != 1 || sync.Items[0].Path != "demo::sync::Mutex" {
		t.Fatalf("sync items = %+v, want demo::sync::Mutex", sync.Items)
	}
	if sync.Items[0].Signature != "struct Mutex<T>" {
		t.Errorf("signature = %q, want %q", sync.Items[0].Signature, "struct Mutex<T>")
	}
}

func TestBuildModuleTreeDanglingChild(t *testing.T) {
	t.Parallel()
	// Child 9 exists only in paths: a re-export whose body was not
	// included. The walk must skip it without error.
	doc := &Crate{
		Root: "0",
		Index: map[ID]Item{
			"0": {ID: "0", Inner: Inner{Kind: KindModule, Module: &ModuleData{Items: []ID{"9"}}}},
		},
		Paths: map[ID]PathEntry{
			"0": {Path: []string{"demo"}, Kind: "module"},
			"9": {Path: []string{"other", "Thing"}, Kind: "struct"},
		},
	}

	root, err := BuildModuleTree(doc, true)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}
	if len(root.Items) != 0 || len(root.Children) != 0 || len(root.ItemCounts) != 0 {
		t.Errorf("dangling child produced output: %+v", root)
	}
}

func TestBuildModuleTreeCycleTerminates(t *testing.T) {
	t.Parallel()
	// Malformed input where a module lists an ancestor as a child.
	doc := &Crate{
		Root: "0",
		Index: map[ID]Item{
			"0": {ID: "0", Inner: Inner{Kind: KindModule, Module: &ModuleData{Items: []ID{"1"}}}},
			"1": {ID: "1", Inner: Inner{Kind: KindModule, Module: &ModuleData{Items: []ID{"0", "1"}}}},
		},
		Paths: map[ID]PathEntry{
			"0": {Path: []string{"demo"}, Kind: "module"},
			"1": {Path: []string{"demo", "inner"}, Kind: "module"},
		},
	}

	root, err := BuildModuleTree(doc, false)
	if err != nil {
		t.Fatalf("building tree: %v", err)
	}
	if len(root.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(root.Children))
	}
	// The cyclic references are counted but not descended into.
	if got := root.Children[0].ItemCounts["module"]; got != 2 {
		t.Errorf("inner module count = %d, want 2", got)
	}
	if len(root.Children[0].Children) != 0 {
		t.Errorf("cycle was descended into: %+v", root.Children[0].Children)
	}
}

func TestBuildModuleTreeNoRoot(t *testing.T) {
	t.Parallel()
	doc := &Crate{Root: "0", Index: map[ID]Item{}, Paths: map[ID]PathEntry{}}
	if _, err := BuildModuleTree(doc, false); err != ErrNoRoot {
		t.Errorf("got %v, want ErrNoRoot", err)
	}

	// A root that is not a module is equally unusable.
	doc.Index["0"] = Item{ID: "0", Inner: Inner{Kind: KindStruct, Struct: &StructData{}}}
	if _, err := BuildModuleTree(doc, false); err != ErrNoRoot {
		t.Errorf("non-module root: got %v, want ErrNoRoot", err)
	}
}
