package registry

import (
	"testing"
)

func TestComputeIndexPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"a", "1/a"},
		{"io", "2/io"},
		{"url", "3/u/url"},
		{"serde", "se/rd/serde"},
		{"SERDE", "se/rd/serde"},
		{"tokio-util", "to/ki/tokio-util"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ComputeIndexPath(tt.name)
			if err != nil {
				t.Fatalf("compute path: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}

	if _, err := ComputeIndexPath(""); err == nil {
		t.Error("empty name: got nil error")
	}
}

func TestParseNDJSON(t *testing.T) {
	t.Parallel()

	text := `{"name":"serde","vers":"1.0.0","deps":[],"cksum":"abc","features":{},"yanked":false}
{"name":"serde","vers":"1.0.1","deps":[{"name":"serde_derive","req":"=1.0.1","optional":true,"default_features":true,"features":[]}],"cksum":"def","features":{"derive":["serde_derive"]},"yanked":false}

`
	lines, err := ParseNDJSON(text)
	if err != nil {
		t.Fatalf("parsing: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if lines[0].Vers != "1.0.0" || lines[1].Vers != "1.0.1" {
		t.Errorf("versions = %q, %q", lines[0].Vers, lines[1].Vers)
	}
	if len(lines[1].Deps) != 1 || lines[1].Deps[0].Name != "serde_derive" {
		t.Errorf("deps = %+v", lines[1].Deps)
	}
	if _, ok := lines[1].Features["derive"]; !ok {
		t.Error("feature map missing derive")
	}

	if _, err := ParseNDJSON(`{"name":`); err == nil {
		t.Error("malformed line: got nil error")
	}
}

func indexLine(vers string, yanked bool) IndexLine {
	return IndexLine{Name: "test", Vers: vers, Yanked: yanked}
}

func TestFindLatestStable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		lines []IndexLine
		want  string
	}{
		{
			name:  "highest_wins",
			lines: []IndexLine{indexLine("1.0.0", false), indexLine("1.2.0", false), indexLine("1.10.0", false)},
			want:  "1.10.0",
		},
		{
			name:  "yanked_skipped",
			lines: []IndexLine{indexLine("1.0.0", false), indexLine("1.1.0", true), indexLine("0.9.0", false)},
			want:  "1.0.0",
		},
		{
			name:  "prerelease_skipped",
			lines: []IndexLine{indexLine("1.0.0", false), indexLine("1.1.0-alpha.1", false)},
			want:  "1.0.0",
		},
		{
			name:  "prerelease_fallback",
			lines: []IndexLine{indexLine("1.0.0-alpha.1", false), indexLine("0.9.0-beta.1", false)},
			want:  "1.0.0-alpha.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindLatestStable(tt.lines)
			if got == nil {
				t.Fatal("got nil")
			}
			if got.Vers != tt.want {
				t.Errorf("got %q, want %q", got.Vers, tt.want)
			}
		})
	}

	if got := FindLatestStable([]IndexLine{indexLine("1.0.0", true)}); got != nil {
		t.Errorf("all yanked: got %+v, want nil", got)
	}
}

func TestAllFeatures(t *testing.T) {
	t.Parallel()
	line := IndexLine{
		Features:  map[string][]string{"std": {}, "alloc": {}},
		Features2: map[string][]string{"derive": {"dep:serde_derive"}, "std": {"alloc"}},
	}
	all := line.AllFeatures()
	if len(all) != 3 {
		t.Fatalf("got %d features, want 3", len(all))
	}
	// v2 wins on collision.
	if got := all["std"]; len(got) != 1 || got[0] != "alloc" {
		t.Errorf("std = %v, want [alloc]", got)
	}

	set := line.DeclaredFeatureSet()
	for _, name := range []string{"std", "alloc", "derive"} {
		if _, ok := set[name]; !ok {
			t.Errorf("set missing %q", name)
		}
	}
}

func TestFindVersion(t *testing.T) {
	t.Parallel()
	lines := []IndexLine{indexLine("1.0.0", false), indexLine("1.1.0", false)}
	if got := FindVersion(lines, "1.1.0"); got == nil || got.Vers != "1.1.0" {
		t.Errorf("got %+v, want 1.1.0", got)
	}
	if got := FindVersion(lines, "2.0.0"); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
}

func TestSortVersionsDescending(t *testing.T) {
	t.Parallel()
	lines := []IndexLine{
		indexLine("0.9.1", false),
		indexLine("1.10.0", false),
		indexLine("bogus", false),
		indexLine("1.2.0", false),
	}
	SortVersionsDescending(lines)

	want := []string{"1.10.0", "1.2.0", "0.9.1", "bogus"}
	for i, w := range want {
		if lines[i].Vers != w {
			t.Errorf("lines[%d] = %q, want %q", i, lines[i].Vers, w)
		}
	}
}
