package rustdoc

import (
	"testing"
)

func TestDocLinkMap(t *testing.T) {
	t.Parallel()
	name := "spawn"
	doc := &Crate{
		Root: "0",
		Index: map[ID]Item{
			"1": {ID: "1", Name: &name, Links: map[string]ID{
				"JoinHandle": "2",
				"Stream":     "3",
				"Vanished":   "9",
			}},
		},
		Paths: map[ID]PathEntry{
			"2": {CrateID: 0, Path: []string{"tokio", "task", "JoinHandle"}, Kind: "struct"},
			"3": {CrateID: 4, Path: []string{"futures_core", "stream", "Stream"}, Kind: "trait"},
		},
		ExternalCrates: map[string]ExternalCrate{
			"4": {Name: "futures_core", HTMLRootURL: "https://docs.rs/futures-core/0.3.31/x86_64-unknown-linux-gnu/"},
		},
	}

	item := doc.Index["1"]
	links := DocLinkMap(&item, doc, "tokio", "1.49.0")
	if len(links) != 2 {
		t.Fatalf("got %d links, want 2: %v", len(links), links)
	}
	if got, want := links["JoinHandle"], "https://docs.rs/tokio/1.49.0/?search=tokio::task::JoinHandle"; got != want {
		t.Errorf("local link = %q, want %q", got, want)
	}
	if got, want := links["Stream"], "https://docs.rs/futures-core/latest/?search=futures_core::stream::Stream"; got != want {
		t.Errorf("external link = %q, want %q", got, want)
	}
	if _, ok := links["Vanished"]; ok {
		t.Error("unresolvable link was kept")
	}
}

func TestDocLinkMapEmpty(t *testing.T) {
	t.Parallel()
	doc := &Crate{Paths: map[ID]PathEntry{}}
	item := Item{ID: "1"}
	if got := DocLinkMap(&item, doc, "demo", "1.0.0"); got != nil {
		t.Errorf("got %v, want nil for item without links", got)
	}
}

func TestFirstParagraph(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		docs string
		want string
	}{
		{"single", "One paragraph only.", "One paragraph only."},
		{"multi", "First paragraph.\n\nSecond paragraph.", "First paragraph."},
		{"keeps_single_newlines", "Line one\nline two\n\nrest", "Line one\nline two"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FirstParagraph(tt.docs)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
