package markdown

import (
	"strings"
	"testing"
)

func TestResolveDocLinks_InlineLinks(t *testing.T) {
	t.Parallel()
	src := "Returns a [`JoinHandle`](JoinHandle) for the task."
	got := ResolveDocLinks(src, map[string]string{
		"JoinHandle": "https://docs.rs/tokio/1.49.0/?search=tokio::task::JoinHandle",
	})
	if !strings.Contains(got, "](https://docs.rs/tokio/1.49.0/?search=tokio::task::JoinHandle)") {
		t.Errorf("inline destination not rewritten: %q", got)
	}
}

func TestResolveDocLinks_ShortcutLinks(t *testing.T) {
	t.Parallel()
	src := "See [`Stream`] for the async form."
	got := ResolveDocLinks(src, map[string]string{
		"Stream": "https://docs.rs/futures-core/latest/?search=futures_core::stream::Stream",
	})
	if !strings.Contains(got, "[`Stream`]: https://docs.rs/futures-core/latest/?search=futures_core::stream::Stream") {
		t.Errorf("shortcut definition not appended: %q", got)
	}
	if !strings.HasPrefix(got, src) {
		t.Errorf("original text altered: %q", got)
	}
}

func TestResolveDocLinks_EmptyMap(t *testing.T) {
	t.Parallel()
	src := "Plain [text](url) stays."
	if got := ResolveDocLinks(src, nil); got != src {
		t.Errorf("expected unchanged, got %q", got)
	}
	if got := ResolveDocLinks(src, map[string]string{}); got != src {
		t.Errorf("expected unchanged for empty map, got %q", got)
	}
}

func TestResolveDocLinks_UnusedTargets(t *testing.T) {
	t.Parallel()
	src := "No links here at all."
	got := ResolveDocLinks(src, map[string]string{"Mutex": "https://docs.rs/x"})
	if got != src {
		t.Errorf("map entry without usage changed output: %q", got)
	}
}

func TestResolveDocLinks_ExistingDefinitionKept(t *testing.T) {
	t.Parallel()
	src := "See [Mutex].\n\n[Mutex]: https://custom/url"
	got := ResolveDocLinks(src, map[string]string{"Mutex": "https://docs.rs/x"})
	if strings.Count(got, "[Mutex]:") != 1 {
		t.Errorf("duplicate definition appended: %q", got)
	}
}

func TestResolveDocLinks_Deterministic(t *testing.T) {
	t.Parallel()
	src := "Uses [B] and [A]."
	m := map[string]string{"A": "https://a", "B": "https://b"}
	first := ResolveDocLinks(src, m)
	for i := 0; i < 10; i++ {
		if again := ResolveDocLinks(src, m); again != first {
			t.Fatalf("run %d differs:\n%q\n%q", i, again, first)
		}
	}
	// Sorted definitions: A before B.
	if strings.Index(first, "[A]:") > strings.Index(first, "[B]:") {
		t.Errorf("definitions not sorted: %q", first)
	}
}
