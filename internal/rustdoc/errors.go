package rustdoc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoRoot reports a document whose root module identifier does not
// resolve in the index. This is a shape violation: the document cannot be
// traversed at all.
var ErrNoRoot = errors.New("rustdoc document has no resolvable root module")

// NotFoundError reports a path or identifier that did not resolve. It is
// distinct from a shape violation: the document is fine, the requested
// thing just isn't locally defined. Callers surface Error() to users as
// actionable guidance.
type NotFoundError struct {
	Crate string
	Path  string
	// ReexportSources lists the external source paths of matching `use`
	// items, when the lookup failed because the item is a re-export.
	ReexportSources []string
}

func (e *NotFoundError) Error() string {
	if len(e.ReexportSources) > 0 {
		return fmt.Sprintf(
			"item %q is re-exported in %s from an external crate (%s); its definition is not in these docs, look it up in the crate that defines it",
			e.Path, e.Crate, strings.Join(e.ReexportSources, ", "))
	}
	last := e.Path
	if idx := strings.LastIndex(last, "::"); idx >= 0 {
		last = last[idx+2:]
	}
	return fmt.Sprintf(
		"item %q not found in %s; search for %q to discover the correct path",
		e.Path, e.Crate, last)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
