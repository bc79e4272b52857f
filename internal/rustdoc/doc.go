// Package rustdoc turns decoded rustdoc JSON documents into display
// strings and derived structures: type rendering, full function
// signatures, generics clauses, a module tree, and ranked item search.
//
// Everything here is a pure, synchronous function over an immutable
// *Crate. Nothing mutates the document, performs I/O, or holds state
// between calls, so any number of goroutines may format against the same
// document concurrently without coordination.
//
// The package is deliberately tolerant: identifiers that resolve only
// through the paths table are an expected outcome (re-exports), and
// unknown item or type kinds from future format versions degrade to
// placeholders rather than failing the whole document.
package rustdoc
