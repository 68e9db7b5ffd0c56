// Package walker enumerates the quarter files of a category corpus.
//
// The corpus has a fixed three-level nesting:
//
//	<root>/<region>/<year>/<quarter>.json
//
// Non-directory entries at the region and year levels and non-JSON files are
// ignored silently. Year directories and quarter stems that are not integers
// in range are reported to the visitor as structural skips so the caller can
// count and log them.
package walker
