// Package ingest runs the per-category pipeline: walk the corpus, extract
// and normalize each quarter file, drop repeated natural keys, and load
// the survivors into the store.
//
// A run moves through WALKING, EXTRACTING and LOADING once per file.
// File-scoped failures pass through FILE_FAILED back to WALKING. A run
// ends in DONE, or in ABORTED when the corpus root or store is unusable,
// the context is cancelled, or the final commit fails.
package ingest
