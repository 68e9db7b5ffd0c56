// Package dedup suppresses records whose natural key was already seen in a run.
package dedup

import (
	"fmt"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Verdict is the outcome of admitting a record.
type Verdict int

const (
	// Kept means the key is new; the record must be loaded.
	Kept Verdict = iota
	// Duplicate means an identical record was already kept.
	Duplicate
	// Conflict means a record with the same key but different values was kept.
	Conflict
)

func (v Verdict) String() string {
	switch v {
	case Kept:
		return "kept"
	case Duplicate:
		return "duplicate"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("Unknown(%d)", v)
	}
}

// Set is the per-run collection of emitted keys. First seen wins.
// A Set is not safe for concurrent use; the run feeds it from a single stage.
type Set struct {
	seen map[pulse.Key]string
}

// New creates an empty Set.
func New() *Set {
	return &Set{seen: make(map[pulse.Key]string)}
}

// Admit records r's key if it is new. For a repeated key it reports whether
// the values match the kept record.
func (s *Set) Admit(r pulse.Record) Verdict {
	key := r.Key()
	fp := fingerprint(r)
	kept, ok := s.seen[key]
	switch {
	case !ok:
		s.seen[key] = fp
		return Kept
	case kept == fp:
		return Duplicate
	default:
		return Conflict
	}
}

// Len returns the number of distinct keys admitted.
func (s *Set) Len() int {
	return len(s.seen)
}

func fingerprint(r pulse.Record) string {
	return fmt.Sprint(r.Values()...)
}
