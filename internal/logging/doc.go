// Package logging provides concrete implementations of the pulse.Logger interface.
//
// Available implementations:
//   - ConsoleLogger: line-oriented messages on stderr (or any io.Writer), prefixed by level
//   - NullLogger: discards all messages (useful for testing)
//
// All logger implementations are safe for concurrent use by multiple goroutines.
package logging
