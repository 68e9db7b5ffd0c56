package pulse

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the ingestion error taxonomy.
// Callers distinguish them with errors.Is().
var (
	// ErrInvalidConfig indicates the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrFatalConfiguration aborts a category run before any record is processed:
	// the corpus root is unreadable or the store cannot be opened.
	ErrFatalConfiguration = errors.New("fatal configuration error")

	// ErrConnectionFailed indicates the store could not be reached.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrStructuralSkip marks corpus noise: a non-integer year directory or quarter stem.
	ErrStructuralSkip = errors.New("structural skip")

	// ErrExtraction indicates a document lacks fields its category requires.
	ErrExtraction = errors.New("extraction failed")

	// ErrShapeMismatch indicates a hover document carries the shape of another category.
	ErrShapeMismatch = errors.New("document shape does not match category")

	// ErrRecordCoercion indicates a single record's field failed normalization.
	ErrRecordCoercion = errors.New("record coercion failed")

	// ErrLoad indicates the store rejected a row.
	ErrLoad = errors.New("load failed")

	// ErrCommitFailed indicates the store rejected a commit.
	ErrCommitFailed = errors.New("commit failed")

	// ErrUnknownCategory indicates a category name that is not registered.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrUnsupportedAuthMethod indicates the requested authentication method is not supported.
	ErrUnsupportedAuthMethod = errors.New("unsupported authentication method")

	// ErrUnsupportedDriver indicates a store driver that is not compiled in.
	ErrUnsupportedDriver = errors.New("unsupported store driver")
)

// ExtractionError is a file-scoped failure: the file contributes no records
// and the run continues with the next file.
type ExtractionError struct {
	Path string
	Err  error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

// Unwrap exposes the cause; errors.Is(err, ErrExtraction) always holds.
func (e *ExtractionError) Unwrap() []error {
	return []error{ErrExtraction, e.Err}
}

// LoadError is a record-scoped insert failure.
type LoadError struct {
	Coordinate Coordinate
	Key        Key
	Err        error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load %s key %s: %v", e.Coordinate, e.Key, e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrLoad, e.Err}
}

// usagePatterns match the messages cobra and the CLI validators produce for command-line misuse.
var usagePatterns = []string{
	"unknown flag",
	"unknown shorthand flag",
	"unknown command",
	"accepts ",
	"requires at least",
	"required flag",
	"invalid argument",
	"missing required argument",
}

// ExitCodeForError returns the appropriate exit code for an error.
// Returns ExitSuccess (0) for nil errors, semantic codes for known errors,
// and ExitGeneralError (1) for unclassified errors.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	switch {
	case errors.Is(err, ErrInvalidConfig),
		errors.Is(err, ErrUnknownCategory),
		errors.Is(err, ErrUnsupportedAuthMethod),
		errors.Is(err, ErrUnsupportedDriver):
		return ExitConfigError
	case errors.Is(err, ErrConnectionFailed):
		return ExitConnectionError
	case errors.Is(err, ErrFatalConfiguration):
		return ExitFatalRun
	case errors.Is(err, ErrCommitFailed):
		return ExitCommitFailed
	}

	errStr := err.Error()
	for _, usage := range usagePatterns {
		if strings.Contains(errStr, usage) {
			return ExitUsageError
		}
	}
	if strings.Contains(errStr, "failed to connect") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "no such host") {
		return ExitConnectionError
	}

	return ExitGeneralError
}
