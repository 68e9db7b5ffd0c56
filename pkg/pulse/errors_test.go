package pulse_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vvka-141/pulseload/pkg/pulse"
)

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, pulse.ExitSuccess},
		{"unknown flag", errors.New("unknown flag --foo"), pulse.ExitUsageError},
		{"accepts args", errors.New("accepts 1 arg(s), received 0"), pulse.ExitUsageError},
		{"required flag", errors.New("required flag \"root\" not set"), pulse.ExitUsageError},
		{"missing argument", errors.New("missing required argument: <category>... or --all"), pulse.ExitUsageError},
		{"general error", errors.New("something went wrong"), pulse.ExitGeneralError},
		{"invalid config", fmt.Errorf("batch: %w", pulse.ErrInvalidConfig), pulse.ExitConfigError},
		{"unknown category", fmt.Errorf("x: %w", pulse.ErrUnknownCategory), pulse.ExitConfigError},
		{"connection failed", pulse.ErrConnectionFailed, pulse.ExitConnectionError},
		{"refused", errors.New("dial tcp: connection refused"), pulse.ExitConnectionError},
		{"fatal run", fmt.Errorf("root: %w", pulse.ErrFatalConfiguration), pulse.ExitFatalRun},
		{"commit", fmt.Errorf("run: %w", pulse.ErrCommitFailed), pulse.ExitCommitFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pulse.ExitCodeForError(tt.err))
		})
	}
}

func TestExtractionError_MatchesSentinelAndCause(t *testing.T) {
	cause := errors.New("missing data")
	err := error(&pulse.ExtractionError{Path: "Karnataka/2023/2.json", Err: cause})

	assert.ErrorIs(t, err, pulse.ErrExtraction)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Karnataka/2023/2.json: missing data", err.Error())
}

func TestLoadError_MatchesSentinel(t *testing.T) {
	err := error(&pulse.LoadError{
		Coordinate: pulse.Coordinate{Region: "Goa", Year: 2021, Quarter: 3},
		Key:        pulse.Key{Year: 2021, Quarter: 3, Scope: "Goa", Sub: "Recharge"},
		Err:        errors.New("duplicate key"),
	})

	assert.ErrorIs(t, err, pulse.ErrLoad)
	assert.Contains(t, err.Error(), "Goa/2021/Q3")
	assert.Contains(t, err.Error(), "(2021, 3, Goa, Recharge)")
}
