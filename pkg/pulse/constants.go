package pulse

import "time"

// Exit codes for semantic error classification.
// These follow Unix/GNU conventions:
//   - 0: Success
//   - 1: General error
//   - 2: CLI usage error (misuse of command line)
//   - 3+: Application-specific errors
const (
	ExitSuccess         = 0  // Every requested category finished
	ExitGeneralError    = 1  // Unknown or unclassified error
	ExitUsageError      = 2  // CLI usage error (missing args, invalid flags)
	ExitPanic           = 3  // Internal panic (unexpected crash)
	ExitConfigError     = 10 // Invalid configuration or flags
	ExitConnectionError = 11 // Store unreachable
	ExitFatalRun        = 12 // Corpus root unreadable or store unusable at run start
	ExitCommitFailed    = 13 // Final commit of a run was rejected
)

const (
	// DefaultBatchSize is the number of rows submitted to the store per round trip.
	DefaultBatchSize = 500

	// DefaultCommitEvery is the number of rows between intermediate commits.
	// Zero means a single commit at the end of the run.
	DefaultCommitEvery = 0

	// DefaultWorkers is the number of goroutines extracting files concurrently.
	DefaultWorkers = 1

	// DefaultTimeout bounds a whole ingest invocation.
	DefaultTimeout = 30 * time.Minute

	// DefaultRetryInitialDelay is the default initial delay before the first retry attempt.
	DefaultRetryInitialDelay = 100 * time.Millisecond

	// DefaultRetryMaxDelay is the default maximum delay between retry attempts.
	DefaultRetryMaxDelay = 1 * time.Minute

	// DefaultRetryMaxAttempts is the default maximum number of retry attempts.
	DefaultRetryMaxAttempts = 3

	// DefaultDatabase is used when no database name is configured.
	DefaultDatabase = "postgres"

	// DefaultConfigFile is looked up in the working directory when --config is not given.
	DefaultConfigFile = "pulse.yaml"

	// LevelTypePincode is stored in the level_type column of top-N tables.
	LevelTypePincode = "Pincode"

	// MinYear and MaxYear bound the year directory names accepted by the walker.
	MinYear = 1000
	MaxYear = 9999
)
