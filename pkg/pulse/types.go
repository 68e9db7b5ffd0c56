package pulse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RunState is a state of the per-category run state machine.
type RunState int

const (
	StateWalking RunState = iota
	StateExtracting
	StateLoading
	StateFileFailed
	StateDone
	StateAborted
)

func (s RunState) String() string {
	switch s {
	case StateWalking:
		return "WALKING"
	case StateExtracting:
		return "EXTRACTING"
	case StateLoading:
		return "LOADING"
	case StateFileFailed:
		return "FILE_FAILED"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// IngestConfig contains the parameters of one category run.
type IngestConfig struct {
	Category Category

	// Root is the category directory containing region directories.
	Root string

	// BatchSize is the number of rows submitted per round trip.
	BatchSize int

	// CommitEvery commits after this many loaded rows; zero commits once at the end.
	CommitEvery int

	// Workers extracts this many files concurrently; values below 2 run sequentially.
	Workers int
}

// Validate checks if the IngestConfig has all required fields and valid values.
// It returns a multi-error if multiple validation failures occur.
func (c *IngestConfig) Validate() error {
	var errs []error

	if !c.Category.IsValid() {
		errs = append(errs, fmt.Errorf("category %q: %w", c.Category, ErrUnknownCategory))
	}
	if c.Root == "" {
		errs = append(errs, fmt.Errorf("Root is required: %w", ErrInvalidConfig))
	}
	if c.BatchSize < 0 {
		errs = append(errs, fmt.Errorf("batch size cannot be negative: %w", ErrInvalidConfig))
	}
	if c.CommitEvery < 0 {
		errs = append(errs, fmt.Errorf("commit interval cannot be negative: %w", ErrInvalidConfig))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers cannot be negative: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// FileError is a file-scoped failure recorded in a Summary.
type FileError struct {
	Path string
	Err  error
}

// Summary is reported when a category run reaches a terminal state.
type Summary struct {
	RunID    uuid.UUID
	Category Category
	Root     string
	State    RunState

	FilesVisited        int
	FilesSkipped        int
	FilesFailed         int
	RecordsExtracted    int
	RecordsEmitted      int
	RecordsDeduplicated int
	RecordsDropped      int
	SparseEntries       int
	Conflicts           int
	RowsLoaded          int
	LoadFailures        int

	Errors   []FileError
	Duration time.Duration
}

// String renders the one-line summary written to the diagnostic log.
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: files visited=%d skipped=%d failed=%d", s.Category, s.State,
		s.FilesVisited, s.FilesSkipped, s.FilesFailed)
	fmt.Fprintf(&b, ", records emitted=%d deduplicated=%d dropped=%d sparse=%d conflicts=%d",
		s.RecordsEmitted, s.RecordsDeduplicated, s.RecordsDropped, s.SparseEntries, s.Conflicts)
	fmt.Fprintf(&b, ", rows loaded=%d load failures=%d (%s)", s.RowsLoaded, s.LoadFailures,
		s.Duration.Round(time.Millisecond))
	return b.String()
}

// ConnectionConfig represents parsed PostgreSQL connection parameters.
type ConnectionConfig struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
	SSLMode  string

	// AuthMethod indicates the authentication mechanism to use
	AuthMethod AuthMethod

	AppName          string
	ConnectTimeout   time.Duration
	AdditionalParams map[string]string

	// AWSRegion is used when AuthMethod is AuthMethodAWSIAM.
	AWSRegion string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string

	// Azure Entra ID authentication parameters.
	// If all three are provided, Service Principal authentication is used.
	// If none are provided, DefaultAzureCredential chain is used.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string
}

// AuthMethod represents the type of authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Username/Password
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// ParseAuthMethod maps configuration and flag spellings to an AuthMethod.
func ParseAuthMethod(s string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "gcp", "google-iam":
		return AuthMethodGoogleIAM, nil
	case "azure", "entra", "azure-entra-id":
		return AuthMethodAzureEntraID, nil
	default:
		return AuthMethodStandard, fmt.Errorf("%q: %w", s, ErrUnsupportedAuthMethod)
	}
}
