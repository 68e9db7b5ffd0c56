package retry

import (
	"context"
	"time"

	"github.com/vvka-141/pulseload/pkg/pulse"
)

// Dialer repeats a connect attempt while its classifier reports the
// failure as transient. Attempts are logged as warnings.
type Dialer struct {
	target     string
	classifier pulse.ErrorClassifier
	policy     Policy
	logger     pulse.Logger
}

// NewDialer creates a Dialer for target, a label used in diagnostics.
// Panics if classifier or logger is nil.
func NewDialer(target string, classifier pulse.ErrorClassifier, policy Policy, logger pulse.Logger) *Dialer {
	if classifier == nil {
		panic("classifier cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Dialer{target: target, classifier: classifier, policy: policy, logger: logger}
}

// PostgresDialer retries pgx connection failures with the default policy.
func PostgresDialer(logger pulse.Logger) *Dialer {
	return NewDialer("PostgreSQL", NewPostgreSQLErrorClassifier(), DefaultPolicy(), logger)
}

// MySQLDialer retries go-sql-driver/mysql connection failures with the default policy.
func MySQLDialer(logger pulse.Logger) *Dialer {
	return NewDialer("MySQL", NewMySQLErrorClassifier(), DefaultPolicy(), logger)
}

// Dial calls connect until it succeeds, fails fatally, the context ends,
// or the policy's retries are used up. The last error is returned.
func (d *Dialer) Dial(ctx context.Context, connect func(ctx context.Context) error) error {
	err := connect(ctx)
	for n := 0; err != nil && n < d.policy.Retries; n++ {
		if !d.classifier.IsTransient(err) {
			return err
		}
		wait := d.policy.Delay(n)
		d.logger.Warn("%s connection attempt %d failed, retrying in %v: %v", d.target, n+1, wait, err)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		err = connect(ctx)
	}
	return err
}
