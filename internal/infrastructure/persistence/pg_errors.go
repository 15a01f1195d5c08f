package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/quoteflow/backend/internal/domain/shared"
)

// Postgres states that mean the transaction lost a race for a lock rather
// than hitting bad data. Callers retry the whole operation.
const (
	sqlstateLockNotAvailable = "55P03"
	sqlstateDeadlockDetected = "40P01"
	sqlstateQueryCanceled    = "57014"
)

type sqlStater interface {
	SQLState() string
}

// translateContention maps lock-wait failures, deadlocks and deadline
// expiry onto shared.ErrBusy so they surface as retryable instead of as
// opaque driver errors. Both pgx and lib/pq expose SQLState on their error
// types. Everything else passes through unchanged.
func translateContention(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", shared.ErrBusy, err)
	}
	var state sqlStater
	if errors.As(err, &state) {
		switch state.SQLState() {
		case sqlstateLockNotAvailable, sqlstateDeadlockDetected, sqlstateQueryCanceled:
			return fmt.Errorf("%w: %v", shared.ErrBusy, err)
		}
	}
	return err
}
