package leases

import (
	"time"

	"github.com/google/uuid"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/pkg/db"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

// ErrLeaseNotFound is returned when a lease id does not resolve.
func ErrLeaseNotFound(leaseID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "lease not found").
		WithDetails(map[string]any{"leaseId": leaseID})
}

// ErrOrderNotFound is returned when a lease references a missing order.
func ErrOrderNotFound(orderID uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
		WithDetails(map[string]any{"orderId": orderID})
}

func errBoundaryTransition(status enums.LeaseStatus, direction enums.Direction) error {
	return pkgerrors.New(pkgerrors.CodeBoundaryTransition, "lease cannot move further in that direction").
		WithDetails(map[string]any{
			"status":    status.String(),
			"statusId":  int(status),
			"direction": direction.String(),
		})
}

// errRecheckFailed reports a range that passed the pre-check but was taken
// by a concurrent writer before the lock was acquired.
func errRecheckFailed(spaceID uuid.UUID, blocked []time.Time) error {
	dates := make([]string, len(blocked))
	for i, d := range blocked {
		dates[i] = calendar.Format(d)
	}
	return pkgerrors.New(pkgerrors.CodeConcurrency, "media space changed while the lease was being created").
		WithDetails(map[string]any{
			"spaceId":      spaceID,
			"blockedDates": dates,
		})
}

// mapTxError keeps typed errors, turns lock and serialization failures into
// concurrency conflicts and wraps everything else as a dependency failure.
func mapTxError(err error, message string) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}
	if db.IsConcurrencyConflict(err) {
		return pkgerrors.Wrap(pkgerrors.CodeConcurrency, err, message)
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
}
