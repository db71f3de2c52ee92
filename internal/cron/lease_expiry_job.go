package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/adspacehub/adspace-backend/internal/leases"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

// leaseSweeper is the slice of the lease service the expiry job drives.
type leaseSweeper interface {
	SweepExpiredLeases(ctx context.Context, now time.Time) (leases.SweepResult, error)
	ReconcileSpaceStatuses(ctx context.Context) (int, error)
}

type LeaseExpiryJobParams struct {
	Logger  *logger.Logger
	Service leaseSweeper
}

func NewLeaseExpiryJob(params LeaseExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Service == nil {
		return nil, fmt.Errorf("lease service required")
	}
	return &leaseExpiryJob{
		logg:    params.Logger,
		service: params.Service,
		now:     time.Now,
	}, nil
}

type leaseExpiryJob struct {
	logg    *logger.Logger
	service leaseSweeper
	now     func() time.Time
}

func (j *leaseExpiryJob) Name() string { return "lease-expiry" }

// Run completes expired leases and then repairs any space status drift. The
// reconcile step runs even when the sweep fails part way.
func (j *leaseExpiryJob) Run(ctx context.Context) error {
	var errs error

	result, err := j.service.SweepExpiredLeases(ctx, j.now().UTC())
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("sweep expired leases: %w", err))
	}

	repaired, err := j.service.ReconcileSpaceStatuses(ctx)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("reconcile space statuses: %w", err))
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"completed_count":     result.CompletedCount,
		"updated_space_count": result.UpdatedSpaceCount,
		"repaired_spaces":     repaired,
	})
	j.logg.Info(logCtx, "lease expiry complete")
	return errs
}
