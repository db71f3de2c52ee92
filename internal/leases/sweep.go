package leases

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

// SweepExpiredLeases completes every active lease whose end date is before
// today and re-derives the status of the spaces they held. Work is split into
// batches, one transaction each, so a long backlog never holds locks for long.
func (s *service) SweepExpiredLeases(ctx context.Context, now time.Time) (SweepResult, error) {
	today := calendar.Today(now)
	var result SweepResult
	touched := map[uuid.UUID]struct{}{}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		batch, err := s.sweepBatch(ctx, today)
		if err != nil {
			s.finishSweep(ctx, result, touched)
			return result, s.fail(ctx, err, "sweep expired leases")
		}
		result.CompletedCount += batch.completed
		result.UpdatedSpaceCount += batch.spacesUpdated
		for _, id := range batch.spaceIDs {
			touched[id] = struct{}{}
		}
		if batch.found < s.batchSize || batch.completed == 0 {
			break
		}
	}

	s.finishSweep(ctx, result, touched)
	return result, nil
}

type sweepBatchResult struct {
	found         int
	completed     int
	spacesUpdated int
	spaceIDs      []uuid.UUID
}

func (s *service) sweepBatch(ctx context.Context, today time.Time) (sweepBatchResult, error) {
	var out sweepBatchResult
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		expired, err := repo.FindExpiredLeases(ctx, today, s.batchSize)
		if err != nil {
			return err
		}
		out.found = len(expired)
		if len(expired) == 0 {
			return nil
		}

		leaseIDs := make([]uuid.UUID, len(expired))
		seen := map[uuid.UUID]struct{}{}
		for i, lease := range expired {
			leaseIDs[i] = lease.ID
			if _, ok := seen[lease.MediaSpaceID]; !ok {
				seen[lease.MediaSpaceID] = struct{}{}
				out.spaceIDs = append(out.spaceIDs, lease.MediaSpaceID)
			}
		}

		if _, err := repo.LockSpaces(ctx, out.spaceIDs); err != nil {
			return err
		}
		completed, err := repo.CompleteLeases(ctx, leaseIDs)
		if err != nil {
			return err
		}
		out.completed = int(completed)

		for _, spaceID := range out.spaceIDs {
			_, changed, err := recomputeSpace(ctx, repo, spaceID)
			if err != nil {
				return err
			}
			if changed {
				out.spacesUpdated++
			}
		}
		return nil
	})
	if err != nil {
		return sweepBatchResult{}, err
	}
	return out, nil
}

func (s *service) finishSweep(ctx context.Context, result SweepResult, touched map[uuid.UUID]struct{}) {
	if len(touched) > 0 {
		ids := make([]uuid.UUID, 0, len(touched))
		for id := range touched {
			ids = append(ids, id)
		}
		s.invalidate(ctx, ids...)
	}
	s.metrics.ObserveSweep(result.CompletedCount, result.UpdatedSpaceCount)

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"completed_count":     result.CompletedCount,
		"updated_space_count": result.UpdatedSpaceCount,
	})
	s.logg.Info(logCtx, "lease.sweep_complete")
}

// ReconcileSpaceStatuses repairs spaces whose stored status drifted from their
// leases, for example after manual data fixes. Each space is repaired in its
// own transaction; failures are collected and the rest still run.
func (s *service) ReconcileSpaceStatuses(ctx context.Context) (int, error) {
	ids, err := s.repo.FindDriftedSpaces(ctx, s.batchSize)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find drifted spaces")
	}

	var errs error
	repaired := 0
	for _, id := range ids {
		if _, err := s.RecomputeSpaceStatus(ctx, id); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		repaired++
	}
	if repaired > 0 {
		s.logg.Info(s.logg.WithField(ctx, "repaired_spaces", repaired), "lease.space_status_reconciled")
	}
	return repaired, errs
}
