package leases

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

func TestSweepCompletesExpiredLeaseAndReleasesSpace(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	space := h.fx.SpaceWith(1, 1)
	order := h.order()
	expired := h.fx.Lease(space.ID, order.ID, day(-5), day(-1), enums.LeaseStatusAsignado)
	h.fx.SetSpaceStatus(space.ID, enums.SpaceStatusLeased)

	result, err := h.svc.SweepExpiredLeases(ctx, clock())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{CompletedCount: 1, UpdatedSpaceCount: 1}, result)
	assert.Equal(t, enums.LeaseStatusCompletado, h.lease(expired.ID).StatusID)
	assert.Equal(t, enums.SpaceStatusAvailable, h.space(space.ID).Status)

	again, err := h.svc.SweepExpiredLeases(ctx, clock())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{}, again)
	assert.Contains(t, h.logs.String(), "lease.sweep_complete")
}

func TestSweepKeepsSpaceLeasedWhileOtherLeasesRemain(t *testing.T) {
	h := newHarness(t)
	space := h.fx.SpaceWith(2, 1)
	order := h.order()
	h.fx.Lease(space.ID, order.ID, day(-3), day(-1), enums.LeaseStatusEncendido)
	current := h.fx.Lease(space.ID, order.ID, day(0), day(0), enums.LeaseStatusRecibido)
	future := h.fx.Lease(space.ID, order.ID, day(60), day(61), enums.LeaseStatusRecibido)
	h.fx.SetSpaceStatus(space.ID, enums.SpaceStatusLeased)

	result, err := h.svc.SweepExpiredLeases(context.Background(), clock())
	require.NoError(t, err)
	assert.Equal(t, 1, result.CompletedCount)
	assert.Zero(t, result.UpdatedSpaceCount)
	assert.Equal(t, enums.SpaceStatusLeased, h.space(space.ID).Status)
	assert.Equal(t, enums.LeaseStatusRecibido, h.lease(current.ID).StatusID)
	assert.Equal(t, enums.LeaseStatusRecibido, h.lease(future.ID).StatusID)
}

func TestSweepNeverMovesLeasesBackward(t *testing.T) {
	h := newHarness(t)
	space := h.fx.SpaceWith(3, 1)
	order := h.order()
	statuses := []enums.LeaseStatus{enums.LeaseStatusRecibido, enums.LeaseStatusFacturado, enums.LeaseStatusCompletado}
	ids := make([]uuid.UUID, len(statuses))
	for i, st := range statuses {
		ids[i] = h.fx.Lease(space.ID, order.ID, day(-10), day(-2), st).ID
	}

	result, err := h.svc.SweepExpiredLeases(context.Background(), clock())
	require.NoError(t, err)
	assert.Equal(t, 2, result.CompletedCount)
	for _, id := range ids {
		assert.Equal(t, enums.LeaseStatusCompletado, h.lease(id).StatusID)
	}
}

func TestSweepRunsInBatches(t *testing.T) {
	h := newHarness(t, withBatchSize(2))
	order := h.order()
	var spaces []uuid.UUID
	for i := 0; i < 5; i++ {
		space := h.fx.SpaceWith(1, 1)
		h.fx.Lease(space.ID, order.ID, day(-2-i), day(-1-i), enums.LeaseStatusAsignado)
		h.fx.SetSpaceStatus(space.ID, enums.SpaceStatusLeased)
		spaces = append(spaces, space.ID)
	}

	result, err := h.svc.SweepExpiredLeases(context.Background(), clock())
	require.NoError(t, err)
	assert.Equal(t, SweepResult{CompletedCount: 5, UpdatedSpaceCount: 5}, result)
	for _, id := range spaces {
		assert.Equal(t, enums.SpaceStatusAvailable, h.space(id).Status)
		assert.Contains(t, h.cache.spaces, id)
	}
}

func TestReconcileSpaceStatuses(t *testing.T) {
	h := newHarness(t)
	order := h.order()

	staleLeased := h.fx.SpaceWith(1, 1)
	h.fx.SetSpaceStatus(staleLeased.ID, enums.SpaceStatusLeased)

	staleAvailable := h.fx.SpaceWith(1, 1)
	h.fx.Lease(staleAvailable.ID, order.ID, day(10), day(10), enums.LeaseStatusAsignado)

	consistent := h.fx.SpaceWith(1, 1)

	repaired, err := h.svc.ReconcileSpaceStatuses(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repaired)
	assert.Equal(t, enums.SpaceStatusAvailable, h.space(staleLeased.ID).Status)
	assert.Equal(t, enums.SpaceStatusLeased, h.space(staleAvailable.ID).Status)
	assert.Equal(t, enums.SpaceStatusAvailable, h.space(consistent.ID).Status)

	repaired, err = h.svc.ReconcileSpaceStatuses(context.Background())
	require.NoError(t, err)
	assert.Zero(t, repaired)
}

// TestCapacityHoldsUnderRandomOperations drives a seeded mix of creates,
// revocations, pipeline moves and sweeps and checks the per-day occupancy
// and the space status projection after every step.
func TestCapacityHoldsUnderRandomOperations(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	const limit = 2
	space := h.fx.SpaceWith(limit, 1)
	order := h.order()
	var live []uuid.UUID

	for step := 0; step < 60; step++ {
		switch op := rng.Intn(10); {
		case op < 6:
			start := rng.Intn(20)
			end := start + rng.Intn(4)
			lease, err := h.svc.CreateLease(ctx, h.input(space.ID, order.ID, day(start), day(end)))
			if err == nil {
				live = append(live, lease.ID)
			}
		case op < 8 && len(live) > 0:
			i := rng.Intn(len(live))
			require.NoError(t, h.svc.RevokeLease(ctx, live[i]))
			live = append(live[:i], live[i+1:]...)
		case op < 9 && len(live) > 0:
			_, _ = h.svc.AdvanceStatus(ctx, live[rng.Intn(len(live))], enums.DirectionNext)
		default:
			_, err := h.svc.SweepExpiredLeases(ctx, clock().AddDate(0, 0, rng.Intn(5)))
			require.NoError(t, err)
		}

		var leases []models.Lease
		require.NoError(t, h.conn.Where("media_space_id = ? AND status_id <> ?", space.ID, int(enums.LeaseStatusCompletado)).Find(&leases).Error)
		counts := map[string]int{}
		for _, l := range leases {
			for _, d := range calendar.EnumerateDays(l.StartDate, l.EndDate) {
				counts[calendar.Format(d)]++
				require.LessOrEqual(t, counts[calendar.Format(d)], limit, "step %d oversold %s", step, calendar.Format(d))
			}
		}

		want := enums.SpaceStatusAvailable
		if len(leases) > 0 {
			want = enums.SpaceStatusLeased
		}
		require.Equal(t, want, h.space(space.ID).Status, "step %d", step)
	}
}
