package leases

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/pkg/db/dbtest"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

var today = time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)

func day(n int) time.Time { return today.AddDate(0, 0, n) }

type notified struct {
	kind    enums.NotificationKind
	payload notifications.Payload
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notified
}

func (r *recordingNotifier) Notify(ctx context.Context, kind enums.NotificationKind, payload notifications.Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notified{kind: kind, payload: payload})
}

func (r *recordingNotifier) kinds() []enums.NotificationKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]enums.NotificationKind, len(r.calls))
	for i, c := range r.calls {
		out[i] = c.kind
	}
	return out
}

type recordingInvalidator struct {
	spaces []uuid.UUID
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, spaceIDs ...uuid.UUID) {
	r.spaces = append(r.spaces, spaceIDs...)
}

type harness struct {
	t        *testing.T
	conn     *gorm.DB
	fx       *dbtest.Fixtures
	svc      Service
	notifier *recordingNotifier
	cache    *recordingInvalidator
	logs     *bytes.Buffer
}

type harnessOption func(*ServiceParams, *gorm.DB)

func withBatchSize(n int) harnessOption {
	return func(p *ServiceParams, _ *gorm.DB) { p.SweepBatchSize = n }
}

func withReader(build func(conn *gorm.DB) availability.Reader) harnessOption {
	return func(p *ServiceParams, conn *gorm.DB) {
		engine, err := availability.NewEngine(build(conn), availability.WithClock(clock))
		if err != nil {
			panic(err)
		}
		p.Engine = engine
	}
}

func clock() time.Time { return today.Add(9 * time.Hour) }

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	client, conn := dbtest.OpenClient(t)
	engine, err := availability.NewEngine(availability.NewRepository(conn), availability.WithClock(clock))
	require.NoError(t, err)

	h := &harness{
		t:        t,
		conn:     conn,
		fx:       dbtest.NewFixtures(t, conn),
		notifier: &recordingNotifier{},
		cache:    &recordingInvalidator{},
		logs:     &bytes.Buffer{},
	}
	params := ServiceParams{
		Logger:     logger.New(logger.Options{ServiceName: "test", Output: h.logs}),
		DB:         client,
		Repository: NewRepository(conn),
		Engine:     engine,
		Notifier:   h.notifier,
		Cache:      h.cache,
	}
	for _, opt := range opts {
		opt(&params, conn)
	}
	h.svc, err = NewService(params)
	require.NoError(t, err)
	return h
}

func (h *harness) order() models.Order {
	h.t.Helper()
	user := h.fx.User(enums.UserRoleAdvertiser)
	return h.fx.Order(user.ID)
}

func (h *harness) input(spaceID, orderID uuid.UUID, start, end time.Time) CreateLeaseInput {
	return CreateLeaseInput{
		SpaceID:      spaceID,
		OrderID:      orderID,
		CustomerName: "Cafe Luna",
		StartDate:    start,
		EndDate:      end,
		Amount:       decimal.NewFromInt(300),
	}
}

func (h *harness) space(id uuid.UUID) models.MediaSpace {
	h.t.Helper()
	var space models.MediaSpace
	require.NoError(h.t, h.conn.First(&space, "id = ?", id).Error)
	return space
}

func (h *harness) lease(id uuid.UUID) models.Lease {
	h.t.Helper()
	var lease models.Lease
	require.NoError(h.t, h.conn.First(&lease, "id = ?", id).Error)
	return lease
}

func (h *harness) countLeases() int64 {
	h.t.Helper()
	var n int64
	require.NoError(h.t, h.conn.Model(&models.Lease{}).Count(&n).Error)
	return n
}
