// Package leases owns the lease lifecycle: creation under capacity, pipeline
// moves, revocation, expiry and the media space status projection.
package leases

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/internal/availability"
	"github.com/adspacehub/adspace-backend/internal/calendar"
	"github.com/adspacehub/adspace-backend/internal/capacity"
	"github.com/adspacehub/adspace-backend/internal/notifications"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/metrics"
	"github.com/adspacehub/adspace-backend/pkg/pagination"
)

const defaultSweepBatchSize = 500

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type notifier interface {
	Notify(ctx context.Context, kind enums.NotificationKind, payload notifications.Payload)
}

type calendarInvalidator interface {
	Invalidate(ctx context.Context, spaceIDs ...uuid.UUID)
}

// Service exposes the lease lifecycle operations.
type Service interface {
	CreateLease(ctx context.Context, input CreateLeaseInput) (*models.Lease, error)
	Checkout(ctx context.Context, userID uuid.UUID, items []CheckoutItem) (*CheckoutResult, error)
	AdvanceStatus(ctx context.Context, leaseID uuid.UUID, direction enums.Direction) (*models.Lease, error)
	RevokeLease(ctx context.Context, leaseID uuid.UUID) error
	SweepExpiredLeases(ctx context.Context, now time.Time) (SweepResult, error)
	RecomputeSpaceStatus(ctx context.Context, spaceID uuid.UUID) (enums.SpaceStatus, error)
	ReconcileSpaceStatuses(ctx context.Context) (int, error)
	UpdateCampaignRedirect(ctx context.Context, leaseID uuid.UUID, url string) (*models.Lease, error)
	Get(ctx context.Context, viewer Viewer, leaseID uuid.UUID) (*models.Lease, error)
	List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error)
}

// ServiceParams wires the lease service.
type ServiceParams struct {
	Logger         *logger.Logger
	DB             txRunner
	Repository     Repository
	Engine         *availability.Engine
	Notifier       notifier
	Cache          calendarInvalidator
	Metrics        *metrics.LeasingMetrics
	SweepBatchSize int
}

type service struct {
	logg      *logger.Logger
	db        txRunner
	repo      Repository
	engine    *availability.Engine
	notifier  notifier
	cache     calendarInvalidator
	metrics   *metrics.LeasingMetrics
	batchSize int
}

// NewService validates dependencies and returns the lease service.
func NewService(params ServiceParams) (Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("lease repository required")
	}
	if params.Engine == nil {
		return nil, fmt.Errorf("availability engine required")
	}
	if params.Notifier == nil {
		return nil, fmt.Errorf("notifier required")
	}
	batch := params.SweepBatchSize
	if batch <= 0 {
		batch = defaultSweepBatchSize
	}
	return &service{
		logg:      params.Logger,
		db:        params.DB,
		repo:      params.Repository,
		engine:    params.Engine,
		notifier:  params.Notifier,
		cache:     params.Cache,
		metrics:   params.Metrics,
		batchSize: batch,
	}, nil
}

func (s *service) CreateLease(ctx context.Context, input CreateLeaseInput) (*models.Lease, error) {
	if input.OrderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	item := CheckoutItem{
		SpaceID:      input.SpaceID,
		CustomerName: input.CustomerName,
		StartDate:    input.StartDate,
		EndDate:      input.EndDate,
		Amount:       input.Amount,
		Extra:        input.Extra,
	}
	if err := validateItem(item); err != nil {
		return nil, err
	}
	item.StartDate, item.EndDate = calendar.Day(item.StartDate), calendar.Day(item.EndDate)

	if err := s.precheck(ctx, item, nil); err != nil {
		return nil, err
	}

	var created *models.Lease
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindOrder(ctx, input.OrderID); err != nil {
			if isNotFound(err) {
				return ErrOrderNotFound(input.OrderID)
			}
			return err
		}
		if err := s.lockSpaces(ctx, repo, []uuid.UUID{item.SpaceID}); err != nil {
			return err
		}
		lease, err := s.reserve(ctx, tx, repo, input.OrderID, item)
		if err != nil {
			return err
		}
		created = lease
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, "create lease")
	}

	details := s.afterCreate(ctx, []uuid.UUID{created.ID}, []uuid.UUID{item.SpaceID})
	if len(details) == 1 {
		return &details[0], nil
	}
	return created, nil
}

// Checkout creates an order and one lease per item in a single transaction.
// Earlier items count toward the occupancy seen by later ones.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, items []CheckoutItem) (*CheckoutResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user id required")
	}
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "checkout contains no items")
	}

	items = append([]CheckoutItem(nil), items...)
	pending := map[uuid.UUID][]capacity.Span{}
	spaceIDs := make([]uuid.UUID, 0, len(items))
	for i := range items {
		if err := validateItem(items[i]); err != nil {
			return nil, withItemIndex(err, i)
		}
		items[i].StartDate, items[i].EndDate = calendar.Day(items[i].StartDate), calendar.Day(items[i].EndDate)
		if err := s.precheck(ctx, items[i], pending[items[i].SpaceID]); err != nil {
			return nil, withItemIndex(err, i)
		}
		if _, seen := pending[items[i].SpaceID]; !seen {
			spaceIDs = append(spaceIDs, items[i].SpaceID)
		}
		pending[items[i].SpaceID] = append(pending[items[i].SpaceID], capacity.Span{
			Start:  items[i].StartDate,
			End:    items[i].EndDate,
			Status: enums.LeaseStatusRecibido,
		})
	}

	var order models.Order
	leaseIDs := make([]uuid.UUID, 0, len(items))
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order = models.Order{UserID: userID}
		if err := repo.CreateOrder(ctx, &order); err != nil {
			return err
		}
		if err := s.lockSpaces(ctx, repo, spaceIDs); err != nil {
			return err
		}
		for i, item := range items {
			lease, err := s.reserve(ctx, tx, repo, order.ID, item)
			if err != nil {
				return withItemIndex(err, i)
			}
			leaseIDs = append(leaseIDs, lease.ID)
		}
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, err, "checkout")
	}

	details := s.afterCreate(ctx, leaseIDs, spaceIDs)
	return &CheckoutResult{Order: order, Leases: details}, nil
}

func (s *service) AdvanceStatus(ctx context.Context, leaseID uuid.UUID, direction enums.Direction) (*models.Lease, error) {
	if leaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lease id required")
	}
	if !direction.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "direction must be next or prev").
			WithDetails(map[string]any{"direction": direction.String()})
	}

	var spaceID uuid.UUID
	var from, to enums.LeaseStatus
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lease, err := s.lockLease(ctx, repo, leaseID)
		if err != nil {
			return err
		}
		spaceID = lease.MediaSpaceID
		from = lease.StatusID

		next, ok := lease.StatusID.Step(direction)
		if !ok {
			return errBoundaryTransition(lease.StatusID, direction)
		}
		if !lease.StatusID.IsActive() && next.IsActive() {
			d, err := s.engine.WithReader(availability.NewRepository(tx)).
				Occupancy(ctx, lease.MediaSpaceID, lease.StartDate, lease.EndDate)
			if err != nil {
				return err
			}
			if !d.Available {
				s.metrics.IncRejection(string(pkgerrors.CodeCapacityExceeded))
				return d.Err()
			}
		}
		if err := repo.UpdateLeaseStatus(ctx, lease.ID, next); err != nil {
			return err
		}
		to = next
		_, err = s.recompute(ctx, repo, lease.MediaSpaceID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, err, "advance lease status")
	}

	if from.IsActive() != to.IsActive() {
		s.invalidate(ctx, spaceID)
	}
	s.metrics.IncStatusTransition(to.String())

	logCtx := s.logg.WithFields(s.logg.WithLeaseID(ctx, leaseID.String()), map[string]any{
		"from_status": from.String(),
		"to_status":   to.String(),
	})
	s.logg.Info(logCtx, "lease.status_changed")

	lease, err := s.repo.FindLeaseDetail(ctx, leaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lease")
	}
	s.notifier.Notify(ctx, enums.NotificationKindStatusChanged, notifications.PayloadFromLease(lease))
	return lease, nil
}

func (s *service) RevokeLease(ctx context.Context, leaseID uuid.UUID) error {
	if leaseID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "lease id required")
	}

	var spaceID uuid.UUID
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		lease, err := s.lockLease(ctx, repo, leaseID)
		if err != nil {
			return err
		}
		spaceID = lease.MediaSpaceID
		if err := repo.DeleteLease(ctx, lease.ID); err != nil {
			if isNotFound(err) {
				return ErrLeaseNotFound(leaseID)
			}
			return err
		}
		_, err = s.recompute(ctx, repo, spaceID)
		return err
	})
	if err != nil {
		return s.fail(ctx, err, "revoke lease")
	}

	s.invalidate(ctx, spaceID)
	logCtx := s.logg.WithSpaceID(s.logg.WithLeaseID(ctx, leaseID.String()), spaceID.String())
	s.logg.Info(logCtx, "lease.revoked")
	return nil
}

// RecomputeSpaceStatus re-derives the cached status of one space under its lock.
func (s *service) RecomputeSpaceStatus(ctx context.Context, spaceID uuid.UUID) (enums.SpaceStatus, error) {
	if spaceID == uuid.Nil {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "space id required")
	}
	var status enums.SpaceStatus
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := s.lockSpaces(ctx, repo, []uuid.UUID{spaceID}); err != nil {
			return err
		}
		var err error
		status, err = s.recompute(ctx, repo, spaceID)
		return err
	})
	if err != nil {
		return "", s.fail(ctx, err, "recompute space status")
	}
	return status, nil
}

func (s *service) UpdateCampaignRedirect(ctx context.Context, leaseID uuid.UUID, url string) (*models.Lease, error) {
	if leaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lease id required")
	}
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "campaign redirect url required")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindLease(ctx, leaseID); err != nil {
			if isNotFound(err) {
				return ErrLeaseNotFound(leaseID)
			}
			return err
		}
		return repo.UpsertCampaignRedirect(ctx, leaseID, url)
	})
	if err != nil {
		return nil, s.fail(ctx, err, "update campaign redirect")
	}

	lease, err := s.repo.FindLeaseDetail(ctx, leaseID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lease")
	}
	payload := notifications.PayloadFromLease(lease)
	payload.RedirectURL = url
	s.notifier.Notify(ctx, enums.NotificationKindCampaignRedirectUpdated, payload)
	return lease, nil
}

func (s *service) Get(ctx context.Context, viewer Viewer, leaseID uuid.UUID) (*models.Lease, error) {
	if leaseID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "lease id required")
	}
	lease, err := s.repo.FindLeaseDetail(ctx, leaseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLeaseNotFound(leaseID)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load lease")
	}
	if !viewer.Role.IsStaff() && (lease.Order == nil || lease.Order.UserID != viewer.UserID) {
		// hide existence from other advertisers
		return nil, ErrLeaseNotFound(leaseID)
	}
	return lease, nil
}

func (s *service) List(ctx context.Context, viewer Viewer, params ListParams) (*ListResult, error) {
	filters := params.Filters
	if !viewer.Role.IsStaff() {
		if viewer.UserID == uuid.Nil {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user id required")
		}
		userID := viewer.UserID
		filters.UserID = &userID
	}
	if filters.StatusID != nil && !filters.StatusID.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid status id")
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	rows, next, err := s.repo.List(ctx, filters, cursor, params.Limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list leases")
	}
	if rows == nil {
		rows = []models.Lease{}
	}
	result := &ListResult{Items: rows}
	if next != nil {
		result.Cursor = pagination.EncodeCursor(*next)
	}
	return result, nil
}

// precheck runs the full availability check outside any transaction.
func (s *service) precheck(ctx context.Context, item CheckoutItem, pending []capacity.Span) error {
	d, err := s.engine.CheckAvailability(ctx, item.SpaceID, item.StartDate, item.EndDate, pending...)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			s.metrics.IncRejection(string(typed.Code()))
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check availability")
	}
	if !d.Available {
		s.metrics.IncRejection(string(pkgerrors.CodeCapacityExceeded))
		return d.Err()
	}
	return nil
}

// reserve re-checks capacity inside the transaction, after the space lock is
// held, and writes the lease, its extra information and the space status.
func (s *service) reserve(ctx context.Context, tx *gorm.DB, repo Repository, orderID uuid.UUID, item CheckoutItem) (*models.Lease, error) {
	d, err := s.engine.WithReader(availability.NewRepository(tx)).
		Occupancy(ctx, item.SpaceID, item.StartDate, item.EndDate)
	if err != nil {
		return nil, err
	}
	if !d.Available {
		return nil, errRecheckFailed(item.SpaceID, d.BlockedDates)
	}

	lease := &models.Lease{
		MediaSpaceID: item.SpaceID,
		OrderID:      orderID,
		CustomerName: strings.TrimSpace(item.CustomerName),
		StartDate:    item.StartDate,
		EndDate:      item.EndDate,
		Amount:       item.Amount,
		StatusID:     enums.LeaseStatusRecibido,
	}
	if err := repo.CreateLease(ctx, lease); err != nil {
		return nil, err
	}
	extra := item.Extra.toModel(lease.ID)
	if err := repo.CreateExtraInformation(ctx, extra); err != nil {
		return nil, err
	}
	lease.ExtraInformation = extra
	if _, err := s.recompute(ctx, repo, item.SpaceID); err != nil {
		return nil, err
	}
	return lease, nil
}

func (s *service) afterCreate(ctx context.Context, leaseIDs, spaceIDs []uuid.UUID) []models.Lease {
	s.invalidate(ctx, spaceIDs...)
	s.metrics.IncLeasesCreated(len(leaseIDs))

	details, err := s.repo.FindLeaseDetails(ctx, leaseIDs)
	if err != nil {
		s.logg.Error(ctx, "lease.detail_load_failed", err)
		return nil
	}
	for i := range details {
		lease := &details[i]
		logCtx := s.logg.WithSpaceID(s.logg.WithLeaseID(ctx, lease.ID.String()), lease.MediaSpaceID.String())
		s.logg.Info(logCtx, "lease.created")

		payload := notifications.PayloadFromLease(lease)
		s.notifier.Notify(ctx, enums.NotificationKindLeaseCreated, payload)
		if lease.ExtraInformation.IsGroupedRedirect() {
			s.notifier.Notify(ctx, enums.NotificationKindCampaignRedirectPending, payload)
		}
	}
	return details
}

// lockLease finds the lease, locks its space and reads the lease again so the
// caller sees the state as of the lock.
func (s *service) lockLease(ctx context.Context, repo Repository, leaseID uuid.UUID) (*models.Lease, error) {
	lease, err := repo.FindLease(ctx, leaseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLeaseNotFound(leaseID)
		}
		return nil, err
	}
	if err := s.lockSpaces(ctx, repo, []uuid.UUID{lease.MediaSpaceID}); err != nil {
		return nil, err
	}
	lease, err = repo.FindLease(ctx, leaseID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrLeaseNotFound(leaseID)
		}
		return nil, err
	}
	return lease, nil
}

func (s *service) lockSpaces(ctx context.Context, repo Repository, spaceIDs []uuid.UUID) error {
	spaces, err := repo.LockSpaces(ctx, spaceIDs)
	if err != nil {
		return err
	}
	if len(spaces) == len(spaceIDs) {
		return nil
	}
	found := make(map[uuid.UUID]struct{}, len(spaces))
	for _, sp := range spaces {
		found[sp.ID] = struct{}{}
	}
	for _, id := range spaceIDs {
		if _, ok := found[id]; !ok {
			return availability.ErrSpaceNotFound(id)
		}
	}
	return nil
}

// recompute derives the space status from its active leases: leased while any
// non-Completado lease exists, available otherwise.
func (s *service) recompute(ctx context.Context, repo Repository, spaceID uuid.UUID) (enums.SpaceStatus, error) {
	status, _, err := recomputeSpace(ctx, repo, spaceID)
	return status, err
}

func recomputeSpace(ctx context.Context, repo Repository, spaceID uuid.UUID) (enums.SpaceStatus, bool, error) {
	active, err := repo.CountActiveLeases(ctx, spaceID)
	if err != nil {
		return "", false, err
	}
	status := enums.SpaceStatusAvailable
	if active > 0 {
		status = enums.SpaceStatusLeased
	}
	changed, err := repo.UpdateSpaceStatus(ctx, spaceID, status)
	if err != nil {
		return "", false, err
	}
	return status, changed, nil
}

func (s *service) invalidate(ctx context.Context, spaceIDs ...uuid.UUID) {
	if s.cache == nil || len(spaceIDs) == 0 {
		return
	}
	s.cache.Invalidate(ctx, spaceIDs...)
}

func (s *service) fail(ctx context.Context, err error, message string) error {
	mapped := mapTxError(err, message)
	if pkgerrors.Is(mapped, pkgerrors.CodeConcurrency) {
		s.metrics.IncConcurrencyConflict()
		s.logg.Warn(s.logg.WithField(ctx, "error", mapped.Error()), "lease.concurrency_conflict")
	}
	return mapped
}

func validateItem(item CheckoutItem) error {
	if item.SpaceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "space id required")
	}
	if strings.TrimSpace(item.CustomerName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer name required")
	}
	if item.StartDate.IsZero() || item.EndDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start and end dates required")
	}
	if item.Amount.LessThan(decimal.Zero) {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must not be negative")
	}
	return nil
}

// withItemIndex tags a typed error with the checkout line it came from.
func withItemIndex(err error, index int) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details := map[string]any{"itemIndex": index}
	if existing, ok := typed.Details().(map[string]any); ok {
		for k, v := range existing {
			details[k] = v
		}
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(details)
}
