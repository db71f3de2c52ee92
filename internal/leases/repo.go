package leases

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	"github.com/adspacehub/adspace-backend/pkg/pagination"
)

// Repository defines persistence operations for leases and the space status
// projection they drive.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	LockSpaces(ctx context.Context, spaceIDs []uuid.UUID) ([]models.MediaSpace, error)
	FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	CreateOrder(ctx context.Context, order *models.Order) error
	CreateLease(ctx context.Context, lease *models.Lease) error
	CreateExtraInformation(ctx context.Context, extra *models.LeaseExtraInformation) error
	FindLease(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error)
	FindLeaseDetail(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error)
	FindLeaseDetails(ctx context.Context, leaseIDs []uuid.UUID) ([]models.Lease, error)
	UpdateLeaseStatus(ctx context.Context, leaseID uuid.UUID, status enums.LeaseStatus) error
	DeleteLease(ctx context.Context, leaseID uuid.UUID) error
	CountActiveLeases(ctx context.Context, spaceID uuid.UUID) (int64, error)
	UpdateSpaceStatus(ctx context.Context, spaceID uuid.UUID, status enums.SpaceStatus) (bool, error)
	FindExpiredLeases(ctx context.Context, today time.Time, limit int) ([]models.Lease, error)
	CompleteLeases(ctx context.Context, leaseIDs []uuid.UUID) (int64, error)
	FindDriftedSpaces(ctx context.Context, limit int) ([]uuid.UUID, error)
	List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Lease, *pagination.Cursor, error)
	UpsertCampaignRedirect(ctx context.Context, leaseID uuid.UUID, url string) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository binds the lease repository to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// LockSpaces takes row locks on the given spaces in id order so concurrent
// writers touching several spaces cannot deadlock. Missing ids are simply
// absent from the result.
func (r *repository) LockSpaces(ctx context.Context, spaceIDs []uuid.UUID) ([]models.MediaSpace, error) {
	if len(spaceIDs) == 0 {
		return nil, nil
	}
	var spaces []models.MediaSpace
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", spaceIDs).
		Order("id ASC").
		Find(&spaces).Error
	return spaces, err
}

func (r *repository) FindOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreateLease(ctx context.Context, lease *models.Lease) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(lease).Error
}

func (r *repository) CreateExtraInformation(ctx context.Context, extra *models.LeaseExtraInformation) error {
	return r.db.WithContext(ctx).Create(extra).Error
}

func (r *repository) FindLease(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	if err := r.db.WithContext(ctx).Where("id = ?", leaseID).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *repository) detailQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("MediaSpace.Store").
		Preload("MediaSpace.MediaItem").
		Preload("Order").
		Preload("ExtraInformation")
}

// FindLeaseDetail loads a lease with everything notifications and the API render.
func (r *repository) FindLeaseDetail(ctx context.Context, leaseID uuid.UUID) (*models.Lease, error) {
	var lease models.Lease
	if err := r.detailQuery(ctx).Where("id = ?", leaseID).First(&lease).Error; err != nil {
		return nil, err
	}
	return &lease, nil
}

func (r *repository) FindLeaseDetails(ctx context.Context, leaseIDs []uuid.UUID) ([]models.Lease, error) {
	if len(leaseIDs) == 0 {
		return nil, nil
	}
	var rows []models.Lease
	err := r.detailQuery(ctx).Where("id IN ?", leaseIDs).Order("created_at ASC, id ASC").Find(&rows).Error
	return rows, err
}

func (r *repository) UpdateLeaseStatus(ctx context.Context, leaseID uuid.UUID, status enums.LeaseStatus) error {
	result := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("id = ?", leaseID).
		Update("status_id", int(status))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteLease removes the extra information before the lease row.
func (r *repository) DeleteLease(ctx context.Context, leaseID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("lease_id = ?", leaseID).Delete(&models.LeaseExtraInformation{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", leaseID).Delete(&models.Lease{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) CountActiveLeases(ctx context.Context, spaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("media_space_id = ? AND status_id <> ?", spaceID, int(enums.LeaseStatusCompletado)).
		Count(&count).Error
	return count, err
}

// UpdateSpaceStatus reports whether the stored status actually changed.
func (r *repository) UpdateSpaceStatus(ctx context.Context, spaceID uuid.UUID, status enums.SpaceStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.MediaSpace{}).
		Where("id = ? AND status <> ?", spaceID, status).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// FindExpiredLeases returns active leases whose last day is before today,
// oldest first.
func (r *repository) FindExpiredLeases(ctx context.Context, today time.Time, limit int) ([]models.Lease, error) {
	var rows []models.Lease
	query := r.db.WithContext(ctx).
		Select("id", "media_space_id", "end_date", "status_id").
		Where("status_id <> ? AND end_date < ?", int(enums.LeaseStatusCompletado), today).
		Order("end_date ASC, id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&rows).Error
	return rows, err
}

func (r *repository) CompleteLeases(ctx context.Context, leaseIDs []uuid.UUID) (int64, error) {
	if len(leaseIDs) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("id IN ? AND status_id <> ?", leaseIDs, int(enums.LeaseStatusCompletado)).
		Update("status_id", int(enums.LeaseStatusCompletado))
	return result.RowsAffected, result.Error
}

// FindDriftedSpaces returns spaces whose stored status disagrees with their
// active leases.
func (r *repository) FindDriftedSpaces(ctx context.Context, limit int) ([]uuid.UUID, error) {
	active := func() *gorm.DB {
		return r.db.WithContext(ctx).
			Model(&models.Lease{}).
			Select("1").
			Where("leases.media_space_id = media_spaces.id AND leases.status_id <> ?", int(enums.LeaseStatusCompletado))
	}

	query := r.db.WithContext(ctx).
		Model(&models.MediaSpace{}).
		Where("(media_spaces.status = ? AND NOT EXISTS (?)) OR (media_spaces.status = ? AND EXISTS (?))",
			enums.SpaceStatusLeased, active(), enums.SpaceStatusAvailable, active()).
		Order("media_spaces.id ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var ids []uuid.UUID
	err := query.Pluck("media_spaces.id", &ids).Error
	return ids, err
}

func (r *repository) List(ctx context.Context, filters ListFilters, cursor *pagination.Cursor, limit int) ([]models.Lease, *pagination.Cursor, error) {
	query := r.detailQuery(ctx).Model(&models.Lease{})
	if filters.UserID != nil {
		query = query.Where("leases.order_id IN (?)",
			r.db.WithContext(ctx).Model(&models.Order{}).Select("id").Where("user_id = ?", *filters.UserID))
	}
	if filters.StatusID != nil {
		query = query.Where("leases.status_id = ?", int(*filters.StatusID))
	}
	if filters.SpaceID != nil {
		query = query.Where("leases.media_space_id = ?", *filters.SpaceID)
	}
	if cursor != nil {
		query = query.Where("(leases.created_at, leases.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Lease
	if err := query.Order("leases.created_at DESC, leases.id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	page, next := pagination.Page(rows, limit, func(l models.Lease) pagination.Cursor {
		return pagination.Cursor{CreatedAt: l.CreatedAt, ID: l.ID}
	})
	return page, next, nil
}

// UpsertCampaignRedirect sets the redirect URL, creating the extra
// information row when the lease has none yet.
func (r *repository) UpsertCampaignRedirect(ctx context.Context, leaseID uuid.UUID, url string) error {
	extra := &models.LeaseExtraInformation{LeaseID: leaseID, CampaignRedirect: &url}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "lease_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"campaign_redirect", "updated_at"}),
		}).
		Create(extra).Error
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
