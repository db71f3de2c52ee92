package spaces

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// Repository persists media spaces.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error)
	FindMediaItem(ctx context.Context, itemID uuid.UUID) (*models.MediaItem, error)
	CreateSpaces(ctx context.Context, spaces []models.MediaSpace) error
	LockSpace(ctx context.Context, storeID, spaceID uuid.UUID) (*models.MediaSpace, error)
	CountActiveLeases(ctx context.Context, spaceID uuid.UUID) (int64, error)
	DeleteSpace(ctx context.Context, spaceID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindStore(ctx context.Context, storeID uuid.UUID) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", storeID).First(&store).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *repository) FindMediaItem(ctx context.Context, itemID uuid.UUID) (*models.MediaItem, error) {
	var item models.MediaItem
	if err := r.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateSpaces(ctx context.Context, spaces []models.MediaSpace) error {
	if len(spaces) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(&spaces).Error
}

// LockSpace loads the space scoped to its store and holds its row lock for
// the rest of the transaction.
func (r *repository) LockSpace(ctx context.Context, storeID, spaceID uuid.UUID) (*models.MediaSpace, error) {
	var space models.MediaSpace
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND store_id = ?", spaceID, storeID).
		First(&space).Error
	if err != nil {
		return nil, err
	}
	return &space, nil
}

func (r *repository) CountActiveLeases(ctx context.Context, spaceID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Where("media_space_id = ? AND status_id <> ?", spaceID, int(enums.LeaseStatusCompletado)).
		Count(&count).Error
	return count, err
}

// DeleteSpace removes the completed leases still pointing at the space and
// then the space itself.
func (r *repository) DeleteSpace(ctx context.Context, spaceID uuid.UUID) error {
	completed := r.db.WithContext(ctx).Model(&models.Lease{}).Select("id").Where("media_space_id = ?", spaceID)
	if err := r.db.WithContext(ctx).Where("lease_id IN (?)", completed).Delete(&models.LeaseExtraInformation{}).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Where("media_space_id = ?", spaceID).Delete(&models.Lease{}).Error; err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("id = ?", spaceID).Delete(&models.MediaSpace{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
