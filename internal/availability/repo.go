package availability

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/internal/capacity"
	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// Repository reads spaces and their active leases.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// Space loads a media space with its media item. Missing rows return
// gorm.ErrRecordNotFound.
func (r *Repository) Space(ctx context.Context, spaceID uuid.UUID) (*models.MediaSpace, error) {
	var space models.MediaSpace
	if err := r.db.WithContext(ctx).Preload("MediaItem").Where("id = ?", spaceID).First(&space).Error; err != nil {
		return nil, err
	}
	return &space, nil
}

// ActiveSpans returns the non-Completado leases of a space overlapping [from, to].
func (r *Repository) ActiveSpans(ctx context.Context, spaceID uuid.UUID, from, to time.Time) ([]capacity.Span, error) {
	var rows []models.Lease
	err := r.db.WithContext(ctx).
		Model(&models.Lease{}).
		Select("start_date", "end_date", "status_id").
		Where("media_space_id = ? AND status_id <> ?", spaceID, int(enums.LeaseStatusCompletado)).
		Where("start_date <= ? AND end_date >= ?", to, from).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	spans := make([]capacity.Span, len(rows))
	for i, row := range rows {
		spans[i] = capacity.Span{Start: row.StartDate, End: row.EndDate, Status: row.StatusID}
	}
	return spans, nil
}
