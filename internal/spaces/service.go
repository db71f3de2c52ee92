// Package spaces manages the media space inventory of a store.
package spaces

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
	"github.com/adspacehub/adspace-backend/pkg/logger"
)

// MaxBatch caps how many spaces one AddSpaces call may create.
const MaxBatch = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type calendarInvalidator interface {
	Invalidate(ctx context.Context, spaceIDs ...uuid.UUID)
}

// Service exposes inventory operations.
type Service interface {
	AddSpaces(ctx context.Context, input AddSpacesInput) ([]models.MediaSpace, error)
	DeleteSpace(ctx context.Context, storeID, spaceID uuid.UUID) error
}

// AddSpacesInput describes a bulk creation for one store and media item.
type AddSpacesInput struct {
	StoreID     uuid.UUID `json:"storeId"`
	MediaItemID uuid.UUID `json:"mediaItemId"`
	Quantity    int       `json:"quantity"`
	PhotoURL    *string   `json:"photoUrl"`
	Info        *string   `json:"info"`
}

type service struct {
	logg  *logger.Logger
	db    txRunner
	repo  Repository
	cache calendarInvalidator
}

func NewService(logg *logger.Logger, db txRunner, repo Repository, cache calendarInvalidator) (Service, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	if db == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("spaces repository required")
	}
	return &service{logg: logg, db: db, repo: repo, cache: cache}, nil
}

func (s *service) AddSpaces(ctx context.Context, input AddSpacesInput) ([]models.MediaSpace, error) {
	if input.StoreID == uuid.Nil || input.MediaItemID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store id and media item id required")
	}
	if input.Quantity < 1 || input.Quantity > MaxBatch {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", MaxBatch)).
			WithDetails(map[string]any{"quantity": input.Quantity})
	}

	var created []models.MediaSpace
	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.FindStore(ctx, input.StoreID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "store not found")
			}
			return err
		}
		if _, err := repo.FindMediaItem(ctx, input.MediaItemID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "media item not found")
			}
			return err
		}

		created = make([]models.MediaSpace, input.Quantity)
		for i := range created {
			created[i] = models.MediaSpace{
				StoreID:     input.StoreID,
				MediaItemID: input.MediaItemID,
				Status:      enums.SpaceStatusAvailable,
				PhotoURL:    input.PhotoURL,
				Info:        input.Info,
			}
		}
		return repo.CreateSpaces(ctx, created)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create media spaces")
	}

	logCtx := s.logg.WithFields(ctx, map[string]any{
		"store_id":      input.StoreID.String(),
		"media_item_id": input.MediaItemID.String(),
		"quantity":      input.Quantity,
	})
	s.logg.Info(logCtx, "spaces.created")
	return created, nil
}

// DeleteSpace refuses while the space still has a non-Completado lease.
func (s *service) DeleteSpace(ctx context.Context, storeID, spaceID uuid.UUID) error {
	if storeID == uuid.Nil || spaceID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "store id and space id required")
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockSpace(ctx, storeID, spaceID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "media space not found").
					WithDetails(map[string]any{"spaceId": spaceID})
			}
			return err
		}
		active, err := repo.CountActiveLeases(ctx, spaceID)
		if err != nil {
			return err
		}
		if active > 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "media space has active leases").
				WithDetails(map[string]any{"spaceId": spaceID, "activeLeases": active})
		}
		return repo.DeleteSpace(ctx, spaceID)
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete media space")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, spaceID)
	}
	s.logg.Info(s.logg.WithSpaceID(ctx, spaceID.String()), "spaces.deleted")
	return nil
}
