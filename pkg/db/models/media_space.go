package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// MediaSpace is a concrete leasable slot in a store. Status is a cached
// projection of the space's leases and is only written by the lease service.
type MediaSpace struct {
	ID          uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	StoreID     uuid.UUID         `gorm:"column:store_id;type:uuid;not null" json:"storeId"`
	MediaItemID uuid.UUID         `gorm:"column:media_item_id;type:uuid;not null" json:"mediaItemId"`
	Status      enums.SpaceStatus `gorm:"column:status;not null;default:'available'" json:"status"`
	PhotoURL    *string           `gorm:"column:photo_url" json:"photoUrl,omitempty"`
	Info        *string           `gorm:"column:info" json:"info,omitempty"`
	Store       *Store            `gorm:"foreignKey:StoreID" json:"store,omitempty"`
	MediaItem   *MediaItem        `gorm:"foreignKey:MediaItemID" json:"mediaItem,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt   time.Time         `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (s *MediaSpace) BeforeCreate(*gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
