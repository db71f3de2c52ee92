package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MediaItem is the catalog template a media space instantiates.
type MediaItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type              string          `gorm:"column:type;not null" json:"type"`
	Dimensions        *string         `gorm:"column:dimensions" json:"dimensions,omitempty"`
	Format            *string         `gorm:"column:format" json:"format,omitempty"`
	BasePrice         decimal.Decimal `gorm:"column:base_price;type:numeric(12,2);not null;default:0" json:"basePrice"`
	LeaseDurationDays int             `gorm:"column:lease_duration_days;not null;default:1" json:"leaseDurationDays"`
	Capacity          *int            `gorm:"column:capacity" json:"capacity,omitempty"`
	CreatedAt         time.Time       `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt         time.Time       `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (m *MediaItem) BeforeCreate(*gorm.DB) error {
	ensureID(&m.ID)
	return nil
}

// EffectiveCapacity returns the number of concurrent leases allowed per day.
func (m MediaItem) EffectiveCapacity() int {
	if m.Capacity == nil || *m.Capacity <= 0 {
		return 1
	}
	return *m.Capacity
}

// CycleDays returns the lease-duration block length in days.
func (m MediaItem) CycleDays() int {
	if m.LeaseDurationDays <= 0 {
		return 1
	}
	return m.LeaseDurationDays
}
