package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// Lease reserves one media space for an inclusive date range.
type Lease struct {
	ID               uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MediaSpaceID     uuid.UUID              `gorm:"column:media_space_id;type:uuid;not null" json:"mediaSpaceId"`
	OrderID          uuid.UUID              `gorm:"column:order_id;type:uuid;not null" json:"orderId"`
	CustomerName     string                 `gorm:"column:customer_name;not null" json:"customerName"`
	StartDate        time.Time              `gorm:"column:start_date;type:date;not null" json:"startDate"`
	EndDate          time.Time              `gorm:"column:end_date;type:date;not null" json:"endDate"`
	Amount           decimal.Decimal        `gorm:"column:amount;type:numeric(12,2);not null;default:0" json:"amount"`
	StatusID         enums.LeaseStatus      `gorm:"column:status_id;not null;default:1" json:"statusId"`
	MediaSpace       *MediaSpace            `gorm:"foreignKey:MediaSpaceID" json:"mediaSpace,omitempty"`
	Order            *Order                 `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ExtraInformation *LeaseExtraInformation `gorm:"foreignKey:LeaseID" json:"extraInformation,omitempty"`
	CreatedAt        time.Time              `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt        time.Time              `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (l *Lease) BeforeCreate(*gorm.DB) error {
	ensureID(&l.ID)
	return nil
}

// IsActive reports whether the lease still occupies capacity.
func (l Lease) IsActive() bool {
	return l.StatusID.IsActive()
}
