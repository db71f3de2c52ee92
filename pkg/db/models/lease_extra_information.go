package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CampaignRedirectGrouped marks campaigns whose redirect URL is assigned later
// by operations.
const CampaignRedirectGrouped = "Agrupado"

// LeaseExtraInformation carries the campaign metadata captured at checkout.
type LeaseExtraInformation struct {
	ID                  uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LeaseID             uuid.UUID        `gorm:"column:lease_id;type:uuid;not null;uniqueIndex" json:"leaseId"`
	ProviderInfo        *string          `gorm:"column:provider_info" json:"providerInfo,omitempty"`
	ProductDetails      *string          `gorm:"column:product_details" json:"productDetails,omitempty"`
	CampaignRedirect    *string          `gorm:"column:campaign_redirect" json:"campaignRedirect,omitempty"`
	MarketingGoals      *string          `gorm:"column:marketing_goals" json:"marketingGoals,omitempty"`
	Disclaimer          *string          `gorm:"column:disclaimer" json:"disclaimer,omitempty"`
	ProductURL          *string          `gorm:"column:product_url" json:"productUrl,omitempty"`
	TargetAudience      *string          `gorm:"column:target_audience" json:"targetAudience,omitempty"`
	BrandGraphics       *string          `gorm:"column:brand_graphics" json:"brandGraphics,omitempty"`
	ProviderContact     *string          `gorm:"column:provider_contact" json:"providerContact,omitempty"`
	BillingType         pq.StringArray   `gorm:"column:billing_type;type:text[]" json:"billingType"`
	GiftCampaignDetails *string          `gorm:"column:gift_campaign_details" json:"giftCampaignDetails,omitempty"`
	PlanALaMedida       *string          `gorm:"column:plan_a_la_medida" json:"planAlaMedida,omitempty"`
	PlanALaMedidaAmount *decimal.Decimal `gorm:"column:plan_a_la_medida_amount;type:numeric(12,2)" json:"planAlaMedidaAmount,omitempty"`
	CreatedAt           time.Time        `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
	UpdatedAt           time.Time        `gorm:"column:updated_at;autoUpdateTime" json:"updatedAt"`
}

func (LeaseExtraInformation) TableName() string {
	return "lease_extra_information"
}

func (e *LeaseExtraInformation) BeforeCreate(*gorm.DB) error {
	ensureID(&e.ID)
	return nil
}

// IsGroupedRedirect reports whether the campaign waits for a grouped redirect URL.
func (e *LeaseExtraInformation) IsGroupedRedirect() bool {
	return e != nil && e.CampaignRedirect != nil && *e.CampaignRedirect == CampaignRedirectGrouped
}
