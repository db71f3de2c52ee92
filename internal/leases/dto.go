package leases

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
)

// ExtraInformationInput is the campaign metadata captured with a lease.
type ExtraInformationInput struct {
	ProviderInfo        *string          `json:"providerInfo"`
	ProductDetails      *string          `json:"productDetails"`
	CampaignRedirect    *string          `json:"campaignRedirect"`
	MarketingGoals      *string          `json:"marketingGoals"`
	Disclaimer          *string          `json:"disclaimer"`
	ProductURL          *string          `json:"productUrl"`
	TargetAudience      *string          `json:"targetAudience"`
	BrandGraphics       *string          `json:"brandGraphics"`
	ProviderContact     *string          `json:"providerContact"`
	BillingType         []string         `json:"billingType"`
	GiftCampaignDetails *string          `json:"giftCampaignDetails"`
	PlanALaMedida       *string          `json:"planAlaMedida"`
	PlanALaMedidaAmount *decimal.Decimal `json:"planAlaMedidaAmount"`
}

func (in *ExtraInformationInput) toModel(leaseID uuid.UUID) *models.LeaseExtraInformation {
	extra := &models.LeaseExtraInformation{LeaseID: leaseID}
	if in == nil {
		return extra
	}
	extra.ProviderInfo = trimmed(in.ProviderInfo)
	extra.ProductDetails = trimmed(in.ProductDetails)
	extra.CampaignRedirect = trimmed(in.CampaignRedirect)
	extra.MarketingGoals = trimmed(in.MarketingGoals)
	extra.Disclaimer = trimmed(in.Disclaimer)
	extra.ProductURL = trimmed(in.ProductURL)
	extra.TargetAudience = trimmed(in.TargetAudience)
	extra.BrandGraphics = trimmed(in.BrandGraphics)
	extra.ProviderContact = trimmed(in.ProviderContact)
	extra.GiftCampaignDetails = trimmed(in.GiftCampaignDetails)
	extra.PlanALaMedida = trimmed(in.PlanALaMedida)
	extra.PlanALaMedidaAmount = in.PlanALaMedidaAmount
	if len(in.BillingType) > 0 {
		extra.BillingType = pq.StringArray(in.BillingType)
	}
	return extra
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}

// CreateLeaseInput describes one lease to add to an existing order.
type CreateLeaseInput struct {
	SpaceID      uuid.UUID
	OrderID      uuid.UUID
	CustomerName string
	StartDate    time.Time
	EndDate      time.Time
	Amount       decimal.Decimal
	Extra        *ExtraInformationInput
}

// CheckoutItem is one cart line turned into a lease.
type CheckoutItem struct {
	SpaceID      uuid.UUID
	CustomerName string
	StartDate    time.Time
	EndDate      time.Time
	Amount       decimal.Decimal
	Extra        *ExtraInformationInput
}

// CheckoutResult is the order and the leases created by a checkout.
type CheckoutResult struct {
	Order  models.Order   `json:"order"`
	Leases []models.Lease `json:"leases"`
}

// SweepResult summarises one expiry sweep.
type SweepResult struct {
	CompletedCount    int `json:"completedCount"`
	UpdatedSpaceCount int `json:"updatedSpaceCount"`
}

// Viewer identifies who is reading leases.
type Viewer struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// ListFilters narrows a lease listing.
type ListFilters struct {
	UserID   *uuid.UUID
	StatusID *enums.LeaseStatus
	SpaceID  *uuid.UUID
}

// ListParams configures pagination for leases.
type ListParams struct {
	Filters ListFilters
	Limit   int
	Cursor  string
}

// ListResult wraps returned leases and the cursor for the next page.
type ListResult struct {
	Items  []models.Lease `json:"items"`
	Cursor string         `json:"cursor"`
}
