package notifications

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	"github.com/adspacehub/adspace-backend/pkg/enums"
	"github.com/adspacehub/adspace-backend/pkg/logger"
	"github.com/adspacehub/adspace-backend/pkg/mailer"
)

const statusChangedTitle = "Estado de Solicitud Actualizado"

// Campaign carries the extra-information fields rendered into emails.
type Campaign struct {
	ProviderInfo        string
	ProductDetails      string
	CampaignRedirect    string
	MarketingGoals      string
	Disclaimer          string
	ProductURL          string
	TargetAudience      string
	BrandGraphics       string
	ProviderContact     string
	GiftCampaignDetails string
	PlanALaMedida       string
	PlanALaMedidaAmount string
}

// Payload describes the lease a notification is about.
type Payload struct {
	LeaseID      uuid.UUID
	OrderUserID  uuid.UUID
	BrandID      uuid.UUID
	StoreName    string
	CustomerName string
	MediaType    string
	Dimensions   string
	StartDate    time.Time
	EndDate      time.Time
	Amount       decimal.Decimal
	Status       enums.LeaseStatus
	RedirectURL  string
	Campaign     Campaign
}

// PayloadFromLease flattens a lease loaded with its space, store, media item,
// order and extra information.
func PayloadFromLease(lease *models.Lease) Payload {
	if lease == nil {
		return Payload{}
	}
	p := Payload{
		LeaseID:      lease.ID,
		CustomerName: lease.CustomerName,
		StartDate:    lease.StartDate,
		EndDate:      lease.EndDate,
		Amount:       lease.Amount,
		Status:       lease.StatusID,
	}
	if lease.Order != nil {
		p.OrderUserID = lease.Order.UserID
	}
	if space := lease.MediaSpace; space != nil {
		if space.Store != nil {
			p.BrandID = space.Store.BrandID
			p.StoreName = space.Store.Name
		}
		if item := space.MediaItem; item != nil {
			p.MediaType = item.Type
			p.Dimensions = deref(item.Dimensions)
		}
	}
	if extra := lease.ExtraInformation; extra != nil {
		p.Campaign = Campaign{
			ProviderInfo:        deref(extra.ProviderInfo),
			ProductDetails:      deref(extra.ProductDetails),
			CampaignRedirect:    deref(extra.CampaignRedirect),
			MarketingGoals:      deref(extra.MarketingGoals),
			Disclaimer:          deref(extra.Disclaimer),
			ProductURL:          deref(extra.ProductURL),
			TargetAudience:      deref(extra.TargetAudience),
			BrandGraphics:       deref(extra.BrandGraphics),
			ProviderContact:     deref(extra.ProviderContact),
			GiftCampaignDetails: deref(extra.GiftCampaignDetails),
			PlanALaMedida:       deref(extra.PlanALaMedida),
		}
		if extra.PlanALaMedidaAmount != nil {
			p.Campaign.PlanALaMedidaAmount = extra.PlanALaMedidaAmount.StringFixed(2)
		}
		p.RedirectURL = p.Campaign.CampaignRedirect
	}
	return p
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

type settingsFinder interface {
	FindByBrand(ctx context.Context, brandID uuid.UUID) (*models.NotificationSetting, error)
}

type notificationCreator interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// DispatcherParams wires the dispatcher collaborators.
type DispatcherParams struct {
	Logger        *logger.Logger
	Mailer        mailer.Sender
	Settings      settingsFinder
	Notifications notificationCreator
	OpsEmail      string
	AppBaseURL    string
	Timeout       time.Duration
}

// Dispatcher delivers lease notifications in the background. Failures are
// logged and never reach the caller.
type Dispatcher struct {
	logg          *logger.Logger
	mailer        mailer.Sender
	settings      settingsFinder
	notifications notificationCreator
	opsEmail      string
	appBaseURL    string
	timeout       time.Duration
	wg            sync.WaitGroup
}

const defaultDispatchTimeout = 30 * time.Second

// NewDispatcher validates the collaborators and returns a dispatcher.
func NewDispatcher(params DispatcherParams) (*Dispatcher, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Mailer == nil {
		return nil, fmt.Errorf("mailer required")
	}
	if params.Settings == nil {
		return nil, fmt.Errorf("settings repository required")
	}
	if params.Notifications == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	timeout := params.Timeout
	if timeout <= 0 {
		timeout = defaultDispatchTimeout
	}
	return &Dispatcher{
		logg:          params.Logger,
		mailer:        params.Mailer,
		settings:      params.Settings,
		notifications: params.Notifications,
		opsEmail:      strings.TrimSpace(params.OpsEmail),
		appBaseURL:    strings.TrimRight(params.AppBaseURL, "/"),
		timeout:       timeout,
	}, nil
}

// Notify schedules delivery and returns immediately.
func (d *Dispatcher) Notify(ctx context.Context, kind enums.NotificationKind, payload Payload) {
	if d == nil {
		return
	}
	base := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		runCtx, cancel := context.WithTimeout(base, d.timeout)
		defer cancel()

		runCtx = d.logg.WithFields(runCtx, map[string]any{
			"notification_kind": string(kind),
			"lease_id":          payload.LeaseID.String(),
		})
		if err := d.Deliver(runCtx, kind, payload); err != nil {
			d.logg.Error(runCtx, "notification.dispatch_failed", err)
			return
		}
		d.logg.Debug(runCtx, "notification.dispatched")
	}()
}

// Wait blocks until every scheduled delivery has finished.
func (d *Dispatcher) Wait() {
	if d == nil {
		return
	}
	d.wg.Wait()
}

// Deliver runs a single notification synchronously.
func (d *Dispatcher) Deliver(ctx context.Context, kind enums.NotificationKind, payload Payload) error {
	switch kind {
	case enums.NotificationKindLeaseCreated:
		return d.deliverLeaseCreated(ctx, payload)
	case enums.NotificationKindCampaignRedirectPending, enums.NotificationKindCampaignRedirectUpdated:
		return d.sendEmail(ctx, kind, d.opsEmail, payload)
	case enums.NotificationKindStatusChanged:
		return d.deliverStatusChanged(ctx, payload)
	default:
		return errUnknownKind(kind)
	}
}

func (d *Dispatcher) deliverLeaseCreated(ctx context.Context, payload Payload) error {
	setting, err := d.settings.FindByBrand(ctx, payload.BrandID)
	if err != nil {
		return fmt.Errorf("load notification setting: %w", err)
	}
	if setting == nil || strings.TrimSpace(setting.Email) == "" {
		ctx = d.logg.WithField(ctx, "brand_id", payload.BrandID.String())
		d.logg.Info(ctx, "notification.no_brand_setting")
		return nil
	}
	return d.sendEmail(ctx, enums.NotificationKindLeaseCreated, setting.Email, payload)
}

func (d *Dispatcher) deliverStatusChanged(ctx context.Context, payload Payload) error {
	if payload.OrderUserID == uuid.Nil {
		return fmt.Errorf("order user required for status notification")
	}
	link := fmt.Sprintf("/leases/%s", payload.LeaseID)
	record := &models.Notification{
		UserID:  payload.OrderUserID,
		Type:    enums.NotificationTypeStatusChanged,
		Title:   statusChangedTitle,
		Message: fmt.Sprintf("La solicitud #%s ha sido movida a estado: %s", payload.LeaseID, payload.Status),
		Link:    &link,
	}
	if err := d.notifications.Create(ctx, record); err != nil {
		return fmt.Errorf("create status notification: %w", err)
	}
	return nil
}

func (d *Dispatcher) sendEmail(ctx context.Context, kind enums.NotificationKind, to string, payload Payload) error {
	if to == "" {
		return fmt.Errorf("no recipient configured for %s", kind)
	}
	body, err := renderBody(kind, emailView{
		Payload:      payload,
		RedirectLink: d.redirectLink(payload.LeaseID),
	})
	if err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}
	return d.mailer.Send(ctx, mailer.Message{
		To:      to,
		Subject: renderSubject(kind, payload),
		Text:    body,
	})
}

func (d *Dispatcher) redirectLink(leaseID uuid.UUID) string {
	return fmt.Sprintf("%s/redirecciondecampana/%s", d.appBaseURL, leaseID)
}

func errUnknownKind(kind enums.NotificationKind) error {
	return fmt.Errorf("unknown notification kind %q", kind)
}
