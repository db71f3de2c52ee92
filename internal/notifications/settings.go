package notifications

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adspacehub/adspace-backend/pkg/db/models"
	pkgerrors "github.com/adspacehub/adspace-backend/pkg/errors"
)

// SettingsRepository persists the per-brand notification inbox.
type SettingsRepository interface {
	Upsert(ctx context.Context, setting *models.NotificationSetting) error
	FindByBrand(ctx context.Context, brandID uuid.UUID) (*models.NotificationSetting, error)
	List(ctx context.Context) ([]models.NotificationSetting, error)
}

type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository binds the settings repository to the provided database.
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{db: db}
}

// Upsert inserts the setting or replaces the email of the brand's existing row.
func (r *settingsRepository) Upsert(ctx context.Context, setting *models.NotificationSetting) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "brand_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"email", "updated_at"}),
		}).
		Create(setting).Error
}

// FindByBrand returns nil without error when the brand has no setting.
func (r *settingsRepository) FindByBrand(ctx context.Context, brandID uuid.UUID) (*models.NotificationSetting, error) {
	var setting models.NotificationSetting
	err := r.db.WithContext(ctx).Where("brand_id = ?", brandID).Take(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *settingsRepository) List(ctx context.Context) ([]models.NotificationSetting, error) {
	var settings []models.NotificationSetting
	err := r.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&settings).Error
	return settings, err
}

// SettingsService manages brand notification inboxes.
type SettingsService interface {
	UpsertSetting(ctx context.Context, brandID uuid.UUID, email string) (*models.NotificationSetting, error)
	ListSettings(ctx context.Context) ([]models.NotificationSetting, error)
}

type settingsService struct {
	repo     SettingsRepository
	validate *validator.Validate
}

func NewSettingsService(repo SettingsRepository) (SettingsService, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notification settings repository required")
	}
	return &settingsService{repo: repo, validate: validator.New()}, nil
}

func (s *settingsService) UpsertSetting(ctx context.Context, brandID uuid.UUID, email string) (*models.NotificationSetting, error) {
	if brandID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "brand id required")
	}
	email = strings.TrimSpace(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "valid email required").
			WithDetails(map[string]any{"email": email})
	}

	if err := s.repo.Upsert(ctx, &models.NotificationSetting{BrandID: brandID, Email: email}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upsert notification setting")
	}

	// the insert path may have been turned into an update, so read back the stored row
	stored, err := s.repo.FindByBrand(ctx, brandID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load notification setting")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "notification setting missing after upsert")
	}
	return stored, nil
}

func (s *settingsService) ListSettings(ctx context.Context) ([]models.NotificationSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list notification settings")
	}
	if settings == nil {
		settings = []models.NotificationSetting{}
	}
	return settings, nil
}
