package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/tenant-admin/feature-inheritance-service/domain/entities"
	"loom/contexts/tenant-admin/feature-inheritance-service/ports"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the directory and toggle ports against PostgreSQL.
type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) GetOrganization(ctx context.Context, orgID string) (ports.OrganizationRecord, bool, error) {
	var row organizationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(orgID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.OrganizationRecord{}, false, nil
		}
		return ports.OrganizationRecord{}, false, r.logError("feature_repo_get_org_failed", err,
			"organization_id", strings.TrimSpace(orgID),
		)
	}
	record := ports.OrganizationRecord{
		ID:   row.ID,
		Name: row.Name,
	}
	if row.ParentOrganizationID != nil {
		record.ParentID = *row.ParentOrganizationID
	}
	return record, true, nil
}

func (r *Repository) ListOwnToggles(ctx context.Context, orgID string) ([]entities.FeatureToggle, error) {
	var rows []featureToggleModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Order("feature_key ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("feature_repo_list_toggles_failed", err,
			"organization_id", strings.TrimSpace(orgID),
		)
	}

	items := make([]entities.FeatureToggle, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetOwnToggle(
	ctx context.Context,
	orgID string,
	featureKey string,
) (entities.FeatureToggle, bool, error) {
	var row featureToggleModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Where("feature_key = ?", strings.TrimSpace(featureKey)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.FeatureToggle{}, false, nil
		}
		return entities.FeatureToggle{}, false, r.logError("feature_repo_get_toggle_failed", err,
			"organization_id", strings.TrimSpace(orgID),
			"feature_key", strings.TrimSpace(featureKey),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpsertToggle(ctx context.Context, toggle entities.FeatureToggle) error {
	row := featureToggleModel{
		OrganizationID: toggle.OrganizationID,
		FeatureKey:     toggle.FeatureKey,
		Enabled:        toggle.Enabled,
		UpdatedBy:      toggle.UpdatedBy,
		UpdatedAt:      toggle.UpdatedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "organization_id"}, {Name: "feature_key"}},
		DoUpdates: clause.Assignments(map[string]any{
			"enabled":    row.Enabled,
			"updated_by": row.UpdatedBy,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row)
	if create.Error != nil {
		return r.logError("feature_repo_upsert_toggle_failed", create.Error,
			"organization_id", toggle.OrganizationID,
			"feature_key", toggle.FeatureKey,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "tenant-admin/feature-inheritance-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("feature inheritance repository operation failed", fields...)
	return err
}

type organizationModel struct {
	ID                   string  `gorm:"column:id;primaryKey"`
	Name                 string  `gorm:"column:name"`
	ParentOrganizationID *string `gorm:"column:parent_organization_id"`
}

func (organizationModel) TableName() string {
	return "organizations"
}

type featureToggleModel struct {
	OrganizationID string    `gorm:"column:organization_id;primaryKey"`
	FeatureKey     string    `gorm:"column:feature_key;primaryKey"`
	Enabled        bool      `gorm:"column:enabled"`
	UpdatedBy      string    `gorm:"column:updated_by"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (featureToggleModel) TableName() string {
	return "feature_toggles"
}

func (m featureToggleModel) toEntity() entities.FeatureToggle {
	return entities.FeatureToggle{
		OrganizationID: m.OrganizationID,
		FeatureKey:     m.FeatureKey,
		Enabled:        m.Enabled,
		UpdatedBy:      m.UpdatedBy,
		UpdatedAt:      m.UpdatedAt,
	}
}

var _ ports.OrganizationDirectory = (*Repository)(nil)
var _ ports.ToggleStore = (*Repository)(nil)
