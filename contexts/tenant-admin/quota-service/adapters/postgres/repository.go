package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/tenant-admin/quota-service/domain/entities"
	"loom/contexts/tenant-admin/quota-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the quota store port against PostgreSQL. The
// reserve path is a single conditional UPDATE so concurrent callers
// cannot jointly exceed a limit.
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

func (r *Repository) GetQuotas(ctx context.Context, orgID string) (entities.OrganizationQuota, bool, error) {
	var row quotaModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OrganizationQuota{}, false, nil
		}
		return entities.OrganizationQuota{}, false, r.logError("quota_repo_get_failed", err,
			"organization_id", strings.TrimSpace(orgID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CreateQuotas(ctx context.Context, quota entities.OrganizationQuota) error {
	row := quotaModelFromEntity(quota)
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "organization_id"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("quota_repo_create_failed", create.Error,
			"organization_id", quota.OrganizationID,
		)
	}
	return nil
}

func (r *Repository) UpdateUsage(
	ctx context.Context,
	orgID string,
	resourceClass string,
	newValue int64,
	now time.Time,
) (bool, error) {
	column, ok := usedColumn(resourceClass)
	if !ok {
		return false, nil
	}
	update := r.db.WithContext(ctx).Model(&quotaModel{}).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Updates(map[string]any{
			column:       newValue,
			"updated_at": now,
		})
	if update.Error != nil {
		return false, r.logError("quota_repo_update_usage_failed", update.Error,
			"organization_id", strings.TrimSpace(orgID),
			"quota_type", resourceClass,
		)
	}
	return update.RowsAffected > 0, nil
}

func (r *Repository) ReserveUsage(
	ctx context.Context,
	orgID string,
	resourceClass string,
	quantity int64,
	now time.Time,
) (entities.OrganizationQuota, bool, error) {
	column, ok := usedColumn(resourceClass)
	if !ok {
		quota, _, err := r.GetQuotas(ctx, orgID)
		return quota, true, err
	}
	limitColumn := strings.TrimSuffix(column, "_used") + "_limit"

	update := r.db.WithContext(ctx).Model(&quotaModel{}).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Where(column+" + ? <= "+limitColumn, quantity).
		Updates(map[string]any{
			column:       gorm.Expr(column+" + ?", quantity),
			"updated_at": now,
		})
	if update.Error != nil {
		return entities.OrganizationQuota{}, false, r.logError("quota_repo_reserve_failed", update.Error,
			"organization_id", strings.TrimSpace(orgID),
			"quota_type", resourceClass,
		)
	}

	quota, found, err := r.GetQuotas(ctx, orgID)
	if err != nil {
		return entities.OrganizationQuota{}, false, err
	}
	if !found {
		return entities.OrganizationQuota{}, false, nil
	}
	return quota, update.RowsAffected > 0, nil
}

func (r *Repository) ResetUsage(ctx context.Context, orgID string, resourceClasses []string, now time.Time) error {
	assignments := map[string]any{"updated_at": now}
	for _, class := range resourceClasses {
		if column, ok := usedColumn(class); ok {
			assignments[column] = int64(0)
		}
	}
	update := r.db.WithContext(ctx).Model(&quotaModel{}).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Updates(assignments)
	if update.Error != nil {
		return r.logError("quota_repo_reset_failed", update.Error,
			"organization_id", strings.TrimSpace(orgID),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "tenant-admin/quota-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("quota repository operation failed", fields...)
	return err
}

// usedColumn maps a resource class to its usage column. Class names come
// from the domain constants, never from raw request input.
func usedColumn(resourceClass string) (string, bool) {
	switch resourceClass {
	case entities.ClassContextItems:
		return "context_items_used", true
	case entities.ClassGlobalAccess:
		return "global_access_used", true
	case entities.ClassSharingRequests:
		return "sharing_requests_used", true
	default:
		return "", false
	}
}

type quotaModel struct {
	OrganizationID       string    `gorm:"column:organization_id;primaryKey"`
	ContextItemsUsed     int64     `gorm:"column:context_items_used"`
	ContextItemsLimit    int64     `gorm:"column:context_items_limit"`
	GlobalAccessUsed     int64     `gorm:"column:global_access_used"`
	GlobalAccessLimit    int64     `gorm:"column:global_access_limit"`
	SharingRequestsUsed  int64     `gorm:"column:sharing_requests_used"`
	SharingRequestsLimit int64     `gorm:"column:sharing_requests_limit"`
	UpdatedAt            time.Time `gorm:"column:updated_at"`
}

func (quotaModel) TableName() string {
	return "organization_quotas"
}

func (m quotaModel) toEntity() entities.OrganizationQuota {
	return entities.OrganizationQuota{
		OrganizationID:  m.OrganizationID,
		ContextItems:    entities.Counter{Current: m.ContextItemsUsed, Max: m.ContextItemsLimit},
		GlobalAccess:    entities.Counter{Current: m.GlobalAccessUsed, Max: m.GlobalAccessLimit},
		SharingRequests: entities.Counter{Current: m.SharingRequestsUsed, Max: m.SharingRequestsLimit},
		UpdatedAt:       m.UpdatedAt,
	}
}

func quotaModelFromEntity(quota entities.OrganizationQuota) quotaModel {
	return quotaModel{
		OrganizationID:       quota.OrganizationID,
		ContextItemsUsed:     quota.ContextItems.Current,
		ContextItemsLimit:    quota.ContextItems.Max,
		GlobalAccessUsed:     quota.GlobalAccess.Current,
		GlobalAccessLimit:    quota.GlobalAccess.Max,
		SharingRequestsUsed:  quota.SharingRequests.Current,
		SharingRequestsLimit: quota.SharingRequests.Max,
		UpdatedAt:            quota.UpdatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.QuotaStore = (*Repository)(nil)
