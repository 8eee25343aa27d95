package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
	domainerrors "loom/contexts/content-sharing/sharing-workflow-service/domain/errors"
	"loom/contexts/content-sharing/sharing-workflow-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Repository implements the sharing, item, directory and outbox ports
// against PostgreSQL. A partial unique index on
// (source, target, feature_key, item_id) where status <> 'rejected'
// backstops the duplicate-request invariant.
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
		return ports.OrganizationRecord{}, false, r.logError("sharing_repo_get_org_failed", err,
			"organization_id", strings.TrimSpace(orgID),
		)
	}
	return ports.OrganizationRecord{
		ID:       row.ID,
		Name:     row.Name,
		ParentID: row.ParentOrganizationID,
	}, true, nil
}

func (r *Repository) ListChildOrganizations(ctx context.Context, parentOrgID string) ([]ports.OrganizationRecord, error) {
	var rows []organizationModel
	err := r.db.WithContext(ctx).
		Where("parent_organization_id = ?", strings.TrimSpace(parentOrgID)).
		Order("id ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("sharing_repo_list_children_failed", err,
			"organization_id", strings.TrimSpace(parentOrgID),
		)
	}
	children := make([]ports.OrganizationRecord, 0, len(rows))
	for _, row := range rows {
		children = append(children, ports.OrganizationRecord{
			ID:       row.ID,
			Name:     row.Name,
			ParentID: row.ParentOrganizationID,
		})
	}
	return children, nil
}

func (r *Repository) FindActiveRequest(
	ctx context.Context,
	sourceOrgID string,
	targetOrgID string,
	featureKey string,
	itemID string,
) (entities.SharingRequest, bool, error) {
	var row sharingRequestModel
	err := r.db.WithContext(ctx).
		Where("source_organization_id = ?", sourceOrgID).
		Where("target_organization_id = ?", targetOrgID).
		Where("feature_key = ?", featureKey).
		Where("item_id = ?", itemID).
		Where("status IN ?", []string{entities.StatusPending, entities.StatusApproved}).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SharingRequest{}, false, nil
		}
		return entities.SharingRequest{}, false, r.logError("sharing_repo_find_active_failed", err,
			"source_organization_id", sourceOrgID,
			"target_organization_id", targetOrgID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) CreateRequest(ctx context.Context, request entities.SharingRequest) error {
	row := sharingRequestModelFromEntity(request)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrSharingRequestExists
		}
		return r.logError("sharing_repo_create_failed", err,
			"sharing_id", request.SharingID,
		)
	}
	return nil
}

func (r *Repository) GetRequest(ctx context.Context, sharingID string) (entities.SharingRequest, bool, error) {
	var row sharingRequestModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(sharingID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.SharingRequest{}, false, nil
		}
		return entities.SharingRequest{}, false, r.logError("sharing_repo_get_failed", err,
			"sharing_id", strings.TrimSpace(sharingID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) UpdateRequest(ctx context.Context, request entities.SharingRequest) error {
	row := sharingRequestModelFromEntity(request)
	update := r.db.WithContext(ctx).Model(&sharingRequestModel{}).
		Where("id = ?", request.SharingID).
		Updates(map[string]any{
			"status":           row.Status,
			"approved_by":      row.ApprovedBy,
			"rejected_by":      row.RejectedBy,
			"rejection_reason": row.RejectionReason,
			"updated_at":       row.UpdatedAt,
			"resolved_at":      row.ResolvedAt,
		})
	if update.Error != nil {
		return r.logError("sharing_repo_update_failed", update.Error,
			"sharing_id", request.SharingID,
		)
	}
	if update.RowsAffected == 0 {
		return domainerrors.ErrSharingRequestNotFound
	}
	return nil
}

func (r *Repository) ListPendingByTarget(ctx context.Context, targetOrgID string, featureKey string) ([]entities.SharingRequest, error) {
	query := r.db.WithContext(ctx).
		Where("target_organization_id = ?", strings.TrimSpace(targetOrgID)).
		Where("status = ?", entities.StatusPending)
	if featureKey != "" {
		query = query.Where("feature_key = ?", featureKey)
	}

	var rows []sharingRequestModel
	if err := query.Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, r.logError("sharing_repo_list_pending_failed", err,
			"target_organization_id", strings.TrimSpace(targetOrgID),
		)
	}
	items := make([]entities.SharingRequest, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) CountSharingStats(ctx context.Context, orgID string) (entities.HierarchySharingStats, error) {
	orgID = strings.TrimSpace(orgID)
	stats := entities.HierarchySharingStats{OrganizationID: orgID}

	counts := []struct {
		target *int64
		query  *gorm.DB
	}{
		{&stats.OutgoingRequests, r.db.WithContext(ctx).Model(&sharingRequestModel{}).
			Where("source_organization_id = ?", orgID)},
		{&stats.IncomingRequests, r.db.WithContext(ctx).Model(&sharingRequestModel{}).
			Where("target_organization_id = ?", orgID)},
		{&stats.PendingRequests, r.db.WithContext(ctx).Model(&sharingRequestModel{}).
			Where("status = ?", entities.StatusPending).
			Where("source_organization_id = ? OR target_organization_id = ?", orgID, orgID)},
	}
	for _, count := range counts {
		if err := count.query.Count(count.target).Error; err != nil {
			return entities.HierarchySharingStats{}, r.logError("sharing_repo_stats_failed", err,
				"organization_id", orgID,
			)
		}
	}
	return stats, nil
}

func (r *Repository) GetItem(ctx context.Context, orgID string, featureKey string, itemID string) (entities.ContextItem, bool, error) {
	var row contextItemModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", orgID).
		Where("feature_key = ?", featureKey).
		Where("id = ?", itemID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.ContextItem{}, false, nil
		}
		return entities.ContextItem{}, false, r.logError("sharing_repo_get_item_failed", err,
			"organization_id", orgID,
			"item_id", itemID,
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) InsertCopy(ctx context.Context, item entities.ContextItem) error {
	row := contextItemModelFromEntity(item)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("sharing_repo_insert_copy_failed", err,
			"organization_id", item.OrganizationID,
			"item_id", item.ItemID,
		)
	}
	return nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message ports.OutboxMessage) error {
	row := outboxModel{
		OutboxID:  message.OutboxID,
		EventType: message.EventType,
		Payload:   message.Payload,
		CreatedAt: message.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("sharing_repo_outbox_append_failed", err,
			"outbox_id", message.OutboxID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]ports.OutboxMessage, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("sharing_repo_outbox_list_failed", err)
	}
	messages := make([]ports.OutboxMessage, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, ports.OutboxMessage{
			OutboxID:  row.OutboxID,
			EventType: row.EventType,
			Payload:   row.Payload,
			CreatedAt: row.CreatedAt,
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	update := r.db.WithContext(ctx).Model(&outboxModel{}).
		Where("id = ?", outboxID).
		Update("published_at", publishedAt)
	if update.Error != nil {
		return r.logError("sharing_repo_outbox_mark_failed", update.Error,
			"outbox_id", outboxID,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "content-sharing/sharing-workflow-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("sharing repository operation failed", fields...)
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

type sharingRequestModel struct {
	ID                   string     `gorm:"column:id;primaryKey"`
	SourceOrganizationID string     `gorm:"column:source_organization_id"`
	TargetOrganizationID string     `gorm:"column:target_organization_id"`
	FeatureKey           string     `gorm:"column:feature_key"`
	ItemID               string     `gorm:"column:item_id"`
	SharingType          string     `gorm:"column:sharing_type"`
	Status               string     `gorm:"column:status"`
	SharedBy             string     `gorm:"column:shared_by"`
	ApprovedBy           string     `gorm:"column:approved_by"`
	RejectedBy           string     `gorm:"column:rejected_by"`
	RejectionReason      string     `gorm:"column:rejection_reason"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
	ResolvedAt           *time.Time `gorm:"column:resolved_at"`
}

func (sharingRequestModel) TableName() string {
	return "sharing_requests"
}

func (m sharingRequestModel) toEntity() entities.SharingRequest {
	return entities.SharingRequest{
		SharingID:            m.ID,
		SourceOrganizationID: m.SourceOrganizationID,
		TargetOrganizationID: m.TargetOrganizationID,
		FeatureKey:           m.FeatureKey,
		ItemID:               m.ItemID,
		SharingType:          m.SharingType,
		Status:               m.Status,
		SharedBy:             m.SharedBy,
		ApprovedBy:           m.ApprovedBy,
		RejectedBy:           m.RejectedBy,
		RejectionReason:      m.RejectionReason,
		CreatedAt:            m.CreatedAt,
		UpdatedAt:            m.UpdatedAt,
		ResolvedAt:           m.ResolvedAt,
	}
}

func sharingRequestModelFromEntity(request entities.SharingRequest) sharingRequestModel {
	return sharingRequestModel{
		ID:                   request.SharingID,
		SourceOrganizationID: request.SourceOrganizationID,
		TargetOrganizationID: request.TargetOrganizationID,
		FeatureKey:           request.FeatureKey,
		ItemID:               request.ItemID,
		SharingType:          request.SharingType,
		Status:               request.Status,
		SharedBy:             request.SharedBy,
		ApprovedBy:           request.ApprovedBy,
		RejectedBy:           request.RejectedBy,
		RejectionReason:      request.RejectionReason,
		CreatedAt:            request.CreatedAt,
		UpdatedAt:            request.UpdatedAt,
		ResolvedAt:           request.ResolvedAt,
	}
}

type contextItemModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OrganizationID string    `gorm:"column:organization_id"`
	FeatureKey     string    `gorm:"column:feature_key"`
	Title          string    `gorm:"column:title"`
	Content        string    `gorm:"column:content"`
	CopiedFrom     string    `gorm:"column:copied_from"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (contextItemModel) TableName() string {
	return "context_items"
}

func (m contextItemModel) toEntity() entities.ContextItem {
	return entities.ContextItem{
		ItemID:         m.ID,
		OrganizationID: m.OrganizationID,
		FeatureKey:     m.FeatureKey,
		Title:          m.Title,
		Content:        m.Content,
		CopiedFrom:     m.CopiedFrom,
		CreatedAt:      m.CreatedAt,
	}
}

func contextItemModelFromEntity(item entities.ContextItem) contextItemModel {
	return contextItemModel{
		ID:             item.ItemID,
		OrganizationID: item.OrganizationID,
		FeatureKey:     item.FeatureKey,
		Title:          item.Title,
		Content:        item.Content,
		CopiedFrom:     item.CopiedFrom,
		CreatedAt:      item.CreatedAt,
	}
}

type outboxModel struct {
	OutboxID    string     `gorm:"column:id;primaryKey"`
	EventType   string     `gorm:"column:event_type"`
	Payload     []byte     `gorm:"column:payload"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	PublishedAt *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "sharing_outbox"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var (
	_ ports.OrganizationDirectory = (*Repository)(nil)
	_ ports.SharingStore          = (*Repository)(nil)
	_ ports.ContextItemStore      = (*Repository)(nil)
	_ ports.OutboxWriter          = (*Repository)(nil)
	_ ports.OutboxRepository      = (*Repository)(nil)
)
