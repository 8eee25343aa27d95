package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/identity-access/isolation-service/domain/entities"
	"loom/contexts/identity-access/isolation-service/ports"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository implements the directory, grant and policy ports against
// PostgreSQL.
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

func (r *Repository) GetUser(ctx context.Context, userID string) (ports.UserRecord, bool, error) {
	var row userModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(userID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.UserRecord{}, false, nil
		}
		return ports.UserRecord{}, false, r.logError("isolation_repo_get_user_failed", err,
			"user_id", strings.TrimSpace(userID),
		)
	}
	return ports.UserRecord{
		UserID:         row.ID,
		OrganizationID: row.OrganizationID,
		Role:           entities.Role(row.Role),
	}, true, nil
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
		return ports.OrganizationRecord{}, false, r.logError("isolation_repo_get_org_failed", err,
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

func (r *Repository) HasAnyGrant(
	ctx context.Context,
	granteeIDs []string,
	targetOrgID string,
	resourceType string,
) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&isolationGrantModel{}).
		Where("grantee_id IN ?", granteeIDs).
		Where("target_organization_id = ?", strings.TrimSpace(targetOrgID)).
		Where("resource_type = ?", strings.TrimSpace(resourceType)).
		Count(&count).
		Error
	if err != nil {
		return false, r.logError("isolation_repo_has_grant_failed", err,
			"target_organization_id", strings.TrimSpace(targetOrgID),
			"resource_type", strings.TrimSpace(resourceType),
		)
	}
	return count > 0, nil
}

func (r *Repository) CreateGrant(ctx context.Context, grant entities.IsolationGrant) error {
	row := isolationGrantModel{
		ID:                   grant.GrantID,
		GranteeID:            grant.GranteeID,
		TargetOrganizationID: grant.TargetOrganizationID,
		ResourceType:         grant.ResourceType,
		GrantedBy:            grant.GrantedBy,
		GrantedAt:            grant.GrantedAt,
	}
	create := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "grantee_id"}, {Name: "target_organization_id"}, {Name: "resource_type"}},
		DoNothing: true,
	}).Create(&row)
	if create.Error != nil {
		if isUniqueViolation(create.Error) {
			return nil
		}
		return r.logError("isolation_repo_create_grant_failed", create.Error,
			"grant_id", grant.GrantID,
			"grantee_id", grant.GranteeID,
		)
	}
	return nil
}

func (r *Repository) CreatePolicy(ctx context.Context, policy entities.IsolationPolicy) error {
	rules, err := json.Marshal(policy.PolicyRules)
	if err != nil {
		return err
	}
	row := isolationPolicyModel{
		ID:             policy.PolicyID,
		OrganizationID: policy.OrganizationID,
		PolicyType:     policy.PolicyType,
		PolicyName:     policy.PolicyName,
		PolicyRules:    string(rules),
		CreatedBy:      policy.CreatedBy,
		CreatedAt:      policy.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("isolation_repo_create_policy_failed", err,
			"policy_id", policy.PolicyID,
			"organization_id", policy.OrganizationID,
		)
	}
	return nil
}

func (r *Repository) ListPolicies(ctx context.Context, orgID string) ([]entities.IsolationPolicy, error) {
	var rows []isolationPolicyModel
	err := r.db.WithContext(ctx).
		Where("organization_id = ?", strings.TrimSpace(orgID)).
		Order("created_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, r.logError("isolation_repo_list_policies_failed", err,
			"organization_id", strings.TrimSpace(orgID),
		)
	}

	items := make([]entities.IsolationPolicy, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "identity-access/isolation-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("isolation repository operation failed", fields...)
	return err
}

type userModel struct {
	ID             string `gorm:"column:id;primaryKey"`
	OrganizationID string `gorm:"column:organization_id"`
	Role           string `gorm:"column:role"`
}

func (userModel) TableName() string {
	return "users"
}

type organizationModel struct {
	ID                   string  `gorm:"column:id;primaryKey"`
	Name                 string  `gorm:"column:name"`
	ParentOrganizationID *string `gorm:"column:parent_organization_id"`
}

func (organizationModel) TableName() string {
	return "organizations"
}

type isolationGrantModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	GranteeID            string    `gorm:"column:grantee_id"`
	TargetOrganizationID string    `gorm:"column:target_organization_id"`
	ResourceType         string    `gorm:"column:resource_type"`
	GrantedBy            string    `gorm:"column:granted_by"`
	GrantedAt            time.Time `gorm:"column:granted_at"`
}

func (isolationGrantModel) TableName() string {
	return "isolation_grants"
}

type isolationPolicyModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	OrganizationID string    `gorm:"column:organization_id"`
	PolicyType     string    `gorm:"column:policy_type"`
	PolicyName     string    `gorm:"column:policy_name"`
	PolicyRules    string    `gorm:"column:policy_rules"`
	CreatedBy      string    `gorm:"column:created_by"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (isolationPolicyModel) TableName() string {
	return "isolation_policies"
}

func (m isolationPolicyModel) toEntity() entities.IsolationPolicy {
	var rules json.RawMessage
	if err := json.Unmarshal([]byte(m.PolicyRules), &rules); err != nil {
		rules = json.RawMessage(m.PolicyRules)
	}
	return entities.IsolationPolicy{
		PolicyID:       m.ID,
		OrganizationID: m.OrganizationID,
		PolicyType:     m.PolicyType,
		PolicyName:     m.PolicyName,
		PolicyRules:    rules,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      m.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ ports.UserDirectory = (*Repository)(nil)
var _ ports.OrganizationDirectory = (*Repository)(nil)
var _ ports.GrantStore = (*Repository)(nil)
var _ ports.PolicyStore = (*Repository)(nil)
