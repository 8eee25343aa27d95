package ports

import (
	"context"
	"time"

	"loom/contexts/identity-access/isolation-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts UUID generation for grant/policy rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// UserRecord is the directory view of a principal.
type UserRecord struct {
	UserID         string
	OrganizationID string
	Role           entities.Role
}

// UserDirectory resolves a user's home organization and role. The
// directory is an external collaborator; absence is reported via the
// boolean, not an error.
type UserDirectory interface {
	GetUser(ctx context.Context, userID string) (UserRecord, bool, error)
}

// OrganizationRecord is the directory view of an organization node.
type OrganizationRecord struct {
	ID       string
	Name     string
	ParentID string
}

// OrganizationDirectory supplies organization lookups by id.
type OrganizationDirectory interface {
	GetOrganization(ctx context.Context, orgID string) (OrganizationRecord, bool, error)
}

// GrantStore persists explicit cross-tenant grants. HasAnyGrant matches
// any of the supplied grantee ids (user id, home organization id).
type GrantStore interface {
	HasAnyGrant(ctx context.Context, granteeIDs []string, targetOrgID string, resourceType string) (bool, error)
	CreateGrant(ctx context.Context, grant entities.IsolationGrant) error
}

// PolicyStore persists named isolation policy records per organization.
type PolicyStore interface {
	CreatePolicy(ctx context.Context, policy entities.IsolationPolicy) error
	ListPolicies(ctx context.Context, orgID string) ([]entities.IsolationPolicy, error)
}
