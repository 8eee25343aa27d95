package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/identity-access/isolation-service/domain/entities"
	domainerrors "loom/contexts/identity-access/isolation-service/domain/errors"
	"loom/contexts/identity-access/isolation-service/ports"
)

// Service is the isolation enforcer use-case layer. Every decision path
// that touches persistence fails closed: a store error never widens
// access.
type Service struct {
	Users         ports.UserDirectory
	Organizations ports.OrganizationDirectory
	Grants        ports.GrantStore
	Policies      ports.PolicyStore
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// CanAccessOrganization reports whether a principal may act on the target
// organization: same org, system_admin, or (when requested) a single-level
// descendant of the principal's organization. Directory errors degrade to
// denied.
func (s Service) CanAccessOrganization(
	ctx context.Context,
	principal entities.Principal,
	targetOrgID string,
	checkDescendants bool,
) bool {
	if principal.OrganizationID != "" && principal.OrganizationID == targetOrgID {
		return true
	}
	if principal.Role.HasRole(entities.RoleSystemAdmin) {
		return true
	}
	if !checkDescendants {
		return false
	}

	target, found, err := s.Organizations.GetOrganization(ctx, targetOrgID)
	if err != nil {
		ResolveLogger(s.Logger).Warn("descendant lookup failed, access denied",
			"event", "isolation_descendant_lookup_failed",
			"module", "identity-access/isolation-service",
			"layer", "application",
			"target_organization_id", targetOrgID,
			"error", err.Error(),
		)
		return false
	}
	if !found {
		return false
	}
	return target.ParentID != "" && target.ParentID == principal.OrganizationID
}

// EnforceTenantIsolation decides whether a user may touch a resource owned
// by the target organization.
func (s Service) EnforceTenantIsolation(
	ctx context.Context,
	userID string,
	targetOrgID string,
	resourceType string,
	resourceID string,
) (entities.AccessDecision, error) {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(userID) == "" {
		return entities.AccessDecision{}, domainerrors.ErrInvalidUserID
	}
	if strings.TrimSpace(targetOrgID) == "" {
		return entities.AccessDecision{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(resourceType) == "" {
		return entities.AccessDecision{}, domainerrors.ErrInvalidResourceType
	}

	now := s.now()
	user, found, err := s.Users.GetUser(ctx, userID)
	if err != nil || !found {
		if err != nil {
			logger.Error("user directory lookup failed",
				"event", "isolation_user_lookup_failed",
				"module", "identity-access/isolation-service",
				"layer", "application",
				"user_id", userID,
				"error", err.Error(),
			)
		}
		return entities.AccessDecision{}, domainerrors.ErrUserOrganizationNotFound
	}

	decision := entities.AccessDecision{
		UserID:               userID,
		HomeOrganizationID:   user.OrganizationID,
		TargetOrganizationID: targetOrgID,
		ResourceType:         resourceType,
		ResourceID:           resourceID,
		CheckedAt:            now,
	}

	if user.OrganizationID == targetOrgID {
		decision.Allowed = true
		decision.Reason = "same_organization"
		return decision, nil
	}

	if s.CheckCrossTenantAccess(ctx, user, targetOrgID, resourceType) {
		decision.Allowed = true
		decision.Reason = "cross_tenant_access_granted"
		return decision, nil
	}

	decision.Allowed = false
	decision.IsolationViolation = true
	decision.Reason = "cross-tenant access to " + resourceType + " in organization " + targetOrgID + " is not permitted"
	logger.Warn("tenant isolation violation",
		"event", "isolation_violation",
		"module", "identity-access/isolation-service",
		"layer", "application",
		"user_id", userID,
		"home_organization_id", user.OrganizationID,
		"target_organization_id", targetOrgID,
		"resource_type", resourceType,
		"resource_id", resourceID,
	)
	return decision, nil
}

// CheckCrossTenantAccess returns true for system_admin principals or when
// an explicit grant exists for the user or its home organization. Grant
// store errors are treated as not granted.
func (s Service) CheckCrossTenantAccess(
	ctx context.Context,
	user ports.UserRecord,
	targetOrgID string,
	resourceType string,
) bool {
	if user.Role.HasRole(entities.RoleSystemAdmin) {
		return true
	}

	granteeIDs := []string{user.UserID}
	if user.OrganizationID != "" {
		granteeIDs = append(granteeIDs, user.OrganizationID)
	}
	granted, err := s.Grants.HasAnyGrant(ctx, granteeIDs, targetOrgID, resourceType)
	if err != nil {
		ResolveLogger(s.Logger).Warn("grant lookup failed, treated as not granted",
			"event", "isolation_grant_lookup_failed",
			"module", "identity-access/isolation-service",
			"layer", "application",
			"user_id", user.UserID,
			"target_organization_id", targetOrgID,
			"resource_type", resourceType,
			"error", err.Error(),
		)
		return false
	}
	return granted
}

// CreateGrantInput carries the fields of an explicit cross-tenant grant.
type CreateGrantInput struct {
	GranteeID            string
	TargetOrganizationID string
	ResourceType         string
	GrantedBy            string
}

// CreateIsolationGrant persists an explicit cross-tenant permission.
func (s Service) CreateIsolationGrant(ctx context.Context, input CreateGrantInput) (entities.IsolationGrant, error) {
	if strings.TrimSpace(input.GranteeID) == "" ||
		strings.TrimSpace(input.TargetOrganizationID) == "" ||
		strings.TrimSpace(input.ResourceType) == "" {
		return entities.IsolationGrant{}, domainerrors.ErrInvalidGrant
	}

	grantID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.IsolationGrant{}, err
	}
	grant := entities.IsolationGrant{
		GrantID:              grantID,
		GranteeID:            strings.TrimSpace(input.GranteeID),
		TargetOrganizationID: strings.TrimSpace(input.TargetOrganizationID),
		ResourceType:         strings.TrimSpace(input.ResourceType),
		GrantedBy:            strings.TrimSpace(input.GrantedBy),
		GrantedAt:            s.now(),
	}
	if err := s.Grants.CreateGrant(ctx, grant); err != nil {
		return entities.IsolationGrant{}, err
	}

	ResolveLogger(s.Logger).Info("isolation grant created",
		"event", "isolation_grant_created",
		"module", "identity-access/isolation-service",
		"layer", "application",
		"grant_id", grant.GrantID,
		"grantee_id", grant.GranteeID,
		"target_organization_id", grant.TargetOrganizationID,
		"resource_type", grant.ResourceType,
	)
	return grant, nil
}

// CreatePolicyInput carries the fields of a named isolation policy.
type CreatePolicyInput struct {
	OrganizationID string
	PolicyType     string
	PolicyName     string
	PolicyRules    []byte
	CreatedBy      string
}

// CreateIsolationPolicy validates and stores a policy record. Policies
// are retrievable configuration; enforcement does not consult them.
func (s Service) CreateIsolationPolicy(ctx context.Context, input CreatePolicyInput) (entities.IsolationPolicy, error) {
	if strings.TrimSpace(input.OrganizationID) == "" ||
		strings.TrimSpace(input.PolicyType) == "" ||
		strings.TrimSpace(input.PolicyName) == "" {
		return entities.IsolationPolicy{}, domainerrors.ErrInvalidPolicy
	}
	if len(input.PolicyRules) == 0 {
		return entities.IsolationPolicy{}, domainerrors.ErrPolicyRulesRequired
	}

	policyID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.IsolationPolicy{}, err
	}
	policy := entities.IsolationPolicy{
		PolicyID:       policyID,
		OrganizationID: strings.TrimSpace(input.OrganizationID),
		PolicyType:     strings.TrimSpace(input.PolicyType),
		PolicyName:     strings.TrimSpace(input.PolicyName),
		PolicyRules:    append([]byte(nil), input.PolicyRules...),
		CreatedBy:      strings.TrimSpace(input.CreatedBy),
		CreatedAt:      s.now(),
	}
	if err := s.Policies.CreatePolicy(ctx, policy); err != nil {
		return entities.IsolationPolicy{}, err
	}

	ResolveLogger(s.Logger).Info("isolation policy created",
		"event", "isolation_policy_created",
		"module", "identity-access/isolation-service",
		"layer", "application",
		"policy_id", policy.PolicyID,
		"organization_id", policy.OrganizationID,
		"policy_type", policy.PolicyType,
	)
	return policy, nil
}

// GetIsolationPolicies lists stored policies for one organization.
func (s Service) GetIsolationPolicies(ctx context.Context, orgID string) ([]entities.IsolationPolicy, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}
	return s.Policies.ListPolicies(ctx, orgID)
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
