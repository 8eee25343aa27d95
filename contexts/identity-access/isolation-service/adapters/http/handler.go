package httpadapter

import (
	"context"
	"log/slog"

	application "loom/contexts/identity-access/isolation-service/application"
	"loom/contexts/identity-access/isolation-service/domain/entities"
	httptransport "loom/contexts/identity-access/isolation-service/transport/http"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// EnforceIsolationHandler decides whether the user may touch a resource in
// the target organization.
func (h Handler) EnforceIsolationHandler(
	ctx context.Context,
	userID string,
	request httptransport.EnforceIsolationRequest,
) (httptransport.EnforceIsolationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Debug("http isolation enforce received",
		"event", "isolation_http_enforce_received",
		"module", "identity-access/isolation-service",
		"layer", "transport",
		"user_id", userID,
		"target_organization_id", request.TargetOrganizationID,
		"resource_type", request.ResourceType,
	)

	decision, err := h.Service.EnforceTenantIsolation(
		ctx,
		userID,
		request.TargetOrganizationID,
		request.ResourceType,
		request.ResourceID,
	)
	if err != nil {
		logger.Error("http isolation enforce failed",
			"event", "isolation_http_enforce_failed",
			"module", "identity-access/isolation-service",
			"layer", "transport",
			"user_id", userID,
			"target_organization_id", request.TargetOrganizationID,
			"error", err.Error(),
		)
		return httptransport.EnforceIsolationResponse{}, err
	}
	return httptransport.EnforceIsolationResponse{
		UserID:               decision.UserID,
		HomeOrganizationID:   decision.HomeOrganizationID,
		TargetOrganizationID: decision.TargetOrganizationID,
		ResourceType:         decision.ResourceType,
		ResourceID:           decision.ResourceID,
		Allowed:              decision.Allowed,
		IsolationViolation:   decision.IsolationViolation,
		Reason:               decision.Reason,
		CheckedAt:            decision.CheckedAt,
	}, nil
}

// CreateGrantHandler records an explicit cross-tenant grant.
func (h Handler) CreateGrantHandler(
	ctx context.Context,
	grantedBy string,
	request httptransport.CreateGrantRequest,
) (httptransport.CreateGrantResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http isolation create grant received",
		"event", "isolation_http_create_grant_received",
		"module", "identity-access/isolation-service",
		"layer", "transport",
		"grantee_id", request.GranteeID,
		"target_organization_id", request.TargetOrganizationID,
	)

	grant, err := h.Service.CreateIsolationGrant(ctx, application.CreateGrantInput{
		GranteeID:            request.GranteeID,
		TargetOrganizationID: request.TargetOrganizationID,
		ResourceType:         request.ResourceType,
		GrantedBy:            grantedBy,
	})
	if err != nil {
		logger.Error("http isolation create grant failed",
			"event", "isolation_http_create_grant_failed",
			"module", "identity-access/isolation-service",
			"layer", "transport",
			"grantee_id", request.GranteeID,
			"error", err.Error(),
		)
		return httptransport.CreateGrantResponse{}, err
	}
	return httptransport.CreateGrantResponse{
		GrantID:              grant.GrantID,
		GranteeID:            grant.GranteeID,
		TargetOrganizationID: grant.TargetOrganizationID,
		ResourceType:         grant.ResourceType,
		GrantedBy:            grant.GrantedBy,
		GrantedAt:            grant.GrantedAt,
	}, nil
}

// CreatePolicyHandler stores a named isolation policy record.
func (h Handler) CreatePolicyHandler(
	ctx context.Context,
	createdBy string,
	request httptransport.CreatePolicyRequest,
) (httptransport.PolicyDTO, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http isolation create policy received",
		"event", "isolation_http_create_policy_received",
		"module", "identity-access/isolation-service",
		"layer", "transport",
		"organization_id", request.OrganizationID,
		"policy_type", request.PolicyType,
	)

	policy, err := h.Service.CreateIsolationPolicy(ctx, application.CreatePolicyInput{
		OrganizationID: request.OrganizationID,
		PolicyType:     request.PolicyType,
		PolicyName:     request.PolicyName,
		PolicyRules:    request.PolicyRules,
		CreatedBy:      createdBy,
	})
	if err != nil {
		logger.Error("http isolation create policy failed",
			"event", "isolation_http_create_policy_failed",
			"module", "identity-access/isolation-service",
			"layer", "transport",
			"organization_id", request.OrganizationID,
			"error", err.Error(),
		)
		return httptransport.PolicyDTO{}, err
	}
	return policyDTO(policy), nil
}

// ListPoliciesHandler returns stored policies for one organization.
func (h Handler) ListPoliciesHandler(ctx context.Context, orgID string) (httptransport.ListPoliciesResponse, error) {
	policies, err := h.Service.GetIsolationPolicies(ctx, orgID)
	if err != nil {
		return httptransport.ListPoliciesResponse{}, err
	}

	items := make([]httptransport.PolicyDTO, 0, len(policies))
	for _, policy := range policies {
		items = append(items, policyDTO(policy))
	}
	return httptransport.ListPoliciesResponse{
		OrganizationID: orgID,
		Policies:       items,
	}, nil
}

func policyDTO(policy entities.IsolationPolicy) httptransport.PolicyDTO {
	return httptransport.PolicyDTO{
		PolicyID:       policy.PolicyID,
		OrganizationID: policy.OrganizationID,
		PolicyType:     policy.PolicyType,
		PolicyName:     policy.PolicyName,
		PolicyRules:    policy.PolicyRules,
		CreatedBy:      policy.CreatedBy,
		CreatedAt:      policy.CreatedAt,
	}
}
