package unit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	isolation "loom/contexts/identity-access/isolation-service"
	"loom/contexts/identity-access/isolation-service/domain/entities"
	domainerrors "loom/contexts/identity-access/isolation-service/domain/errors"
	isolationports "loom/contexts/identity-access/isolation-service/ports"
	httptransport "loom/contexts/identity-access/isolation-service/transport/http"
)

func seedIsolationDirectory(module isolation.Module) {
	module.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-a", Name: "Org A"})
	module.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-b", Name: "Org B"})
	module.Store.SeedUser(isolationports.UserRecord{UserID: "user-1", OrganizationID: "org-a", Role: entities.RoleUser})
	module.Store.SeedUser(isolationports.UserRecord{UserID: "admin-1", OrganizationID: "org-a", Role: entities.RoleSystemAdmin})
}

func TestIsolationSameOrganizationAllowed(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	decision, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "user-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-a",
			ResourceType:         "context_item",
			ResourceID:           "item-1",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !decision.Allowed || decision.IsolationViolation {
		t.Fatalf("expected same-organization access allowed, got %+v", decision)
	}
	if decision.Reason != "same_organization" {
		t.Fatalf("unexpected reason: %s", decision.Reason)
	}
}

func TestIsolationCrossTenantDeniedWithoutGrant(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	decision, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "user-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if decision.Allowed || !decision.IsolationViolation {
		t.Fatalf("expected cross-tenant denial, got %+v", decision)
	}
	if !strings.Contains(decision.Reason, "not permitted") {
		t.Fatalf("denial reason should state the refusal, got %q", decision.Reason)
	}
	if decision.HomeOrganizationID != "org-a" {
		t.Fatalf("expected home organization recorded, got %s", decision.HomeOrganizationID)
	}
}

func TestIsolationSystemAdminBypassesTenantBoundary(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	decision, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "admin-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !decision.Allowed || decision.IsolationViolation {
		t.Fatalf("expected system_admin cross-tenant access, got %+v", decision)
	}
	if decision.Reason != "cross_tenant_access_granted" {
		t.Fatalf("unexpected reason: %s", decision.Reason)
	}
}

func TestIsolationExplicitGrantAllowsCrossTenantAccess(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	grant, err := module.Handler.CreateGrantHandler(
		context.Background(), "admin-1",
		httptransport.CreateGrantRequest{
			GranteeID:            "user-1",
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	)
	if err != nil {
		t.Fatalf("create grant failed: %v", err)
	}
	if grant.GrantID == "" || grant.GrantedBy != "admin-1" {
		t.Fatalf("unexpected grant: %+v", grant)
	}

	decision, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "user-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected granted cross-tenant access, got %+v", decision)
	}

	// The grant is scoped to its resource type.
	decision, err = module.Handler.EnforceIsolationHandler(
		context.Background(), "user-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-b",
			ResourceType:         "feature_toggle",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if decision.Allowed {
		t.Fatalf("expected denial for an ungranted resource type, got %+v", decision)
	}
}

func TestIsolationOrganizationGrantCoversItsUsers(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	if _, err := module.Handler.CreateGrantHandler(
		context.Background(), "admin-1",
		httptransport.CreateGrantRequest{
			GranteeID:            "org-a",
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	); err != nil {
		t.Fatalf("create grant failed: %v", err)
	}

	decision, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "user-1",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-b",
			ResourceType:         "context_item",
		},
	)
	if err != nil {
		t.Fatalf("enforce failed: %v", err)
	}
	if !decision.Allowed {
		t.Fatalf("expected org-level grant to cover member users, got %+v", decision)
	}
}

func TestIsolationDescendantAccessIsSingleLevel(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	module.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-root", Name: "Root"})
	module.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-child", Name: "Child", ParentID: "org-root"})
	module.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-grandchild", Name: "Grandchild", ParentID: "org-child"})

	principal := entities.Principal{UserID: "admin-2", Role: entities.RoleOrgAdmin, OrganizationID: "org-root"}

	if !module.Service.CanAccessOrganization(context.Background(), principal, "org-root", false) {
		t.Fatalf("expected access to the principal's own organization")
	}
	if !module.Service.CanAccessOrganization(context.Background(), principal, "org-child", true) {
		t.Fatalf("expected access to a direct child organization")
	}
	if module.Service.CanAccessOrganization(context.Background(), principal, "org-grandchild", true) {
		t.Fatalf("descendant access must stop at one level")
	}
	if module.Service.CanAccessOrganization(context.Background(), principal, "org-child", false) {
		t.Fatalf("descendant access must be opt-in")
	}
}

func TestIsolationUnknownUserRejected(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	_, err := module.Handler.EnforceIsolationHandler(
		context.Background(), "user-ghost",
		httptransport.EnforceIsolationRequest{
			TargetOrganizationID: "org-a",
			ResourceType:         "context_item",
		},
	)
	if !errors.Is(err, domainerrors.ErrUserOrganizationNotFound) {
		t.Fatalf("expected user-organization-not-found error, got %v", err)
	}
}

func TestIsolationPolicyLifecycle(t *testing.T) {
	module := isolation.NewInMemoryModule(nil)
	seedIsolationDirectory(module)

	_, err := module.Handler.CreatePolicyHandler(
		context.Background(), "admin-1",
		httptransport.CreatePolicyRequest{
			OrganizationID: "org-a",
			PolicyType:     "data_residency",
			PolicyName:     "eu-only",
		},
	)
	if !errors.Is(err, domainerrors.ErrPolicyRulesRequired) {
		t.Fatalf("expected policy rules required error, got %v", err)
	}

	rules := json.RawMessage(`{"regions":["eu-west-1"]}`)
	created, err := module.Handler.CreatePolicyHandler(
		context.Background(), "admin-1",
		httptransport.CreatePolicyRequest{
			OrganizationID: "org-a",
			PolicyType:     "data_residency",
			PolicyName:     "eu-only",
			PolicyRules:    rules,
		},
	)
	if err != nil {
		t.Fatalf("create policy failed: %v", err)
	}
	if created.PolicyID == "" || created.CreatedBy != "admin-1" {
		t.Fatalf("unexpected policy: %+v", created)
	}

	listed, err := module.Handler.ListPoliciesHandler(context.Background(), "org-a")
	if err != nil {
		t.Fatalf("list policies failed: %v", err)
	}
	if len(listed.Policies) != 1 || listed.Policies[0].PolicyID != created.PolicyID {
		t.Fatalf("expected the created policy listed, got %+v", listed)
	}
	if string(listed.Policies[0].PolicyRules) != string(rules) {
		t.Fatalf("expected rules preserved, got %s", listed.Policies[0].PolicyRules)
	}

	other, err := module.Handler.ListPoliciesHandler(context.Background(), "org-b")
	if err != nil {
		t.Fatalf("list policies failed: %v", err)
	}
	if len(other.Policies) != 0 {
		t.Fatalf("policies must be scoped per organization, got %+v", other)
	}
}
