package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	sharing "loom/contexts/content-sharing/sharing-workflow-service"
	isolation "loom/contexts/identity-access/isolation-service"
	identityentities "loom/contexts/identity-access/isolation-service/domain/entities"
	isolationports "loom/contexts/identity-access/isolation-service/ports"
	featureinheritance "loom/contexts/tenant-admin/feature-inheritance-service"
	featureports "loom/contexts/tenant-admin/feature-inheritance-service/ports"
	quota "loom/contexts/tenant-admin/quota-service"

	"github.com/golang-jwt/jwt/v5"
)

const testJWTSecret = "test-secret"

type testEnv struct {
	server    *Server
	features  featureinheritance.Module
	quotas    quota.Module
	sharing   sharing.Module
	isolation isolation.Module
}

func newTestServer() testEnv {
	features := featureinheritance.NewInMemoryModule(nil, nil)
	quotas := quota.NewInMemoryModule(nil)
	sharingModule := sharing.NewInMemoryModule(nil, nil)
	isolationModule := isolation.NewInMemoryModule(nil)

	server := New(features, quotas, sharingModule, isolationModule, Security{JWTSecret: testJWTSecret}, nil, "")
	return testEnv{
		server:    server,
		features:  features,
		quotas:    quotas,
		sharing:   sharingModule,
		isolation: isolationModule,
	}
}

func signToken(t *testing.T, secret string, sub string, role string, orgID string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":    sub,
		"role":   role,
		"org_id": orgID,
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("token signing failed: %v", err)
	}
	return signed
}

func doRequest(env testEnv, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	env.server.Handler().ServeHTTP(rr, req)
	return rr
}

func TestBearerTokenAuthorizesToggleWrites(t *testing.T) {
	env := newTestServer()
	env.features.Store.SeedOrganization(featureports.OrganizationRecord{ID: "org-root", Name: "Root"})

	req := httptest.NewRequest(http.MethodPut,
		"/api/features/v1/organizations/org-root/features/rag_search",
		bytes.NewReader([]byte(`{"enabled":true}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, "admin-1", "org_admin", "org-root"))

	rr := doRequest(env, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}

	var resp struct {
		UpdatedBy string `json:"updated_by"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.UpdatedBy != "admin-1" {
		t.Fatalf("expected token subject as actor, got %q", resp.UpdatedBy)
	}
}

func TestTamperedTokenRejected(t *testing.T) {
	env := newTestServer()

	req := httptest.NewRequest(http.MethodGet, "/api/quotas/v1/organizations/org-1", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, "wrong-secret", "admin-1", "org_admin", "org-1"))

	rr := doRequest(env, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a tampered token, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Code string `json:"code"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Code != "invalid_token" {
		t.Fatalf("expected invalid_token code, got %q", resp.Code)
	}
}

func TestHeaderFallbackIgnoredWhenTokenPresent(t *testing.T) {
	env := newTestServer()
	env.features.Store.SeedOrganization(featureports.OrganizationRecord{ID: "org-root", Name: "Root"})

	req := httptest.NewRequest(http.MethodPut,
		"/api/features/v1/organizations/org-root/features/rag_search",
		bytes.NewReader([]byte(`{"enabled":true}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+signToken(t, testJWTSecret, "user-1", "user", "org-root"))
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "org_admin")
	req.Header.Set("X-Org-Id", "org-root")

	rr := doRequest(env, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected token role to win over headers with 403, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestHeaderPrincipalFallback(t *testing.T) {
	env := newTestServer()
	env.features.Store.SeedOrganization(featureports.OrganizationRecord{ID: "org-root", Name: "Root"})

	// Anonymous writes are rejected.
	req := httptest.NewRequest(http.MethodPut,
		"/api/features/v1/organizations/org-root/features/rag_search",
		bytes.NewReader([]byte(`{"enabled":true}`)))
	req.Header.Set("Content-Type", "application/json")
	rr := doRequest(env, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous write, got %d body=%s", rr.Code, rr.Body.String())
	}

	// Header identities work when no bearer token is present.
	req = httptest.NewRequest(http.MethodPut,
		"/api/features/v1/organizations/org-root/features/rag_search",
		bytes.NewReader([]byte(`{"enabled":true}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "admin-1")
	req.Header.Set("X-User-Role", "org_admin")
	req.Header.Set("X-Org-Id", "org-root")
	rr = doRequest(env, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 via header principal, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestSharingApprovalRequiresManagerRole(t *testing.T) {
	env := newTestServer()
	parent := "org-parent"
	env.sharing.Store.SeedOrganization("org-parent", "Parent", nil)
	env.sharing.Store.SeedOrganization("org-child", "Child", &parent)

	req := httptest.NewRequest(http.MethodPost,
		"/api/sharing/v1/organizations/org-parent/share",
		bytes.NewReader([]byte(`{"target_organization_id":"org-child","feature_key":"rag_search","item_id":"item-1"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "user")
	req.Header.Set("X-Org-Id", "org-parent")
	rr := doRequest(env, req)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201 share, got %d body=%s", rr.Code, rr.Body.String())
	}

	var created struct {
		Request struct {
			SharingID string `json:"sharing_id"`
			SharedBy  string `json:"shared_by"`
		} `json:"request"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if created.Request.SharedBy != "user-1" {
		t.Fatalf("expected sharer defaulted to the principal, got %q", created.Request.SharedBy)
	}

	approveURL := "/api/sharing/v1/requests/" + created.Request.SharingID + "/approve"

	req = httptest.NewRequest(http.MethodPost, approveURL, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-2")
	req.Header.Set("X-User-Role", "user")
	req.Header.Set("X-Org-Id", "org-child")
	rr = doRequest(env, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-manager approval, got %d body=%s", rr.Code, rr.Body.String())
	}

	req = httptest.NewRequest(http.MethodPost, approveURL, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "manager-1")
	req.Header.Set("X-User-Role", "manager")
	req.Header.Set("X-Org-Id", "org-child")
	rr = doRequest(env, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 for manager approval, got %d body=%s", rr.Code, rr.Body.String())
	}
}

func TestIsolationDenialReturnsForbidden(t *testing.T) {
	env := newTestServer()
	env.isolation.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-a", Name: "Org A"})
	env.isolation.Store.SeedOrganization(isolationports.OrganizationRecord{ID: "org-b", Name: "Org B"})
	env.isolation.Store.SeedUser(isolationports.UserRecord{
		UserID:         "user-1",
		OrganizationID: "org-a",
		Role:           identityentities.RoleUser,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/isolation/v1/enforce",
		bytes.NewReader([]byte(`{"target_organization_id":"org-b","resource_type":"context_item"}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Id", "user-1")
	req.Header.Set("X-User-Role", "user")
	req.Header.Set("X-Org-Id", "org-a")

	rr := doRequest(env, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for a cross-tenant denial, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Allowed            bool `json:"allowed"`
		IsolationViolation bool `json:"isolation_violation"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if resp.Allowed || !resp.IsolationViolation {
		t.Fatalf("expected denial decision in the body, got %s", rr.Body.String())
	}
}

func TestQuotaReserveExhaustionReturnsTooManyRequests(t *testing.T) {
	env := newTestServer()

	usage := httptest.NewRequest(http.MethodPost, "/api/quotas/v1/organizations/org-1/usage",
		bytes.NewReader([]byte(`{"quota_type":"global_access","quantity":10,"operation":"increment"}`)))
	usage.Header.Set("Content-Type", "application/json")
	usage.Header.Set("X-User-Id", "admin-1")
	usage.Header.Set("X-User-Role", "org_admin")
	usage.Header.Set("X-Org-Id", "org-1")
	if rr := doRequest(env, usage); rr.Code != http.StatusOK {
		t.Fatalf("usage setup failed: %d body=%s", rr.Code, rr.Body.String())
	}

	reserve := httptest.NewRequest(http.MethodPost, "/api/quotas/v1/organizations/org-1/reserve",
		bytes.NewReader([]byte(`{"quota_type":"global_access","quantity":1}`)))
	reserve.Header.Set("Content-Type", "application/json")
	rr := doRequest(env, reserve)
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for an exhausted reservation, got %d body=%s", rr.Code, rr.Body.String())
	}
	var resp struct {
		Exceeded bool `json:"quota_exceeded"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !resp.Exceeded {
		t.Fatalf("expected quota_exceeded body, got %s", rr.Body.String())
	}
}
