package httptransport

import (
	"encoding/json"
	"time"
)

// EnforceIsolationRequest asks whether a user may touch a resource owned
// by another tenant.
type EnforceIsolationRequest struct {
	UserID               string `json:"user_id,omitempty"`
	TargetOrganizationID string `json:"target_organization_id"`
	ResourceType         string `json:"resource_type"`
	ResourceID           string `json:"resource_id,omitempty"`
}

// EnforceIsolationResponse reports the access decision.
type EnforceIsolationResponse struct {
	UserID               string    `json:"user_id"`
	HomeOrganizationID   string    `json:"home_organization_id"`
	TargetOrganizationID string    `json:"target_organization_id"`
	ResourceType         string    `json:"resource_type"`
	ResourceID           string    `json:"resource_id,omitempty"`
	Allowed              bool      `json:"allowed"`
	IsolationViolation   bool      `json:"isolation_violation"`
	Reason               string    `json:"reason"`
	CheckedAt            time.Time `json:"checked_at"`
}

type CreateGrantRequest struct {
	GranteeID            string `json:"grantee_id"`
	TargetOrganizationID string `json:"target_organization_id"`
	ResourceType         string `json:"resource_type"`
}

type CreateGrantResponse struct {
	GrantID              string    `json:"grant_id"`
	GranteeID            string    `json:"grantee_id"`
	TargetOrganizationID string    `json:"target_organization_id"`
	ResourceType         string    `json:"resource_type"`
	GrantedBy            string    `json:"granted_by"`
	GrantedAt            time.Time `json:"granted_at"`
}

type CreatePolicyRequest struct {
	OrganizationID string          `json:"organization_id"`
	PolicyType     string          `json:"policy_type"`
	PolicyName     string          `json:"policy_name"`
	PolicyRules    json.RawMessage `json:"policy_rules"`
}

type PolicyDTO struct {
	PolicyID       string          `json:"policy_id"`
	OrganizationID string          `json:"organization_id"`
	PolicyType     string          `json:"policy_type"`
	PolicyName     string          `json:"policy_name"`
	PolicyRules    json.RawMessage `json:"policy_rules"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}

type ListPoliciesResponse struct {
	OrganizationID string      `json:"organization_id"`
	Policies       []PolicyDTO `json:"policies"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
