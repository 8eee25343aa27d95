package entities

import "time"

// AccessDecision is the outcome of a tenant isolation check.
type AccessDecision struct {
	UserID               string    `json:"user_id"`
	HomeOrganizationID   string    `json:"home_organization_id"`
	TargetOrganizationID string    `json:"target_organization_id"`
	ResourceType         string    `json:"resource_type"`
	ResourceID           string    `json:"resource_id"`
	Allowed              bool      `json:"allowed"`
	IsolationViolation   bool      `json:"isolation_violation"`
	Reason               string    `json:"reason"`
	CheckedAt            time.Time `json:"checked_at"`
}
