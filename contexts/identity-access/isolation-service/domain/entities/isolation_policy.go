package entities

import (
	"encoding/json"
	"time"
)

// IsolationPolicy is a named, organization-scoped policy record. Rows are
// stored and retrievable; enforcement currently derives from grants and
// roles only.
type IsolationPolicy struct {
	PolicyID       string          `json:"policy_id"`
	OrganizationID string          `json:"organization_id"`
	PolicyType     string          `json:"policy_type"`
	PolicyName     string          `json:"policy_name"`
	PolicyRules    json.RawMessage `json:"policy_rules"`
	CreatedBy      string          `json:"created_by"`
	CreatedAt      time.Time       `json:"created_at"`
}
