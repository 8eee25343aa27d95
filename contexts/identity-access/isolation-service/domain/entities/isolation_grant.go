package entities

import "time"

// IsolationGrant is an explicit exception permitting a principal (by user
// or organization id) to act on another tenant's resources of one type.
type IsolationGrant struct {
	GrantID              string    `json:"grant_id"`
	GranteeID            string    `json:"grantee_id"`
	TargetOrganizationID string    `json:"target_organization_id"`
	ResourceType         string    `json:"resource_type"`
	GrantedBy            string    `json:"granted_by"`
	GrantedAt            time.Time `json:"granted_at"`
}
