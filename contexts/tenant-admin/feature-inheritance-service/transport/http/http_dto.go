package httptransport

import "time"

// EffectiveFeatureDTO is one resolved feature entry.
type EffectiveFeatureDTO struct {
	FeatureKey    string `json:"feature_key"`
	Enabled       bool   `json:"enabled"`
	IsInherited   bool   `json:"is_inherited"`
	InheritedFrom string `json:"inherited_from,omitempty"`
}

type EffectiveFeaturesResponse struct {
	OrganizationID string                `json:"organization_id"`
	Features       []EffectiveFeatureDTO `json:"features"`
	InheritedCount int                   `json:"inherited_count"`
	OwnCount       int                   `json:"own_count"`
}

type InheritedFeaturesResponse struct {
	OrganizationID string                `json:"organization_id"`
	Features       []EffectiveFeatureDTO `json:"features"`
}

type ChainNodeDTO struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ParentOrganizationID string `json:"parent_organization_id,omitempty"`
}

type InheritanceChainResponse struct {
	OrganizationID string         `json:"organization_id"`
	Chain          []ChainNodeDTO `json:"chain"`
}

type CanEnableResponse struct {
	OrganizationID string `json:"organization_id"`
	FeatureKey     string `json:"feature_key"`
	CanEnable      bool   `json:"can_enable"`
	Reason         string `json:"reason"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
}

type OverrideStatusResponse struct {
	OrganizationID string `json:"organization_id"`
	FeatureKey     string `json:"feature_key"`
	Status         string `json:"status"`
	Enabled        bool   `json:"enabled"`
	IsInherited    bool   `json:"is_inherited"`
	InheritedFrom  string `json:"inherited_from,omitempty"`
}

type SetToggleRequest struct {
	Enabled bool `json:"enabled"`
}

type SetToggleResponse struct {
	OrganizationID string    `json:"organization_id"`
	FeatureKey     string    `json:"feature_key"`
	Enabled        bool      `json:"enabled"`
	UpdatedBy      string    `json:"updated_by,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
