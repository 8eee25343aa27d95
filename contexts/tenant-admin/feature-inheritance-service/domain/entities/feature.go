package entities

import "time"

// FeatureToggle is an organization's own explicit setting for a feature.
// Absence of a toggle means "defer to inheritance".
type FeatureToggle struct {
	OrganizationID string    `json:"organization_id"`
	FeatureKey     string    `json:"feature_key"`
	Enabled        bool      `json:"enabled"`
	UpdatedBy      string    `json:"updated_by,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// EffectiveFeature is the resolved state of one feature at one
// organization after merging inheritance with own overrides. Derived,
// never stored.
type EffectiveFeature struct {
	FeatureKey    string `json:"feature_key"`
	Enabled       bool   `json:"enabled"`
	IsInherited   bool   `json:"is_inherited"`
	InheritedFrom string `json:"inherited_from,omitempty"`
}

// EffectiveFeatureSet is the merged feature list with per-origin counts.
type EffectiveFeatureSet struct {
	OrganizationID string             `json:"organization_id"`
	Features       []EffectiveFeature `json:"features"`
	InheritedCount int                `json:"inherited_count"`
	OwnCount       int                `json:"own_count"`
}

// OrganizationNode is one hop of the inheritance chain walk.
type OrganizationNode struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	ParentOrganizationID string `json:"parent_organization_id,omitempty"`
}

// Override status values returned by GetOverrideStatus.
const (
	OverrideStatusEnabled   = "enabled"
	OverrideStatusDisabled  = "disabled"
	OverrideStatusInherited = "inherited"
	OverrideStatusUnknown   = "unknown"
)

// OverrideStatus describes where a feature's current value comes from.
type OverrideStatus struct {
	OrganizationID string `json:"organization_id"`
	FeatureKey     string `json:"feature_key"`
	Status         string `json:"status"`
	Enabled        bool   `json:"enabled"`
	IsInherited    bool   `json:"is_inherited"`
	InheritedFrom  string `json:"inherited_from,omitempty"`
}

// EnableCheck is the outcome of a can-enable evaluation. A feature must be
// explicitly enabled by the parent before a child may turn it on.
type EnableCheck struct {
	OrganizationID string `json:"organization_id"`
	FeatureKey     string `json:"feature_key"`
	CanEnable      bool   `json:"can_enable"`
	Reason         string `json:"reason"`
	QuotaExceeded  bool   `json:"quota_exceeded,omitempty"`
}
