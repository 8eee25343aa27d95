package ports

import (
	"context"
	"time"

	"loom/contexts/tenant-admin/feature-inheritance-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// OrganizationRecord is the directory view of an organization node.
type OrganizationRecord struct {
	ID       string
	Name     string
	ParentID string
}

// OrganizationDirectory supplies organization lookups by id. Absence is
// reported via the boolean, not an error.
type OrganizationDirectory interface {
	GetOrganization(ctx context.Context, orgID string) (OrganizationRecord, bool, error)
}

// ToggleStore persists per-organization explicit feature settings.
type ToggleStore interface {
	ListOwnToggles(ctx context.Context, orgID string) ([]entities.FeatureToggle, error)
	GetOwnToggle(ctx context.Context, orgID string, featureKey string) (entities.FeatureToggle, bool, error)
	UpsertToggle(ctx context.Context, toggle entities.FeatureToggle) error
}

// QuotaDecision reports quota headroom for one resource class.
type QuotaDecision struct {
	Passed    bool
	QuotaType string
	Current   int64
	Limit     int64
	Requested int64
}

// QuotaGate meters global-access feature activations. A nil gate means
// activations are unmetered.
type QuotaGate interface {
	Check(ctx context.Context, orgID string, quantity int64) (QuotaDecision, error)
	Reserve(ctx context.Context, orgID string, quantity int64) (QuotaDecision, error)
	Release(ctx context.Context, orgID string, quantity int64) error
}
