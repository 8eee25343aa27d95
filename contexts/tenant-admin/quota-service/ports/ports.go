package ports

import (
	"context"
	"time"

	"loom/contexts/tenant-admin/quota-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// QuotaStore persists per-organization usage counters.
//
// UpdateUsage reports whether any row was affected; zero rows is a
// failure at the application layer. ReserveUsage applies an atomic
// increment-if-below-limit and reports whether the reservation was
// admitted together with the resulting snapshot.
type QuotaStore interface {
	GetQuotas(ctx context.Context, orgID string) (entities.OrganizationQuota, bool, error)
	CreateQuotas(ctx context.Context, quota entities.OrganizationQuota) error
	UpdateUsage(ctx context.Context, orgID string, resourceClass string, newValue int64, now time.Time) (bool, error)
	ReserveUsage(ctx context.Context, orgID string, resourceClass string, quantity int64, now time.Time) (entities.OrganizationQuota, bool, error)
	ResetUsage(ctx context.Context, orgID string, resourceClasses []string, now time.Time) error
}
