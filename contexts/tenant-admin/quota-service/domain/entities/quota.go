package entities

import "time"

// Metered resource classes. Unknown classes pass checks unconditionally
// (treated as unmetered).
const (
	ClassContextItems    = "context_items"
	ClassGlobalAccess    = "global_access"
	ClassSharingRequests = "sharing_requests"
)

// System default limits applied on lazy quota creation.
const (
	DefaultContextItemsLimit    = 1000
	DefaultGlobalAccessLimit    = 10
	DefaultSharingRequestsLimit = 50
)

// Counter is one current/max usage pair.
type Counter struct {
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
}

// OrganizationQuota holds the usage counters of one organization.
type OrganizationQuota struct {
	OrganizationID  string    `json:"organization_id"`
	ContextItems    Counter   `json:"context_items"`
	GlobalAccess    Counter   `json:"global_access"`
	SharingRequests Counter   `json:"sharing_requests"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewDefaultQuota builds a quota row with system default limits and
// zeroed usage.
func NewDefaultQuota(orgID string, now time.Time) OrganizationQuota {
	return OrganizationQuota{
		OrganizationID:  orgID,
		ContextItems:    Counter{Max: DefaultContextItemsLimit},
		GlobalAccess:    Counter{Max: DefaultGlobalAccessLimit},
		SharingRequests: Counter{Max: DefaultSharingRequestsLimit},
		UpdatedAt:       now,
	}
}

// CounterFor returns the counter of one resource class and whether the
// class is metered at all.
func (q OrganizationQuota) CounterFor(resourceClass string) (Counter, bool) {
	switch resourceClass {
	case ClassContextItems:
		return q.ContextItems, true
	case ClassGlobalAccess:
		return q.GlobalAccess, true
	case ClassSharingRequests:
		return q.SharingRequests, true
	default:
		return Counter{}, false
	}
}

// QuotaCheck is the outcome of a headroom evaluation or reservation.
type QuotaCheck struct {
	OrganizationID string `json:"organization_id"`
	QuotaType      string `json:"quota_type"`
	Passed         bool   `json:"quota_check_passed"`
	Exceeded       bool   `json:"quota_exceeded"`
	Current        int64  `json:"current"`
	Limit          int64  `json:"limit"`
	Requested      int64  `json:"requested"`
}
