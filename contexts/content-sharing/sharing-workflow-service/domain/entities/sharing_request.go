package entities

import "time"

// Sharing request lifecycle states. Pending is initial; approved and
// rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// DefaultSharingType applies when a share request names no type.
const DefaultSharingType = "read_only"

// SharingRequest is a proposal to copy a context item across tenants.
// At most one non-terminal request may exist per
// (source, target, feature key, item) tuple.
type SharingRequest struct {
	SharingID            string
	SourceOrganizationID string
	TargetOrganizationID string
	FeatureKey           string
	ItemID               string
	SharingType          string
	Status               string
	SharedBy             string
	ApprovedBy           string
	RejectedBy           string
	RejectionReason      string
	CreatedAt            time.Time
	UpdatedAt            time.Time
	ResolvedAt           *time.Time
}

// IsResolved reports whether the request reached a terminal state.
func (r SharingRequest) IsResolved() bool {
	return r.Status != StatusPending
}

// ApprovalOutcome reports the status transition together with the
// copy-on-approve side effect. The transition can succeed while the copy
// does not: a missing source item yields ItemCopied=false, and a failed
// copy insert is surfaced through CopyError.
type ApprovalOutcome struct {
	Request    SharingRequest
	ItemCopied bool
	CopiedItem *ContextItem
	CopyError  string
}

// BulkShareOutcome summarizes a fan-out share across an organization's
// children. Duplicate conflicts are skipped, not failed.
type BulkShareOutcome struct {
	SharedCount  int
	SkippedCount int
	Requests     []SharingRequest
	Message      string
}

// HierarchySharingStats aggregates request counts for one organization.
type HierarchySharingStats struct {
	OrganizationID   string
	OutgoingRequests int64
	IncomingRequests int64
	PendingRequests  int64
}
