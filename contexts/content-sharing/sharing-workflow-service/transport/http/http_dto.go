package httptransport

import "time"

type SharingRequestDTO struct {
	SharingID            string     `json:"sharing_id"`
	SourceOrganizationID string     `json:"source_organization_id"`
	TargetOrganizationID string     `json:"target_organization_id"`
	FeatureKey           string     `json:"feature_key"`
	ItemID               string     `json:"item_id"`
	SharingType          string     `json:"sharing_type"`
	Status               string     `json:"status"`
	SharedBy             string     `json:"shared_by"`
	ApprovedBy           string     `json:"approved_by,omitempty"`
	RejectedBy           string     `json:"rejected_by,omitempty"`
	RejectionReason      string     `json:"rejection_reason,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	ResolvedAt           *time.Time `json:"resolved_at,omitempty"`
}

type ShareItemRequest struct {
	TargetOrganizationID string `json:"target_organization_id"`
	FeatureKey           string `json:"feature_key"`
	ItemID               string `json:"item_id"`
	SharingType          string `json:"sharing_type,omitempty"`
	SharedBy             string `json:"shared_by"`
}

type ShareItemResponse struct {
	Request SharingRequestDTO `json:"request"`
}

type ApproveRequest struct {
	ApprovedBy string `json:"approved_by"`
}

type ContextItemDTO struct {
	ItemID         string    `json:"item_id"`
	OrganizationID string    `json:"organization_id"`
	FeatureKey     string    `json:"feature_key"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	CopiedFrom     string    `json:"copied_from,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type ApproveResponse struct {
	Request    SharingRequestDTO `json:"request"`
	ItemCopied bool              `json:"item_copied"`
	CopiedItem *ContextItemDTO   `json:"copied_item,omitempty"`
	CopyError  string            `json:"copy_error,omitempty"`
}

type RejectRequest struct {
	RejectedBy string `json:"rejected_by"`
	Reason     string `json:"reason,omitempty"`
}

type RejectResponse struct {
	Request SharingRequestDTO `json:"request"`
}

type PendingApprovalsResponse struct {
	Items []SharingRequestDTO `json:"items"`
	Count int                 `json:"count"`
}

type HierarchyShareRequest struct {
	FeatureKey  string `json:"feature_key"`
	ItemID      string `json:"item_id"`
	SharingType string `json:"sharing_type,omitempty"`
	SharedBy    string `json:"shared_by"`
}

type BulkShareResponse struct {
	SharedCount  int                 `json:"shared_count"`
	SkippedCount int                 `json:"skipped_count"`
	Message      string              `json:"message"`
	Requests     []SharingRequestDTO `json:"requests"`
}

type SharingStatsResponse struct {
	OrganizationID   string `json:"organization_id"`
	OutgoingRequests int64  `json:"outgoing_requests"`
	IncomingRequests int64  `json:"incoming_requests"`
	PendingRequests  int64  `json:"pending_requests"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
