package httptransport

import "time"

type CounterDTO struct {
	Current int64 `json:"current"`
	Max     int64 `json:"max"`
}

type OrganizationQuotaResponse struct {
	OrganizationID  string     `json:"organization_id"`
	ContextItems    CounterDTO `json:"context_items"`
	GlobalAccess    CounterDTO `json:"global_access"`
	SharingRequests CounterDTO `json:"sharing_requests"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type CheckQuotaRequest struct {
	QuotaType string `json:"quota_type"`
	Quantity  int64  `json:"quantity"`
}

type QuotaCheckResponse struct {
	OrganizationID string `json:"organization_id"`
	QuotaType      string `json:"quota_type"`
	Passed         bool   `json:"quota_check_passed"`
	Exceeded       bool   `json:"quota_exceeded"`
	Current        int64  `json:"current"`
	Limit          int64  `json:"limit"`
	Requested      int64  `json:"requested"`
}

type UpdateUsageRequest struct {
	QuotaType string `json:"quota_type"`
	Quantity  int64  `json:"quantity"`
	Operation string `json:"operation"`
}

type ResetUsageRequest struct {
	QuotaType string `json:"quota_type,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
