package httpadapter

import (
	"context"
	"log/slog"

	application "loom/contexts/tenant-admin/quota-service/application"
	"loom/contexts/tenant-admin/quota-service/domain/entities"
	httptransport "loom/contexts/tenant-admin/quota-service/transport/http"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// GetQuotasHandler returns the (lazily created) quota row of an organization.
func (h Handler) GetQuotasHandler(ctx context.Context, orgID string) (httptransport.OrganizationQuotaResponse, error) {
	quota, err := h.Service.GetOrganizationQuotas(ctx, orgID)
	if err != nil {
		return httptransport.OrganizationQuotaResponse{}, err
	}
	return quotaResponse(quota), nil
}

// CheckQuotaHandler evaluates headroom without consuming it.
func (h Handler) CheckQuotaHandler(
	ctx context.Context,
	orgID string,
	request httptransport.CheckQuotaRequest,
) (httptransport.QuotaCheckResponse, error) {
	check, err := h.Service.CheckQuotaLimits(ctx, orgID, request.QuotaType, request.Quantity)
	if err != nil {
		return httptransport.QuotaCheckResponse{}, err
	}
	return checkResponse(check), nil
}

// ReserveQuotaHandler consumes headroom atomically.
func (h Handler) ReserveQuotaHandler(
	ctx context.Context,
	orgID string,
	request httptransport.CheckQuotaRequest,
) (httptransport.QuotaCheckResponse, error) {
	check, err := h.Service.ReserveQuota(ctx, orgID, request.QuotaType, request.Quantity)
	if err != nil {
		return httptransport.QuotaCheckResponse{}, err
	}
	return checkResponse(check), nil
}

// UpdateUsageHandler applies an increment or decrement to one counter.
func (h Handler) UpdateUsageHandler(
	ctx context.Context,
	orgID string,
	request httptransport.UpdateUsageRequest,
) (httptransport.OrganizationQuotaResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http quota update usage received",
		"event", "quota_http_update_usage_received",
		"module", "tenant-admin/quota-service",
		"layer", "transport",
		"organization_id", orgID,
		"quota_type", request.QuotaType,
		"operation", request.Operation,
		"quantity", request.Quantity,
	)

	quota, err := h.Service.UpdateQuotaUsage(ctx, orgID, request.QuotaType, request.Quantity, request.Operation)
	if err != nil {
		logger.Error("http quota update usage failed",
			"event", "quota_http_update_usage_failed",
			"module", "tenant-admin/quota-service",
			"layer", "transport",
			"organization_id", orgID,
			"quota_type", request.QuotaType,
			"error", err.Error(),
		)
		return httptransport.OrganizationQuotaResponse{}, err
	}
	return quotaResponse(quota), nil
}

// ResetUsageHandler zeroes one or all usage counters.
func (h Handler) ResetUsageHandler(
	ctx context.Context,
	orgID string,
	request httptransport.ResetUsageRequest,
) (httptransport.OrganizationQuotaResponse, error) {
	quota, err := h.Service.ResetQuotaUsage(ctx, orgID, request.QuotaType)
	if err != nil {
		return httptransport.OrganizationQuotaResponse{}, err
	}
	return quotaResponse(quota), nil
}

func quotaResponse(quota entities.OrganizationQuota) httptransport.OrganizationQuotaResponse {
	return httptransport.OrganizationQuotaResponse{
		OrganizationID:  quota.OrganizationID,
		ContextItems:    httptransport.CounterDTO{Current: quota.ContextItems.Current, Max: quota.ContextItems.Max},
		GlobalAccess:    httptransport.CounterDTO{Current: quota.GlobalAccess.Current, Max: quota.GlobalAccess.Max},
		SharingRequests: httptransport.CounterDTO{Current: quota.SharingRequests.Current, Max: quota.SharingRequests.Max},
		UpdatedAt:       quota.UpdatedAt,
	}
}

func checkResponse(check entities.QuotaCheck) httptransport.QuotaCheckResponse {
	return httptransport.QuotaCheckResponse{
		OrganizationID: check.OrganizationID,
		QuotaType:      check.QuotaType,
		Passed:         check.Passed,
		Exceeded:       check.Exceeded,
		Current:        check.Current,
		Limit:          check.Limit,
		Requested:      check.Requested,
	}
}
