package httpadapter

import (
	"context"
	"log/slog"

	application "loom/contexts/content-sharing/sharing-workflow-service/application"
	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
	httptransport "loom/contexts/content-sharing/sharing-workflow-service/transport/http"
)

// Handler maps HTTP DTOs to sharing workflow operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// ShareItemHandler creates a pending sharing request from sourceOrgID.
func (h Handler) ShareItemHandler(
	ctx context.Context,
	sourceOrgID string,
	request httptransport.ShareItemRequest,
) (httptransport.ShareItemResponse, error) {
	created, err := h.Service.ShareContextItem(ctx, application.ShareItemInput{
		SourceOrganizationID: sourceOrgID,
		TargetOrganizationID: request.TargetOrganizationID,
		FeatureKey:           request.FeatureKey,
		ItemID:               request.ItemID,
		SharingType:          request.SharingType,
		SharedBy:             request.SharedBy,
	})
	if err != nil {
		return httptransport.ShareItemResponse{}, err
	}
	return httptransport.ShareItemResponse{Request: requestDTO(created)}, nil
}

// ApproveHandler resolves a pending request as approved and reports the
// copy side effect.
func (h Handler) ApproveHandler(
	ctx context.Context,
	sharingID string,
	request httptransport.ApproveRequest,
) (httptransport.ApproveResponse, error) {
	outcome, err := h.Service.ApproveSharingRequest(ctx, sharingID, request.ApprovedBy)
	if err != nil {
		return httptransport.ApproveResponse{}, err
	}
	resp := httptransport.ApproveResponse{
		Request:    requestDTO(outcome.Request),
		ItemCopied: outcome.ItemCopied,
		CopyError:  outcome.CopyError,
	}
	if outcome.CopiedItem != nil {
		item := itemDTO(*outcome.CopiedItem)
		resp.CopiedItem = &item
	}
	return resp, nil
}

// RejectHandler resolves a pending request as rejected.
func (h Handler) RejectHandler(
	ctx context.Context,
	sharingID string,
	request httptransport.RejectRequest,
) (httptransport.RejectResponse, error) {
	rejected, err := h.Service.RejectSharedItem(ctx, sharingID, request.RejectedBy, request.Reason)
	if err != nil {
		return httptransport.RejectResponse{}, err
	}
	return httptransport.RejectResponse{Request: requestDTO(rejected)}, nil
}

// PendingApprovalsHandler lists pending requests addressed to one
// organization.
func (h Handler) PendingApprovalsHandler(
	ctx context.Context,
	targetOrgID string,
	featureKey string,
) (httptransport.PendingApprovalsResponse, error) {
	items, err := h.Service.GetPendingApprovals(ctx, targetOrgID, featureKey)
	if err != nil {
		return httptransport.PendingApprovalsResponse{}, err
	}
	dtos := make([]httptransport.SharingRequestDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, requestDTO(item))
	}
	return httptransport.PendingApprovalsResponse{Items: dtos, Count: len(dtos)}, nil
}

// ShareToChildrenHandler fans one item out to all direct children.
func (h Handler) ShareToChildrenHandler(
	ctx context.Context,
	orgID string,
	request httptransport.HierarchyShareRequest,
) (httptransport.BulkShareResponse, error) {
	outcome, err := h.Service.ShareToChildren(ctx, application.HierarchyShareInput{
		OrganizationID: orgID,
		FeatureKey:     request.FeatureKey,
		ItemID:         request.ItemID,
		SharingType:    request.SharingType,
		SharedBy:       request.SharedBy,
	})
	if err != nil {
		return httptransport.BulkShareResponse{}, err
	}
	dtos := make([]httptransport.SharingRequestDTO, 0, len(outcome.Requests))
	for _, item := range outcome.Requests {
		dtos = append(dtos, requestDTO(item))
	}
	return httptransport.BulkShareResponse{
		SharedCount:  outcome.SharedCount,
		SkippedCount: outcome.SkippedCount,
		Message:      outcome.Message,
		Requests:     dtos,
	}, nil
}

// ShareToParentHandler shares one item to the organization's parent.
func (h Handler) ShareToParentHandler(
	ctx context.Context,
	orgID string,
	request httptransport.HierarchyShareRequest,
) (httptransport.ShareItemResponse, error) {
	created, err := h.Service.ShareToParent(ctx, application.HierarchyShareInput{
		OrganizationID: orgID,
		FeatureKey:     request.FeatureKey,
		ItemID:         request.ItemID,
		SharingType:    request.SharingType,
		SharedBy:       request.SharedBy,
	})
	if err != nil {
		return httptransport.ShareItemResponse{}, err
	}
	return httptransport.ShareItemResponse{Request: requestDTO(created)}, nil
}

// SharingStatsHandler reports aggregate request counts for one
// organization.
func (h Handler) SharingStatsHandler(ctx context.Context, orgID string) (httptransport.SharingStatsResponse, error) {
	stats, err := h.Service.GetHierarchySharingStats(ctx, orgID)
	if err != nil {
		return httptransport.SharingStatsResponse{}, err
	}
	return httptransport.SharingStatsResponse{
		OrganizationID:   stats.OrganizationID,
		OutgoingRequests: stats.OutgoingRequests,
		IncomingRequests: stats.IncomingRequests,
		PendingRequests:  stats.PendingRequests,
	}, nil
}

func itemDTO(item entities.ContextItem) httptransport.ContextItemDTO {
	return httptransport.ContextItemDTO{
		ItemID:         item.ItemID,
		OrganizationID: item.OrganizationID,
		FeatureKey:     item.FeatureKey,
		Title:          item.Title,
		Content:        item.Content,
		CopiedFrom:     item.CopiedFrom,
		CreatedAt:      item.CreatedAt,
	}
}

func requestDTO(request entities.SharingRequest) httptransport.SharingRequestDTO {
	return httptransport.SharingRequestDTO{
		SharingID:            request.SharingID,
		SourceOrganizationID: request.SourceOrganizationID,
		TargetOrganizationID: request.TargetOrganizationID,
		FeatureKey:           request.FeatureKey,
		ItemID:               request.ItemID,
		SharingType:          request.SharingType,
		Status:               request.Status,
		SharedBy:             request.SharedBy,
		ApprovedBy:           request.ApprovedBy,
		RejectedBy:           request.RejectedBy,
		RejectionReason:      request.RejectionReason,
		CreatedAt:            request.CreatedAt,
		UpdatedAt:            request.UpdatedAt,
		ResolvedAt:           request.ResolvedAt,
	}
}
