package httpadapter

import (
	"context"
	"log/slog"

	application "loom/contexts/tenant-admin/feature-inheritance-service/application"
	"loom/contexts/tenant-admin/feature-inheritance-service/domain/entities"
	httptransport "loom/contexts/tenant-admin/feature-inheritance-service/transport/http"
)

// Handler maps HTTP DTOs to application operations.
type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// EffectiveFeaturesHandler returns the merged feature list for an organization.
func (h Handler) EffectiveFeaturesHandler(ctx context.Context, orgID string) (httptransport.EffectiveFeaturesResponse, error) {
	set, err := h.Service.GetEffectiveFeatures(ctx, orgID)
	if err != nil {
		application.ResolveLogger(h.Logger).Error("http effective features failed",
			"event", "feature_http_effective_failed",
			"module", "tenant-admin/feature-inheritance-service",
			"layer", "transport",
			"organization_id", orgID,
			"error", err.Error(),
		)
		return httptransport.EffectiveFeaturesResponse{}, err
	}
	return httptransport.EffectiveFeaturesResponse{
		OrganizationID: set.OrganizationID,
		Features:       featureDTOs(set.Features),
		InheritedCount: set.InheritedCount,
		OwnCount:       set.OwnCount,
	}, nil
}

// InheritedFeaturesHandler returns only the entries inherited from the parent.
func (h Handler) InheritedFeaturesHandler(ctx context.Context, orgID string) (httptransport.InheritedFeaturesResponse, error) {
	features, err := h.Service.GetInheritedFeatures(ctx, orgID)
	if err != nil {
		return httptransport.InheritedFeaturesResponse{}, err
	}
	return httptransport.InheritedFeaturesResponse{
		OrganizationID: orgID,
		Features:       featureDTOs(features),
	}, nil
}

// InheritanceChainHandler returns the ancestor chain from the organization
// to its root.
func (h Handler) InheritanceChainHandler(ctx context.Context, orgID string) (httptransport.InheritanceChainResponse, error) {
	chain, err := h.Service.GetInheritanceChain(ctx, orgID)
	if err != nil {
		return httptransport.InheritanceChainResponse{}, err
	}

	nodes := make([]httptransport.ChainNodeDTO, 0, len(chain))
	for _, node := range chain {
		nodes = append(nodes, httptransport.ChainNodeDTO{
			ID:                   node.ID,
			Name:                 node.Name,
			ParentOrganizationID: node.ParentOrganizationID,
		})
	}
	return httptransport.InheritanceChainResponse{
		OrganizationID: orgID,
		Chain:          nodes,
	}, nil
}

// CanEnableHandler evaluates whether the organization may enable a feature.
func (h Handler) CanEnableHandler(ctx context.Context, orgID string, featureKey string) (httptransport.CanEnableResponse, error) {
	check, err := h.Service.CanEnableFeature(ctx, orgID, featureKey)
	if err != nil {
		return httptransport.CanEnableResponse{}, err
	}
	return httptransport.CanEnableResponse{
		OrganizationID: check.OrganizationID,
		FeatureKey:     check.FeatureKey,
		CanEnable:      check.CanEnable,
		Reason:         check.Reason,
		QuotaExceeded:  check.QuotaExceeded,
	}, nil
}

// OverrideStatusHandler reports where a feature's value comes from.
func (h Handler) OverrideStatusHandler(ctx context.Context, orgID string, featureKey string) (httptransport.OverrideStatusResponse, error) {
	status, err := h.Service.GetOverrideStatus(ctx, orgID, featureKey)
	if err != nil {
		return httptransport.OverrideStatusResponse{}, err
	}
	return httptransport.OverrideStatusResponse{
		OrganizationID: status.OrganizationID,
		FeatureKey:     status.FeatureKey,
		Status:         status.Status,
		Enabled:        status.Enabled,
		IsInherited:    status.IsInherited,
		InheritedFrom:  status.InheritedFrom,
	}, nil
}

// SetToggleHandler writes an organization's own toggle on behalf of an actor.
func (h Handler) SetToggleHandler(
	ctx context.Context,
	orgID string,
	featureKey string,
	actor string,
	request httptransport.SetToggleRequest,
) (httptransport.SetToggleResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	logger.Info("http set feature toggle received",
		"event", "feature_http_set_toggle_received",
		"module", "tenant-admin/feature-inheritance-service",
		"layer", "transport",
		"organization_id", orgID,
		"feature_key", featureKey,
		"enabled", request.Enabled,
		"actor", actor,
	)

	toggle, err := h.Service.SetFeatureToggle(ctx, orgID, featureKey, request.Enabled, actor)
	if err != nil {
		logger.Error("http set feature toggle failed",
			"event", "feature_http_set_toggle_failed",
			"module", "tenant-admin/feature-inheritance-service",
			"layer", "transport",
			"organization_id", orgID,
			"feature_key", featureKey,
			"error", err.Error(),
		)
		return httptransport.SetToggleResponse{}, err
	}
	return httptransport.SetToggleResponse{
		OrganizationID: toggle.OrganizationID,
		FeatureKey:     toggle.FeatureKey,
		Enabled:        toggle.Enabled,
		UpdatedBy:      toggle.UpdatedBy,
		UpdatedAt:      toggle.UpdatedAt,
	}, nil
}

func featureDTOs(features []entities.EffectiveFeature) []httptransport.EffectiveFeatureDTO {
	items := make([]httptransport.EffectiveFeatureDTO, 0, len(features))
	for _, feature := range features {
		items = append(items, httptransport.EffectiveFeatureDTO{
			FeatureKey:    feature.FeatureKey,
			Enabled:       feature.Enabled,
			IsInherited:   feature.IsInherited,
			InheritedFrom: feature.InheritedFrom,
		})
	}
	return items
}
