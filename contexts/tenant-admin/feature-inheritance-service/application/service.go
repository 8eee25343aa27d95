package application

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"loom/contexts/tenant-admin/feature-inheritance-service/domain/entities"
	domainerrors "loom/contexts/tenant-admin/feature-inheritance-service/domain/errors"
	"loom/contexts/tenant-admin/feature-inheritance-service/ports"
)

// maxChainDepth bounds the inheritance chain walk. Directory data is
// expected to be acyclic but the walk must terminate even when it is not.
const maxChainDepth = 32

const (
	reasonNoParent              = "organization has no parent"
	reasonEnabledByParent       = "enabled by parent organization"
	reasonDisabledByParent      = "disabled by parent organization"
	reasonNotConfiguredByParent = "not configured by parent"
	reasonQuotaExceeded         = "global access feature quota exceeded"
)

// Service resolves inherited and effective feature flags for one
// organization and guards the toggle write path.
type Service struct {
	Directory ports.OrganizationDirectory
	Toggles   ports.ToggleStore
	Quota     ports.QuotaGate
	Clock     ports.Clock
	Logger    *slog.Logger
}

// GetInheritedFeatures returns the immediate parent's own toggles tagged
// as inherited. A root organization inherits nothing.
func (s Service) GetInheritedFeatures(ctx context.Context, orgID string) ([]entities.EffectiveFeature, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}

	org, found, err := s.Directory.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, domainerrors.ErrOrganizationNotFound
	}
	if org.ParentID == "" {
		return []entities.EffectiveFeature{}, nil
	}

	parentToggles, err := s.Toggles.ListOwnToggles(ctx, org.ParentID)
	if err != nil {
		return nil, err
	}

	inherited := make([]entities.EffectiveFeature, 0, len(parentToggles))
	for _, toggle := range parentToggles {
		inherited = append(inherited, entities.EffectiveFeature{
			FeatureKey:    toggle.FeatureKey,
			Enabled:       toggle.Enabled,
			IsInherited:   true,
			InheritedFrom: org.ParentID,
		})
	}
	sort.Slice(inherited, func(i, j int) bool {
		return inherited[i].FeatureKey < inherited[j].FeatureKey
	})
	return inherited, nil
}

// GetInheritanceChain walks parent links from orgID to the root. The walk
// tracks visited ids and stops at maxChainDepth so a cyclic parent chain
// still terminates.
func (s Service) GetInheritanceChain(ctx context.Context, orgID string) ([]entities.OrganizationNode, error) {
	if strings.TrimSpace(orgID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}

	chain := make([]entities.OrganizationNode, 0)
	visited := make(map[string]struct{})
	current := orgID

	for depth := 0; depth < maxChainDepth; depth++ {
		if current == "" {
			break
		}
		if _, seen := visited[current]; seen {
			ResolveLogger(s.Logger).Warn("cycle detected in organization hierarchy",
				"event", "feature_inheritance_chain_cycle",
				"module", "tenant-admin/feature-inheritance-service",
				"layer", "application",
				"organization_id", orgID,
				"cycle_at", current,
			)
			break
		}
		visited[current] = struct{}{}

		org, found, err := s.Directory.GetOrganization(ctx, current)
		if err != nil {
			return nil, err
		}
		if !found {
			break
		}
		chain = append(chain, entities.OrganizationNode{
			ID:                   org.ID,
			Name:                 org.Name,
			ParentOrganizationID: org.ParentID,
		})
		current = org.ParentID
	}
	return chain, nil
}

// GetEffectiveFeatures merges inherited toggles with the organization's
// own. Own settings always win for the same feature key.
func (s Service) GetEffectiveFeatures(ctx context.Context, orgID string) (entities.EffectiveFeatureSet, error) {
	inherited, err := s.GetInheritedFeatures(ctx, orgID)
	if err != nil {
		return entities.EffectiveFeatureSet{}, err
	}

	own, err := s.Toggles.ListOwnToggles(ctx, orgID)
	if err != nil {
		return entities.EffectiveFeatureSet{}, err
	}

	merged := make(map[string]entities.EffectiveFeature, len(inherited)+len(own))
	for _, feature := range inherited {
		merged[feature.FeatureKey] = feature
	}
	for _, toggle := range own {
		merged[toggle.FeatureKey] = entities.EffectiveFeature{
			FeatureKey:  toggle.FeatureKey,
			Enabled:     toggle.Enabled,
			IsInherited: false,
		}
	}

	features := make([]entities.EffectiveFeature, 0, len(merged))
	inheritedCount := 0
	ownCount := 0
	for _, feature := range merged {
		if feature.IsInherited {
			inheritedCount++
		} else {
			ownCount++
		}
		features = append(features, feature)
	}
	sort.Slice(features, func(i, j int) bool {
		return features[i].FeatureKey < features[j].FeatureKey
	})

	return entities.EffectiveFeatureSet{
		OrganizationID: orgID,
		Features:       features,
		InheritedCount: inheritedCount,
		OwnCount:       ownCount,
	}, nil
}

// CanEnableFeature reports whether the organization may turn a feature
// on. A parented organization needs the parent's explicit enablement plus
// global-access quota headroom.
func (s Service) CanEnableFeature(ctx context.Context, orgID string, featureKey string) (entities.EnableCheck, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.EnableCheck{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(featureKey) == "" {
		return entities.EnableCheck{}, domainerrors.ErrInvalidFeatureKey
	}

	check := entities.EnableCheck{
		OrganizationID: orgID,
		FeatureKey:     featureKey,
	}

	allowed, reason, err := s.parentAllowsEnable(ctx, orgID, featureKey)
	if err != nil {
		return entities.EnableCheck{}, err
	}
	check.Reason = reason
	if !allowed {
		return check, nil
	}

	if s.Quota != nil {
		decision, err := s.Quota.Check(ctx, orgID, 1)
		if err != nil {
			return entities.EnableCheck{}, err
		}
		if !decision.Passed {
			check.CanEnable = false
			check.QuotaExceeded = true
			check.Reason = reasonQuotaExceeded
			return check, nil
		}
	}

	check.CanEnable = true
	return check, nil
}

// GetOverrideStatus reports whether a feature's value at the organization
// comes from its own toggle, from inheritance, or is unset.
func (s Service) GetOverrideStatus(ctx context.Context, orgID string, featureKey string) (entities.OverrideStatus, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.OverrideStatus{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(featureKey) == "" {
		return entities.OverrideStatus{}, domainerrors.ErrInvalidFeatureKey
	}

	status := entities.OverrideStatus{
		OrganizationID: orgID,
		FeatureKey:     featureKey,
		Status:         entities.OverrideStatusUnknown,
	}

	own, found, err := s.Toggles.GetOwnToggle(ctx, orgID, featureKey)
	if err != nil {
		return entities.OverrideStatus{}, err
	}
	if found {
		status.Enabled = own.Enabled
		if own.Enabled {
			status.Status = entities.OverrideStatusEnabled
		} else {
			status.Status = entities.OverrideStatusDisabled
		}
		return status, nil
	}

	inherited, err := s.GetInheritedFeatures(ctx, orgID)
	if err != nil {
		return entities.OverrideStatus{}, err
	}
	for _, feature := range inherited {
		if feature.FeatureKey == featureKey {
			status.Status = entities.OverrideStatusInherited
			status.Enabled = feature.Enabled
			status.IsInherited = true
			status.InheritedFrom = feature.InheritedFrom
			return status, nil
		}
	}
	return status, nil
}

// SetFeatureToggle writes an organization's own toggle. Enabling is gated
// by parent enablement and an atomic global-access quota reservation;
// disabling an own-enabled toggle releases the reserved unit.
func (s Service) SetFeatureToggle(
	ctx context.Context,
	orgID string,
	featureKey string,
	enabled bool,
	actor string,
) (entities.FeatureToggle, error) {
	logger := ResolveLogger(s.Logger)
	if strings.TrimSpace(orgID) == "" {
		return entities.FeatureToggle{}, domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(featureKey) == "" {
		return entities.FeatureToggle{}, domainerrors.ErrInvalidFeatureKey
	}

	existing, hadOwn, err := s.Toggles.GetOwnToggle(ctx, orgID, featureKey)
	if err != nil {
		return entities.FeatureToggle{}, err
	}

	if enabled {
		allowed, reason, err := s.parentAllowsEnable(ctx, orgID, featureKey)
		if err != nil {
			return entities.FeatureToggle{}, err
		}
		if !allowed {
			if reason == reasonDisabledByParent {
				return entities.FeatureToggle{}, domainerrors.ErrFeatureDisabledByParent
			}
			return entities.FeatureToggle{}, domainerrors.ErrFeatureNotConfiguredByParent
		}

		alreadyEnabled := hadOwn && existing.Enabled
		if s.Quota != nil && !alreadyEnabled {
			decision, err := s.Quota.Reserve(ctx, orgID, 1)
			if err != nil {
				return entities.FeatureToggle{}, err
			}
			if !decision.Passed {
				return entities.FeatureToggle{}, domainerrors.ErrGlobalAccessQuotaExceeded
			}
		}
	}

	toggle := entities.FeatureToggle{
		OrganizationID: orgID,
		FeatureKey:     featureKey,
		Enabled:        enabled,
		UpdatedBy:      strings.TrimSpace(actor),
		UpdatedAt:      s.now(),
	}
	if err := s.Toggles.UpsertToggle(ctx, toggle); err != nil {
		return entities.FeatureToggle{}, err
	}

	if !enabled && hadOwn && existing.Enabled && s.Quota != nil {
		if err := s.Quota.Release(ctx, orgID, 1); err != nil {
			logger.Warn("global access quota release failed after disable",
				"event", "feature_inheritance_quota_release_failed",
				"module", "tenant-admin/feature-inheritance-service",
				"layer", "application",
				"organization_id", orgID,
				"feature_key", featureKey,
				"error", err.Error(),
			)
		}
	}

	logger.Info("feature toggle updated",
		"event", "feature_inheritance_toggle_updated",
		"module", "tenant-admin/feature-inheritance-service",
		"layer", "application",
		"organization_id", orgID,
		"feature_key", featureKey,
		"enabled", enabled,
		"actor", toggle.UpdatedBy,
	)
	return toggle, nil
}

// parentAllowsEnable applies the conservative default: a feature must be
// explicitly enabled by the parent before a child may turn it on. Root
// organizations are unconstrained.
func (s Service) parentAllowsEnable(ctx context.Context, orgID string, featureKey string) (bool, string, error) {
	org, found, err := s.Directory.GetOrganization(ctx, orgID)
	if err != nil {
		return false, "", err
	}
	if !found {
		return false, "", domainerrors.ErrOrganizationNotFound
	}
	if org.ParentID == "" {
		return true, reasonNoParent, nil
	}

	parentToggle, found, err := s.Toggles.GetOwnToggle(ctx, org.ParentID, featureKey)
	if err != nil {
		return false, "", err
	}
	if !found {
		return false, reasonNotConfiguredByParent, nil
	}
	if !parentToggle.Enabled {
		return false, reasonDisabledByParent, nil
	}
	return true, reasonEnabledByParent, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
