package application

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/tenant-admin/quota-service/domain/entities"
	domainerrors "loom/contexts/tenant-admin/quota-service/domain/errors"
	"loom/contexts/tenant-admin/quota-service/ports"
)

// Update operations accepted by UpdateQuotaUsage.
const (
	OperationIncrement = "increment"
	OperationDecrement = "decrement"
)

// Service enforces per-organization usage quotas.
type Service struct {
	Store  ports.QuotaStore
	Clock  ports.Clock
	Logger *slog.Logger
}

// GetOrganizationQuotas fetches the quota row, lazily creating it with
// system defaults. If creation itself fails the caller still receives a
// default quota snapshot (degraded but available).
func (s Service) GetOrganizationQuotas(ctx context.Context, orgID string) (entities.OrganizationQuota, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.OrganizationQuota{}, domainerrors.ErrInvalidOrganizationID
	}

	quota, found, err := s.Store.GetQuotas(ctx, orgID)
	if err != nil {
		return entities.OrganizationQuota{}, err
	}
	if found {
		return quota, nil
	}

	quota = entities.NewDefaultQuota(orgID, s.now())
	if err := s.Store.CreateQuotas(ctx, quota); err != nil {
		ResolveLogger(s.Logger).Warn("quota lazy create failed, serving defaults",
			"event", "quota_lazy_create_failed",
			"module", "tenant-admin/quota-service",
			"layer", "application",
			"organization_id", orgID,
			"error", err.Error(),
		)
	}
	return quota, nil
}

// CheckQuotaLimits evaluates headroom for one resource class without
// consuming it. Unknown classes pass unconditionally.
func (s Service) CheckQuotaLimits(
	ctx context.Context,
	orgID string,
	resourceClass string,
	quantity int64,
) (entities.QuotaCheck, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.QuotaCheck{}, domainerrors.ErrInvalidOrganizationID
	}
	if quantity < 0 {
		return entities.QuotaCheck{}, domainerrors.ErrInvalidQuantity
	}

	quota, err := s.GetOrganizationQuotas(ctx, orgID)
	if err != nil {
		return entities.QuotaCheck{}, err
	}

	check := entities.QuotaCheck{
		OrganizationID: orgID,
		QuotaType:      resourceClass,
		Requested:      quantity,
	}
	counter, metered := quota.CounterFor(resourceClass)
	if !metered {
		check.Passed = true
		return check, nil
	}

	check.Current = counter.Current
	check.Limit = counter.Max
	if counter.Current+quantity > counter.Max {
		check.Exceeded = true
		ResolveLogger(s.Logger).Info("quota check exceeded",
			"event", "quota_check_exceeded",
			"module", "tenant-admin/quota-service",
			"layer", "application",
			"organization_id", orgID,
			"quota_type", resourceClass,
			"current", counter.Current,
			"limit", counter.Max,
			"requested", quantity,
		)
		return check, nil
	}
	check.Passed = true
	return check, nil
}

// UpdateQuotaUsage applies an increment or decrement to one counter and
// persists it. No clamping is applied to the new value; see repository
// design notes on negative counters. A write affecting no rows is a
// failure.
func (s Service) UpdateQuotaUsage(
	ctx context.Context,
	orgID string,
	resourceClass string,
	quantity int64,
	operation string,
) (entities.OrganizationQuota, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.OrganizationQuota{}, domainerrors.ErrInvalidOrganizationID
	}
	if quantity < 0 {
		return entities.OrganizationQuota{}, domainerrors.ErrInvalidQuantity
	}

	quota, err := s.GetOrganizationQuotas(ctx, orgID)
	if err != nil {
		return entities.OrganizationQuota{}, err
	}
	counter, metered := quota.CounterFor(resourceClass)
	if !metered {
		return entities.OrganizationQuota{}, domainerrors.ErrUnknownQuotaType
	}

	var newValue int64
	switch operation {
	case OperationIncrement:
		newValue = counter.Current + quantity
	case OperationDecrement:
		newValue = counter.Current - quantity
	default:
		return entities.OrganizationQuota{}, domainerrors.ErrUnknownOperation
	}

	now := s.now()
	affected, err := s.Store.UpdateUsage(ctx, orgID, resourceClass, newValue, now)
	if err != nil {
		return entities.OrganizationQuota{}, err
	}
	if !affected {
		return entities.OrganizationQuota{}, domainerrors.ErrQuotaWriteFailed
	}

	updated, found, err := s.Store.GetQuotas(ctx, orgID)
	if err != nil || !found {
		if err == nil {
			err = domainerrors.ErrQuotaWriteFailed
		}
		return entities.OrganizationQuota{}, err
	}

	ResolveLogger(s.Logger).Info("quota usage updated",
		"event", "quota_usage_updated",
		"module", "tenant-admin/quota-service",
		"layer", "application",
		"organization_id", orgID,
		"quota_type", resourceClass,
		"operation", operation,
		"quantity", quantity,
		"new_value", newValue,
	)
	return updated, nil
}

// ReserveQuota consumes headroom atomically: the store applies a single
// increment-if-below-limit so concurrent callers cannot jointly exceed
// the limit. Unknown classes pass unmetered.
func (s Service) ReserveQuota(
	ctx context.Context,
	orgID string,
	resourceClass string,
	quantity int64,
) (entities.QuotaCheck, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.QuotaCheck{}, domainerrors.ErrInvalidOrganizationID
	}
	if quantity < 0 {
		return entities.QuotaCheck{}, domainerrors.ErrInvalidQuantity
	}

	check := entities.QuotaCheck{
		OrganizationID: orgID,
		QuotaType:      resourceClass,
		Requested:      quantity,
	}
	if _, metered := (entities.OrganizationQuota{}).CounterFor(resourceClass); !metered {
		check.Passed = true
		return check, nil
	}

	// Ensure the row exists so the conditional update has a target.
	if _, err := s.GetOrganizationQuotas(ctx, orgID); err != nil {
		return entities.QuotaCheck{}, err
	}

	snapshot, reserved, err := s.Store.ReserveUsage(ctx, orgID, resourceClass, quantity, s.now())
	if err != nil {
		return entities.QuotaCheck{}, err
	}
	counter, _ := snapshot.CounterFor(resourceClass)
	check.Current = counter.Current
	check.Limit = counter.Max
	if !reserved {
		check.Exceeded = true
		return check, nil
	}
	check.Passed = true
	return check, nil
}

// ResetQuotaUsage zeroes usage for one resource class, or all classes
// when none is named.
func (s Service) ResetQuotaUsage(ctx context.Context, orgID string, resourceClass string) (entities.OrganizationQuota, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.OrganizationQuota{}, domainerrors.ErrInvalidOrganizationID
	}

	classes := []string{entities.ClassContextItems, entities.ClassGlobalAccess, entities.ClassSharingRequests}
	if resourceClass != "" {
		if _, metered := (entities.OrganizationQuota{}).CounterFor(resourceClass); !metered {
			return entities.OrganizationQuota{}, domainerrors.ErrUnknownQuotaType
		}
		classes = []string{resourceClass}
	}

	if _, err := s.GetOrganizationQuotas(ctx, orgID); err != nil {
		return entities.OrganizationQuota{}, err
	}
	if err := s.Store.ResetUsage(ctx, orgID, classes, s.now()); err != nil {
		return entities.OrganizationQuota{}, err
	}

	quota, found, err := s.Store.GetQuotas(ctx, orgID)
	if err != nil {
		return entities.OrganizationQuota{}, err
	}
	if !found {
		return entities.OrganizationQuota{}, domainerrors.ErrQuotaWriteFailed
	}

	ResolveLogger(s.Logger).Info("quota usage reset",
		"event", "quota_usage_reset",
		"module", "tenant-admin/quota-service",
		"layer", "application",
		"organization_id", orgID,
		"quota_types", classes,
	)
	return quota, nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}
