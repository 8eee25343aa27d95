package bootstrap

import (
	"context"

	sharingports "loom/contexts/content-sharing/sharing-workflow-service/ports"
	featureports "loom/contexts/tenant-admin/feature-inheritance-service/ports"
	quotaapp "loom/contexts/tenant-admin/quota-service/application"
	quotaentities "loom/contexts/tenant-admin/quota-service/domain/entities"
	"loom/internal/platform/messaging"
	"loom/internal/shared/events"
)

// Cross-service port adapters. Modules depend only on their own ports;
// the composition root bridges them onto sibling services here.

// featureQuotaGate meters global-access feature activations against the
// quota service.
type featureQuotaGate struct {
	quotas quotaapp.Service
}

func (g featureQuotaGate) Check(ctx context.Context, orgID string, quantity int64) (featureports.QuotaDecision, error) {
	check, err := g.quotas.CheckQuotaLimits(ctx, orgID, quotaentities.ClassGlobalAccess, quantity)
	if err != nil {
		return featureports.QuotaDecision{}, err
	}
	return featureDecision(check), nil
}

func (g featureQuotaGate) Reserve(ctx context.Context, orgID string, quantity int64) (featureports.QuotaDecision, error) {
	check, err := g.quotas.ReserveQuota(ctx, orgID, quotaentities.ClassGlobalAccess, quantity)
	if err != nil {
		return featureports.QuotaDecision{}, err
	}
	return featureDecision(check), nil
}

func (g featureQuotaGate) Release(ctx context.Context, orgID string, quantity int64) error {
	_, err := g.quotas.UpdateQuotaUsage(ctx, orgID, quotaentities.ClassGlobalAccess, quantity, quotaapp.OperationDecrement)
	return err
}

func featureDecision(check quotaentities.QuotaCheck) featureports.QuotaDecision {
	return featureports.QuotaDecision{
		Passed:    check.Passed,
		QuotaType: check.QuotaType,
		Current:   check.Current,
		Limit:     check.Limit,
		Requested: check.Requested,
	}
}

// sharingQuotaReserver consumes one sharing_requests unit per proposed
// share.
type sharingQuotaReserver struct {
	quotas quotaapp.Service
}

func (g sharingQuotaReserver) ReserveSharingRequest(ctx context.Context, orgID string) (sharingports.QuotaDecision, error) {
	check, err := g.quotas.ReserveQuota(ctx, orgID, quotaentities.ClassSharingRequests, 1)
	if err != nil {
		return sharingports.QuotaDecision{}, err
	}
	return sharingports.QuotaDecision{
		Passed:  check.Passed,
		Current: check.Current,
		Limit:   check.Limit,
	}, nil
}

// busSharingPublisher wraps relayed sharing events into the canonical
// envelope and publishes them on the platform bus.
type busSharingPublisher struct {
	bus     *messaging.Bus
	service string
}

func (p busSharingPublisher) PublishSharingEvent(ctx context.Context, event sharingports.SharingEvent) error {
	envelope := events.NewEnvelope(
		event.EventID,
		event.EventType,
		p.service,
		"sharing_request",
		event.SharingID,
		event.OccurredAt,
		event,
	)
	return p.bus.Publish(ctx, "sharing.events", envelope)
}
