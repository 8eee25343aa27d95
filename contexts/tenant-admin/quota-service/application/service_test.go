package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"loom/contexts/tenant-admin/quota-service/domain/entities"
)

// failingCreateStore reports no row and refuses creation, simulating a
// degraded persistence layer during lazy quota provisioning.
type failingCreateStore struct{}

func (failingCreateStore) GetQuotas(context.Context, string) (entities.OrganizationQuota, bool, error) {
	return entities.OrganizationQuota{}, false, nil
}

func (failingCreateStore) CreateQuotas(context.Context, entities.OrganizationQuota) error {
	return errors.New("insert rejected")
}

func (failingCreateStore) UpdateUsage(context.Context, string, string, int64, time.Time) (bool, error) {
	return false, errors.New("not implemented")
}

func (failingCreateStore) ReserveUsage(context.Context, string, string, int64, time.Time) (entities.OrganizationQuota, bool, error) {
	return entities.OrganizationQuota{}, false, errors.New("not implemented")
}

func (failingCreateStore) ResetUsage(context.Context, string, []string, time.Time) error {
	return errors.New("not implemented")
}

func TestGetOrganizationQuotasServesDefaultsWhenCreateFails(t *testing.T) {
	service := Service{Store: failingCreateStore{}}

	quota, err := service.GetOrganizationQuotas(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("expected degraded success, got %v", err)
	}
	if quota.OrganizationID != "org-1" {
		t.Fatalf("unexpected organization id: %s", quota.OrganizationID)
	}
	if quota.ContextItems.Max != entities.DefaultContextItemsLimit ||
		quota.GlobalAccess.Max != entities.DefaultGlobalAccessLimit ||
		quota.SharingRequests.Max != entities.DefaultSharingRequestsLimit {
		t.Fatalf("expected default limits, got %+v", quota)
	}
}
