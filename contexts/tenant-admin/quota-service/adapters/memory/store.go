package memory

import (
	"context"
	"sync"
	"time"

	"loom/contexts/tenant-admin/quota-service/domain/entities"
	"loom/contexts/tenant-admin/quota-service/ports"
)

// Store is an in-memory adapter implementing the quota store port. The
// reserve path runs under the store mutex, so concurrent reservations
// observe the same serialized counter the postgres adapter guarantees
// with a conditional update.
type Store struct {
	mu     sync.Mutex
	quotas map[string]entities.OrganizationQuota
}

// NewStore builds an empty in-memory adapter.
func NewStore() *Store {
	return &Store{
		quotas: make(map[string]entities.OrganizationQuota),
	}
}

func (s *Store) GetQuotas(_ context.Context, orgID string) (entities.OrganizationQuota, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, ok := s.quotas[orgID]
	return quota, ok, nil
}

func (s *Store) CreateQuotas(_ context.Context, quota entities.OrganizationQuota) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.quotas[quota.OrganizationID]; !exists {
		s.quotas[quota.OrganizationID] = quota
	}
	return nil
}

func (s *Store) UpdateUsage(
	_ context.Context,
	orgID string,
	resourceClass string,
	newValue int64,
	now time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, ok := s.quotas[orgID]
	if !ok {
		return false, nil
	}
	if !setCurrent(&quota, resourceClass, newValue) {
		return false, nil
	}
	quota.UpdatedAt = now
	s.quotas[orgID] = quota
	return true, nil
}

func (s *Store) ReserveUsage(
	_ context.Context,
	orgID string,
	resourceClass string,
	quantity int64,
	now time.Time,
) (entities.OrganizationQuota, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, ok := s.quotas[orgID]
	if !ok {
		return entities.OrganizationQuota{}, false, nil
	}
	counter, metered := quota.CounterFor(resourceClass)
	if !metered {
		return quota, true, nil
	}
	if counter.Current+quantity > counter.Max {
		return quota, false, nil
	}
	setCurrent(&quota, resourceClass, counter.Current+quantity)
	quota.UpdatedAt = now
	s.quotas[orgID] = quota
	return quota, true, nil
}

func (s *Store) ResetUsage(_ context.Context, orgID string, resourceClasses []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	quota, ok := s.quotas[orgID]
	if !ok {
		return nil
	}
	for _, class := range resourceClasses {
		setCurrent(&quota, class, 0)
	}
	quota.UpdatedAt = now
	s.quotas[orgID] = quota
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func setCurrent(quota *entities.OrganizationQuota, resourceClass string, value int64) bool {
	switch resourceClass {
	case entities.ClassContextItems:
		quota.ContextItems.Current = value
	case entities.ClassGlobalAccess:
		quota.GlobalAccess.Current = value
	case entities.ClassSharingRequests:
		quota.SharingRequests.Current = value
	default:
		return false
	}
	return true
}

var _ ports.QuotaStore = (*Store)(nil)
