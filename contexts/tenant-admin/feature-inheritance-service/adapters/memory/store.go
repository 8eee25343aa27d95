package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"loom/contexts/tenant-admin/feature-inheritance-service/domain/entities"
	"loom/contexts/tenant-admin/feature-inheritance-service/ports"
)

// Store is an in-memory adapter implementing the directory and toggle
// ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	organizations map[string]ports.OrganizationRecord
	toggles       map[string]map[string]entities.FeatureToggle
}

// NewStore builds an empty in-memory adapter.
func NewStore() *Store {
	return &Store{
		organizations: make(map[string]ports.OrganizationRecord),
		toggles:       make(map[string]map[string]entities.FeatureToggle),
	}
}

// SeedOrganization registers a directory organization for tests/dev wiring.
func (s *Store) SeedOrganization(org ports.OrganizationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[org.ID] = org
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (ports.OrganizationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[orgID]
	return org, ok, nil
}

func (s *Store) ListOwnToggles(_ context.Context, orgID string) ([]entities.FeatureToggle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.FeatureToggle, 0, len(s.toggles[orgID]))
	for _, toggle := range s.toggles[orgID] {
		items = append(items, toggle)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].FeatureKey < items[j].FeatureKey
	})
	return items, nil
}

func (s *Store) GetOwnToggle(_ context.Context, orgID string, featureKey string) (entities.FeatureToggle, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	toggle, ok := s.toggles[orgID][featureKey]
	return toggle, ok, nil
}

func (s *Store) UpsertToggle(_ context.Context, toggle entities.FeatureToggle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.toggles[toggle.OrganizationID] == nil {
		s.toggles[toggle.OrganizationID] = make(map[string]entities.FeatureToggle)
	}
	s.toggles[toggle.OrganizationID][toggle.FeatureKey] = toggle
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}
