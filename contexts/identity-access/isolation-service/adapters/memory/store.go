package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"loom/contexts/identity-access/isolation-service/domain/entities"
	"loom/contexts/identity-access/isolation-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the directory, grant and
// policy ports. It is intended for tests and local development wiring.
type Store struct {
	mu sync.RWMutex

	users         map[string]ports.UserRecord
	organizations map[string]ports.OrganizationRecord
	grants        map[string]entities.IsolationGrant
	policies      map[string]entities.IsolationPolicy
}

// NewStore builds an empty in-memory adapter.
func NewStore() *Store {
	return &Store{
		users:         make(map[string]ports.UserRecord),
		organizations: make(map[string]ports.OrganizationRecord),
		grants:        make(map[string]entities.IsolationGrant),
		policies:      make(map[string]entities.IsolationPolicy),
	}
}

// SeedUser registers a directory user for tests/dev wiring.
func (s *Store) SeedUser(user ports.UserRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[user.UserID] = user
}

// SeedOrganization registers a directory organization for tests/dev wiring.
func (s *Store) SeedOrganization(org ports.OrganizationRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[org.ID] = org
}

func (s *Store) GetUser(_ context.Context, userID string) (ports.UserRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	return user, ok, nil
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (ports.OrganizationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	org, ok := s.organizations[orgID]
	return org, ok, nil
}

func (s *Store) HasAnyGrant(
	_ context.Context,
	granteeIDs []string,
	targetOrgID string,
	resourceType string,
) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, grant := range s.grants {
		if grant.TargetOrganizationID != targetOrgID || grant.ResourceType != resourceType {
			continue
		}
		for _, granteeID := range granteeIDs {
			if grant.GranteeID == granteeID {
				return true, nil
			}
		}
	}
	return false, nil
}

func (s *Store) CreateGrant(_ context.Context, grant entities.IsolationGrant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.grants[grant.GrantID] = grant
	return nil
}

func (s *Store) CreatePolicy(_ context.Context, policy entities.IsolationPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.policies[policy.PolicyID] = policy
	return nil
}

func (s *Store) ListPolicies(_ context.Context, orgID string) ([]entities.IsolationPolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.IsolationPolicy, 0)
	for _, policy := range s.policies {
		if policy.OrganizationID == orgID {
			items = append(items, policy)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
