package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
	domainerrors "loom/contexts/content-sharing/sharing-workflow-service/domain/errors"
	"loom/contexts/content-sharing/sharing-workflow-service/ports"

	"github.com/google/uuid"
)

// Store is an in-memory adapter implementing the sharing, item,
// directory and outbox ports. It is intended for tests and local
// development wiring.
type Store struct {
	mu sync.RWMutex

	organizations map[string]ports.OrganizationRecord
	requests      map[string]entities.SharingRequest
	items         map[string]entities.ContextItem
	outbox        map[string]outboxRow
}

type outboxRow struct {
	ports.OutboxMessage
	PublishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		organizations: make(map[string]ports.OrganizationRecord),
		requests:      make(map[string]entities.SharingRequest),
		items:         make(map[string]entities.ContextItem),
		outbox:        make(map[string]outboxRow),
	}
}

// SeedOrganization registers an organization node for hierarchy lookups.
func (s *Store) SeedOrganization(id string, name string, parentID *string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.organizations[id] = ports.OrganizationRecord{ID: id, Name: name, ParentID: parentID}
}

// SeedContextItem registers a source item eligible for sharing.
func (s *Store) SeedContextItem(item entities.ContextItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[itemKey(item.OrganizationID, item.FeatureKey, item.ItemID)] = item
}

func (s *Store) GetOrganization(_ context.Context, orgID string) (ports.OrganizationRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.organizations[orgID]
	return record, ok, nil
}

func (s *Store) ListChildOrganizations(_ context.Context, parentOrgID string) ([]ports.OrganizationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	children := make([]ports.OrganizationRecord, 0)
	for _, record := range s.organizations {
		if record.ParentID != nil && *record.ParentID == parentOrgID {
			children = append(children, record)
		}
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].ID < children[j].ID
	})
	return children, nil
}

func (s *Store) FindActiveRequest(
	_ context.Context,
	sourceOrgID string,
	targetOrgID string,
	featureKey string,
	itemID string,
) (entities.SharingRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, request := range s.requests {
		if request.SourceOrganizationID != sourceOrgID ||
			request.TargetOrganizationID != targetOrgID ||
			request.FeatureKey != featureKey ||
			request.ItemID != itemID {
			continue
		}
		if request.Status == entities.StatusPending || request.Status == entities.StatusApproved {
			return request, true, nil
		}
	}
	return entities.SharingRequest{}, false, nil
}

func (s *Store) CreateRequest(_ context.Context, request entities.SharingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[request.SharingID]; exists {
		return domainerrors.ErrSharingRequestExists
	}
	s.requests[request.SharingID] = request
	return nil
}

func (s *Store) GetRequest(_ context.Context, sharingID string) (entities.SharingRequest, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	request, ok := s.requests[sharingID]
	return request, ok, nil
}

func (s *Store) UpdateRequest(_ context.Context, request entities.SharingRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.requests[request.SharingID]; !exists {
		return domainerrors.ErrSharingRequestNotFound
	}
	s.requests[request.SharingID] = request
	return nil
}

func (s *Store) ListPendingByTarget(_ context.Context, targetOrgID string, featureKey string) ([]entities.SharingRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.SharingRequest, 0)
	for _, request := range s.requests {
		if request.TargetOrganizationID != targetOrgID || request.Status != entities.StatusPending {
			continue
		}
		if featureKey != "" && request.FeatureKey != featureKey {
			continue
		}
		items = append(items, request)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) CountSharingStats(_ context.Context, orgID string) (entities.HierarchySharingStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := entities.HierarchySharingStats{OrganizationID: orgID}
	for _, request := range s.requests {
		outgoing := request.SourceOrganizationID == orgID
		incoming := request.TargetOrganizationID == orgID
		if outgoing {
			stats.OutgoingRequests++
		}
		if incoming {
			stats.IncomingRequests++
		}
		if (outgoing || incoming) && request.Status == entities.StatusPending {
			stats.PendingRequests++
		}
	}
	return stats, nil
}

func (s *Store) GetItem(_ context.Context, orgID string, featureKey string, itemID string) (entities.ContextItem, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[itemKey(orgID, featureKey, itemID)]
	return item, ok, nil
}

func (s *Store) InsertCopy(_ context.Context, item entities.ContextItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[itemKey(item.OrganizationID, item.FeatureKey, item.ItemID)] = item
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, message ports.OutboxMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.outbox[message.OutboxID]; exists {
		return errors.New("outbox record already exists")
	}
	message.Payload = append([]byte(nil), message.Payload...)
	s.outbox[message.OutboxID] = outboxRow{OutboxMessage: message}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]ports.OutboxMessage, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			rows = append(rows, row.OutboxMessage)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.outbox[outboxID]
	if !ok {
		return errors.New("outbox record not found")
	}
	value := publishedAt.UTC()
	row.PublishedAt = &value
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func itemKey(orgID string, featureKey string, itemID string) string {
	return orgID + "/" + featureKey + "/" + itemID
}

var (
	_ ports.OrganizationDirectory = (*Store)(nil)
	_ ports.SharingStore          = (*Store)(nil)
	_ ports.ContextItemStore      = (*Store)(nil)
	_ ports.OutboxWriter          = (*Store)(nil)
	_ ports.OutboxRepository      = (*Store)(nil)
)
