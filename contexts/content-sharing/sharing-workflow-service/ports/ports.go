package ports

import (
	"context"
	"time"

	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
)

// Clock abstracts current time for deterministic tests.
type Clock interface {
	Now() time.Time
}

// IDGenerator mints identifiers for sharing requests, item copies and
// outbox rows.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OrganizationRecord mirrors the directory's view of an organization.
type OrganizationRecord struct {
	ID       string
	Name     string
	ParentID *string
}

// OrganizationDirectory resolves organizations and hierarchy edges.
type OrganizationDirectory interface {
	GetOrganization(ctx context.Context, orgID string) (OrganizationRecord, bool, error)
	ListChildOrganizations(ctx context.Context, parentOrgID string) ([]OrganizationRecord, error)
}

// SharingStore persists sharing requests.
//
// FindActiveRequest looks up a non-rejected request for the tuple so the
// uniqueness invariant can be checked before insert. CreateRequest must
// return the domain conflict sentinel when the storage-level uniqueness
// constraint fires anyway.
type SharingStore interface {
	FindActiveRequest(ctx context.Context, sourceOrgID string, targetOrgID string, featureKey string, itemID string) (entities.SharingRequest, bool, error)
	CreateRequest(ctx context.Context, request entities.SharingRequest) error
	GetRequest(ctx context.Context, sharingID string) (entities.SharingRequest, bool, error)
	UpdateRequest(ctx context.Context, request entities.SharingRequest) error
	ListPendingByTarget(ctx context.Context, targetOrgID string, featureKey string) ([]entities.SharingRequest, error)
	CountSharingStats(ctx context.Context, orgID string) (entities.HierarchySharingStats, error)
}

// ContextItemStore reads source items and materializes approved copies.
type ContextItemStore interface {
	GetItem(ctx context.Context, orgID string, featureKey string, itemID string) (entities.ContextItem, bool, error)
	InsertCopy(ctx context.Context, item entities.ContextItem) error
}

// QuotaDecision is the answer from the quota collaborator.
type QuotaDecision struct {
	Passed  bool
	Current int64
	Limit   int64
}

// QuotaReserver consumes one sharing_requests quota unit for the source
// organization. A nil reserver means sharing is unmetered.
type QuotaReserver interface {
	ReserveSharingRequest(ctx context.Context, orgID string) (QuotaDecision, error)
}

// OutboxMessage is one pending relay row.
type OutboxMessage struct {
	OutboxID  string
	EventType string
	Payload   []byte
	CreatedAt time.Time
}

// OutboxWriter appends event rows alongside workflow mutations.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message OutboxMessage) error
}

// OutboxRepository supports worker relay polling and acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// SharingEvent is the outbox payload shape for workflow transitions.
type SharingEvent struct {
	EventID              string    `json:"event_id"`
	EventType            string    `json:"event_type"`
	OccurredAt           time.Time `json:"occurred_at"`
	SharingID            string    `json:"sharing_id"`
	SourceOrganizationID string    `json:"source_organization_id"`
	TargetOrganizationID string    `json:"target_organization_id"`
	FeatureKey           string    `json:"feature_key"`
	ItemID               string    `json:"item_id"`
}

// SharingEventPublisher emits workflow events to the event bus adapter.
type SharingEventPublisher interface {
	PublishSharingEvent(ctx context.Context, event SharingEvent) error
}
