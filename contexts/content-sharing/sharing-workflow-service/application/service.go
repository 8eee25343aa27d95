package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
	domainerrors "loom/contexts/content-sharing/sharing-workflow-service/domain/errors"
	"loom/contexts/content-sharing/sharing-workflow-service/ports"
)

// Event types written to the workflow outbox.
const (
	EventSharingRequested = "sharing.requested"
	EventSharingApproved  = "sharing.approved"
	EventSharingRejected  = "sharing.rejected"
)

// Service drives the sharing request state machine.
type Service struct {
	Requests      ports.SharingStore
	Items         ports.ContextItemStore
	Organizations ports.OrganizationDirectory
	Outbox        ports.OutboxWriter
	Quota         ports.QuotaReserver
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Logger        *slog.Logger
}

// ShareItemInput creates one pending request.
type ShareItemInput struct {
	SourceOrganizationID string
	TargetOrganizationID string
	FeatureKey           string
	ItemID               string
	SharingType          string
	SharedBy             string
}

// HierarchyShareInput fans a share out along a hierarchy edge.
type HierarchyShareInput struct {
	OrganizationID string
	FeatureKey     string
	ItemID         string
	SharingType    string
	SharedBy       string
}

// ShareContextItem persists a new pending request after checking the
// tuple uniqueness invariant and reserving one sharing_requests quota
// unit for the source organization.
func (s Service) ShareContextItem(ctx context.Context, input ShareItemInput) (entities.SharingRequest, error) {
	if err := validateShareInput(input); err != nil {
		return entities.SharingRequest{}, err
	}
	if strings.TrimSpace(input.SharingType) == "" {
		input.SharingType = entities.DefaultSharingType
	}

	logger := ResolveLogger(s.Logger)

	// A lookup failure here degrades to "no duplicate found" so a
	// transient store hiccup does not block sharing. The storage-level
	// uniqueness constraint still backstops the invariant on insert.
	_, found, err := s.Requests.FindActiveRequest(ctx,
		input.SourceOrganizationID, input.TargetOrganizationID, input.FeatureKey, input.ItemID)
	if err != nil {
		logger.Warn("sharing duplicate lookup failed, treating as absent",
			"event", "sharing_duplicate_lookup_failed",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "application",
			"source_organization_id", input.SourceOrganizationID,
			"target_organization_id", input.TargetOrganizationID,
			"error", err.Error(),
		)
	}
	if found {
		return entities.SharingRequest{}, domainerrors.ErrSharingRequestExists
	}

	if s.Quota != nil {
		decision, err := s.Quota.ReserveSharingRequest(ctx, input.SourceOrganizationID)
		if err != nil {
			return entities.SharingRequest{}, err
		}
		if !decision.Passed {
			logger.Info("sharing request rejected by quota",
				"event", "sharing_quota_exceeded",
				"module", "content-sharing/sharing-workflow-service",
				"layer", "application",
				"source_organization_id", input.SourceOrganizationID,
				"current", decision.Current,
				"limit", decision.Limit,
			)
			return entities.SharingRequest{}, domainerrors.ErrSharingQuotaExceeded
		}
	}

	sharingID, err := s.newID(ctx)
	if err != nil {
		return entities.SharingRequest{}, err
	}
	now := s.now()
	request := entities.SharingRequest{
		SharingID:            sharingID,
		SourceOrganizationID: input.SourceOrganizationID,
		TargetOrganizationID: input.TargetOrganizationID,
		FeatureKey:           input.FeatureKey,
		ItemID:               input.ItemID,
		SharingType:          input.SharingType,
		Status:               entities.StatusPending,
		SharedBy:             input.SharedBy,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.Requests.CreateRequest(ctx, request); err != nil {
		return entities.SharingRequest{}, err
	}

	s.appendEvent(ctx, EventSharingRequested, request, now)
	logger.Info("sharing request created",
		"event", "sharing_request_created",
		"module", "content-sharing/sharing-workflow-service",
		"layer", "application",
		"sharing_id", request.SharingID,
		"source_organization_id", request.SourceOrganizationID,
		"target_organization_id", request.TargetOrganizationID,
		"feature_key", request.FeatureKey,
	)
	return request, nil
}

// ApproveSharingRequest transitions a pending request to approved and
// copies the shared item into the target organization. The status
// transition is authoritative: a missing source item or a failed copy
// insert does not roll it back, but both are surfaced in the outcome.
func (s Service) ApproveSharingRequest(ctx context.Context, sharingID string, approvedBy string) (entities.ApprovalOutcome, error) {
	if strings.TrimSpace(sharingID) == "" {
		return entities.ApprovalOutcome{}, domainerrors.ErrInvalidSharingID
	}
	if strings.TrimSpace(approvedBy) == "" {
		return entities.ApprovalOutcome{}, domainerrors.ErrInvalidActorID
	}

	request, found, err := s.Requests.GetRequest(ctx, sharingID)
	if err != nil {
		return entities.ApprovalOutcome{}, err
	}
	if !found {
		return entities.ApprovalOutcome{}, domainerrors.ErrSharingRequestNotFound
	}
	if request.IsResolved() {
		return entities.ApprovalOutcome{}, domainerrors.ErrRequestAlreadyResolved
	}

	now := s.now()
	request.Status = entities.StatusApproved
	request.ApprovedBy = approvedBy
	request.UpdatedAt = now
	request.ResolvedAt = &now
	if err := s.Requests.UpdateRequest(ctx, request); err != nil {
		return entities.ApprovalOutcome{}, err
	}

	outcome := entities.ApprovalOutcome{Request: request}
	s.copyItemOnApprove(ctx, request, now, &outcome)

	s.appendEvent(ctx, EventSharingApproved, request, now)
	ResolveLogger(s.Logger).Info("sharing request approved",
		"event", "sharing_request_approved",
		"module", "content-sharing/sharing-workflow-service",
		"layer", "application",
		"sharing_id", request.SharingID,
		"approved_by", approvedBy,
		"item_copied", outcome.ItemCopied,
	)
	return outcome, nil
}

// RejectSharedItem transitions a pending request to rejected. No copy
// occurs.
func (s Service) RejectSharedItem(ctx context.Context, sharingID string, rejectedBy string, reason string) (entities.SharingRequest, error) {
	if strings.TrimSpace(sharingID) == "" {
		return entities.SharingRequest{}, domainerrors.ErrInvalidSharingID
	}
	if strings.TrimSpace(rejectedBy) == "" {
		return entities.SharingRequest{}, domainerrors.ErrInvalidActorID
	}

	request, found, err := s.Requests.GetRequest(ctx, sharingID)
	if err != nil {
		return entities.SharingRequest{}, err
	}
	if !found {
		return entities.SharingRequest{}, domainerrors.ErrSharingRequestNotFound
	}
	if request.IsResolved() {
		return entities.SharingRequest{}, domainerrors.ErrRequestAlreadyResolved
	}

	now := s.now()
	request.Status = entities.StatusRejected
	request.RejectedBy = rejectedBy
	request.RejectionReason = reason
	request.UpdatedAt = now
	request.ResolvedAt = &now
	if err := s.Requests.UpdateRequest(ctx, request); err != nil {
		return entities.SharingRequest{}, err
	}

	s.appendEvent(ctx, EventSharingRejected, request, now)
	ResolveLogger(s.Logger).Info("sharing request rejected",
		"event", "sharing_request_rejected",
		"module", "content-sharing/sharing-workflow-service",
		"layer", "application",
		"sharing_id", request.SharingID,
		"rejected_by", rejectedBy,
	)
	return request, nil
}

// GetPendingApprovals lists pending requests addressed to one target
// organization, optionally filtered by feature key.
func (s Service) GetPendingApprovals(ctx context.Context, targetOrgID string, featureKey string) ([]entities.SharingRequest, error) {
	if strings.TrimSpace(targetOrgID) == "" {
		return nil, domainerrors.ErrInvalidOrganizationID
	}
	return s.Requests.ListPendingByTarget(ctx, targetOrgID, featureKey)
}

// ShareToChildren fans one item out to every direct child organization.
// Zero children is a success with an explanatory message; per-child
// duplicate conflicts are skipped and counted.
func (s Service) ShareToChildren(ctx context.Context, input HierarchyShareInput) (entities.BulkShareOutcome, error) {
	if strings.TrimSpace(input.OrganizationID) == "" {
		return entities.BulkShareOutcome{}, domainerrors.ErrInvalidOrganizationID
	}

	children, err := s.Organizations.ListChildOrganizations(ctx, input.OrganizationID)
	if err != nil {
		return entities.BulkShareOutcome{}, err
	}
	if len(children) == 0 {
		return entities.BulkShareOutcome{
			Requests: []entities.SharingRequest{},
			Message:  "organization has no child organizations to share with",
		}, nil
	}

	outcome := entities.BulkShareOutcome{Requests: make([]entities.SharingRequest, 0, len(children))}
	for _, child := range children {
		request, err := s.ShareContextItem(ctx, ShareItemInput{
			SourceOrganizationID: input.OrganizationID,
			TargetOrganizationID: child.ID,
			FeatureKey:           input.FeatureKey,
			ItemID:               input.ItemID,
			SharingType:          input.SharingType,
			SharedBy:             input.SharedBy,
		})
		if err != nil {
			if errors.Is(err, domainerrors.ErrSharingRequestExists) {
				outcome.SkippedCount++
				continue
			}
			return entities.BulkShareOutcome{}, err
		}
		outcome.SharedCount++
		outcome.Requests = append(outcome.Requests, request)
	}
	outcome.Message = fmt.Sprintf("shared with %d of %d child organizations", outcome.SharedCount, len(children))
	return outcome, nil
}

// ShareToParent shares one item up the hierarchy. An organization
// without a parent has nowhere to share to, which is a failure.
func (s Service) ShareToParent(ctx context.Context, input HierarchyShareInput) (entities.SharingRequest, error) {
	if strings.TrimSpace(input.OrganizationID) == "" {
		return entities.SharingRequest{}, domainerrors.ErrInvalidOrganizationID
	}

	record, found, err := s.Organizations.GetOrganization(ctx, input.OrganizationID)
	if err != nil {
		return entities.SharingRequest{}, err
	}
	if !found {
		return entities.SharingRequest{}, domainerrors.ErrOrganizationNotFound
	}
	if record.ParentID == nil || strings.TrimSpace(*record.ParentID) == "" {
		return entities.SharingRequest{}, domainerrors.ErrNoParentOrganization
	}

	return s.ShareContextItem(ctx, ShareItemInput{
		SourceOrganizationID: input.OrganizationID,
		TargetOrganizationID: *record.ParentID,
		FeatureKey:           input.FeatureKey,
		ItemID:               input.ItemID,
		SharingType:          input.SharingType,
		SharedBy:             input.SharedBy,
	})
}

// GetHierarchySharingStats aggregates outgoing, incoming and pending
// request counts for one organization.
func (s Service) GetHierarchySharingStats(ctx context.Context, orgID string) (entities.HierarchySharingStats, error) {
	if strings.TrimSpace(orgID) == "" {
		return entities.HierarchySharingStats{}, domainerrors.ErrInvalidOrganizationID
	}
	stats, err := s.Requests.CountSharingStats(ctx, orgID)
	if err != nil {
		return entities.HierarchySharingStats{}, err
	}
	stats.OrganizationID = orgID
	return stats, nil
}

// copyItemOnApprove materializes the shared item inside the target
// organization. Failures are recorded on the outcome, never returned,
// because the approval transition already committed.
func (s Service) copyItemOnApprove(ctx context.Context, request entities.SharingRequest, now time.Time, outcome *entities.ApprovalOutcome) {
	logger := ResolveLogger(s.Logger)

	item, found, err := s.Items.GetItem(ctx, request.SourceOrganizationID, request.FeatureKey, request.ItemID)
	if err != nil || !found {
		logger.Warn("approved sharing request has no readable source item, skipping copy",
			"event", "sharing_copy_source_missing",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "application",
			"sharing_id", request.SharingID,
			"item_id", request.ItemID,
		)
		return
	}

	copyID, err := s.newID(ctx)
	if err != nil {
		outcome.CopyError = err.Error()
		return
	}
	copied := entities.ContextItem{
		ItemID:         copyID,
		OrganizationID: request.TargetOrganizationID,
		FeatureKey:     request.FeatureKey,
		Title:          item.Title,
		Content:        item.Content,
		CopiedFrom:     item.ItemID,
		CreatedAt:      now,
	}
	if err := s.Items.InsertCopy(ctx, copied); err != nil {
		outcome.CopyError = err.Error()
		logger.Error("sharing item copy failed after approval",
			"event", "sharing_copy_insert_failed",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "application",
			"sharing_id", request.SharingID,
			"item_id", request.ItemID,
			"error", err.Error(),
		)
		return
	}
	outcome.ItemCopied = true
	outcome.CopiedItem = &copied
}

// appendEvent writes an outbox row for the relay worker. Event delivery
// is best effort relative to the committed state transition.
func (s Service) appendEvent(ctx context.Context, eventType string, request entities.SharingRequest, now time.Time) {
	if s.Outbox == nil {
		return
	}
	logger := ResolveLogger(s.Logger)

	outboxID, err := s.newID(ctx)
	if err != nil {
		logger.Warn("sharing outbox id generation failed",
			"event", "sharing_outbox_append_failed",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "application",
			"sharing_id", request.SharingID,
			"error", err.Error(),
		)
		return
	}
	payload, err := json.Marshal(ports.SharingEvent{
		EventID:              outboxID,
		EventType:            eventType,
		OccurredAt:           now,
		SharingID:            request.SharingID,
		SourceOrganizationID: request.SourceOrganizationID,
		TargetOrganizationID: request.TargetOrganizationID,
		FeatureKey:           request.FeatureKey,
		ItemID:               request.ItemID,
	})
	if err != nil {
		return
	}
	if err := s.Outbox.AppendOutbox(ctx, ports.OutboxMessage{
		OutboxID:  outboxID,
		EventType: eventType,
		Payload:   payload,
		CreatedAt: now,
	}); err != nil {
		logger.Warn("sharing outbox append failed",
			"event", "sharing_outbox_append_failed",
			"module", "content-sharing/sharing-workflow-service",
			"layer", "application",
			"sharing_id", request.SharingID,
			"event_type", eventType,
			"error", err.Error(),
		)
	}
}

func validateShareInput(input ShareItemInput) error {
	if strings.TrimSpace(input.SourceOrganizationID) == "" || strings.TrimSpace(input.TargetOrganizationID) == "" {
		return domainerrors.ErrInvalidOrganizationID
	}
	if strings.TrimSpace(input.FeatureKey) == "" {
		return domainerrors.ErrInvalidFeatureKey
	}
	if strings.TrimSpace(input.ItemID) == "" {
		return domainerrors.ErrInvalidItemID
	}
	if strings.TrimSpace(input.SharedBy) == "" {
		return domainerrors.ErrInvalidActorID
	}
	return nil
}

func (s Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now().UTC()
	}
	return time.Now().UTC()
}

func (s Service) newID(ctx context.Context) (string, error) {
	return s.IDGen.NewID(ctx)
}
