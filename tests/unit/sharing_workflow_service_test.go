package unit

import (
	"context"
	"errors"
	"strings"
	"testing"

	sharing "loom/contexts/content-sharing/sharing-workflow-service"
	"loom/contexts/content-sharing/sharing-workflow-service/application/workers"
	"loom/contexts/content-sharing/sharing-workflow-service/domain/entities"
	domainerrors "loom/contexts/content-sharing/sharing-workflow-service/domain/errors"
	sharingports "loom/contexts/content-sharing/sharing-workflow-service/ports"
	httptransport "loom/contexts/content-sharing/sharing-workflow-service/transport/http"
	quota "loom/contexts/tenant-admin/quota-service"
	quotaapp "loom/contexts/tenant-admin/quota-service/application"
	quotaentities "loom/contexts/tenant-admin/quota-service/domain/entities"
	quotatransport "loom/contexts/tenant-admin/quota-service/transport/http"
)

// sharingQuotaReserver meters new requests against the quota service's
// sharing_requests class, mirroring the runtime wiring.
type sharingQuotaReserver struct {
	quotas quotaapp.Service
}

func (r sharingQuotaReserver) ReserveSharingRequest(ctx context.Context, orgID string) (sharingports.QuotaDecision, error) {
	check, err := r.quotas.ReserveQuota(ctx, orgID, quotaentities.ClassSharingRequests, 1)
	if err != nil {
		return sharingports.QuotaDecision{}, err
	}
	return sharingports.QuotaDecision{Passed: check.Passed, Current: check.Current, Limit: check.Limit}, nil
}

type capturingPublisher struct {
	events []sharingports.SharingEvent
}

func (p *capturingPublisher) PublishSharingEvent(_ context.Context, event sharingports.SharingEvent) error {
	p.events = append(p.events, event)
	return nil
}

func seedSharingHierarchy(module sharing.Module) {
	parent := "org-parent"
	module.Store.SeedOrganization("org-parent", "Parent", nil)
	module.Store.SeedOrganization("org-child-a", "Child A", &parent)
	module.Store.SeedOrganization("org-child-b", "Child B", &parent)
}

func TestSharingShareCreatesPendingRequest(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if created.Request.SharingID == "" {
		t.Fatalf("expected sharing id")
	}
	if created.Request.Status != "pending" {
		t.Fatalf("expected pending status, got %s", created.Request.Status)
	}
	if created.Request.SharingType != "read_only" {
		t.Fatalf("expected default read_only sharing type, got %s", created.Request.SharingType)
	}
}

func TestSharingDuplicateActiveRequestConflicts(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	request := httptransport.ShareItemRequest{
		TargetOrganizationID: "org-child-a",
		FeatureKey:           "rag_search",
		ItemID:               "item-1",
		SharedBy:             "user-1",
	}
	if _, err := module.Handler.ShareItemHandler(context.Background(), "org-parent", request); err != nil {
		t.Fatalf("first share failed: %v", err)
	}

	_, err := module.Handler.ShareItemHandler(context.Background(), "org-parent", request)
	if !errors.Is(err, domainerrors.ErrSharingRequestExists) {
		t.Fatalf("expected duplicate conflict, got %v", err)
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("conflict message should mention the existing request, got %q", err.Error())
	}
}

func TestSharingApproveCopiesItemIntoTargetOrganization(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)
	module.Store.SeedContextItem(entities.ContextItem{
		ItemID:         "item-1",
		OrganizationID: "org-parent",
		FeatureKey:     "rag_search",
		Title:          "Quarterly playbook",
		Content:        "shared playbook body",
	})

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	approved, err := module.Handler.ApproveHandler(
		context.Background(), created.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-1"},
	)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Request.Status != "approved" || approved.Request.ResolvedAt == nil {
		t.Fatalf("expected resolved approved request, got %+v", approved.Request)
	}
	if !approved.ItemCopied || approved.CopiedItem == nil {
		t.Fatalf("expected item copy, got %+v", approved)
	}
	if approved.CopiedItem.OrganizationID != "org-child-a" {
		t.Fatalf("copy must live in the target organization, got %s", approved.CopiedItem.OrganizationID)
	}
	if approved.CopiedItem.Title != "Quarterly playbook" || approved.CopiedItem.Content != "shared playbook body" {
		t.Fatalf("copy must preserve title and content, got %+v", approved.CopiedItem)
	}
	if approved.CopiedItem.ItemID == "item-1" {
		t.Fatalf("copy must carry its own id")
	}

	copied, found, err := module.Store.GetItem(context.Background(), "org-child-a", "rag_search", approved.CopiedItem.ItemID)
	if err != nil || !found {
		t.Fatalf("expected copy readable in target organization, found=%v err=%v", found, err)
	}
	if copied.CopiedFrom != "item-1" {
		t.Fatalf("expected provenance back to the source item, got %s", copied.CopiedFrom)
	}
}

func TestSharingApproveWithMissingItemStillApproves(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-missing",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	approved, err := module.Handler.ApproveHandler(
		context.Background(), created.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-1"},
	)
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Request.Status != "approved" {
		t.Fatalf("expected approved status, got %s", approved.Request.Status)
	}
	if approved.ItemCopied || approved.CopyError != "" {
		t.Fatalf("expected no copy and no copy error for a missing item, got %+v", approved)
	}
}

func TestSharingResolvedRequestCannotBeResolvedAgain(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if _, err := module.Handler.ApproveHandler(
		context.Background(), created.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-1"},
	); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	_, err = module.Handler.ApproveHandler(
		context.Background(), created.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-2"},
	)
	if !errors.Is(err, domainerrors.ErrRequestAlreadyResolved) {
		t.Fatalf("expected already-resolved error on second approve, got %v", err)
	}

	_, err = module.Handler.RejectHandler(
		context.Background(), created.Request.SharingID,
		httptransport.RejectRequest{RejectedBy: "manager-2", Reason: "late"},
	)
	if !errors.Is(err, domainerrors.ErrRequestAlreadyResolved) {
		t.Fatalf("expected already-resolved error on reject after approve, got %v", err)
	}
}

func TestSharingRejectRecordsActorAndReason(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}

	rejected, err := module.Handler.RejectHandler(
		context.Background(), created.Request.SharingID,
		httptransport.RejectRequest{RejectedBy: "manager-1", Reason: "content not relevant"},
	)
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Request.Status != "rejected" || rejected.Request.ResolvedAt == nil {
		t.Fatalf("expected resolved rejected request, got %+v", rejected.Request)
	}
	if rejected.Request.RejectedBy != "manager-1" || rejected.Request.RejectionReason != "content not relevant" {
		t.Fatalf("expected rejection actor and reason recorded, got %+v", rejected.Request)
	}
}

func TestSharingPendingApprovalsFilterByFeature(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	for _, feature := range []string{"rag_search", "export"} {
		if _, err := module.Handler.ShareItemHandler(
			context.Background(), "org-parent",
			httptransport.ShareItemRequest{
				TargetOrganizationID: "org-child-a",
				FeatureKey:           feature,
				ItemID:               "item-1",
				SharedBy:             "user-1",
			},
		); err != nil {
			t.Fatalf("share for %s failed: %v", feature, err)
		}
	}

	all, err := module.Handler.PendingApprovalsHandler(context.Background(), "org-child-a", "")
	if err != nil {
		t.Fatalf("pending approvals failed: %v", err)
	}
	if all.Count != 2 {
		t.Fatalf("expected 2 pending requests, got %d", all.Count)
	}

	filtered, err := module.Handler.PendingApprovalsHandler(context.Background(), "org-child-a", "export")
	if err != nil {
		t.Fatalf("pending approvals failed: %v", err)
	}
	if filtered.Count != 1 || filtered.Items[0].FeatureKey != "export" {
		t.Fatalf("expected only the export request, got %+v", filtered)
	}
}

func TestSharingShareToChildrenFanOut(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	// Pre-existing request to one child is skipped, not failed.
	if _, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	); err != nil {
		t.Fatalf("seed share failed: %v", err)
	}

	outcome, err := module.Handler.ShareToChildrenHandler(
		context.Background(), "org-parent",
		httptransport.HierarchyShareRequest{
			FeatureKey: "rag_search",
			ItemID:     "item-1",
			SharedBy:   "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share to children failed: %v", err)
	}
	if outcome.SharedCount != 1 || outcome.SkippedCount != 1 {
		t.Fatalf("expected 1 shared and 1 skipped, got %d and %d", outcome.SharedCount, outcome.SkippedCount)
	}
	if outcome.Message != "shared with 1 of 2 child organizations" {
		t.Fatalf("unexpected fan-out message: %q", outcome.Message)
	}
	if len(outcome.Requests) != 1 || outcome.Requests[0].TargetOrganizationID != "org-child-b" {
		t.Fatalf("expected the new request to target org-child-b, got %+v", outcome.Requests)
	}
}

func TestSharingShareToChildrenWithoutChildren(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	module.Store.SeedOrganization("org-leaf", "Leaf", nil)

	outcome, err := module.Handler.ShareToChildrenHandler(
		context.Background(), "org-leaf",
		httptransport.HierarchyShareRequest{
			FeatureKey: "rag_search",
			ItemID:     "item-1",
			SharedBy:   "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share to children failed: %v", err)
	}
	if outcome.SharedCount != 0 || outcome.SkippedCount != 0 {
		t.Fatalf("expected nothing shared, got %+v", outcome)
	}
	if outcome.Message != "organization has no child organizations to share with" {
		t.Fatalf("unexpected message: %q", outcome.Message)
	}
}

func TestSharingShareToParent(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareToParentHandler(
		context.Background(), "org-child-a",
		httptransport.HierarchyShareRequest{
			FeatureKey: "rag_search",
			ItemID:     "item-1",
			SharedBy:   "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share to parent failed: %v", err)
	}
	if created.Request.TargetOrganizationID != "org-parent" {
		t.Fatalf("expected request to target the parent, got %s", created.Request.TargetOrganizationID)
	}

	_, err = module.Handler.ShareToParentHandler(
		context.Background(), "org-parent",
		httptransport.HierarchyShareRequest{
			FeatureKey: "rag_search",
			ItemID:     "item-1",
			SharedBy:   "user-1",
		},
	)
	if !errors.Is(err, domainerrors.ErrNoParentOrganization) {
		t.Fatalf("expected no-parent error for a root organization, got %v", err)
	}
}

func TestSharingHierarchyStats(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	first, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if _, err := module.Handler.ShareItemHandler(
		context.Background(), "org-child-a",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-parent",
			FeatureKey:           "export",
			ItemID:               "item-2",
			SharedBy:             "user-2",
		},
	); err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if _, err := module.Handler.ApproveHandler(
		context.Background(), first.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-1"},
	); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	stats, err := module.Handler.SharingStatsHandler(context.Background(), "org-parent")
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.OutgoingRequests != 1 || stats.IncomingRequests != 1 || stats.PendingRequests != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestSharingQuotaLimitBlocksNewRequests(t *testing.T) {
	quotaModule := quota.NewInMemoryModule(nil)
	module := sharing.NewInMemoryModule(sharingQuotaReserver{quotas: quotaModule.Service}, nil)
	seedSharingHierarchy(module)

	if _, err := quotaModule.Handler.UpdateUsageHandler(
		context.Background(), "org-parent",
		quotatransport.UpdateUsageRequest{QuotaType: "sharing_requests", Quantity: 50, Operation: "increment"},
	); err != nil {
		t.Fatalf("quota setup failed: %v", err)
	}

	_, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if !errors.Is(err, domainerrors.ErrSharingQuotaExceeded) {
		t.Fatalf("expected sharing quota exceeded, got %v", err)
	}
}

func TestSharingOutboxRelayPublishesWorkflowEvents(t *testing.T) {
	module := sharing.NewInMemoryModule(nil, nil)
	seedSharingHierarchy(module)

	created, err := module.Handler.ShareItemHandler(
		context.Background(), "org-parent",
		httptransport.ShareItemRequest{
			TargetOrganizationID: "org-child-a",
			FeatureKey:           "rag_search",
			ItemID:               "item-1",
			SharedBy:             "user-1",
		},
	)
	if err != nil {
		t.Fatalf("share failed: %v", err)
	}
	if _, err := module.Handler.ApproveHandler(
		context.Background(), created.Request.SharingID,
		httptransport.ApproveRequest{ApprovedBy: "manager-1"},
	); err != nil {
		t.Fatalf("approve failed: %v", err)
	}

	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    module.Store,
		Publisher: publisher,
		Clock:     module.Store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected 2 published events, got %d", len(publisher.events))
	}
	if publisher.events[0].EventType != "sharing.requested" || publisher.events[1].EventType != "sharing.approved" {
		t.Fatalf("unexpected event order: %s then %s", publisher.events[0].EventType, publisher.events[1].EventType)
	}
	for _, event := range publisher.events {
		if event.SharingID != created.Request.SharingID {
			t.Fatalf("expected events for sharing id %s, got %s", created.Request.SharingID, event.SharingID)
		}
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("published rows must not be relayed twice, got %d events", len(publisher.events))
	}
}
