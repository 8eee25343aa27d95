package unit

import (
	"context"
	"errors"
	"testing"

	quota "loom/contexts/tenant-admin/quota-service"
	domainerrors "loom/contexts/tenant-admin/quota-service/domain/errors"
	httptransport "loom/contexts/tenant-admin/quota-service/transport/http"
)

func TestQuotaLazyCreationAppliesDefaults(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	first, err := module.Handler.GetQuotasHandler(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("get quotas failed: %v", err)
	}
	if first.ContextItems.Max != 1000 || first.GlobalAccess.Max != 10 || first.SharingRequests.Max != 50 {
		t.Fatalf("unexpected default limits: %+v", first)
	}
	if first.ContextItems.Current != 0 || first.GlobalAccess.Current != 0 || first.SharingRequests.Current != 0 {
		t.Fatalf("expected zeroed usage on creation: %+v", first)
	}

	second, err := module.Handler.GetQuotasHandler(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("second get quotas failed: %v", err)
	}
	if second != first {
		t.Fatalf("expected idempotent lazy creation, got %+v then %+v", first, second)
	}
}

func TestQuotaCheckBoundaryAtLimit(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	if _, err := module.Handler.UpdateUsageHandler(
		context.Background(), "org-1",
		httptransport.UpdateUsageRequest{QuotaType: "context_items", Quantity: 995, Operation: "increment"},
	); err != nil {
		t.Fatalf("usage setup failed: %v", err)
	}

	within, err := module.Handler.CheckQuotaHandler(
		context.Background(), "org-1",
		httptransport.CheckQuotaRequest{QuotaType: "context_items", Quantity: 5},
	)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !within.Passed || within.Exceeded {
		t.Fatalf("expected request reaching the limit exactly to pass, got %+v", within)
	}

	over, err := module.Handler.CheckQuotaHandler(
		context.Background(), "org-1",
		httptransport.CheckQuotaRequest{QuotaType: "context_items", Quantity: 6},
	)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if over.Passed || !over.Exceeded {
		t.Fatalf("expected request past the limit to be rejected, got %+v", over)
	}
	if over.Current != 995 || over.Limit != 1000 {
		t.Fatalf("expected usage snapshot 995/1000, got %d/%d", over.Current, over.Limit)
	}
}

func TestQuotaCheckUnknownClassIsUnmetered(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	check, err := module.Handler.CheckQuotaHandler(
		context.Background(), "org-1",
		httptransport.CheckQuotaRequest{QuotaType: "widgets", Quantity: 100000},
	)
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if !check.Passed {
		t.Fatalf("expected unknown class to pass unconditionally, got %+v", check)
	}
}

func TestQuotaUpdateUsageIncrementAndDecrement(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	updated, err := module.Handler.UpdateUsageHandler(
		context.Background(), "org-1",
		httptransport.UpdateUsageRequest{QuotaType: "sharing_requests", Quantity: 5, Operation: "increment"},
	)
	if err != nil {
		t.Fatalf("increment failed: %v", err)
	}
	if updated.SharingRequests.Current != 5 {
		t.Fatalf("expected usage 5, got %d", updated.SharingRequests.Current)
	}

	updated, err = module.Handler.UpdateUsageHandler(
		context.Background(), "org-1",
		httptransport.UpdateUsageRequest{QuotaType: "sharing_requests", Quantity: 2, Operation: "decrement"},
	)
	if err != nil {
		t.Fatalf("decrement failed: %v", err)
	}
	if updated.SharingRequests.Current != 3 {
		t.Fatalf("expected usage 3, got %d", updated.SharingRequests.Current)
	}
}

func TestQuotaUpdateUsageRejectsUnknownInputs(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	_, err := module.Handler.UpdateUsageHandler(
		context.Background(), "org-1",
		httptransport.UpdateUsageRequest{QuotaType: "widgets", Quantity: 1, Operation: "increment"},
	)
	if !errors.Is(err, domainerrors.ErrUnknownQuotaType) {
		t.Fatalf("expected unknown quota type error, got %v", err)
	}

	_, err = module.Handler.UpdateUsageHandler(
		context.Background(), "org-1",
		httptransport.UpdateUsageRequest{QuotaType: "context_items", Quantity: 1, Operation: "assign"},
	)
	if !errors.Is(err, domainerrors.ErrUnknownOperation) {
		t.Fatalf("expected unknown operation error, got %v", err)
	}
}

func TestQuotaReserveStopsAtLimit(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	reserved, err := module.Handler.ReserveQuotaHandler(
		context.Background(), "org-1",
		httptransport.CheckQuotaRequest{QuotaType: "global_access", Quantity: 10},
	)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if !reserved.Passed || reserved.Current != 10 {
		t.Fatalf("expected reservation up to the limit to pass, got %+v", reserved)
	}

	rejected, err := module.Handler.ReserveQuotaHandler(
		context.Background(), "org-1",
		httptransport.CheckQuotaRequest{QuotaType: "global_access", Quantity: 1},
	)
	if err != nil {
		t.Fatalf("reserve failed: %v", err)
	}
	if rejected.Passed || !rejected.Exceeded {
		t.Fatalf("expected reservation past the limit to be rejected, got %+v", rejected)
	}
	if rejected.Current != 10 {
		t.Fatalf("rejected reservation must not consume usage, got current %d", rejected.Current)
	}
}

func TestQuotaResetSingleClassAndAll(t *testing.T) {
	module := quota.NewInMemoryModule(nil)

	for _, class := range []string{"context_items", "global_access", "sharing_requests"} {
		if _, err := module.Handler.UpdateUsageHandler(
			context.Background(), "org-1",
			httptransport.UpdateUsageRequest{QuotaType: class, Quantity: 3, Operation: "increment"},
		); err != nil {
			t.Fatalf("usage setup for %s failed: %v", class, err)
		}
	}

	afterSingle, err := module.Handler.ResetUsageHandler(
		context.Background(), "org-1",
		httptransport.ResetUsageRequest{QuotaType: "context_items"},
	)
	if err != nil {
		t.Fatalf("single reset failed: %v", err)
	}
	if afterSingle.ContextItems.Current != 0 {
		t.Fatalf("expected context_items reset, got %d", afterSingle.ContextItems.Current)
	}
	if afterSingle.GlobalAccess.Current != 3 || afterSingle.SharingRequests.Current != 3 {
		t.Fatalf("expected other classes untouched, got %+v", afterSingle)
	}

	afterAll, err := module.Handler.ResetUsageHandler(
		context.Background(), "org-1",
		httptransport.ResetUsageRequest{},
	)
	if err != nil {
		t.Fatalf("full reset failed: %v", err)
	}
	if afterAll.ContextItems.Current != 0 || afterAll.GlobalAccess.Current != 0 || afterAll.SharingRequests.Current != 0 {
		t.Fatalf("expected all usage reset, got %+v", afterAll)
	}

	_, err = module.Handler.ResetUsageHandler(
		context.Background(), "org-1",
		httptransport.ResetUsageRequest{QuotaType: "widgets"},
	)
	if !errors.Is(err, domainerrors.ErrUnknownQuotaType) {
		t.Fatalf("expected unknown quota type error, got %v", err)
	}
}
