package sharing

import (
	"log/slog"

	httpadapter "loom/contexts/content-sharing/sharing-workflow-service/adapters/http"
	"loom/contexts/content-sharing/sharing-workflow-service/adapters/memory"
	"loom/contexts/content-sharing/sharing-workflow-service/application"
	"loom/contexts/content-sharing/sharing-workflow-service/ports"
)

// Module is the sharing-workflow-service composition root exposed to
// runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Requests      ports.SharingStore
	Items         ports.ContextItemStore
	Organizations ports.OrganizationDirectory
	Outbox        ports.OutboxWriter
	Quota         ports.QuotaReserver
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// NewModule wires the sharing use-cases and transport handler using
// explicit ports. A nil Quota leaves sharing unmetered.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Requests:      deps.Requests,
		Items:         deps.Items,
		Organizations: deps.Organizations,
		Outbox:        deps.Outbox,
		Quota:         deps.Quota,
		Clock:         deps.Clock,
		IDGen:         deps.IDGenerator,
		Logger:        deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Service: service,
			Logger:  deps.Logger,
		},
		Service: service,
	}
}

// NewInMemoryModule builds a development/testing module with in-memory
// adapters. Quota enforcement is wired separately when needed.
func NewInMemoryModule(quota ports.QuotaReserver, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Requests:      store,
		Items:         store,
		Organizations: store,
		Outbox:        store,
		Quota:         quota,
		Clock:         store,
		IDGenerator:   store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
