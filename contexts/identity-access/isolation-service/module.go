package isolation

import (
	"log/slog"

	httpadapter "loom/contexts/identity-access/isolation-service/adapters/http"
	"loom/contexts/identity-access/isolation-service/adapters/memory"
	"loom/contexts/identity-access/isolation-service/application"
	"loom/contexts/identity-access/isolation-service/ports"
)

// Module is the isolation-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Users         ports.UserDirectory
	Organizations ports.OrganizationDirectory
	Grants        ports.GrantStore
	Policies      ports.PolicyStore
	Clock         ports.Clock
	IDGenerator   ports.IDGenerator
	Logger        *slog.Logger
}

// NewModule wires the isolation use-cases and transport handler using
// explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Users:         deps.Users,
		Organizations: deps.Organizations,
		Grants:        deps.Grants,
		Policies:      deps.Policies,
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

// NewInMemoryModule builds a development/testing module with in-memory adapters.
func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Users:         store,
		Organizations: store,
		Grants:        store,
		Policies:      store,
		Clock:         store,
		IDGenerator:   store,
		Logger:        logger,
	})
	module.Store = store
	return module
}
