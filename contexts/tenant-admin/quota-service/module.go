package quota

import (
	"log/slog"

	httpadapter "loom/contexts/tenant-admin/quota-service/adapters/http"
	"loom/contexts/tenant-admin/quota-service/adapters/memory"
	"loom/contexts/tenant-admin/quota-service/application"
	"loom/contexts/tenant-admin/quota-service/ports"
)

// Module is the quota-service composition root exposed to runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Store  ports.QuotaStore
	Clock  ports.Clock
	Logger *slog.Logger
}

// NewModule wires the quota use-cases and transport handler using
// explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Store:  deps.Store,
		Clock:  deps.Clock,
		Logger: deps.Logger,
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
		Store:  store,
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
