package featureinheritance

import (
	"log/slog"

	httpadapter "loom/contexts/tenant-admin/feature-inheritance-service/adapters/http"
	"loom/contexts/tenant-admin/feature-inheritance-service/adapters/memory"
	"loom/contexts/tenant-admin/feature-inheritance-service/application"
	"loom/contexts/tenant-admin/feature-inheritance-service/ports"
)

// Module is the feature-inheritance-service composition root exposed to
// runtime wiring.
type Module struct {
	Handler httpadapter.Handler
	Service application.Service
	Store   *memory.Store
}

// Dependencies captures all runtime ports/config required by NewModule.
type Dependencies struct {
	Directory ports.OrganizationDirectory
	Toggles   ports.ToggleStore
	Quota     ports.QuotaGate
	Clock     ports.Clock
	Logger    *slog.Logger
}

// NewModule wires the resolver use-cases and transport handler using
// explicit ports.
func NewModule(deps Dependencies) Module {
	service := application.Service{
		Directory: deps.Directory,
		Toggles:   deps.Toggles,
		Quota:     deps.Quota,
		Clock:     deps.Clock,
		Logger:    deps.Logger,
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
// adapters. Pass a nil gate for unmetered feature activation.
func NewInMemoryModule(quota ports.QuotaGate, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Directory: store,
		Toggles:   store,
		Quota:     quota,
		Clock:     store,
		Logger:    logger,
	})
	module.Store = store
	return module
}
