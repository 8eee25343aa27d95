package httpserver

import (
	"encoding/json"
	"log/slog"
	"net/http"

	sharing "loom/contexts/content-sharing/sharing-workflow-service"
	isolation "loom/contexts/identity-access/isolation-service"
	featureinheritance "loom/contexts/tenant-admin/feature-inheritance-service"
	quota "loom/contexts/tenant-admin/quota-service"

	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "loom/internal/platform/httpserver/docs"
)

// Security carries the transport-level auth/CORS configuration.
type Security struct {
	JWTSecret   string
	CORSOrigins []string
}

type Server struct {
	mux       *http.ServeMux
	logger    *slog.Logger
	addr      string
	security  Security
	features  featureinheritance.Module
	quotas    quota.Module
	sharing   sharing.Module
	isolation isolation.Module
}

func New(
	features featureinheritance.Module,
	quotas quota.Module,
	sharingModule sharing.Module,
	isolationModule isolation.Module,
	security Security,
	logger *slog.Logger,
	addr string,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if addr == "" {
		addr = ":8080"
	}

	s := &Server{
		mux:       http.NewServeMux(),
		logger:    logger,
		addr:      addr,
		security:  security,
		features:  features,
		quotas:    quotas,
		sharing:   sharingModule,
		isolation: isolationModule,
	}
	s.registerRoutes()
	return s
}

// Handler returns the fully wrapped HTTP surface. Tests drive it through
// httptest without binding a port.
func (s *Server) Handler() http.Handler {
	origins := s.security.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	corsWrap := cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-User-Id", "X-User-Role", "X-Org-Id"},
		AllowCredentials: false,
		MaxAge:           300,
	})
	return corsWrap(s.withPrincipal(s.mux))
}

func (s *Server) Start() error {
	s.logger.Info("http server starting",
		"event", "http_server_starting",
		"module", "internal/platform/httpserver",
		"layer", "platform",
		"addr", s.addr,
	)
	return http.ListenAndServe(s.addr, s.Handler())
}

func (s *Server) registerRoutes() {
	s.mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	s.mux.HandleFunc("GET /api/features/v1/organizations/{org_id}/effective", s.handleEffectiveFeatures)
	s.mux.HandleFunc("GET /api/features/v1/organizations/{org_id}/inherited", s.handleInheritedFeatures)
	s.mux.HandleFunc("GET /api/features/v1/organizations/{org_id}/chain", s.handleInheritanceChain)
	s.mux.HandleFunc("GET /api/features/v1/organizations/{org_id}/features/{feature_key}/can-enable", s.handleCanEnable)
	s.mux.HandleFunc("GET /api/features/v1/organizations/{org_id}/features/{feature_key}/override-status", s.handleOverrideStatus)
	s.mux.HandleFunc("PUT /api/features/v1/organizations/{org_id}/features/{feature_key}", s.handleSetToggle)

	s.mux.HandleFunc("GET /api/quotas/v1/organizations/{org_id}", s.handleGetQuotas)
	s.mux.HandleFunc("POST /api/quotas/v1/organizations/{org_id}/check", s.handleCheckQuota)
	s.mux.HandleFunc("POST /api/quotas/v1/organizations/{org_id}/reserve", s.handleReserveQuota)
	s.mux.HandleFunc("POST /api/quotas/v1/organizations/{org_id}/usage", s.handleUpdateQuotaUsage)
	s.mux.HandleFunc("POST /api/quotas/v1/organizations/{org_id}/reset", s.handleResetQuotaUsage)

	s.mux.HandleFunc("POST /api/sharing/v1/organizations/{org_id}/share", s.handleShareItem)
	s.mux.HandleFunc("POST /api/sharing/v1/organizations/{org_id}/share-to-children", s.handleShareToChildren)
	s.mux.HandleFunc("POST /api/sharing/v1/organizations/{org_id}/share-to-parent", s.handleShareToParent)
	s.mux.HandleFunc("GET /api/sharing/v1/organizations/{org_id}/pending", s.handlePendingApprovals)
	s.mux.HandleFunc("GET /api/sharing/v1/organizations/{org_id}/stats", s.handleSharingStats)
	s.mux.HandleFunc("POST /api/sharing/v1/requests/{sharing_id}/approve", s.handleApproveSharing)
	s.mux.HandleFunc("POST /api/sharing/v1/requests/{sharing_id}/reject", s.handleRejectSharing)

	s.mux.HandleFunc("POST /api/isolation/v1/enforce", s.handleEnforceIsolation)
	s.mux.HandleFunc("POST /api/isolation/v1/grants", s.handleCreateGrant)
	s.mux.HandleFunc("POST /api/isolation/v1/policies", s.handleCreatePolicy)
	s.mux.HandleFunc("GET /api/isolation/v1/organizations/{org_id}/policies", s.handleListPolicies)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
