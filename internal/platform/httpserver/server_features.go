package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	identityentities "loom/contexts/identity-access/isolation-service/domain/entities"
	featureerrors "loom/contexts/tenant-admin/feature-inheritance-service/domain/errors"
	featurehttp "loom/contexts/tenant-admin/feature-inheritance-service/transport/http"
)

func (s *Server) handleEffectiveFeatures(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.features.Handler.EffectiveFeaturesHandler(r.Context(), orgID)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInheritedFeatures(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.features.Handler.InheritedFeaturesHandler(r.Context(), orgID)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleInheritanceChain(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.features.Handler.InheritanceChainHandler(r.Context(), orgID)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCanEnable(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	featureKey := r.PathValue("feature_key")
	resp, err := s.features.Handler.CanEnableHandler(r.Context(), orgID, featureKey)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleOverrideStatus(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	featureKey := r.PathValue("feature_key")
	resp, err := s.features.Handler.OverrideStatusHandler(r.Context(), orgID, featureKey)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSetToggle(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, identityentities.RoleOrgAdmin)
	if !ok {
		return
	}

	var req featurehttp.SetToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeFeatureError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	orgID := r.PathValue("org_id")
	featureKey := r.PathValue("feature_key")
	resp, err := s.features.Handler.SetToggleHandler(r.Context(), orgID, featureKey, principal.UserID, req)
	if err != nil {
		writeFeatureDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeFeatureDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, featureerrors.ErrInvalidOrganizationID),
		errors.Is(err, featureerrors.ErrInvalidFeatureKey):
		writeFeatureError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, featureerrors.ErrOrganizationNotFound):
		writeFeatureError(w, http.StatusNotFound, "organization_not_found", err.Error())
	case errors.Is(err, featureerrors.ErrFeatureDisabledByParent),
		errors.Is(err, featureerrors.ErrFeatureNotConfiguredByParent):
		writeFeatureError(w, http.StatusConflict, "feature_blocked_by_parent", err.Error())
	case errors.Is(err, featureerrors.ErrGlobalAccessQuotaExceeded):
		writeFeatureError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	default:
		writeFeatureError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeFeatureError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, featurehttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
