package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	identityentities "loom/contexts/identity-access/isolation-service/domain/entities"
	isolationerrors "loom/contexts/identity-access/isolation-service/domain/errors"
	isolationhttp "loom/contexts/identity-access/isolation-service/transport/http"
)

func (s *Server) handleEnforceIsolation(w http.ResponseWriter, r *http.Request) {
	var req isolationhttp.EnforceIsolationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIsolationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		if principal, ok := principalFrom(r.Context()); ok {
			userID = principal.UserID
		}
	}

	resp, err := s.isolation.Handler.EnforceIsolationHandler(r.Context(), userID, req)
	if err != nil {
		writeIsolationDomainError(w, err)
		return
	}
	if !resp.Allowed {
		writeJSON(w, http.StatusForbidden, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateGrant(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, identityentities.RoleOrgAdmin)
	if !ok {
		return
	}

	var req isolationhttp.CreateGrantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIsolationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.isolation.Handler.CreateGrantHandler(r.Context(), principal.UserID, req)
	if err != nil {
		writeIsolationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleCreatePolicy(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, identityentities.RoleOrgAdmin)
	if !ok {
		return
	}

	var req isolationhttp.CreatePolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeIsolationError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	resp, err := s.isolation.Handler.CreatePolicyHandler(r.Context(), principal.UserID, req)
	if err != nil {
		writeIsolationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleListPolicies(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.isolation.Handler.ListPoliciesHandler(r.Context(), orgID)
	if err != nil {
		writeIsolationDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeIsolationDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, isolationerrors.ErrInvalidUserID),
		errors.Is(err, isolationerrors.ErrInvalidOrganizationID),
		errors.Is(err, isolationerrors.ErrInvalidResourceType),
		errors.Is(err, isolationerrors.ErrPolicyRulesRequired),
		errors.Is(err, isolationerrors.ErrInvalidPolicy),
		errors.Is(err, isolationerrors.ErrInvalidGrant):
		writeIsolationError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, isolationerrors.ErrUserOrganizationNotFound):
		writeIsolationError(w, http.StatusNotFound, "user_organization_not_found", err.Error())
	default:
		writeIsolationError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeIsolationError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, isolationhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
