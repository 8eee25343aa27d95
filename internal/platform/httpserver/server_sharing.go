package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	sharingerrors "loom/contexts/content-sharing/sharing-workflow-service/domain/errors"
	sharinghttp "loom/contexts/content-sharing/sharing-workflow-service/transport/http"
	identityentities "loom/contexts/identity-access/isolation-service/domain/entities"
)

func (s *Server) handleShareItem(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req sharinghttp.ShareItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSharingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.SharedBy) == "" {
		req.SharedBy = principal.UserID
	}

	orgID := r.PathValue("org_id")
	resp, err := s.sharing.Handler.ShareItemHandler(r.Context(), orgID, req)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleShareToChildren(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req sharinghttp.HierarchyShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSharingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.SharedBy) == "" {
		req.SharedBy = principal.UserID
	}

	orgID := r.PathValue("org_id")
	resp, err := s.sharing.Handler.ShareToChildrenHandler(r.Context(), orgID, req)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleShareToParent(w http.ResponseWriter, r *http.Request) {
	principal, ok := requirePrincipal(w, r)
	if !ok {
		return
	}

	var req sharinghttp.HierarchyShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSharingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.SharedBy) == "" {
		req.SharedBy = principal.UserID
	}

	orgID := r.PathValue("org_id")
	resp, err := s.sharing.Handler.ShareToParentHandler(r.Context(), orgID, req)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handlePendingApprovals(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	featureKey := r.URL.Query().Get("feature_key")
	resp, err := s.sharing.Handler.PendingApprovalsHandler(r.Context(), orgID, featureKey)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSharingStats(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.sharing.Handler.SharingStatsHandler(r.Context(), orgID)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleApproveSharing(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, identityentities.RoleManager)
	if !ok {
		return
	}

	var req sharinghttp.ApproveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSharingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.ApprovedBy) == "" {
		req.ApprovedBy = principal.UserID
	}

	sharingID := r.PathValue("sharing_id")
	resp, err := s.sharing.Handler.ApproveHandler(r.Context(), sharingID, req)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRejectSharing(w http.ResponseWriter, r *http.Request) {
	principal, ok := requireRole(w, r, identityentities.RoleManager)
	if !ok {
		return
	}

	var req sharinghttp.RejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeSharingError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	if strings.TrimSpace(req.RejectedBy) == "" {
		req.RejectedBy = principal.UserID
	}

	sharingID := r.PathValue("sharing_id")
	resp, err := s.sharing.Handler.RejectHandler(r.Context(), sharingID, req)
	if err != nil {
		writeSharingDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeSharingDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sharingerrors.ErrInvalidOrganizationID),
		errors.Is(err, sharingerrors.ErrInvalidFeatureKey),
		errors.Is(err, sharingerrors.ErrInvalidItemID),
		errors.Is(err, sharingerrors.ErrInvalidSharingID),
		errors.Is(err, sharingerrors.ErrInvalidActorID):
		writeSharingError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, sharingerrors.ErrOrganizationNotFound),
		errors.Is(err, sharingerrors.ErrSharingRequestNotFound):
		writeSharingError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, sharingerrors.ErrSharingRequestExists),
		errors.Is(err, sharingerrors.ErrRequestAlreadyResolved),
		errors.Is(err, sharingerrors.ErrNoParentOrganization):
		writeSharingError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, sharingerrors.ErrSharingQuotaExceeded):
		writeSharingError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	default:
		writeSharingError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeSharingError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, sharinghttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
