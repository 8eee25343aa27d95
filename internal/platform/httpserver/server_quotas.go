package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	identityentities "loom/contexts/identity-access/isolation-service/domain/entities"
	quotaerrors "loom/contexts/tenant-admin/quota-service/domain/errors"
	quotahttp "loom/contexts/tenant-admin/quota-service/transport/http"
)

func (s *Server) handleGetQuotas(w http.ResponseWriter, r *http.Request) {
	orgID := r.PathValue("org_id")
	resp, err := s.quotas.Handler.GetQuotasHandler(r.Context(), orgID)
	if err != nil {
		writeQuotaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheckQuota(w http.ResponseWriter, r *http.Request) {
	var req quotahttp.CheckQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQuotaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	orgID := r.PathValue("org_id")
	resp, err := s.quotas.Handler.CheckQuotaHandler(r.Context(), orgID, req)
	if err != nil {
		writeQuotaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleReserveQuota(w http.ResponseWriter, r *http.Request) {
	var req quotahttp.CheckQuotaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQuotaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	orgID := r.PathValue("org_id")
	resp, err := s.quotas.Handler.ReserveQuotaHandler(r.Context(), orgID, req)
	if err != nil {
		writeQuotaDomainError(w, err)
		return
	}
	if resp.Exceeded {
		writeJSON(w, http.StatusTooManyRequests, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleUpdateQuotaUsage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, identityentities.RoleOrgAdmin); !ok {
		return
	}

	var req quotahttp.UpdateUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQuotaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	orgID := r.PathValue("org_id")
	resp, err := s.quotas.Handler.UpdateUsageHandler(r.Context(), orgID, req)
	if err != nil {
		writeQuotaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleResetQuotaUsage(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, identityentities.RoleOrgAdmin); !ok {
		return
	}

	var req quotahttp.ResetUsageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeQuotaError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}

	orgID := r.PathValue("org_id")
	resp, err := s.quotas.Handler.ResetUsageHandler(r.Context(), orgID, req)
	if err != nil {
		writeQuotaDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeQuotaDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quotaerrors.ErrInvalidOrganizationID),
		errors.Is(err, quotaerrors.ErrInvalidQuantity),
		errors.Is(err, quotaerrors.ErrUnknownQuotaType),
		errors.Is(err, quotaerrors.ErrUnknownOperation):
		writeQuotaError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, quotaerrors.ErrQuotaExceeded):
		writeQuotaError(w, http.StatusTooManyRequests, "quota_exceeded", err.Error())
	default:
		writeQuotaError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeQuotaError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, quotahttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
