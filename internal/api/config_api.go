package api

import (
	"encoding/json"
	"net/http"

	"vigil/internal/metrics"
)

// ConfigResponse exposes the member-visible configuration. The admin
// passcode itself is only returned right after it is rewritten.
type ConfigResponse struct {
	Number                string `json:"number"`
	UserCanDeleteBookings bool   `json:"user_can_delete_bookings"`
	NewAdminPassword      string `json:"new_admin_password,omitempty"`
}

// UpdateConfigRequest is the request body for PUT /api/config.
type UpdateConfigRequest struct {
	Number                *string `json:"number,omitempty"`
	UserCanDeleteBookings *bool   `json:"user_can_delete_bookings,omitempty"`
}

// handleConfig reads or updates the singleton configuration documents.
// GET /api/config | PUT /api/config
func (s *HTTPServer) handleConfig(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		metrics.IncHTTP("config_get")
		msg, err := s.manager.MessagingConfig(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		admin, err := s.manager.AdminConfig(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ConfigResponse{
			Number:                msg.Number,
			UserCanDeleteBookings: admin.UserCanDeleteBookings,
		})

	case http.MethodPut:
		metrics.IncHTTP("config_update")
		if !s.isAdmin(r) {
			writeError(w, http.StatusForbidden, "admin password required")
			return
		}

		var req UpdateConfigRequest
		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}

		var newPassword string
		if req.Number != nil {
			password, err := s.manager.SetNumber(r.Context(), *req.Number)
			if err != nil {
				writeDomainError(w, err)
				return
			}
			newPassword = password
		}
		if req.UserCanDeleteBookings != nil {
			if err := s.manager.SetUserCanDeleteBookings(r.Context(), *req.UserCanDeleteBookings); err != nil {
				writeDomainError(w, err)
				return
			}
		}

		msg, err := s.manager.MessagingConfig(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		admin, err := s.manager.AdminConfig(r.Context())
		if err != nil {
			writeDomainError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ConfigResponse{
			Number:                msg.Number,
			UserCanDeleteBookings: admin.UserCanDeleteBookings,
			NewAdminPassword:      newPassword,
		})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}
