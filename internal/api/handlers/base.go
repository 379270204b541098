package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/Project-Sylos/Nimbus/internal/api/models"
	"github.com/Project-Sylos/Nimbus/internal/auth"
	"github.com/Project-Sylos/Nimbus/internal/logger"
	"github.com/Project-Sylos/Nimbus/internal/types"
	"github.com/Project-Sylos/Nimbus/sdk"
)

// BaseHandler provides common functionality for all API handlers
type BaseHandler struct{}

// sendJSON sends a JSON response with the given status code and data
func (h *BaseHandler) sendJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// sendError sends an error response with the given status code and message
func (h *BaseHandler) sendError(w http.ResponseWriter, statusCode int, message string) {
	h.sendJSON(w, statusCode, map[string]string{"error": message})
}

// sendMessage sends a 200 response carrying only a message
func (h *BaseHandler) sendMessage(w http.ResponseWriter, message string) {
	h.sendJSON(w, http.StatusOK, map[string]string{"message": message})
}

// handleError maps a classified error to its status and writes it
func (h *BaseHandler) handleError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed: %v", err)
	}
	h.sendError(w, status, types.Message(err))
}

// statusFor returns the HTTP status of an error kind. Store failures are
// client errors carrying the store's message.
func statusFor(err error) int {
	switch {
	case errors.Is(err, types.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, types.ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, types.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, types.ErrQuotaExceeded):
		return http.StatusForbidden
	case errors.Is(err, types.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, types.ErrStore):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON decodes and validates a request body. An empty body decodes
// to the zero request.
func (h *BaseHandler) decodeJSON(w http.ResponseWriter, req *http.Request, dst models.Validator) bool {
	if err := json.NewDecoder(req.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.sendError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	if err := dst.Validate(); err != nil {
		h.handleError(w, err)
		return false
	}
	return true
}

// session returns the filesystem session of the authenticated caller
func (h *BaseHandler) session(w http.ResponseWriter, req *http.Request, nimbus *sdk.Nimbus) (*sdk.Session, bool) {
	principal, ok := auth.PrincipalFrom(req.Context())
	if !ok {
		h.sendError(w, http.StatusUnauthorized, "No token provided. Authorization denied.")
		return nil, false
	}
	return nimbus.For(principal.UserID), true
}
