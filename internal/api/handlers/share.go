package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Nimbus/internal/api/models"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/go-chi/chi/v5"
)

// ShareHandler handles sharing endpoints
type ShareHandler struct {
	BaseHandler
	nimbus *sdk.Nimbus
}

// NewShareHandler creates a new share handler
func NewShareHandler(nimbus *sdk.Nimbus) *ShareHandler {
	return &ShareHandler{
		nimbus: nimbus,
	}
}

// Share grants the user with the given email read access to a file
func (h *ShareHandler) Share(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	var request models.ShareRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	grant, err := session.Share(req.Context(), chi.URLParam(req, "id"), request.Email)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, grant)
}

// SharedWithMe lists files other users shared with the caller
func (h *ShareHandler) SharedWithMe(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	items, err := session.SharedWithMe(req.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, items)
}

// Unshare removes a file from the caller's shared-with-me list
func (h *ShareHandler) Unshare(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	if err := session.Unshare(req.Context(), chi.URLParam(req, "fileId")); err != nil {
		h.handleError(w, err)
		return
	}

	h.sendMessage(w, "Share removed successfully.")
}

// ListShares lists the grants on a file the caller owns
func (h *ShareHandler) ListShares(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	grants, err := session.ListShares(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, grants)
}

// Revoke removes one recipient's grant on a file the caller owns
func (h *ShareHandler) Revoke(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	if err := session.RevokeShare(req.Context(), chi.URLParam(req, "id"), chi.URLParam(req, "userId")); err != nil {
		h.handleError(w, err)
		return
	}

	h.sendMessage(w, "Share revoked.")
}
