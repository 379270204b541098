package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Nimbus/sdk"
)

// UserHandler handles account-level endpoints
type UserHandler struct {
	BaseHandler
	nimbus *sdk.Nimbus
}

// NewUserHandler creates a new user handler
func NewUserHandler(nimbus *sdk.Nimbus) *UserHandler {
	return &UserHandler{
		nimbus: nimbus,
	}
}

// Storage reports usage, plan and limit of the caller
func (h *UserHandler) Storage(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	usage, err := session.Usage(req.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, usage)
}
