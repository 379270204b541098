package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Nimbus/internal/api/middleware"
	"github.com/Project-Sylos/Nimbus/internal/api/models"
	"github.com/Project-Sylos/Nimbus/internal/auth"
)

// AuthHandler handles account sign-up, sign-in and sign-out
type AuthHandler struct {
	BaseHandler
	provider auth.Provider
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(provider auth.Provider) *AuthHandler {
	return &AuthHandler{
		provider: provider,
	}
}

// SignUp creates an account
func (h *AuthHandler) SignUp(w http.ResponseWriter, req *http.Request) {
	var request models.CredentialsRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	user, err := h.provider.SignUp(req.Context(), request.Email, request.Password)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, map[string]any{"user": user})
}

// SignIn exchanges credentials for a bearer token
func (h *AuthHandler) SignIn(w http.ResponseWriter, req *http.Request) {
	var request models.CredentialsRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	result, err := h.provider.SignIn(req.Context(), request.Email, request.Password)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, map[string]any{"session": result, "user": result.User})
}

// SignOut revokes the token the request was authenticated with
func (h *AuthHandler) SignOut(w http.ResponseWriter, req *http.Request) {
	if err := h.provider.SignOut(req.Context(), middleware.BearerToken(req)); err != nil {
		h.handleError(w, err)
		return
	}

	h.sendMessage(w, "Signed out.")
}
