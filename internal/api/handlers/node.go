package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Nimbus/internal/api/models"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/go-chi/chi/v5"
)

// NodeHandler handles per-item endpoints shared by files and folders
type NodeHandler struct {
	BaseHandler
	nimbus *sdk.Nimbus
}

// NewNodeHandler creates a new node handler
func NewNodeHandler(nimbus *sdk.Nimbus) *NodeHandler {
	return &NodeHandler{
		nimbus: nimbus,
	}
}

// GetNode handles the get node endpoint
func (h *NodeHandler) GetNode(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	node, err := session.Get(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, node)
}

// ListTrashed handles the trashed listing endpoint
func (h *NodeHandler) ListTrashed(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	nodes, err := session.ListTrashed(req.Context())
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, nodes)
}

// Search handles the ?query name search endpoint
func (h *NodeHandler) Search(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	nodes, err := session.Search(req.Context(), req.URL.Query().Get("query"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, nodes)
}

// Trash moves an item to the trash
func (h *NodeHandler) Trash(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	node, err := session.Trash(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, node)
}

// Restore takes an item out of the trash
func (h *NodeHandler) Restore(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	node, err := session.Restore(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, node)
}

// PermanentDelete removes an item, its descendants and their content
func (h *NodeHandler) PermanentDelete(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	if err := session.PermanentDelete(req.Context(), chi.URLParam(req, "id")); err != nil {
		h.handleError(w, err)
		return
	}

	h.sendMessage(w, "Item permanently deleted.")
}

// Rename handles the rename endpoint
func (h *NodeHandler) Rename(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	var request models.RenameRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	node, err := session.Rename(req.Context(), chi.URLParam(req, "id"), request.NewName)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, node)
}

// Move handles the move endpoint
func (h *NodeHandler) Move(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	var request models.MoveRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	node, err := session.Move(req.Context(), chi.URLParam(req, "id"), request.DestinationFolderID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, node)
}
