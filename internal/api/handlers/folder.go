package handlers

import (
	"net/http"

	"github.com/Project-Sylos/Nimbus/internal/api/models"
	"github.com/Project-Sylos/Nimbus/sdk"
)

// FolderHandler handles listing and folder creation
type FolderHandler struct {
	BaseHandler
	nimbus *sdk.Nimbus
}

// NewFolderHandler creates a new folder handler
func NewFolderHandler(nimbus *sdk.Nimbus) *FolderHandler {
	return &FolderHandler{
		nimbus: nimbus,
	}
}

// ListChildren lists the caller's non-trashed items under ?parentId, or at
// root when it is absent.
func (h *FolderHandler) ListChildren(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	var parentID *string
	if id := req.URL.Query().Get("parentId"); id != "" {
		parentID = &id
	}

	nodes, err := session.ListChildren(req.Context(), parentID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, nodes)
}

// CreateFolder handles the create folder endpoint
func (h *FolderHandler) CreateFolder(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	var request models.CreateFolderRequest
	if !h.decodeJSON(w, req, &request) {
		return
	}

	folder, err := session.CreateFolder(req.Context(), request.Name, request.ParentID)
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, folder)
}
