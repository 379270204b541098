package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/blob"
	"github.com/Project-Sylos/Nimbus/internal/logger"
)

// BlobHandler serves signed blob URLs for gateways that do not have their
// own download endpoint
type BlobHandler struct {
	BaseHandler
	server blob.URLServer
}

// NewBlobHandler returns a handler for gateway, or nil when the gateway
// issues URLs that point elsewhere (S3)
func NewBlobHandler(gateway blob.Gateway) *BlobHandler {
	server, ok := gateway.(blob.URLServer)
	if !ok {
		return nil
	}
	return &BlobHandler{server: server}
}

// ServeBlob streams the blob named by the path after /blobs/
func (h *BlobHandler) ServeBlob(w http.ResponseWriter, req *http.Request) {
	path := strings.TrimPrefix(req.URL.Path, "/blobs/")
	if path == "" || path == req.URL.Path {
		h.sendError(w, http.StatusNotFound, "Blob not found.")
		return
	}

	data, mimeType, err := h.server.OpenSigned(req.Context(), path, req.URL.Query())
	switch {
	case errors.Is(err, blob.ErrBadSignature):
		h.sendError(w, http.StatusForbidden, "Invalid download link.")
		return
	case errors.Is(err, blob.ErrExpired):
		h.sendError(w, http.StatusForbidden, "Download link has expired.")
		return
	case errors.Is(err, blob.ErrNotFound):
		h.sendError(w, http.StatusNotFound, "Blob not found.")
		return
	case err != nil:
		logger.Error("Failed to serve blob %s: %v", path, err)
		h.sendError(w, http.StatusInternalServerError, "Failed to read file.")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
