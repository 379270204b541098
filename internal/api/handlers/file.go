package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/Project-Sylos/Nimbus/internal/config"
	"github.com/Project-Sylos/Nimbus/sdk"
	"github.com/dustin/go-humanize"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-chi/chi/v5"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling to temporary files
const multipartMemory = 32 << 20

// FileHandler handles file content endpoints
type FileHandler struct {
	BaseHandler
	nimbus   *sdk.Nimbus
	maxBytes int64
}

// NewFileHandler creates a new file handler
func NewFileHandler(nimbus *sdk.Nimbus) *FileHandler {
	return &FileHandler{
		nimbus:   nimbus,
		maxBytes: config.MaxUploadBytes(nimbus.GetConfig()),
	}
}

// UploadFile handles the multipart upload endpoint. The content is read from
// the "file" field and the optional destination from "parent_id".
func (h *FileHandler) UploadFile(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	if h.maxBytes > 0 {
		req.Body = http.MaxBytesReader(w, req.Body, h.maxBytes)
	}
	if err := req.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			h.sendError(w, http.StatusBadRequest,
				fmt.Sprintf("File exceeds the maximum upload size of %s.", humanize.IBytes(uint64(h.maxBytes))))
			return
		}
		h.sendError(w, http.StatusBadRequest, "No file was uploaded.")
		return
	}
	defer req.MultipartForm.RemoveAll()

	file, header, err := req.FormFile("file")
	if err != nil {
		h.sendError(w, http.StatusBadRequest, "No file was uploaded.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, fmt.Sprintf("Failed to read upload: %v", err))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = mimetype.Detect(data).String()
	}

	var parentID *string
	if id := req.FormValue("parent_id"); id != "" {
		parentID = &id
	}

	node, err := session.Upload(req.Context(), sdk.Upload{
		Name:     header.Filename,
		MimeType: mimeType,
		Data:     data,
		ParentID: parentID,
	})
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusCreated, node)
}

// Download returns a short-lived signed URL for the file content
func (h *FileHandler) Download(w http.ResponseWriter, req *http.Request) {
	session, ok := h.session(w, req, h.nimbus)
	if !ok {
		return
	}

	url, err := session.DownloadURL(req.Context(), chi.URLParam(req, "id"))
	if err != nil {
		h.handleError(w, err)
		return
	}

	h.sendJSON(w, http.StatusOK, map[string]string{"downloadUrl": url})
}
