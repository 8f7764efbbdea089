package handlers

import (
	"io"
	"net/http"

	"github.com/mclarke-dev/docuchat/internal/services"
)

// DocumentHandler exposes the document panel operations to the pages.
type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(docs *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: docs}
}

// Upload accepts the multipart file, validates it locally and forwards it to
// the backend. Oversized and non-PDF files never reach the network.
func (h *DocumentHandler) Upload(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body", false)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file", false)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	// Cheap pre-check from the part header before buffering the body.
	if err := h.documents.Validate(header.Filename, contentType, header.Size); err != nil {
		writeServiceError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file", false)
		return
	}

	doc, err := h.documents.Upload(r.Context(), ws, auth.AccessToken, header.Filename, contentType, data)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, doc)
}

// Delete removes the current document; the workspace cascade clears the chat
// sessions and messages with it.
func (h *DocumentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	auth, ws, ok := requestContext(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required", false)
		return
	}

	if err := h.documents.Delete(r.Context(), ws, auth.AccessToken); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
