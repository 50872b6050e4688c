package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hearthhq/hearth/internal/auth"
	"github.com/hearthhq/hearth/internal/model"
	"github.com/hearthhq/hearth/internal/server/middleware"
	"github.com/hearthhq/hearth/internal/upload"
)

// maxUploadBytes caps the in-memory portion of multipart parsing.
const maxUploadBytes = 10 << 20 // 10MB

// UploadHandler serves picture upload and file management endpoints. Stored
// reference paths are associated with the caller's account; file contents
// are never interpreted here.
type UploadHandler struct {
	storage *upload.Storage
	auth    *auth.Service
	logger  *slog.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(storage *upload.Storage, authSvc *auth.Service, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{storage: storage, auth: authSvc, logger: logger}
}

// Upload accepts a multipart "file" plus a "kind" field (profilePicture or
// coverPicture), stores the binary under a generated name, and records the
// reference path on the caller's account.
// POST /files
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipal(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart request.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file uploaded.")
		return
	}
	defer file.Close()

	kind := r.FormValue("kind")
	if kind == "" {
		kind = "profilePicture"
	}
	if kind != "profilePicture" && kind != "coverPicture" {
		writeError(w, http.StatusBadRequest, "Kind must be \"profilePicture\" or \"coverPicture\".")
		return
	}

	path, err := h.storage.Save(header.Filename, file)
	if err != nil {
		h.logger.Error("store upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	var upd model.AccountUpdate
	if kind == "profilePicture" {
		upd.ProfilePicture = &path
	} else {
		upd.CoverPicture = &path
	}

	acct, err := h.auth.Update(r.Context(), principal.AccountID, upd, principal.IsAdmin)
	if err != nil {
		h.logger.Error("associate upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "File uploaded successfully.",
		"path":    path,
		"user":    acct,
	})
}

// List returns all stored files.
// GET /files
func (h *UploadHandler) List(w http.ResponseWriter, r *http.Request) {
	files, err := h.storage.List()
	if err != nil {
		h.logger.Error("list uploads failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"files": files})
}

// Delete removes a stored file by filename.
// DELETE /files/{filename}
func (h *UploadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "filename")

	if err := h.storage.Remove(name); err != nil {
		if errors.Is(err, upload.ErrNotFound) {
			writeError(w, http.StatusNotFound, "File not found.")
			return
		}
		h.logger.Error("delete upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"message": "File deleted successfully."})
}
