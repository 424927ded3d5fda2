package fakeapi

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-drive-client/internal/logger"
	"github.com/MKhiriev/go-drive-client/internal/utils"
	"github.com/MKhiriev/go-drive-client/models"
)

const maxMemoryUpload = 32 << 20

func (h *Handler) permissions(w http.ResponseWriter, r *http.Request) {
	perms, err := h.state.permissions(currentUser(r))
	if err != nil {
		h.fail(w, r, "permissions", err)
		return
	}
	_, _ = utils.WriteJSON(w, perms, http.StatusOK)
}

func (h *Handler) storageUsage(w http.ResponseWriter, r *http.Request) {
	usage, err := h.state.usage(currentUser(r))
	if err != nil {
		h.fail(w, r, "storageUsage", err)
		return
	}
	_, _ = utils.WriteJSON(w, usage, http.StatusOK)
}

func (h *Handler) listing(w http.ResponseWriter, r *http.Request) {
	_, _ = utils.WriteJSON(w, h.state.listing(currentUser(r), linkURL(r)), http.StatusOK)
}

func (h *Handler) createFolder(w http.ResponseWriter, r *http.Request) {
	var req models.CreateFolderRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "createFolder", ErrInvalidJSON)
		return
	}

	folder, err := h.state.createFolder(currentUser(r), req.Name)
	if err != nil {
		h.fail(w, r, "createFolder", err)
		return
	}

	_, _ = utils.WriteJSON(w, map[string]any{
		"message": "Folder created",
		"folder":  folderView(folder, linkURL(r)),
	}, http.StatusOK)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxMemoryUpload); err != nil {
		h.fail(w, r, "upload", ErrNoFile)
		return
	}
	defer r.MultipartForm.RemoveAll()

	part, header, err := r.FormFile("file")
	if err != nil {
		h.fail(w, r, "upload", ErrNoFile)
		return
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		h.fail(w, r, "upload", fmt.Errorf("read upload: %w", err))
		return
	}

	file, err := h.state.storeFile(currentUser(r), r.FormValue("folder_id"), header.Filename, content)
	if err != nil {
		h.fail(w, r, "upload", err)
		return
	}

	logger.FromRequest(r).Info().Str("func", "Handler.upload").Str("file_id", file.id).Int("size", len(content)).Msg("file stored")
	_, _ = utils.WriteJSON(w, map[string]any{
		"message": "File uploaded successfully",
		"file":    fileView(file, linkURL(r)),
	}, http.StatusOK)
}

func (h *Handler) deleteItem(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		h.fail(w, r, "deleteItem", ErrInvalidJSON)
		return
	}

	owner := currentUser(r)
	switch {
	case req.FolderID != "":
		if err := h.state.deleteFolder(owner, req.FolderID); err != nil {
			h.fail(w, r, "deleteItem", err)
			return
		}
		_, _ = utils.WriteJSON(w, models.MessageResponse{Message: "Folder and its files deleted successfully"}, http.StatusOK)
	case req.FileID != "":
		if err := h.state.deleteFile(owner, req.FileID); err != nil {
			h.fail(w, r, "deleteItem", err)
			return
		}
		_, _ = utils.WriteJSON(w, models.MessageResponse{Message: "File deleted successfully"}, http.StatusOK)
	default:
		h.fail(w, r, "deleteItem", ErrNothingToDelete)
	}
}

// Download failures are plain text, like the server's non-API views.
func (h *Handler) downloadFile(w http.ResponseWriter, r *http.Request) {
	name, content, err := h.state.fileByLink(chi.URLParam(r, "link"))
	if err != nil {
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(content)
}

func (h *Handler) downloadFolder(w http.ResponseWriter, r *http.Request) {
	name, files, err := h.state.folderByLink(chi.URLParam(r, "link"))
	if err != nil {
		http.Error(w, err.Error(), statusFromError(err))
		return
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, f := range files {
		entry, err := zw.Create(f.name)
		if err == nil {
			_, err = entry.Write(f.content)
		}
		if err != nil {
			h.fail(w, r, "downloadFolder", fmt.Errorf("zip %s: %w", f.name, err))
			return
		}
	}
	if err := zw.Close(); err != nil {
		h.fail(w, r, "downloadFolder", fmt.Errorf("zip close: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+".zip"))
	_, _ = w.Write(buf.Bytes())
}
