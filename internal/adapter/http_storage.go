package adapter

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/url"
	"strings"

	"github.com/MKhiriev/go-drive-client/models"
	"github.com/go-resty/resty/v2"
)

const (
	pathStorage      = "/v1/storage/"
	pathStorageUsage = "/v1/storage/usage/"
	pathPermissions  = "/v1/permissions/"
	pathCreateFolder = "/v1/create/folder/"
	pathUpload       = "/v1/file/upload/"
	pathDelete       = "/v1/storage/delete/"
)

type folderEnvelope struct {
	Message string        `json:"message"`
	Folder  models.Folder `json:"folder"`
}

type fileEnvelope struct {
	Message string      `json:"message"`
	File    models.File `json:"file"`
}

// StorageUsage implements [ServerAdapter]. GET /v1/storage/usage/.
func (h *httpServerAdapter) StorageUsage(ctx context.Context) (models.StorageUsage, error) {
	var usage models.StorageUsage
	if err := h.send(ctx, "StorageUsage", resty.MethodGet, pathStorageUsage, nil, &usage); err != nil {
		return models.StorageUsage{}, err
	}
	return usage, nil
}

// Listing implements [ServerAdapter]. GET /v1/storage/.
func (h *httpServerAdapter) Listing(ctx context.Context) (models.Listing, error) {
	var listing models.Listing
	if err := h.send(ctx, "Listing", resty.MethodGet, pathStorage, nil, &listing); err != nil {
		return models.Listing{}, err
	}
	return listing, nil
}

// Permissions implements [ServerAdapter]. GET /v1/permissions/.
func (h *httpServerAdapter) Permissions(ctx context.Context) (models.Permissions, error) {
	var perms models.Permissions
	if err := h.send(ctx, "Permissions", resty.MethodGet, pathPermissions, nil, &perms); err != nil {
		return models.Permissions{}, err
	}
	return perms, nil
}

// CreateFolder implements [ServerAdapter]. POST /v1/create/folder/.
func (h *httpServerAdapter) CreateFolder(ctx context.Context, name string) (models.Folder, error) {
	var created folderEnvelope
	if err := h.send(ctx, "CreateFolder", resty.MethodPost, pathCreateFolder, models.CreateFolderRequest{Name: name}, &created); err != nil {
		return models.Folder{}, err
	}
	return created.Folder, nil
}

// DeleteItem implements [ServerAdapter]. DELETE /v1/storage/delete/ with
// either folder_id or file_id.
func (h *httpServerAdapter) DeleteItem(ctx context.Context, id string, kind models.ItemKind) error {
	var req models.DeleteRequest
	switch kind {
	case models.ItemKindFolder:
		req.FolderID = id
	case models.ItemKindFile:
		req.FileID = id
	default:
		return fmt.Errorf("%w: %q", ErrInvalidItemKind, string(kind))
	}

	return h.send(ctx, "DeleteItem", resty.MethodDelete, pathDelete, req, nil)
}

// UploadFile implements [ServerAdapter]. POST /v1/file/upload/ as
// multipart/form-data with the "file" part and an optional "folder_id".
//
// The body is produced on the fly through a pipe, so progress reflects the
// bytes the transport actually consumed rather than a buffered copy.
func (h *httpServerAdapter) UploadFile(ctx context.Context, file models.UploadFile, folderID string, onProgress ProgressFunc) (models.File, error) {
	if file.Content == nil {
		return models.File{}, fmt.Errorf("upload %s: no content", file.Name)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	content := newProgressReader(file.Content, file.Size, onProgress)

	go func() {
		pw.CloseWithError(writeUploadBody(mw, file.Name, folderID, content))
	}()

	var uploaded fileEnvelope
	resp, err := h.client.R().
		SetContext(ctx).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", mw.FormDataContentType()).
		SetBody(pr).
		SetResult(&uploaded).
		Post(pathUpload)
	// unblocks the writer when the transport stopped reading early
	pr.CloseWithError(io.ErrClosedPipe)
	if err != nil {
		h.logger.Err(err).Str("func", "httpServerAdapter.UploadFile").Str("filename", file.Name).Msg("upload failed")
		return models.File{}, fmt.Errorf("upload request: %w", err)
	}
	if err = mapHTTPError(resp); err != nil {
		h.logger.Debug().Str("func", "httpServerAdapter.UploadFile").Str("filename", file.Name).
			Int("status", resp.StatusCode()).Err(err).Msg("server rejected upload")
		return models.File{}, err
	}

	content.finish()
	return uploaded.File, nil
}

func writeUploadBody(mw *multipart.Writer, filename, folderID string, content io.Reader) error {
	if folderID != "" {
		if err := mw.WriteField("folder_id", folderID); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return err
	}
	if _, err = io.Copy(part, content); err != nil {
		return err
	}
	return mw.Close()
}

// Download implements [ServerAdapter]. GET
// /v1/storage/{files|folders}/download/{link}/. The share link may be given
// as the bare identifier or as the full unique_link_url.
func (h *httpServerAdapter) Download(ctx context.Context, link string, kind models.ItemKind, w io.Writer) (int64, error) {
	path, err := downloadPath(link, kind)
	if err != nil {
		return 0, err
	}

	resp, err := h.client.R().
		SetContext(ctx).
		SetDoNotParseResponse(true).
		Get(path)
	if err != nil {
		h.logger.Err(err).Str("func", "httpServerAdapter.Download").Str("path", path).Msg("download failed")
		return 0, fmt.Errorf("download request: %w", err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(body, 64<<10))
		return 0, mapStatus(resp.StatusCode(), msg)
	}

	n, err := io.Copy(w, body)
	if err != nil {
		return n, fmt.Errorf("download copy: %w", err)
	}
	h.logger.Debug().Str("func", "httpServerAdapter.Download").Str("path", path).Int64("bytes", n).Msg("downloaded")
	return n, nil
}

func downloadPath(link string, kind models.ItemKind) (string, error) {
	link = strings.TrimSpace(link)
	if i := strings.Index(link, "/download/"); i >= 0 {
		link = link[i+len("/download/"):]
	}
	link = strings.Trim(link, "/")
	if link == "" {
		return "", ErrEmptyLink
	}

	var segment string
	switch kind {
	case models.ItemKindFile:
		segment = "files"
	case models.ItemKindFolder:
		segment = "folders"
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidItemKind, string(kind))
	}
	return "/v1/storage/" + segment + "/download/" + url.PathEscape(link) + "/", nil
}
