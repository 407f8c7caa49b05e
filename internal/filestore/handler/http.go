// Package handler serves attachment upload and download over HTTP.
package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"

	"chat-server/backend/internal/filestore"
	identitydomain "chat-server/backend/internal/identity/domain"
	"chat-server/backend/internal/platform/apperr"
	"chat-server/backend/internal/server/interceptors"
)

// DefaultMaxUploadBytes bounds a whole multipart upload request.
const DefaultMaxUploadBytes int64 = 32 << 20

// Blobs is the subset of filestore.Store used by the handler.
type Blobs interface {
	Put(ctx context.Context, workspaceID int64, filename string, data []byte) (filestore.FileID, error)
	Open(ctx context.Context, id identitydomain.Identity, fid filestore.FileID) (*os.File, error)
}

// FileHandler serves /api/upload and /api/files/*.
type FileHandler struct {
	blobs    Blobs
	maxBytes int64
}

// NewFileHandler returns a FileHandler. A non-positive maxBytes selects DefaultMaxUploadBytes.
func NewFileHandler(blobs Blobs, maxBytes int64) *FileHandler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxUploadBytes
	}
	return &FileHandler{blobs: blobs, maxBytes: maxBytes}
}

// Upload handles POST /api/upload. Every file part of the multipart body is stored in the
// caller's workspace; the response lists their URLs ordered by form field name.
func (h *FileHandler) Upload(c *gin.Context) {
	id := interceptors.MustIdentity(c)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes)
	form, err := c.MultipartForm()
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			apperr.Abort(c, apperr.New(apperr.KindBadRequest, "upload exceeds %d bytes", h.maxBytes))
			return
		}
		apperr.Abort(c, apperr.Wrap(apperr.KindBadRequest, err, "invalid multipart body"))
		return
	}
	defer func() { _ = form.RemoveAll() }()

	urls := []string{}
	for _, field := range sortedKeys(form.File) {
		for _, fh := range form.File[field] {
			fid, err := h.store(c.Request.Context(), id.WorkspaceID, fh)
			if err != nil {
				apperr.Abort(c, apperr.Wrap(apperr.KindStorageIO, err, "store %q", fh.Filename))
				return
			}
			urls = append(urls, fid.URL())
		}
	}
	log.Printf("filestore: user %d uploaded %d file(s) to workspace %d", id.ID, len(urls), id.WorkspaceID)
	c.JSON(http.StatusOK, urls)
}

func (h *FileHandler) store(ctx context.Context, workspaceID int64, fh *multipart.FileHeader) (filestore.FileID, error) {
	f, err := fh.Open()
	if err != nil {
		return filestore.FileID{}, err
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return filestore.FileID{}, err
	}
	return h.blobs.Put(ctx, workspaceID, fh.Filename, data)
}

// Download handles GET /api/files/:ws_id/*path. A malformed path, another workspace, and a
// missing blob all answer 404. Content-Type is sniffed from the blob.
func (h *FileHandler) Download(c *gin.Context) {
	id := interceptors.MustIdentity(c)
	raw := filestore.URLPrefix + c.Param("ws_id") + c.Param("path")
	fid, err := filestore.ParseURL(raw)
	if err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindFormat, err, "parse file path"))
		return
	}
	f, err := h.blobs.Open(c.Request.Context(), id, fid)
	if err != nil {
		if errors.Is(err, filestore.ErrNotFound) {
			apperr.Abort(c, apperr.Wrap(apperr.KindNotFound, err, "file %s", raw))
			return
		}
		apperr.Abort(c, apperr.Wrap(apperr.KindStorageIO, err, "open %s", raw))
		return
	}
	defer f.Close()

	mt, err := mimetype.DetectReader(f)
	if err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindStorageIO, err, "sniff %s", raw))
		return
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindStorageIO, err, "rewind %s", raw))
		return
	}
	info, err := f.Stat()
	if err != nil {
		apperr.Abort(c, apperr.Wrap(apperr.KindStorageIO, err, "stat %s", raw))
		return
	}
	c.Header("Content-Type", mt.String())
	http.ServeContent(c.Writer, c.Request, "", info.ModTime(), f)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
