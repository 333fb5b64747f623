package httpadapter

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

const multipartMemory = 8 << 20

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// uploadRequest registers a document already placed in storage.
type uploadRequest struct {
	Type           string `json:"type"`
	Name           string `json:"name"`
	StorageURL     string `json:"storage_url"`
	SizeBytes      int64  `json:"size_bytes"`
	MimeType       string `json:"mime_type"`
	ExpirationDate string `json:"expiration_date"`
}

// uploadDocument takes either a JSON reference to a stored object or a
// multipart form with the file itself, which is then written to storage.
func (rt *Router) uploadDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	subfolderID := r.PathValue("id")

	var (
		cmd       domain.UploadCommand
		storedKey string
		err       error
	)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		cmd, storedKey, err = rt.storeMultipart(w, r, subfolderID)
	} else {
		var req uploadRequest
		if !decodeJSON(w, r, &req) {
			return
		}
		cmd, err = req.command()
	}
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	cmd.SubfolderID = subfolderID
	cmd.UploaderID = userID

	doc, err := rt.svc.Uploader.Upload(r.Context(), cmd)
	if err != nil {
		if storedKey != "" {
			rt.discardObject(r.Context(), storedKey)
		}
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, doc)
}

// discardObject removes bytes stored for an upload the workflow refused.
func (rt *Router) discardObject(ctx context.Context, key string) {
	if err := rt.svc.Storage.Delete(context.WithoutCancel(ctx), key); err != nil {
		rt.logger.Warn("orphan_object_delete_failed", "key", key, "error", err)
	}
}

func (req uploadRequest) command() (domain.UploadCommand, error) {
	expires, err := parseTime("expiration_date", req.ExpirationDate)
	if err != nil {
		return domain.UploadCommand{}, err
	}
	return domain.UploadCommand{
		Type: domain.DocumentType(req.Type),
		Name: req.Name,
		Object: domain.StoredObject{
			URL:       req.StorageURL,
			SizeBytes: req.SizeBytes,
			MimeType:  req.MimeType,
		},
		ExpirationDate: expires,
	}, nil
}

func (rt *Router) storeMultipart(w http.ResponseWriter, r *http.Request, subfolderID string) (domain.UploadCommand, string, error) {
	if rt.svc.Storage == nil {
		return domain.UploadCommand{}, "", domain.Validation("upload document", "file uploads are not enabled; send a JSON storage reference")
	}
	if rt.cfg.MaxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, rt.cfg.MaxUploadBytes)
	}
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return domain.UploadCommand{}, "", domain.Validation("upload document", "invalid multipart form: %v", err)
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		return domain.UploadCommand{}, "", domain.Validation("upload document", "multipart field 'file' is required")
	}
	defer file.Close()

	docType := strings.TrimSpace(r.FormValue("type"))
	if docType == "" {
		return domain.UploadCommand{}, "", domain.Validation("upload document", "multipart field 'type' is required")
	}
	expires, err := parseTime("expiration_date", r.FormValue("expiration_date"))
	if err != nil {
		return domain.UploadCommand{}, "", err
	}
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		name = header.Filename
	}
	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	key := fmt.Sprintf("subfolders/%s/%s/%s-%s", subfolderID, docType, uuid.NewString(), safeFileName(header.Filename))
	obj, err := rt.svc.Storage.Upload(r.Context(), key, file, header.Size, mimeType)
	if err != nil {
		return domain.UploadCommand{}, "", err
	}
	return domain.UploadCommand{
		Type:           domain.DocumentType(docType),
		Name:           name,
		Object:         obj,
		ExpirationDate: expires,
	}, key, nil
}

func safeFileName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = unsafeNameChars.ReplaceAllString(base, "_")
	if base == "" || base == "." || base == ".." {
		return "file"
	}
	return base
}

type rejectRequest struct {
	Notes string `json:"notes"`
}

type batchRequest struct {
	DocumentIDs []string `json:"document_ids"`
}

func (rt *Router) approveDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	doc, err := rt.svc.Reviews.Approve(r.Context(), r.PathValue("id"), userID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, doc)
}

func (rt *Router) rejectDocument(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req rejectRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	doc, err := rt.svc.Reviews.Reject(r.Context(), r.PathValue("id"), userID, req.Notes)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, doc)
}

func (rt *Router) approveBatch(w http.ResponseWriter, r *http.Request) {
	rt.batch(w, r, rt.svc.Reviews.ApproveBatch)
}

func (rt *Router) markToUpdate(w http.ResponseWriter, r *http.Request) {
	rt.batch(w, r, rt.svc.Reviews.MarkToUpdate)
}

func (rt *Router) undoReview(w http.ResponseWriter, r *http.Request) {
	rt.batch(w, r, rt.svc.Reviews.UndoReview)
}

func (rt *Router) batch(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, ids []string, reviewerID string) ([]domain.Document, error),
) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req batchRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	docs, err := op(r.Context(), req.DocumentIDs, userID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, docs)
}
