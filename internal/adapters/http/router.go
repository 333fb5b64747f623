package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/config"
	"github.com/kirillkom/contractor-compliance/internal/core/domain"
	"github.com/kirillkom/contractor-compliance/internal/core/ports"
	"github.com/kirillkom/contractor-compliance/internal/observability/metrics"
)

const serviceName = "compliance-api"

// ProgressExporter renders folder progress as a downloadable spreadsheet.
type ProgressExporter interface {
	WriteFolderProgress(w io.Writer, progress *domain.FolderProgress) error
}

// Services are the inbound operations exposed over HTTP. Storage and Exporter
// are optional; their routes answer 501 when nil.
type Services struct {
	Uploader    ports.DocumentUploader
	Submissions ports.SubmissionCoordinator
	Reviews     ports.ReviewEngine
	Sweeper     ports.ExpirationSweeper
	Folders     ports.FolderProvisioner
	Overrides   ports.StatusOverrider
	Progress    ports.ProgressReader
	Storage     ports.ObjectStorage
	Exporter    ProgressExporter
}

type Router struct {
	cfg     config.Config
	svc     Services
	metrics *metrics.HTTPServerMetrics
	logger  *slog.Logger
}

func NewRouter(cfg config.Config, svc Services, httpMetrics *metrics.HTTPServerMetrics, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{cfg: cfg, svc: svc, metrics: httpMetrics, logger: logger}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)
	if rt.metrics != nil {
		mux.Handle("GET /metrics", rt.metrics.Handler())
	}

	mux.HandleFunc("POST /v1/startup-folders", rt.createStartupFolder)
	mux.HandleFunc("DELETE /v1/startup-folders/{id}", rt.deleteStartupFolder)
	mux.HandleFunc("POST /v1/startup-folders/{id}/links", rt.linkEntity)
	mux.HandleFunc("GET /v1/startup-folders/{id}/progress", rt.folderProgress)
	mux.HandleFunc("GET /v1/startup-folders/{id}/progress.xlsx", rt.exportFolderProgress)

	mux.HandleFunc("GET /v1/subfolders/{id}/progress", rt.subfolderProgress)
	mux.HandleFunc("POST /v1/subfolders/{id}/documents", rt.uploadDocument)
	mux.HandleFunc("POST /v1/subfolders/{id}/submit", rt.submitSubfolder)
	mux.HandleFunc("POST /v1/subfolders/{id}/status", rt.overrideStatus)

	mux.HandleFunc("POST /v1/documents/{id}/approve", rt.approveDocument)
	mux.HandleFunc("POST /v1/documents/{id}/reject", rt.rejectDocument)
	mux.HandleFunc("POST /v1/documents/approve-batch", rt.approveBatch)
	mux.HandleFunc("POST /v1/documents/mark-to-update", rt.markToUpdate)
	mux.HandleFunc("POST /v1/documents/undo-review", rt.undoReview)

	mux.HandleFunc("POST /v1/expiration-sweeps", rt.triggerSweep)

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware(serviceName, handler)
	}
	handler = backpressureMiddleware(handler, rt.cfg.APIMaxInFlight, rt.cfg.APIQueueWait)
	handler = rateLimitMiddleware(handler, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeOK(w, http.StatusOK, map[string]string{"status": "ok"})
}

// requesterID reads the caller identity set by the upstream gateway.
func requesterID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.Header.Get(userIDHeader))
	if id == "" {
		writeErrorBody(w, http.StatusUnauthorized, &errorBody{Kind: "unauthenticated", Message: userIDHeader + " header is required"})
		return "", false
	}
	return id, true
}

// decodeJSON accepts an empty body as the zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeErrorBody(w, http.StatusBadRequest, &errorBody{Kind: "validation", Message: "invalid json: " + err.Error()})
	return false
}

// parseTime accepts RFC 3339 timestamps and plain dates (midnight UTC).
func parseTime(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, value)
	if err != nil {
		return nil, domain.Validation("parse request", "%s must be RFC 3339 or YYYY-MM-DD, got %q", field, value)
	}
	return &t, nil
}

func writeOK(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{OK: true, Data: data})
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	if status >= http.StatusInternalServerError {
		rt.logger.Error("http_request_failed",
			"request_id", requestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	writeErrorBody(w, status, toErrorBody(err, status))
}

func writeErrorBody(w http.ResponseWriter, status int, body *errorBody) {
	writeJSON(w, status, envelope{OK: false, Error: body})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
