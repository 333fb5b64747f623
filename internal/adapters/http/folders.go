package httpadapter

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type createFolderResponse struct {
	Folder     *domain.StartupFolder `json:"folder"`
	Subfolders []domain.Subfolder    `json:"subfolders"`
}

func (rt *Router) createStartupFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var cmd domain.CreateFolderCommand
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.RequesterID = userID

	folder, subfolders, err := rt.svc.Folders.CreateStartupFolder(r.Context(), cmd)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, createFolderResponse{Folder: folder, Subfolders: subfolders})
}

func (rt *Router) deleteStartupFolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	if err := rt.svc.Folders.DeleteStartupFolder(r.Context(), id, userID); err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, map[string]string{"deleted": id})
}

func (rt *Router) linkEntity(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var cmd domain.LinkCommand
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.StartupFolderID = r.PathValue("id")
	cmd.RequesterID = userID

	sf, err := rt.svc.Folders.LinkEntity(r.Context(), cmd)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusCreated, sf)
}

func (rt *Router) folderProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := rt.svc.Progress.FolderProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, progress)
}

func (rt *Router) exportFolderProgress(w http.ResponseWriter, r *http.Request) {
	if rt.svc.Exporter == nil {
		writeErrorBody(w, http.StatusNotImplemented, &errorBody{Kind: "unsupported", Message: "progress export is not configured"})
		return
	}
	id := r.PathValue("id")
	progress, err := rt.svc.Progress.FolderProgress(r.Context(), id)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := rt.svc.Exporter.WriteFolderProgress(&buf, progress); err != nil {
		rt.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "progress-"+id+".xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

type sweepRequest struct {
	Now string `json:"now"`
}

func (rt *Router) triggerSweep(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var req sweepRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	at, err := parseTime("now", req.Now)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	var now time.Time
	if at != nil {
		now = *at
	}

	ids, err := rt.svc.Sweeper.TriggerSweep(r.Context(), userID, now)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeOK(w, http.StatusOK, map[string][]string{"expired_document_ids": ids})
}
