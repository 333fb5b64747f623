package httpadapter

import (
	"net/http"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func (rt *Router) subfolderProgress(w http.ResponseWriter, r *http.Request) {
	progress, err := rt.svc.Progress.SubfolderProgress(r.Context(), r.PathValue("id"))
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, progress)
}

func (rt *Router) submitSubfolder(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var cmd domain.SubmitCommand
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SubfolderID = r.PathValue("id")
	cmd.RequesterID = userID

	result, err := rt.svc.Submissions.Submit(r.Context(), cmd)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, result)
}

func (rt *Router) overrideStatus(w http.ResponseWriter, r *http.Request) {
	userID, ok := requesterID(w, r)
	if !ok {
		return
	}
	var cmd domain.OverrideCommand
	if !decodeJSON(w, r, &cmd) {
		return
	}
	cmd.SubfolderID = r.PathValue("id")
	cmd.ActorID = userID

	sf, err := rt.svc.Overrides.OverrideStatus(r.Context(), cmd)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, sf)
}
