package httpadapter

import (
	"errors"
	"net/http"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type errorBody struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type envelope struct {
	OK    bool       `json:"ok"`
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrValidation):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrPermissionDenied):
		return http.StatusForbidden
	case domain.IsKind(err, domain.ErrNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrInvalidTransition), domain.IsKind(err, domain.ErrAlreadyLinked):
		return http.StatusConflict
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// toErrorBody hides the cause of unexpected failures; they are logged instead.
func toErrorBody(err error, status int) *errorBody {
	body := &errorBody{Kind: domain.KindName(err), Message: err.Error()}
	if status >= http.StatusInternalServerError && status != http.StatusServiceUnavailable {
		body.Message = "internal error"
		return body
	}

	var transition *domain.TransitionError
	if errors.As(err, &transition) {
		body.Details = map[string]any{
			"entity":  transition.Entity,
			"id":      transition.ID,
			"current": transition.Current,
			"event":   transition.Event,
			"allowed": transition.Allowed,
		}
	}
	var conflict *domain.LinkConflictError
	if errors.As(err, &conflict) {
		body.Details = map[string]any{
			"startup_folder_id": conflict.StartupFolderID,
			"entity_id":         conflict.EntityID,
			"category":          conflict.Category,
		}
	}
	return body
}
