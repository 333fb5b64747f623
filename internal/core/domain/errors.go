package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrAlreadyLinked     = errors.New("already linked")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrPersistence       = errors.New("persistence error")
	ErrTemporary         = errors.New("temporary failure")
)

// WrapError preserves typed semantic errors with operation context.
func WrapError(kind error, operation string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", operation, kind, err)
}

func IsKind(err error, kind error) bool {
	return errors.Is(err, kind)
}

// Kind returns the taxonomy sentinel carried by err, or nil for untyped errors.
func Kind(err error) error {
	for _, kind := range []error{
		ErrValidation,
		ErrNotFound,
		ErrInvalidTransition,
		ErrAlreadyLinked,
		ErrPermissionDenied,
		ErrTemporary,
		ErrPersistence,
	} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

var kindNames = map[error]string{
	ErrValidation:        "validation",
	ErrNotFound:          "not_found",
	ErrInvalidTransition: "invalid_transition",
	ErrAlreadyLinked:     "already_linked",
	ErrPermissionDenied:  "permission_denied",
	ErrTemporary:         "temporary",
	ErrPersistence:       "persistence",
}

// KindName is the stable label for err's kind: "" for nil, "internal" for untyped errors.
func KindName(err error) string {
	if err == nil {
		return ""
	}
	if name, ok := kindNames[Kind(err)]; ok {
		return name
	}
	return "internal"
}

func Validation(operation, format string, args ...any) error {
	return WrapError(ErrValidation, operation, fmt.Errorf(format, args...))
}

func NotFound(operation, entity, id string) error {
	return WrapError(ErrNotFound, operation, fmt.Errorf("%s id=%s", entity, id))
}

func Persistence(operation string, err error) error {
	if err == nil || IsKind(err, ErrPersistence) {
		return err
	}
	return WrapError(ErrPersistence, operation, err)
}

// TransitionError is returned whenever a guard refuses a status change.
type TransitionError struct {
	Entity  string
	ID      string
	Current string
	Event   string
	Allowed []string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from %s (allowed from: %s)",
		e.Entity, e.ID, e.Event, e.Current, strings.Join(e.Allowed, ", "))
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }

// LinkConflictError reports a second subfolder for the same entity in a startup folder.
type LinkConflictError struct {
	StartupFolderID string
	EntityID        string
	Category        Category
}

func (e *LinkConflictError) Error() string {
	return fmt.Sprintf("%s %s is already linked to startup folder %s", strings.ToLower(string(e.Category)), e.EntityID, e.StartupFolderID)
}

func (e *LinkConflictError) Unwrap() error { return ErrAlreadyLinked }

func stringsOf[T ~string](values []T) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, string(v))
	}
	sort.Strings(out)
	return out
}
