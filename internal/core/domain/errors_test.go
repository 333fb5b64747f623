package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindResolvesWrappedSentinels(t *testing.T) {
	cases := []struct {
		err  error
		want error
	}{
		{err: NotFound("get subfolder", "subfolder", "sf-1"), want: ErrNotFound},
		{err: Validation("reject", "notes required"), want: ErrValidation},
		{err: fmt.Errorf("approve: %w", &TransitionError{Entity: "document", ID: "d"}), want: ErrInvalidTransition},
		{err: &LinkConflictError{StartupFolderID: "f", EntityID: "w", Category: CategoryPersonnel}, want: ErrAlreadyLinked},
		{err: Persistence("update", errors.New("conn reset")), want: ErrPersistence},
		{err: errors.New("plain"), want: nil},
	}
	for _, tc := range cases {
		if got := Kind(tc.err); got != tc.want {
			t.Fatalf("Kind(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestPersistenceDoesNotDoubleWrap(t *testing.T) {
	first := Persistence("insert", errors.New("boom"))
	second := Persistence("outer", first)
	if first != second {
		t.Fatalf("expected persistence error to pass through unchanged")
	}
}

func TestKindName(t *testing.T) {
	if got := KindName(nil); got != "" {
		t.Fatalf("KindName(nil) = %q", got)
	}
	if got := KindName(&LinkConflictError{}); got != "already_linked" {
		t.Fatalf("KindName(link conflict) = %q", got)
	}
	if got := KindName(errors.New("boom")); got != "internal" {
		t.Fatalf("KindName(untyped) = %q", got)
	}
}
