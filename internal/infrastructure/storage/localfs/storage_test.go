package localfs

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

func TestUploadWritesObject(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	require.NoError(t, err)

	obj, err := s.Upload(context.Background(), "subfolders/sf-1/ID_CARD/card.pdf", strings.NewReader("pdf-bytes"), 9, "application/pdf")
	require.NoError(t, err)
	require.Equal(t, int64(9), obj.SizeBytes)
	require.Equal(t, "application/pdf", obj.MimeType)
	require.True(t, strings.HasPrefix(obj.URL, "file://"), obj.URL)

	data, err := os.ReadFile(filepath.Join(dir, "subfolders", "sf-1", "ID_CARD", "card.pdf"))
	require.NoError(t, err)
	require.Equal(t, "pdf-bytes", string(data))
}

func TestUploadUsesPublicURL(t *testing.T) {
	s, err := New(t.TempDir(), "https://files.example/")
	require.NoError(t, err)

	obj, err := s.Upload(context.Background(), "a/b.txt", strings.NewReader("x"), 0, "text/plain")
	require.NoError(t, err)
	require.Equal(t, "https://files.example/a/b.txt", obj.URL)
}

func TestUploadRejectsSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	require.NoError(t, err)

	_, err = s.Upload(context.Background(), "a/b.txt", strings.NewReader("abc"), 10, "text/plain")
	require.True(t, domain.IsKind(err, domain.ErrValidation), "got %v", err)
	_, statErr := os.Stat(filepath.Join(dir, "a", "b.txt"))
	require.True(t, os.IsNotExist(statErr))
}

func TestUploadRejectsEscapingKeys(t *testing.T) {
	s, err := New(t.TempDir(), "")
	require.NoError(t, err)

	for _, key := range []string{"", "../outside.txt", "a/../../b", "."} {
		_, err := s.Upload(context.Background(), key, strings.NewReader("x"), 1, "text/plain")
		require.True(t, domain.IsKind(err, domain.ErrValidation), "key %q: got %v", key, err)
	}
}

func TestDeleteRemovesObjectAndIgnoresMissing(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir, "")
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Upload(ctx, "a/b.txt", strings.NewReader("x"), 1, "text/plain")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "a/b.txt"))

	_, err = os.Stat(filepath.Join(dir, "a", "b.txt"))
	require.True(t, os.IsNotExist(err), "got %v", err)
	require.NoError(t, s.Delete(ctx, "a/b.txt"))

	err = s.Delete(ctx, "../escape.txt")
	require.True(t, domain.IsKind(err, domain.ErrValidation), "got %v", err)
}
