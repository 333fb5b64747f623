package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/kirillkom/contractor-compliance/internal/core/domain"
)

type Storage struct {
	basePath string
	// publicURL, when set, replaces the file:// scheme in returned references.
	publicURL string
}

func New(basePath, publicURL string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/storage"
	}
	abs, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{basePath: abs, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

func (s *Storage) Upload(ctx context.Context, key string, body io.Reader, size int64, mimeType string) (domain.StoredObject, error) {
	clean, err := cleanKey(key)
	if err != nil {
		return domain.StoredObject{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.StoredObject{}, err
	}

	target := filepath.Join(s.basePath, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return domain.StoredObject{}, fmt.Errorf("create object dir: %w", err)
	}
	f, err := os.CreateTemp(filepath.Dir(target), ".upload-*")
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("create file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	written, err := io.Copy(f, body)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return domain.StoredObject{}, fmt.Errorf("write file: %w", err)
	}
	if size > 0 && written != size {
		return domain.StoredObject{}, domain.Validation("localfs.upload", "declared size %d does not match %d bytes received", size, written)
	}
	if err := os.Rename(tmp, target); err != nil {
		return domain.StoredObject{}, fmt.Errorf("commit file: %w", err)
	}

	return domain.StoredObject{URL: s.objectURL(clean, target), SizeBytes: written, MimeType: mimeType}, nil
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	clean, err := cleanKey(key)
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.basePath, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

func (s *Storage) objectURL(key, target string) string {
	if s.publicURL != "" {
		return s.publicURL + "/" + key
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(target)}).String()
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	clean := strings.TrimPrefix(path.Clean("/"+key), "/")
	if key == "" || clean == "" || clean == "." || clean != strings.TrimPrefix(key, "/") {
		return "", domain.Validation("localfs.upload", "invalid object key %q", key)
	}
	return clean, nil
}
