// Package upload stores user supplied images (payment screenshots, profile
// photos, QR codes) on local disk and exposes them under /uploads.
package upload

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/SinaHo/investment-backend/internal/apperr"
	"github.com/SinaHo/investment-backend/internal/config"
)

// PublicPrefix is the URL path uploaded files are served from.
const PublicPrefix = "/uploads/"

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Store saves images and returns their public path.
type Store interface {
	SaveImage(r io.Reader, prefix string) (string, error)
	Dir() string
}

type localStore struct {
	dir      string
	maxBytes int64
}

// NewLocalStore creates the upload directory if needed.
func NewLocalStore(cfg config.UploadsConfig) (Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &localStore{dir: cfg.Dir, maxBytes: cfg.MaxBytes}, nil
}

func (s *localStore) Dir() string { return s.dir }

// SaveImage reads at most maxBytes from r, rejects anything that does not
// sniff as an image, and writes it under a random name.
func (s *localStore) SaveImage(r io.Reader, prefix string) (string, error) {
	body, err := io.ReadAll(io.LimitReader(r, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		return "", apperr.Newf(apperr.CodeInvalidArgument, "File too large, maximum size is %d MB", s.maxBytes>>20)
	}
	if len(body) == 0 {
		return "", apperr.Invalid("Uploaded file is empty")
	}

	contentType := http.DetectContentType(body[:min(len(body), 512)])
	ext, ok := extensions[contentType]
	if !ok {
		return "", apperr.Invalid("Only image files are allowed")
	}

	name := fmt.Sprintf("%s-%s%s", prefix, uuid.NewString(), ext)
	if err := writeFile(filepath.Join(s.dir, name), body); err != nil {
		return "", err
	}
	return PublicPrefix + name, nil
}

func writeFile(path string, body []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create upload: %w", err)
	}
	if _, err := io.Copy(f, bytes.NewReader(body)); err != nil {
		f.Close()
		return fmt.Errorf("write upload: %w", err)
	}
	return f.Close()
}

// PublicURL turns a stored path or bare file name into a URL the client can fetch.
func PublicURL(p string) string {
	switch {
	case p == "":
		return ""
	case strings.HasPrefix(p, "http"), strings.HasPrefix(p, "/"):
		return p
	default:
		return PublicPrefix + p
	}
}
