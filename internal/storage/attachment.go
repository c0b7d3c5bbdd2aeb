// Package storage holds uploaded complaint attachments on disk under a
// directory that is served publicly at /uploads.
package storage

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrTooLarge       = errors.New("attachment too large")
	ErrExtNotAllowed  = errors.New("attachment type not allowed")
	ErrInvalidFileRef = errors.New("invalid attachment reference")
)

// Attachments accepts an upload and returns the stable name it is stored
// under.
type Attachments interface {
	Save(fh *multipart.FileHeader) (string, error)
	Remove(name string) error
	URL(name string) string
}

type DiskStore struct {
	Dir         string
	MaxBytes    int64
	AllowedExts []string
	URLPrefix   string
}

func NewDiskStore(dir string, maxBytes int64, allowedExts []string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	exts := make([]string, 0, len(allowedExts))
	for _, e := range allowedExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if e != "" {
			exts = append(exts, e)
		}
	}
	return &DiskStore{Dir: dir, MaxBytes: maxBytes, AllowedExts: exts, URLPrefix: "/uploads/"}, nil
}

// uniqueName keeps the original extension: <unix millis>-<uuid><ext>.
func uniqueName(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString(), ext)
}

func (s *DiskStore) allowed(ext string) bool {
	if len(s.AllowedExts) == 0 {
		return true
	}
	for _, e := range s.AllowedExts {
		if e == ext {
			return true
		}
	}
	return false
}

func (s *DiskStore) Save(fh *multipart.FileHeader) (string, error) {
	if s.MaxBytes > 0 && fh.Size > s.MaxBytes {
		return "", ErrTooLarge
	}
	if !s.allowed(strings.ToLower(filepath.Ext(fh.Filename))) {
		return "", ErrExtNotAllowed
	}

	src, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	name := uniqueName(fh.Filename)
	dst, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create attachment: %w", err)
	}

	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(dst.Name())
		return "", fmt.Errorf("write attachment: %w", err)
	}
	if err := dst.Close(); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("close attachment: %w", err)
	}
	return name, nil
}

// Remove deletes a stored attachment. Missing files are not an error.
func (s *DiskStore) Remove(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return ErrInvalidFileRef
	}
	err := os.Remove(filepath.Join(s.Dir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func (s *DiskStore) URL(name string) string {
	return s.URLPrefix + name
}
