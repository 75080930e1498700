// Package storage keeps uploaded files (avatars, product images) either on
// the local filesystem or in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/google/uuid"
)

var (
	ErrNotFound = apperr.New(apperr.NotFound, "file not found")
	ErrBadName  = apperr.New(apperr.Invalid, "invalid file name")
)

// Store is a flat namespace of named blobs. Names use forward slashes.
type Store interface {
	Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// Config selects and configures a backend.
type Config struct {
	Backend   string // "local" (default) or "s3"
	LocalDir  string
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Open builds the configured store.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", "local":
		return NewLocal(cfg.LocalDir)
	case "s3", "minio":
		return DialMinio(ctx, cfg)
	default:
		return nil, fmt.Errorf("storage: unknown backend %q", cfg.Backend)
	}
}

// NewName returns a unique object name under prefix, grouped by month:
// prefix/YYYY/MM/xxxxxxxx-filename.
func NewName(prefix, filename string) string {
	now := time.Now().UTC()
	return path.Join(prefix,
		fmt.Sprintf("%04d/%02d", now.Year(), now.Month()),
		uuid.New().String()[:8]+"-"+cleanFilename(filename))
}

// cleanFilename keeps letters, digits, dot, dash and underscore of the
// base name.
func cleanFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, "\\", "/"))
	var b strings.Builder
	for _, c := range filename {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '.', c == '-', c == '_':
			b.WriteRune(c)
		case c == ' ':
			b.WriteRune('_')
		}
	}
	out := strings.TrimLeft(b.String(), ".")
	if out == "" {
		return "file"
	}
	return out
}

// checkName rejects absolute names and any that climb out of the root.
func checkName(name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, "\\") {
		return "", ErrBadName
	}
	clean := path.Clean(name)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrBadName
	}
	return clean, nil
}
