package storage

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
)

// MaxImageBytes caps avatar and product image uploads.
const MaxImageBytes = 5 << 20

// URLPrefix is where the media feature serves stored files.
const URLPrefix = inputval.MediaPrefix

var (
	ErrNoFile   = apperr.New(apperr.Invalid, "an image file is required")
	ErrTooLarge = apperr.New(apperr.Invalid, "image is larger than 5 MB")
	ErrNotImage = apperr.New(apperr.Invalid, "file must be a PNG, JPEG, GIF or WebP image")
)

var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
}

// SaveImage stores the image sent in the multipart field under prefix and
// returns its object name. The type is sniffed from the content; the
// client-declared type is ignored.
func SaveImage(ctx context.Context, st Store, w http.ResponseWriter, r *http.Request, field, prefix string) (string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1<<16)
	file, hdr, err := r.FormFile(field)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", ErrTooLarge
		}
		return "", ErrNoFile
	}
	defer file.Close()

	if hdr.Size > MaxImageBytes {
		return "", ErrTooLarge
	}

	br := bufio.NewReaderSize(file, 512)
	head, _ := br.Peek(512)
	ct := http.DetectContentType(head)
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	if !imageTypes[ct] {
		return "", ErrNotImage
	}

	name := NewName(prefix, hdr.Filename)
	if err := st.Put(ctx, name, br, hdr.Size, ct); err != nil {
		return "", err
	}
	return name, nil
}

// URL returns the public path of a stored object.
func URL(name string) string {
	return URLPrefix + name
}

// NameFromURL reverses URL. ok is false for URLs this service did not issue.
func NameFromURL(u string) (string, bool) {
	if !strings.HasPrefix(u, URLPrefix) {
		return "", false
	}
	return strings.TrimPrefix(u, URLPrefix), true
}
