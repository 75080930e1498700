// Package inputval validates request input before it reaches a store.
// Every failure is an apperr Invalid error naming the offending field.
package inputval

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/asaskevich/govalidator"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Limits for user-supplied text.
const (
	MaxNameLen    = 120
	MaxPostLen    = 5000
	MaxCommentLen = 2000
	MaxBlogLen    = 100000
	MinPassword   = 8
	MaxPassword   = 128
)

func invalid(format string, args ...any) error {
	return apperr.New(apperr.Invalid, fmt.Sprintf(format, args...))
}

// Email checks the address is well formed and returns it trimmed.
func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("email is required")
	}
	if !govalidator.IsEmail(s) {
		return "", invalid("email %q is not valid", s)
	}
	return s, nil
}

// Password checks length bounds.
func Password(s string) error {
	n := utf8.RuneCountInString(s)
	if n < MinPassword {
		return invalid("password must be at least %d characters", MinPassword)
	}
	if n > MaxPassword {
		return invalid("password must be at most %d characters", MaxPassword)
	}
	return nil
}

// Text trims s and checks it is non-empty and at most max runes.
func Text(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", invalid("%s is required", field)
	}
	if max > 0 && utf8.RuneCountInString(s) > max {
		return "", invalid("%s must be at most %d characters", field, max)
	}
	return s, nil
}

// OptionalText is Text that allows an empty value.
func OptionalText(field, s string, max int) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	return Text(field, s, max)
}

// URL accepts an empty string or an absolute http(s) URL.
func URL(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !govalidator.IsRequestURL(s) {
		return "", invalid("%s must be an http(s) URL", field)
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", invalid("%s must be an http(s) URL", field)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		return s, nil
	}
	return "", invalid("%s must be an http(s) URL", field)
}

// ObjectID parses a hex id.
func ObjectID(field, hex string) (primitive.ObjectID, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return primitive.NilObjectID, invalid("%s is required", field)
	}
	oid, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, invalid("%s is not a valid id", field)
	}
	return oid, nil
}

// PathID parses the named chi URL parameter as an ObjectID.
func PathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return ObjectID(name, chi.URLParam(r, name))
}

// OneOf checks s (case-insensitively) against the allowed values and
// returns the lowercased value.
func OneOf(field, s string, allowed ...string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	for _, a := range allowed {
		if v == a {
			return v, nil
		}
	}
	return "", invalid("%s must be one of %s", field, strings.Join(allowed, ", "))
}

// MediaPrefix is the path uploaded files are served under.
const MediaPrefix = "/media/"

// ImageURL accepts an empty string, a path under MediaPrefix, or an absolute
// http(s) URL.
func ImageURL(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, MediaPrefix) {
		if strings.Contains(s, "..") || strings.ContainsAny(s, "\\?#") {
			return "", invalid("%s is not a valid media path", field)
		}
		return s, nil
	}
	return URL(field, s)
}
