// Package respond writes JSON responses and decodes JSON request bodies.
package respond

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

var ErrBadJSON = apperr.New(apperr.Invalid, "request body must be a single JSON object")

// ErrorBody is the shape of every error response.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil || status == http.StatusNoContent {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v any) { JSON(w, http.StatusOK, v) }

// Created writes v with 201.
func Created(w http.ResponseWriter, v any) { JSON(w, http.StatusCreated, v) }

// NoContent writes 204.
func NoContent(w http.ResponseWriter) { w.WriteHeader(http.StatusNoContent) }

// Error writes an ErrorBody. code is a short machine-readable token such as
// "not_found".
func Error(w http.ResponseWriter, status int, code, msg string) {
	JSON(w, status, ErrorBody{Error: code, Message: msg})
}

// Decode reads a single JSON object from the body into v. Unknown fields
// are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		return ErrBadJSON
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return ErrBadJSON
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return ErrBadJSON
	}
	return nil
}

// Page wraps a list with its keyset cursor.
type Page[T any] struct {
	Items   []T    `json:"items"`
	HasMore bool   `json:"has_more"`
	Next    string `json:"next,omitempty"`
}

// NewPage builds a Page; next is the id of the last item when more exist.
func NewPage[T any](items []T, more bool, lastID func(T) string) Page[T] {
	p := Page[T]{Items: items, HasMore: more}
	if p.Items == nil {
		p.Items = []T{}
	}
	if more && len(items) > 0 {
		p.Next = lastID(items[len(items)-1])
	}
	return p
}
