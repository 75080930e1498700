package media_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/media"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestServe(t *testing.T) {
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, files.Put(context.Background(), "avatars/2026/10/abc-me.png", strings.NewReader("png-bytes"), 9, "image/png"))

	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	router := media.Routes(media.NewHandler(files, zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/2026/10/abc-me.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, "png-bytes", rec.Body.String())

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/avatars/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleUpload(t *testing.T) {
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	router := media.Routes(media.NewHandler(files, zap.NewNop()), sm)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewUploadRequest(http.MethodPost, "/", "image", "cat.png", testutil.PNGBytes))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	req := testutil.WithUser(testutil.NewUploadRequest(http.MethodPost, "/", "image", "cat.png", testutil.PNGBytes), testutil.StudentUser())
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var body struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	name, ok := storage.NameFromURL(body.URL)
	require.True(t, ok, body.URL)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/"+name, nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
}
