package forums_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/forums"
	forumstore "github.com/dalemusser/hotspot/internal/app/store/forums"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	db := testutil.SetupTestDB(t)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	return forums.Routes(forums.NewHandler(forumstore.New(db), zap.NewNop()), sm)
}

func do(router http.Handler, r *http.Request, u testutil.TestUser) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.WithUser(r, u))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestForum_ThreadsAreForMembers(t *testing.T) {
	router := newRouter(t)
	owner, other := testutil.StudentUser(), testutil.StudentUser()

	rec := do(router, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"name": "Chess", "description": "openings"}), owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	f := decode[models.Forum](t, rec)
	assert.Equal(t, 1, f.MemberCount)

	thread := map[string]string{"title": "Sicilian", "content": "thoughts?"}
	rec = do(router, testutil.NewJSONRequest(http.MethodPost, "/"+f.ID.Hex()+"/threads", thread), other)
	assert.Equal(t, http.StatusForbidden, rec.Code, "non-member cannot post")

	rec = do(router, testutil.NewRequest(http.MethodPost, "/"+f.ID.Hex()+"/join"), other)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, decode[models.Forum](t, rec).MemberCount)

	rec = do(router, testutil.NewRequest(http.MethodPost, "/"+f.ID.Hex()+"/join"), other)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, testutil.NewJSONRequest(http.MethodPost, "/"+f.ID.Hex()+"/threads", thread), other)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	th := decode[models.ForumThread](t, rec)

	rec = do(router, testutil.NewJSONRequest(http.MethodPost, "/threads/"+th.ID.Hex()+"/replies", map[string]string{"content": "Najdorf"}), owner)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(router, testutil.NewRequest(http.MethodGet, "/threads/"+th.ID.Hex()), owner)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[models.ForumThread](t, rec)
	assert.Equal(t, 1, got.ReplyCount)
	require.Len(t, got.Replies, 1)
	assert.Equal(t, owner.OID(), got.Replies[0].AuthorID)

	rec = do(router, testutil.NewRequest(http.MethodGet, "/"+f.ID.Hex()+"/threads"), other)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items   []models.ForumThread `json:"items"`
		HasMore bool                 `json:"has_more"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Empty(t, page.Items[0].Replies, "listing omits replies")

	rec = do(router, testutil.NewRequest(http.MethodGet, "/"+f.ID.Hex()+"/members"), other)
	require.Equal(t, http.StatusOK, rec.Code)
	var members struct {
		Items []models.ForumMember `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &members))
	require.Len(t, members.Items, 2)
	assert.Equal(t, models.ForumRoleOwner, members.Items[0].Role)
}

func TestForum_DeletePermissions(t *testing.T) {
	router := newRouter(t)
	owner, member := testutil.StudentUser(), testutil.StudentUser()

	rec := do(router, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"name": "Poetry"}), owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	f := decode[models.Forum](t, rec)

	rec = do(router, testutil.NewRequest(http.MethodPost, "/"+f.ID.Hex()+"/join"), member)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, testutil.NewJSONRequest(http.MethodPost, "/"+f.ID.Hex()+"/threads", map[string]string{"title": "Haiku", "content": "five seven five"}), owner)
	require.Equal(t, http.StatusCreated, rec.Code)
	th := decode[models.ForumThread](t, rec)

	rec = do(router, testutil.NewRequest(http.MethodDelete, "/threads/"+th.ID.Hex()), member)
	assert.Equal(t, http.StatusForbidden, rec.Code, "members cannot delete others' threads")

	rec = do(router, testutil.NewRequest(http.MethodDelete, "/"+f.ID.Hex()), member)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(router, testutil.NewRequest(http.MethodPost, "/"+f.ID.Hex()+"/leave"), owner)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "owner cannot leave")

	rec = do(router, testutil.NewRequest(http.MethodDelete, "/"+f.ID.Hex()), owner)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, testutil.NewRequest(http.MethodGet, "/threads/"+th.ID.Hex()), owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	rec = do(router, testutil.NewRequest(http.MethodGet, "/"+f.ID.Hex()), owner)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestForum_Validation(t *testing.T) {
	router := newRouter(t)
	u := testutil.StudentUser()

	rec := do(router, testutil.NewJSONRequest(http.MethodPost, "/", map[string]string{"name": "  "}), u)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(router, testutil.NewRequest(http.MethodGet, "/not-an-id"), u)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, testutil.NewRequest(http.MethodGet, "/"))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
