package search_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/search"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeFacet struct {
	kind  search.Kind
	rows  []string
	err   error
	calls atomic.Int32
	limit int64
}

func (f *fakeFacet) Kind() search.Kind { return f.kind }

func (f *fakeFacet) Query(_ context.Context, _ string, limit int64) ([]search.Candidate, error) {
	f.calls.Add(1)
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	out := make([]search.Candidate, 0, len(f.rows))
	for _, r := range f.rows {
		out = append(out, search.Candidate{Text: r, Hit: search.GroupHit{Kind: f.kind, Name: r}})
	}
	return out, nil
}

func names(hits []search.Hit) []string {
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(search.GroupHit).Name)
	}
	return out
}

func TestSearch_EmptyQueryIsIdle(t *testing.T) {
	f := &fakeFacet{kind: search.KindGroup, rows: []string{"chess"}}
	s := search.New(nil, f)

	for _, q := range []string{"", "   ", "\t\n"} {
		res := s.Search(context.Background(), q, 5)
		assert.Equal(t, search.StatusIdle, res.Status)
		assert.Empty(t, res.Hits)
		assert.NoError(t, res.Err())
	}
	assert.Zero(t, f.calls.Load(), "no facet may be queried for an empty query")
}

func TestSearch_SubstringPassIsMandatory(t *testing.T) {
	f := &fakeFacet{kind: search.KindGroup, rows: []string{"chess club", "choir", "chess", "zoology"}}
	s := search.New(nil, f)

	res := s.Search(context.Background(), "  CHESS ", 5)
	assert.Equal(t, search.StatusOK, res.Status)
	assert.Equal(t, []string{"chess club", "chess"}, names(res.Hits))
	assert.EqualValues(t, 5, f.limit)
}

func TestSearch_OneFailingFacetLeavesOthersUnchanged(t *testing.T) {
	a := &fakeFacet{kind: search.KindUser, rows: []string{"ann lee"}}
	b := &fakeFacet{kind: search.KindGroup, err: errors.New("boom")}
	c := &fakeFacet{kind: search.KindForum, rows: []string{"lee's forum"}}

	res := search.New(nil, a, b, c).Search(context.Background(), "lee", 0)
	assert.Equal(t, search.StatusPartial, res.Status)
	assert.Equal(t, []string{"ann lee", "lee's forum"}, names(res.Hits))
	assert.Equal(t, []search.Kind{search.KindGroup}, res.Failed())
	assert.NoError(t, res.Err())
	assert.EqualValues(t, search.DefaultCap, a.limit)
}

func TestSearch_AllFacetsFailing(t *testing.T) {
	a := &fakeFacet{kind: search.KindUser, err: errors.New("down")}
	b := &fakeFacet{kind: search.KindBlog, err: errors.New("down")}

	res := search.New(nil, a, b).Search(context.Background(), "x", 500)
	assert.Equal(t, search.StatusError, res.Status)
	require.Error(t, res.Err())
	assert.True(t, apperr.Is(res.Err(), apperr.Transient))
	assert.EqualValues(t, search.MaxCap, a.limit)
}

func TestSearch_StoreFacets(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Robin Robotics", "robin@example.edu")
	fx.CreateUser(ctx, "Sam Smith", "sam@example.edu")
	fx.CreateGroup(ctx, "Robotics Club", models.PrivacyPublic, owner.ID)
	fx.CreateGroup(ctx, "Chess Club", models.PrivacyPublic, owner.ID)
	fx.CreateForum(ctx, "robotics help", owner.ID)
	fx.CreatePost(ctx, owner.ID, "Robots are cool")
	fx.CreateBlogPost(ctx, owner.ID, "Robotics Week Recap")

	res := search.NewForDB(db, nil).Search(ctx, "Rob", 10)
	require.Equal(t, search.StatusOK, res.Status)

	var kinds []search.Kind
	for _, h := range res.Hits {
		kinds = append(kinds, h.HitKind())
	}
	assert.Equal(t, []search.Kind{
		search.KindUser, search.KindGroup, search.KindForum, search.KindPost, search.KindBlog,
	}, kinds)

	u := res.Hits[0].(search.UserHit)
	assert.Equal(t, owner.ID, u.ID)
	assert.NotEqual(t, primitive.NilObjectID, res.Hits[1].(search.GroupHit).ID)
}

func TestSearch_StoreFacetsFindInfixMatches(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := fx.CreateUser(ctx, "Zed Owner", "zed@example.edu")
	fx.CreateGroup(ctx, "Dog Cat Club", models.PrivacyPublic, owner.ID)
	fx.CreateGroup(ctx, "Ab😀 Fans", models.PrivacyPublic, owner.ID)
	s := search.NewForDB(db, nil)

	groupNames := func(q string) []string {
		res := s.Search(ctx, q, 10)
		require.Equal(t, search.StatusOK, res.Status, q)
		var out []string
		for _, h := range res.Hits {
			if g, ok := h.(search.GroupHit); ok {
				out = append(out, g.Name)
			}
		}
		return out
	}

	assert.Equal(t, []string{"Dog Cat Club"}, groupNames("cat"), "match inside the name")
	assert.Equal(t, []string{"Ab😀 Fans"}, groupNames("ab"), "match followed by an astral-plane rune")
	assert.Equal(t, []string{"Dog Cat Club"}, groupNames("dog"))
	assert.Empty(t, groupNames("club house"), "rows past the range start still need the substring")
}
