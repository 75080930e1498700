package search

import (
	"context"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// storeFacet queries one collection with field >= q, capped, ordered by
// the field. The range has no upper bound; the Searcher's substring pass
// keeps only rows that contain q.
type storeFacet[T any] struct {
	kind  Kind
	c     lungo.ICollection
	field string
	conv  func(T) Candidate
}

func (f storeFacet[T]) Kind() Kind { return f.kind }

func (f storeFacet[T]) Query(ctx context.Context, q string, limit int64) ([]Candidate, error) {
	filter := bson.M{f.field: bson.M{"$gte": q}}
	opts := options.Find().
		SetSort(bson.D{{Key: f.field, Value: 1}, {Key: "_id", Value: 1}}).
		SetLimit(limit)
	cur, err := f.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(rows))
	for _, r := range rows {
		out = append(out, f.conv(r))
	}
	return out, nil
}

// StoreFacets returns the facets for every kind, in Kinds order.
func StoreFacets(db lungo.IDatabase) []Facet {
	return []Facet{
		storeFacet[models.User]{KindUser, db.Collection(collections.Users), "full_name_ci", func(u models.User) Candidate {
			return Candidate{Text: u.FullNameCI, Hit: UserHit{Kind: KindUser, ID: u.ID, Name: u.FullName, Avatar: u.Avatar, Major: u.Major}}
		}},
		storeFacet[models.Group]{KindGroup, db.Collection(collections.Groups), "name_ci", func(g models.Group) Candidate {
			return Candidate{Text: g.NameCI, Hit: GroupHit{Kind: KindGroup, ID: g.ID, Name: g.Name, Description: g.Description, Privacy: g.Privacy, MemberCount: g.MemberCount}}
		}},
		storeFacet[models.Forum]{KindForum, db.Collection(collections.Forums), "name_ci", func(f models.Forum) Candidate {
			return Candidate{Text: f.NameCI, Hit: ForumHit{Kind: KindForum, ID: f.ID, Name: f.Name, Description: f.Description}}
		}},
		storeFacet[models.Post]{KindPost, db.Collection(collections.Posts), "content_ci", func(p models.Post) Candidate {
			return Candidate{Text: p.ContentCI, Hit: PostHit{Kind: KindPost, ID: p.ID, AuthorID: p.AuthorID, Content: p.Content}}
		}},
		storeFacet[models.BlogPost]{KindBlog, db.Collection(collections.BlogPosts), "title_ci", func(b models.BlogPost) Candidate {
			return Candidate{Text: b.TitleCI, Hit: BlogHit{Kind: KindBlog, ID: b.ID, Title: b.Title, Excerpt: b.Excerpt}}
		}},
	}
}

// NewForDB builds a Searcher over the document store.
func NewForDB(db lungo.IDatabase, log *zap.Logger) *Searcher {
	return New(log, StoreFacets(db)...)
}
