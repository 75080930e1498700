// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// PageSize is the default number of rows in a list response.
const PageSize = 20

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 100

// Page is a newest-first keyset page request. ObjectIDs grow with insertion
// time, so "_id < Before" walks backwards through history.
type Page struct {
	Limit  int
	Before primitive.ObjectID
}

// Parse reads "limit" and "before" from the query string. Bad values fall
// back to the defaults.
func Parse(r *http.Request) Page {
	p := Page{Limit: PageSize}
	q := r.URL.Query()
	if s := strings.TrimSpace(q.Get("limit")); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if s := strings.TrimSpace(q.Get("before")); s != "" {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			p.Before = oid
		}
	}
	return p
}

// Normalize clamps Limit into [1, MaxPageSize].
func (p Page) Normalize() Page {
	if p.Limit <= 0 {
		p.Limit = PageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// Apply adds the keyset window to filter and returns find options sorted
// newest first that fetch one extra row to detect a next page.
func (p Page) Apply(filter bson.M) (bson.M, *options.FindOptions) {
	p = p.Normalize()
	if filter == nil {
		filter = bson.M{}
	}
	if !p.Before.IsZero() {
		filter["_id"] = bson.M{"$lt": p.Before}
	}
	return filter, options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(p.Limit + 1))
}

// TrimPage cuts rows fetched with Apply back to limit and reports whether
// more rows exist.
func TrimPage[T any](rows *[]T, limit int) (hasMore bool) {
	if limit <= 0 {
		limit = PageSize
	}
	if len(*rows) > limit {
		*rows = (*rows)[:limit]
		return true
	}
	return false
}
