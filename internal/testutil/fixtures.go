package testutil

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// Fixtures inserts documents directly, bypassing the stores, so store tests
// can arrange state without depending on the code under test.
type Fixtures struct {
	db lungo.IDatabase
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db lungo.IDatabase) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() lungo.IDatabase {
	return f.db
}

// CreateUser creates a student with the given name and email.
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.RoleStudent)
}

// CreateAdmin creates an admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, fullName, email string) models.User {
	f.t.Helper()
	return f.createUser(ctx, fullName, email, models.RoleAdmin)
}

func (f *Fixtures) createUser(ctx context.Context, fullName, email, role string) models.User {
	f.t.Helper()

	first, last, _ := strings.Cut(fullName, " ")
	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  first,
		LastName:   last,
		FullName:   fullName,
		FullNameCI: text.Fold(fullName),
		Email:      email,
		EmailCI:    text.Fold(email),
		AuthMethod: models.AuthPassword,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	u.ProfileCompletion = u.Completion()

	if _, err := f.db.Collection(collections.Users).InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup creates a group owned by owner, who is also its only member.
func (f *Fixtures) CreateGroup(ctx context.Context, name, privacy string, owner primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:           primitive.NewObjectID(),
		Name:         name,
		NameCI:       text.Fold(name),
		Privacy:      privacy,
		OwnerID:      owner,
		Admins:       []primitive.ObjectID{owner},
		Members:      []primitive.ObjectID{owner},
		MemberCount:  1,
		Pending:      []primitive.ObjectID{},
		LastActivity: now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := f.db.Collection(collections.Groups).InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// CreateForum creates a forum with owner as its single member.
func (f *Fixtures) CreateForum(ctx context.Context, name string, owner primitive.ObjectID) models.Forum {
	f.t.Helper()

	now := time.Now().UTC()
	fm := models.Forum{
		ID:          primitive.NewObjectID(),
		Name:        name,
		NameCI:      text.Fold(name),
		OwnerID:     owner,
		MemberCount: 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := f.db.Collection(collections.Forums).InsertOne(ctx, fm); err != nil {
		f.t.Fatalf("failed to create test forum: %v", err)
	}
	member := models.ForumMember{
		ID:       primitive.NewObjectID(),
		ForumID:  fm.ID,
		UserID:   owner,
		Role:     models.ForumRoleOwner,
		JoinedAt: now,
	}
	if _, err := f.db.Collection(collections.ForumMembers).InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create test forum member: %v", err)
	}
	return fm
}

// CreatePost creates a home-feed post.
func (f *Fixtures) CreatePost(ctx context.Context, author primitive.ObjectID, content string) models.Post {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Post{
		ID:        primitive.NewObjectID(),
		AuthorID:  author,
		Content:   content,
		ContentCI: text.Fold(content),
		Likes:     []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection(collections.Posts).InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test post: %v", err)
	}
	return p
}

// CreateBlogPost creates a published blog post.
func (f *Fixtures) CreateBlogPost(ctx context.Context, author primitive.ObjectID, title string) models.BlogPost {
	f.t.Helper()

	now := time.Now().UTC()
	b := models.BlogPost{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		Content:   "<p>" + title + "</p>",
		Excerpt:   title,
		AuthorID:  author,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection(collections.BlogPosts).InsertOne(ctx, b); err != nil {
		f.t.Fatalf("failed to create test blog post: %v", err)
	}
	return b
}

// CreateProduct creates a product with the given price and stock.
func (f *Fixtures) CreateProduct(ctx context.Context, name, price string, stock int, seller primitive.ObjectID) models.Product {
	f.t.Helper()

	m, err := models.NewMoney(price)
	if err != nil {
		f.t.Fatalf("bad test price %q: %v", price, err)
	}
	now := time.Now().UTC()
	p := models.Product{
		ID:        primitive.NewObjectID(),
		Name:      name,
		NameCI:    text.Fold(name),
		Price:     m,
		Stock:     stock,
		SellerID:  seller,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection(collections.Products).InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test product: %v", err)
	}
	return p
}
