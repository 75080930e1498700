package search

import "go.mongodb.org/mongo-driver/bson/primitive"

// Kind names an entity kind that search covers.
type Kind string

const (
	KindUser  Kind = "user"
	KindGroup Kind = "group"
	KindForum Kind = "forum"
	KindPost  Kind = "post"
	KindBlog  Kind = "blog"
)

// Kinds is the concatenation order of search results.
var Kinds = []Kind{KindUser, KindGroup, KindForum, KindPost, KindBlog}

// Hit is one of UserHit, GroupHit, ForumHit, PostHit or BlogHit.
type Hit interface {
	HitKind() Kind
}

type UserHit struct {
	Kind   Kind               `json:"kind"`
	ID     primitive.ObjectID `json:"id"`
	Name   string             `json:"name"`
	Avatar string             `json:"avatar,omitempty"`
	Major  string             `json:"major,omitempty"`
}

type GroupHit struct {
	Kind        Kind               `json:"kind"`
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
	Privacy     string             `json:"privacy"`
	MemberCount int                `json:"member_count"`
}

type ForumHit struct {
	Kind        Kind               `json:"kind"`
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description,omitempty"`
}

type PostHit struct {
	Kind     Kind               `json:"kind"`
	ID       primitive.ObjectID `json:"id"`
	AuthorID primitive.ObjectID `json:"author_id"`
	Content  string             `json:"content"`
}

type BlogHit struct {
	Kind    Kind               `json:"kind"`
	ID      primitive.ObjectID `json:"id"`
	Title   string             `json:"title"`
	Excerpt string             `json:"excerpt"`
}

func (UserHit) HitKind() Kind  { return KindUser }
func (GroupHit) HitKind() Kind { return KindGroup }
func (ForumHit) HitKind() Kind { return KindForum }
func (PostHit) HitKind() Kind  { return KindPost }
func (BlogHit) HitKind() Kind  { return KindBlog }
