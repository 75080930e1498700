// Package collections names every collection the application reads or
// writes. Per-user and per-post subcollections are flattened into top-level
// collections keyed by owner_id or post_id.
package collections

const (
	Users             = "users"
	Groups            = "groups"
	Forums            = "forums"
	ForumMembers      = "forumMembers"
	ForumThreads      = "forumThreads"
	Posts             = "posts"
	Comments          = "comments"
	GroupPosts        = "groupPosts"
	GroupPostComments = "groupPostComments"
	Notifications     = "notifications"
	ConnectionReqs    = "connectionRequests"
	Connections       = "connections"
	BlogPosts         = "blogPosts"
	BlogPostLikes     = "blogPostLikes"
	BlogPostComments  = "blogPostComments"
	Products          = "products"
	Carts             = "carts"
	OAuthStates       = "oauthStates"
)

// All lists every collection, in the order schema setup visits them.
var All = []string{
	Users, Groups, Forums, ForumMembers, ForumThreads, Posts, Comments,
	GroupPosts, GroupPostComments, Notifications, ConnectionReqs, Connections,
	BlogPosts, BlogPostLikes, BlogPostComments, Products, Carts, OAuthStates,
}
