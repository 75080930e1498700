// internal/domain/models/user.go
package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles. Admins may publish to the blog and moderate the shop.
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// IsValidRole reports whether r is a known role.
func IsValidRole(r string) bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is a campus member's profile.
//
// NOTE:
//   - FullNameCI and EmailCI are folded copies (lowercase, diacritics stripped)
//     used by search and login lookups; they are never sent to clients.
//   - ProfileCompletion is derived from the profile fields on every write.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FirstName    string             `bson:"first_name" json:"first_name"`
	LastName     string             `bson:"last_name" json:"last_name"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"-"`
	Email        string             `bson:"email" json:"email"`
	EmailCI      string             `bson:"email_ci" json:"-"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod   string             `bson:"auth_method" json:"auth_method"`
	Role         string             `bson:"role" json:"role"`

	Avatar string `bson:"avatar,omitempty" json:"avatar,omitempty"`
	Bio    string `bson:"bio,omitempty" json:"bio,omitempty"`
	Major  string `bson:"major,omitempty" json:"major,omitempty"`
	Year   string `bson:"year,omitempty" json:"year,omitempty"`

	ProfileCompletion int `bson:"profile_completion" json:"profile_completion"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ProfileFields are the user-editable profile attributes. Empty strings mean
// "leave unchanged" when merged onto an existing profile.
type ProfileFields struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	Bio       string `json:"bio"`
	Major     string `json:"major"`
	Year      string `json:"year"`
}

// Completion returns the percentage (0-100) of profile fields that are filled.
func (u User) Completion() int {
	fields := []string{u.FirstName, u.LastName, u.Email, u.Avatar, u.Bio, u.Major, u.Year}
	filled := 0
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			filled++
		}
	}
	return filled * 100 / len(fields)
}

// DisplayName joins the name parts, falling back to the email.
func (u User) DisplayName() string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		return u.Email
	}
	return name
}

// Actor identifies who performs an operation, with the name shown in any
// notification it produces.
type Actor struct {
	ID   primitive.ObjectID
	Name string
}

// ActorOf returns u as an Actor.
func ActorOf(u User) Actor {
	return Actor{ID: u.ID, Name: u.DisplayName()}
}
