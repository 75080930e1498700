package userstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound       = apperr.New(apperr.NotFound, "user not found")
	ErrDuplicateEmail = apperr.New(apperr.Duplicate, "a user with this email already exists")
	ErrBadCredentials = apperr.New(apperr.Forbidden, "invalid email or password")
	ErrBadRole        = apperr.New(apperr.Invalid, `role must be "student"|"admin"`)
)

type Store struct {
	c lungo.ICollection
}

func New(db lungo.IDatabase) *Store {
	return &Store{c: db.Collection(collections.Users)}
}

// NewUser carries registration input.
type NewUser struct {
	FirstName  string
	LastName   string
	Email      string
	Password   string
	Role       string
	AuthMethod string
	Avatar     string
}

// Create registers a user. Emails are unique after folding. Password users
// get a bcrypt hash; other auth methods store none.
func (s *Store) Create(ctx context.Context, in NewUser) (models.User, error) {
	role := in.Role
	if role == "" {
		role = models.RoleStudent
	}
	if !models.IsValidRole(role) {
		return models.User{}, ErrBadRole
	}
	method := in.AuthMethod
	if method == "" {
		method = models.AuthPassword
	}

	email := strings.TrimSpace(in.Email)
	emailCI := text.Fold(email)
	n, err := s.c.CountDocuments(ctx, bson.M{"email_ci": emailCI})
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if n > 0 {
		return models.User{}, ErrDuplicateEmail
	}

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FirstName:  strings.TrimSpace(in.FirstName),
		LastName:   strings.TrimSpace(in.LastName),
		Email:      email,
		EmailCI:    emailCI,
		AuthMethod: method,
		Role:       role,
		Avatar:     in.Avatar,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	u.FullName = u.DisplayName()
	u.FullNameCI = text.Fold(u.FullName)
	u.ProfileCompletion = u.Completion()

	if method == models.AuthPassword {
		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return models.User{}, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByEmail looks up a user by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email_ci": text.Fold(strings.TrimSpace(email))}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Authenticate checks a password login. Unknown emails and wrong passwords
// return the same error.
func (s *Store) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	u, err := s.GetByEmail(ctx, email)
	if errors.Is(err, ErrNotFound) {
		return models.User{}, ErrBadCredentials
	}
	if err != nil {
		return models.User{}, err
	}
	if u.PasswordHash == "" {
		return models.User{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrBadCredentials
	}
	return u, nil
}

// UpsertExternal returns the user with this email, creating one for an
// external auth method (Google) when none exists.
func (s *Store) UpsertExternal(ctx context.Context, method, email, first, last, avatar string) (models.User, bool, error) {
	u, err := s.GetByEmail(ctx, email)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return models.User{}, false, err
	}
	u, err = s.Create(ctx, NewUser{
		FirstName:  first,
		LastName:   last,
		Email:      email,
		AuthMethod: method,
		Avatar:     avatar,
	})
	if errors.Is(err, ErrDuplicateEmail) {
		// Lost a race with a concurrent first login.
		u, err = s.GetByEmail(ctx, email)
		return u, false, err
	}
	return u, err == nil, err
}

// UpdateProfile merges the non-empty fields of patch onto the stored
// profile and recomputes the derived fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, patch models.ProfileFields) (models.User, error) {
	u, err := s.GetByID(ctx, id)
	if err != nil {
		return models.User{}, err
	}

	cur := models.ProfileFields{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Avatar:    u.Avatar,
		Bio:       u.Bio,
		Major:     u.Major,
		Year:      u.Year,
	}
	if err := mergo.Merge(&cur, patch, mergo.WithOverride); err != nil {
		return models.User{}, fmt.Errorf("merge profile: %w", err)
	}

	u.FirstName, u.LastName = cur.FirstName, cur.LastName
	u.Avatar, u.Bio, u.Major, u.Year = cur.Avatar, cur.Bio, cur.Major, cur.Year
	u.FullName = u.DisplayName()
	u.FullNameCI = text.Fold(u.FullName)
	u.ProfileCompletion = u.Completion()
	u.UpdatedAt = time.Now().UTC()

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"first_name":         u.FirstName,
		"last_name":          u.LastName,
		"full_name":          u.FullName,
		"full_name_ci":       u.FullNameCI,
		"avatar":             u.Avatar,
		"bio":                u.Bio,
		"major":              u.Major,
		"year":               u.Year,
		"profile_completion": u.ProfileCompletion,
		"updated_at":         u.UpdatedAt,
	}})
	if err != nil {
		return models.User{}, err
	}
	return u, nil
}

// SetAvatar stores the avatar URL and recomputes completion.
func (s *Store) SetAvatar(ctx context.Context, id primitive.ObjectID, url string) (models.User, error) {
	return s.UpdateProfile(ctx, id, models.ProfileFields{Avatar: url})
}

// SetRole changes a user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	if !models.IsValidRole(role) {
		return ErrBadRole
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// List loads the users with the given ids, keyed by id. Missing ids are skipped.
func (s *Store) List(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.User, error) {
	out := make(map[primitive.ObjectID]models.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	for _, u := range users {
		out[u.ID] = u
	}
	return out, nil
}
