package productstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/256dpi/lungo"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrNotFound   = apperr.New(apperr.NotFound, "product not found")
	ErrForbidden  = apperr.New(apperr.Forbidden, "only the seller or an admin can change this product")
	ErrBadPrice   = apperr.New(apperr.Invalid, "price must be a non-negative amount")
	ErrBadStock   = apperr.New(apperr.Invalid, "stock cannot be negative")
	ErrOutOfStock = apperr.New(apperr.Invalid, "not enough stock")
	ErrNameNeeded = apperr.New(apperr.Invalid, "name is required")
)

// Input carries the editable product fields. Price is a decimal string.
type Input struct {
	Name        string
	Description string
	Price       string
	Stock       int
	Image       string
	Category    string
}

func (in Input) clean() (Input, models.Money, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Name == "" {
		return in, models.Money{}, ErrNameNeeded
	}
	if in.Stock < 0 {
		return in, models.Money{}, ErrBadStock
	}
	price, err := models.NewMoney(strings.TrimSpace(in.Price))
	if err != nil || price.IsNegative() {
		return in, models.Money{}, ErrBadPrice
	}
	return in, price, nil
}

type Store struct {
	c lungo.ICollection
}

func New(db lungo.IDatabase) *Store {
	return &Store{c: db.Collection(collections.Products)}
}

func (s *Store) Create(ctx context.Context, seller primitive.ObjectID, in Input) (models.Product, error) {
	in, price, err := in.clean()
	if err != nil {
		return models.Product{}, err
	}
	now := time.Now().UTC()
	p := models.Product{
		ID:          primitive.NewObjectID(),
		Name:        in.Name,
		NameCI:      text.Fold(in.Name),
		Description: in.Description,
		Price:       price,
		Stock:       in.Stock,
		Image:       in.Image,
		Category:    in.Category,
		SellerID:    seller,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return p, nil
}

func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Product{}, ErrNotFound
		}
		return models.Product{}, err
	}
	return p, nil
}

// GetMany loads the given products keyed by id. Missing ids are absent.
func (s *Store) GetMany(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	out := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	var rows []models.Product
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	for _, p := range rows {
		out[p.ID] = p
	}
	return out, nil
}

// List returns a page of products, newest first, optionally limited to one
// category.
func (s *Store) List(ctx context.Context, category string, page paging.Page) ([]models.Product, bool, error) {
	filter := bson.M{}
	if c := strings.ToLower(strings.TrimSpace(category)); c != "" {
		filter["category"] = c
	}
	filter, opts := page.Apply(filter)
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, false, err
	}
	out := []models.Product{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, false, err
	}
	return out, paging.TrimPage(&out, page.Normalize().Limit), nil
}

// Update replaces the editable fields. The seller or an admin may update.
func (s *Store) Update(ctx context.Context, id, actor primitive.ObjectID, admin bool, in Input) (models.Product, error) {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return models.Product{}, err
	}
	if cur.SellerID != actor && !admin {
		return models.Product{}, ErrForbidden
	}
	in, price, err := in.clean()
	if err != nil {
		return models.Product{}, err
	}

	var p models.Product
	err = s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":        in.Name,
		"name_ci":     text.Fold(in.Name),
		"description": in.Description,
		"price":       price,
		"stock":       in.Stock,
		"image":       in.Image,
		"category":    in.Category,
		"updated_at":  time.Now().UTC(),
	}}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Product{}, ErrNotFound
	}
	if err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// Delete removes a product. The seller or an admin may delete.
func (s *Store) Delete(ctx context.Context, id, actor primitive.ObjectID, admin bool) error {
	cur, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if cur.SellerID != actor && !admin {
		return ErrForbidden
	}
	_, err = s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// AdjustStock adds delta to the stock in one conditional update; the stock
// never goes below zero.
func (s *Store) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) (int, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["stock"] = bson.M{"$gte": -delta}
	}
	var p models.Product
	err := s.c.FindOneAndUpdate(ctx, filter, bson.M{
		"$inc": bson.M{"stock": delta},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	}, options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return 0, gerr
		}
		return 0, ErrOutOfStock
	}
	if err != nil {
		return 0, err
	}
	return p.Stock, nil
}
