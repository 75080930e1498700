// Package cartstore keeps one cart document per user (_id = user id).
// Every mutation reads the cart, edits its item list with a linear scan
// and writes it back inside a transaction.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/256dpi/lungo"
	productstore "github.com/dalemusser/hotspot/internal/app/store/products"
	"github.com/dalemusser/hotspot/internal/app/system/apperr"
	"github.com/dalemusser/hotspot/internal/app/system/collections"
	"github.com/dalemusser/hotspot/internal/app/system/txn"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var (
	ErrBadQuantity       = apperr.New(apperr.Invalid, "quantity must be positive")
	ErrItemNotFound      = apperr.New(apperr.NotFound, "product is not in the cart")
	ErrInsufficientStock = apperr.New(apperr.Invalid, "not enough stock for that quantity")
)

// Line is a priced cart line.
type Line struct {
	Product   models.Product `json:"product"`
	Quantity  int            `json:"quantity"`
	LineTotal models.Money   `json:"line_total"`
}

// View is a cart with its lines priced from the current catalog. Lines
// whose product no longer exists are left out.
type View struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Lines     []Line             `json:"lines"`
	ItemCount int                `json:"item_count"`
	Total     models.Money       `json:"total"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type Store struct {
	db       lungo.IDatabase
	c        lungo.ICollection
	products *productstore.Store
}

func New(db lungo.IDatabase) *Store {
	return &Store{
		db:       db,
		c:        db.Collection(collections.Carts),
		products: productstore.New(db),
	}
}

// Get returns the priced cart for uid. A user without a cart gets an empty one.
func (s *Store) Get(ctx context.Context, uid primitive.ObjectID) (View, error) {
	cart, err := s.load(ctx, uid)
	if err != nil {
		return View{}, err
	}
	return s.price(ctx, cart)
}

// AddItem adds qty of a product. An existing line for the product has its
// quantity increased instead of gaining a second line.
func (s *Store) AddItem(ctx context.Context, uid, productID primitive.ObjectID, qty int) (View, error) {
	if qty <= 0 {
		return View{}, ErrBadQuantity
	}
	return s.mutate(ctx, uid, func(ctx context.Context, cart *models.Cart) error {
		p, err := s.products.Get(ctx, productID)
		if err != nil {
			return err
		}
		i := indexOf(cart.Items, productID)
		want := qty
		if i >= 0 {
			want += cart.Items[i].Quantity
		}
		if want > p.Stock {
			return ErrInsufficientStock
		}
		if i >= 0 {
			cart.Items[i].Quantity = want
		} else {
			cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: qty})
		}
		return nil
	})
}

// SetQuantity sets a line's quantity; zero removes the line.
func (s *Store) SetQuantity(ctx context.Context, uid, productID primitive.ObjectID, qty int) (View, error) {
	if qty < 0 {
		return View{}, ErrBadQuantity
	}
	return s.mutate(ctx, uid, func(ctx context.Context, cart *models.Cart) error {
		i := indexOf(cart.Items, productID)
		if i < 0 {
			return ErrItemNotFound
		}
		if qty == 0 {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return nil
		}
		p, err := s.products.Get(ctx, productID)
		if err != nil {
			return err
		}
		if qty > p.Stock {
			return ErrInsufficientStock
		}
		cart.Items[i].Quantity = qty
		return nil
	})
}

// RemoveItem drops the product's line.
func (s *Store) RemoveItem(ctx context.Context, uid, productID primitive.ObjectID) (View, error) {
	return s.SetQuantity(ctx, uid, productID, 0)
}

// Clear empties the cart.
func (s *Store) Clear(ctx context.Context, uid primitive.ObjectID) (View, error) {
	return s.mutate(ctx, uid, func(ctx context.Context, cart *models.Cart) error {
		cart.Items = []models.CartItem{}
		return nil
	})
}

func (s *Store) mutate(ctx context.Context, uid primitive.ObjectID, fn func(ctx context.Context, cart *models.Cart) error) (View, error) {
	var cart models.Cart
	err := txn.Run(ctx, s.db, zap.L(), func(ctx context.Context) error {
		var err error
		cart, err = s.load(ctx, uid)
		if err != nil {
			return err
		}
		if err := fn(ctx, &cart); err != nil {
			return err
		}
		cart.UpdatedAt = time.Now().UTC()
		_, err = s.c.ReplaceOne(ctx, bson.M{"_id": uid}, cart, options.Replace().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("save cart: %w", err)
		}
		return nil
	})
	if err != nil {
		return View{}, err
	}
	return s.price(ctx, cart)
}

func (s *Store) load(ctx context.Context, uid primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := s.c.FindOne(ctx, bson.M{"_id": uid}).Decode(&cart)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Cart{UserID: uid, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func (s *Store) price(ctx context.Context, cart models.Cart) (View, error) {
	ids := make([]primitive.ObjectID, 0, len(cart.Items))
	for _, it := range cart.Items {
		ids = append(ids, it.ProductID)
	}
	byID, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return View{}, err
	}

	v := View{UserID: cart.UserID, Lines: []Line{}, UpdatedAt: cart.UpdatedAt}
	total := decimal.Zero
	for _, it := range cart.Items {
		p, ok := byID[it.ProductID]
		if !ok {
			continue
		}
		lt := p.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
		total = total.Add(lt)
		v.ItemCount += it.Quantity
		v.Lines = append(v.Lines, Line{Product: p, Quantity: it.Quantity, LineTotal: models.Money{Decimal: lt}})
	}
	v.Total = models.Money{Decimal: total}
	return v, nil
}

func indexOf(items []models.CartItem, productID primitive.ObjectID) int {
	for i, it := range items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}
