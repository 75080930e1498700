// internal/domain/models/product.go
package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Money is a decimal amount stored as BSON decimal128 and rendered as a
// JSON string ("12.50").
type Money struct {
	decimal.Decimal
}

// NewMoney parses a decimal string such as "4.99".
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{d}, nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (m Money) MarshalBSONValue() (bsontype.Type, []byte, error) {
	d, ok := primitive.ParseDecimal128FromBigInt(m.Coefficient(), int(m.Exponent()))
	if !ok {
		return 0, nil, errors.New("money: value out of decimal128 range")
	}
	return bson.MarshalValue(d)
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (m *Money) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	d, ok := bson.RawValue{Type: t, Value: data}.Decimal128OK()
	if !ok {
		return fmt.Errorf("money: unexpected bson type %s", t)
	}
	big, exp, err := d.BigInt()
	if err != nil {
		return err
	}
	m.Decimal = decimal.NewFromBigInt(big, int32(exp))
	return nil
}

// Product is a shop catalog entry.
type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	NameCI      string             `bson:"name_ci" json:"-"`
	Description string             `bson:"description" json:"description"`
	Price       Money              `bson:"price" json:"price"`
	Stock       int                `bson:"stock" json:"stock"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	SellerID    primitive.ObjectID `bson:"seller_id" json:"seller_id"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// Cart is a user's shopping cart; its _id is the user's id. Items holds at
// most one line per product.
type Cart struct {
	UserID    primitive.ObjectID `bson:"_id" json:"user_id"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// CartItem is one cart line.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
}
