// internal/app/features/shop/handler.go
package shop

import (
	cartstore "github.com/dalemusser/hotspot/internal/app/store/carts"
	productstore "github.com/dalemusser/hotspot/internal/app/store/products"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"go.uber.org/zap"
)

const (
	maxDescriptionLen = 2000
	maxCategoryLen    = 60
)

// Handler serves the product catalog under /shop/products and the caller's
// cart under /shop/cart.
type Handler struct {
	Products *productstore.Store
	Carts    *cartstore.Store
	Files    storage.Store
	Log      *zap.Logger
}

func NewHandler(products *productstore.Store, carts *cartstore.Store, files storage.Store, logger *zap.Logger) *Handler {
	return &Handler{Products: products, Carts: carts, Files: files, Log: logger}
}
