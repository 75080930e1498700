// internal/app/features/shop/cart.go
package shop

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
)

type addItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

// ServeCart handles GET /shop/cart, priced from the current catalog.
func (h *Handler) ServeCart(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	v, err := h.Carts.Get(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: get", err)
		return
	}
	respond.OK(w, v)
}

// HandleAddItem handles POST /shop/cart/items. Quantity defaults to 1 and
// adds to an existing line for the same product.
func (h *Handler) HandleAddItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in addItemRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "cart: decode", err)
		return
	}
	pid, err := inputval.ObjectID("product_id", in.ProductID)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: validate", err)
		return
	}
	if in.Quantity == 0 {
		in.Quantity = 1
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	v, err := h.Carts.AddItem(ctx, uid, pid, in.Quantity)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: add", err)
		return
	}
	respond.OK(w, v)
}

// HandleSetQuantity handles PUT /shop/cart/items/{productID}.
func (h *Handler) HandleSetQuantity(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	pid, err := inputval.PathID(r, "productID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: product id", err)
		return
	}
	var in quantityRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "cart: decode", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	v, err := h.Carts.SetQuantity(ctx, uid, pid, in.Quantity)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: set quantity", err)
		return
	}
	respond.OK(w, v)
}

// HandleRemoveItem handles DELETE /shop/cart/items/{productID}.
func (h *Handler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)
	pid, err := inputval.PathID(r, "productID")
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: product id", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	v, err := h.Carts.RemoveItem(ctx, uid, pid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: remove", err)
		return
	}
	respond.OK(w, v)
}

// HandleClear handles DELETE /shop/cart.
func (h *Handler) HandleClear(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	v, err := h.Carts.Clear(ctx, uid)
	if err != nil {
		httperrors.Write(w, r, h.Log, "cart: clear", err)
		return
	}
	respond.OK(w, v)
}
