// internal/app/features/shop/products.go
package shop

import (
	"net/http"

	httperrors "github.com/dalemusser/hotspot/internal/app/features/errors"
	productstore "github.com/dalemusser/hotspot/internal/app/store/products"
	"github.com/dalemusser/hotspot/internal/app/system/authz"
	"github.com/dalemusser/hotspot/internal/app/system/inputval"
	"github.com/dalemusser/hotspot/internal/app/system/paging"
	"github.com/dalemusser/hotspot/internal/app/system/respond"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/app/system/timeouts"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"go.uber.org/zap"
)

type productRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Stock       int    `json:"stock"`
	Image       string `json:"image"`
	Category    string `json:"category"`
}

// validate checks field shapes. Price parsing and the stock floor are left
// to the store.
func (in productRequest) validate() (productstore.Input, error) {
	out := productstore.Input{Price: in.Price, Stock: in.Stock}
	var err error
	if out.Name, err = inputval.Text("name", in.Name, inputval.MaxNameLen); err != nil {
		return out, err
	}
	if out.Description, err = inputval.OptionalText("description", in.Description, maxDescriptionLen); err != nil {
		return out, err
	}
	if out.Image, err = inputval.ImageURL("image", in.Image); err != nil {
		return out, err
	}
	if out.Category, err = inputval.OptionalText("category", in.Category, maxCategoryLen); err != nil {
		return out, err
	}
	return out, nil
}

func productID(p models.Product) string { return p.ID.Hex() }

// ServeProducts handles GET /shop/products. ?category narrows the listing.
func (h *Handler) ServeProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	list, more, err := h.Products.List(ctx, query.Get(r, "category"), paging.Parse(r))
	if err != nil {
		httperrors.Write(w, r, h.Log, "products: list", err)
		return
	}
	respond.OK(w, respond.NewPage(list, more, productID))
}

// ServeProduct handles GET /shop/products/{id}.
func (h *Handler) ServeProduct(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: id", err)
		return
	}
	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Products.Get(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: get", err)
		return
	}
	respond.OK(w, p)
}

// HandleCreateProduct handles POST /shop/products. The caller becomes the seller.
func (h *Handler) HandleCreateProduct(w http.ResponseWriter, r *http.Request) {
	uid, _ := authz.UserID(r)

	var in productRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "product: decode", err)
		return
	}
	input, err := in.validate()
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Products.Create(ctx, uid, input)
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: create", err)
		return
	}
	h.Log.Info("product listed", zap.String("product_id", p.ID.Hex()), zap.String("seller", uid.Hex()))
	respond.Created(w, p)
}

// HandleUpdateProduct handles PUT /shop/products/{id}. Seller or admin.
func (h *Handler) HandleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	var in productRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "product: decode", err)
		return
	}
	input, err := in.validate()
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: validate", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Products.Update(ctx, id, uid, authz.IsAdmin(r), input)
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: update", err)
		return
	}
	respond.OK(w, p)
}

// HandleDeleteProduct handles DELETE /shop/products/{id}. Seller or admin.
// Carts holding the product simply stop showing it.
func (h *Handler) HandleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: id", err)
		return
	}
	uid, _ := authz.UserID(r)

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	p, err := h.Products.Get(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "product: get", err)
		return
	}
	if err := h.Products.Delete(ctx, id, uid, authz.IsAdmin(r)); err != nil {
		httperrors.Write(w, r, h.Log, "product: delete", err)
		return
	}
	if name, own := storage.NameFromURL(p.Image); own {
		if err := h.Files.Delete(ctx, name); err != nil {
			h.Log.Warn("product: delete image", zap.String("name", name), zap.Error(err))
		}
	}
	respond.NoContent(w)
}

// HandleProductImage handles POST /shop/products/{id}/image (multipart
// field "image"). Seller or admin.
func (h *Handler) HandleProductImage(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "product image: id", err)
		return
	}
	uid, _ := authz.UserID(r)
	admin := authz.IsAdmin(r)

	ctx, cancel := timeouts.WithMedium(r.Context())
	defer cancel()

	before, err := h.Products.Get(ctx, id)
	if err != nil {
		httperrors.Write(w, r, h.Log, "product image: get", err)
		return
	}
	if before.SellerID != uid && !admin {
		httperrors.Write(w, r, h.Log, "product image", productstore.ErrForbidden)
		return
	}

	name, err := storage.SaveImage(ctx, h.Files, w, r, "image", "products")
	if err != nil {
		httperrors.Write(w, r, h.Log, "product image: save", err)
		return
	}
	p, err := h.Products.Update(ctx, id, uid, admin, productstore.Input{
		Name:        before.Name,
		Description: before.Description,
		Price:       before.Price.String(),
		Stock:       before.Stock,
		Image:       storage.URL(name),
		Category:    before.Category,
	})
	if err != nil {
		_ = h.Files.Delete(ctx, name)
		httperrors.Write(w, r, h.Log, "product image: update", err)
		return
	}
	if old, own := storage.NameFromURL(before.Image); own && old != name {
		if err := h.Files.Delete(ctx, old); err != nil {
			h.Log.Warn("product image: delete previous", zap.String("name", old), zap.Error(err))
		}
	}
	respond.OK(w, p)
}

type stockRequest struct {
	Delta int `json:"delta"`
}

type stockResponse struct {
	Stock int `json:"stock"`
}

// HandleAdjustStock handles POST /shop/products/{id}/stock (admin). A
// negative delta larger than the stock is refused.
func (h *Handler) HandleAdjustStock(w http.ResponseWriter, r *http.Request) {
	id, err := inputval.PathID(r, "id")
	if err != nil {
		httperrors.Write(w, r, h.Log, "stock: id", err)
		return
	}
	var in stockRequest
	if err := respond.Decode(w, r, &in); err != nil {
		httperrors.Write(w, r, h.Log, "stock: decode", err)
		return
	}

	ctx, cancel := timeouts.WithShort(r.Context())
	defer cancel()

	n, err := h.Products.AdjustStock(ctx, id, in.Delta)
	if err != nil {
		httperrors.Write(w, r, h.Log, "stock: adjust", err)
		return
	}
	respond.OK(w, stockResponse{Stock: n})
}
