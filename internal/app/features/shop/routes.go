// internal/app/features/shop/routes.go
package shop

import (
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Route("/products", func(pr chi.Router) {
		pr.Get("/", h.ServeProducts)
		pr.Get("/{id}", h.ServeProduct)

		pr.Group(func(sr chi.Router) {
			sr.Use(sm.RequireSignedIn)
			sr.Post("/", h.HandleCreateProduct)
			sr.Put("/{id}", h.HandleUpdateProduct)
			sr.Delete("/{id}", h.HandleDeleteProduct)
			sr.Post("/{id}/image", h.HandleProductImage)
		})

		pr.With(sm.RequireRole(models.RoleAdmin)).Post("/{id}/stock", h.HandleAdjustStock)
	})

	r.Route("/cart", func(cr chi.Router) {
		cr.Use(sm.RequireSignedIn)
		cr.Get("/", h.ServeCart)
		cr.Delete("/", h.HandleClear)
		cr.Post("/items", h.HandleAddItem)
		cr.Put("/items/{productID}", h.HandleSetQuantity)
		cr.Delete("/items/{productID}", h.HandleRemoveItem)
	})

	return r
}
