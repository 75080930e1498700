package shop_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dalemusser/hotspot/internal/app/features/shop"
	cartstore "github.com/dalemusser/hotspot/internal/app/store/carts"
	productstore "github.com/dalemusser/hotspot/internal/app/store/products"
	"github.com/dalemusser/hotspot/internal/app/system/auth"
	"github.com/dalemusser/hotspot/internal/app/system/storage"
	"github.com/dalemusser/hotspot/internal/domain/models"
	"github.com/dalemusser/hotspot/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type env struct {
	router http.Handler
	files  storage.Store
}

func newEnv(t *testing.T) env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	sm, err := auth.NewSessionManager("", "", "", time.Hour, false, zap.NewNop())
	require.NoError(t, err)
	h := shop.NewHandler(productstore.New(db), cartstore.New(db), files, zap.NewNop())
	return env{router: shop.Routes(h, sm), files: files}
}

func (e env) do(r *http.Request, u *testutil.TestUser) *httptest.ResponseRecorder {
	if u != nil {
		r = testutil.WithUser(r, *u)
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, r)
	return rec
}

func (e env) list(t *testing.T, seller testutil.TestUser, name, price string, stock int, category string) models.Product {
	t.Helper()
	rec := e.do(testutil.NewJSONRequest(http.MethodPost, "/products", map[string]any{
		"name": name, "price": price, "stock": stock, "category": category,
	}), &seller)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var p models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartstore.View {
	t.Helper()
	var v cartstore.View
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestProducts_CatalogIsPublic(t *testing.T) {
	e := newEnv(t)
	seller := testutil.StudentUser()
	e.list(t, seller, "Hoodie", "25.00", 5, "Apparel")
	e.list(t, seller, "Mug", "8.50", 10, "kitchen")

	rec := e.do(testutil.NewRequest(http.MethodGet, "/products?category=apparel"), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items []models.Product `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Hoodie", page.Items[0].Name)
	assert.True(t, page.Items[0].Price.Equal(decimal.RequireFromString("25")))

	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/products", map[string]any{"name": "x", "price": "1"}), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/products", map[string]any{"name": "Pen", "price": "-1"}), &seller)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProducts_SellerOrAdminEdits(t *testing.T) {
	e := newEnv(t)
	seller, other, admin := testutil.StudentUser(), testutil.StudentUser(), testutil.AdminUser()
	p := e.list(t, seller, "Lamp", "12.00", 2, "")

	update := map[string]any{"name": "Desk lamp", "price": "11.00", "stock": 2}
	rec := e.do(testutil.NewJSONRequest(http.MethodPut, "/products/"+p.ID.Hex(), update), &other)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = e.do(testutil.NewJSONRequest(http.MethodPut, "/products/"+p.ID.Hex(), update), &admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = e.do(testutil.NewUploadRequest(http.MethodPost, "/products/"+p.ID.Hex()+"/image", "image", "lamp.png", testutil.PNGBytes), &seller)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var got models.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Desk lamp", got.Name)
	name, own := storage.NameFromURL(got.Image)
	require.True(t, own, got.Image)

	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/products/"+p.ID.Hex()+"/stock", map[string]int{"delta": -5}), &admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "stock cannot go negative")
	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/products/"+p.ID.Hex()+"/stock", map[string]int{"delta": 3}), &seller)
	assert.Equal(t, http.StatusForbidden, rec.Code, "stock is admin only")
	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/products/"+p.ID.Hex()+"/stock", map[string]int{"delta": 3}), &admin)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stock":5}`, rec.Body.String())

	rec = e.do(testutil.NewRequest(http.MethodDelete, "/products/"+p.ID.Hex()), &seller)
	require.Equal(t, http.StatusNoContent, rec.Code)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	_, err := e.files.Open(ctx, name)
	assert.Error(t, err, "image removed with the product")
}

func TestCart_Flow(t *testing.T) {
	e := newEnv(t)
	seller, buyer := testutil.StudentUser(), testutil.StudentUser()
	mug := e.list(t, seller, "Mug", "4.50", 3, "")
	pen := e.list(t, seller, "Pen", "1.25", 10, "")

	rec := e.do(testutil.NewRequest(http.MethodGet, "/cart"), &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Lines)

	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/cart/items", map[string]any{"product_id": mug.ID.Hex(), "quantity": 2}), &buyer)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/cart/items", map[string]any{"product_id": mug.ID.Hex(), "quantity": 2}), &buyer)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "only 3 in stock")

	rec = e.do(testutil.NewJSONRequest(http.MethodPost, "/cart/items", map[string]any{"product_id": pen.ID.Hex()}), &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	v := decodeCart(t, rec)
	require.Len(t, v.Lines, 2)
	assert.Equal(t, 3, v.ItemCount)
	assert.True(t, v.Total.Equal(decimal.RequireFromString("10.25")), v.Total.String())

	rec = e.do(testutil.NewJSONRequest(http.MethodPut, "/cart/items/"+pen.ID.Hex(), map[string]int{"quantity": 4}), &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeCart(t, rec).Total.Equal(decimal.RequireFromString("14")))

	rec = e.do(testutil.NewRequest(http.MethodDelete, "/cart/items/"+mug.ID.Hex()), &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeCart(t, rec).Lines, 1)

	rec = e.do(testutil.NewRequest(http.MethodDelete, "/cart/items/"+mug.ID.Hex()), &buyer)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = e.do(testutil.NewRequest(http.MethodDelete, "/cart"), &buyer)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Lines)
}
