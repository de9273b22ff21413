package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"jammal/internal/config"
	"jammal/internal/database"
	"jammal/internal/models"
	"jammal/internal/payment"
	"jammal/internal/repositories"
	"jammal/internal/server"
	"jammal/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	testJWTSecret     = "test_jwt_secret"
	testPaymentSecret = "test_payment_secret"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	identity *services.IdentityService
	products []models.Product
	category models.Category
}

// setupApp builds the full application with default order settings on a
// private in-memory SQLite database.
func setupApp(t *testing.T) *testEnv {
	t.Helper()
	return setupAppWithOrders(t, config.OrdersConfig{})
}

func setupAppWithOrders(t *testing.T, orders config.OrdersConfig) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", uuid.New().String())
	db, err := database.Open(context.Background(), config.DatabaseConfig{Driver: "sqlite", DSN: dsn}, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := &config.Config{
		Auth:    config.AuthConfig{JWTSecret: testJWTSecret, AdminExternalIDs: []string{"ext-admin"}},
		Payment: config.PaymentConfig{KeySecret: testPaymentSecret},
		Orders:  orders,
	}
	env := &testEnv{
		app:      server.New(db, server.Options{Config: cfg, Logger: zerolog.Nop()}),
		db:       db,
		identity: services.NewIdentityService(testJWTSecret, zerolog.Nop()),
	}
	env.seedCatalog(t)
	return env
}

func (e *testEnv) seedCatalog(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	e.category = models.Category{Name: "Attar", Slug: "attar"}
	require.NoError(t, repositories.NewGORMCategoryRepository(e.db).Create(ctx, &e.category))

	repo := repositories.NewGORMProductRepository(e.db)
	for _, p := range []struct {
		name, slug string
		price      int64
	}{
		{"Royal Oudh", "royal-oudh", 1200},
		{"Musk Rose", "musk-rose", 500},
		{"Amber Night", "amber-night", 750},
		{"Sandal Gold", "sandal-gold", 1000},
		{"Citrus Mist", "citrus-mist", 300},
	} {
		product := models.Product{Name: p.name, Slug: p.slug, Price: decimal.NewFromInt(p.price), CategoryID: e.category.ID, Images: "[]"}
		require.NoError(t, repo.Create(ctx, &product))
		e.products = append(e.products, product)
	}
}

func (e *testEnv) token(t *testing.T, externalID string) string {
	t.Helper()
	token, err := e.identity.IssueToken(services.Identity{ExternalID: externalID, Name: externalID, Email: externalID + "@example.com"}, time.Hour)
	require.NoError(t, err)
	return token
}

// signIn syncs the account for externalID and returns its bearer token and user id.
func (e *testEnv) signIn(t *testing.T, externalID string) (string, string) {
	t.Helper()
	token := e.token(t, externalID)
	resp := e.do(t, http.MethodPut, "/api/v1/account", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var user models.User
	decode(t, resp, &user)
	return token, user.ID
}

func (e *testEnv) do(t *testing.T, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, -1) // -1 for no timeout
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func errorOf(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]interface{}
	decode(t, resp, &body)
	msg, _ := body["error"].(string)
	return msg
}

func checkoutBody(productID string) fiber.Map {
	return fiber.Map{
		"amount": 20000,
		"items":  []fiber.Map{{"id": productID, "name": "Musk Rose", "price": 100, "quantity": 2}},
		"address": fiber.Map{
			"name": "Aisha", "phone": "9999999999", "address": "12 Lane", "city": "Hyderabad", "pincode": "500001",
		},
	}
}

func TestHealth(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "healthy", body["status"])
}

func TestAuthGuards(t *testing.T) {
	env := setupApp(t)
	customer, _ := env.signIn(t, "ext-aisha")

	resp := env.do(t, http.MethodGet, "/api/v1/orders", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/orders", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers", customer, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// a valid token without a user record is not an administrator
	resp = env.do(t, http.MethodGet, "/api/v1/admin/orders", env.token(t, "ext-unsynced"), nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	admin, _ := env.signIn(t, "ext-admin")
	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers", admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodGet, "/api/v1/search?minPrice=500&maxPrice=1000&sortBy=price&sortOrder=asc", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var res services.SearchResult
	decode(t, resp, &res)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 12, res.Limit)
	require.Len(t, res.Products, 3)
	assert.Equal(t, "musk-rose", res.Products[0].Slug)
	assert.Equal(t, "amber-night", res.Products[1].Slug)
	assert.Equal(t, "sandal-gold", res.Products[2].Slug)

	resp = env.do(t, http.MethodGet, "/api/v1/search?q=oud&category=attar", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &res)
	assert.Equal(t, int64(1), res.Total)
	assert.Equal(t, "oud", res.Query)

	for _, bad := range []string{"minPrice=abc", "page=two", "limit=1.5"} {
		resp = env.do(t, http.MethodGet, "/api/v1/search?"+bad, "", nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode, bad)
	}
}

func TestCatalogReads(t *testing.T) {
	env := setupApp(t)

	resp := env.do(t, http.MethodGet, "/api/v1/products/royal-oudh", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var product map[string]interface{}
	decode(t, resp, &product)
	assert.Equal(t, "Royal Oudh", product["name"])
	assert.Equal(t, 1200.0, product["price"])
	assert.Equal(t, []interface{}{}, product["images"])

	resp = env.do(t, http.MethodGet, "/api/v1/products/nope", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/categories", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var categories []models.Category
	decode(t, resp, &categories)
	require.Len(t, categories, 1)
	assert.Equal(t, "attar", categories[0].Slug)
}

func TestOrderLifecycle(t *testing.T) {
	env := setupApp(t)
	customer, _ := env.signIn(t, "ext-aisha")
	admin, _ := env.signIn(t, "ext-admin")

	resp := env.do(t, http.MethodPost, "/api/v1/create-order", customer, checkoutBody(env.products[1].ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var created services.CheckoutResult
	decode(t, resp, &created)
	assert.True(t, created.Demo)
	assert.Nil(t, created.OrderID)
	require.NotEmpty(t, created.DBOrderID)

	orderPath := "/api/v1/orders/" + created.DBOrderID
	resp = env.do(t, http.MethodGet, orderPath, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var order map[string]interface{}
	decode(t, resp, &order)
	assert.Equal(t, "PENDING", order["status"])
	assert.Equal(t, 200.0, order["total"])
	assert.Equal(t, "Hyderabad", order["address"].(map[string]interface{})["city"])
	items := order["items"].([]interface{})
	require.Len(t, items, 1)
	assert.Equal(t, "Musk Rose", items[0].(map[string]interface{})["product"].(map[string]interface{})["name"])

	resp = env.do(t, http.MethodPatch, orderPath, customer, fiber.Map{"status": "CONFIRMED"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	// role is checked before the body is read
	resp = env.do(t, http.MethodPatch, orderPath, customer, fiber.Map{})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp = env.do(t, http.MethodPatch, orderPath, customer, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, orderPath, "", fiber.Map{"status": "CONFIRMED"})
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, orderPath, admin, fiber.Map{"status": "SHIPPED"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, orderPath, admin, fiber.Map{"status": "DELIVERED", "estimatedDeliveryDate": "2026-11-02"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &order)
	assert.Equal(t, "DELIVERED", order["status"])

	resp = env.do(t, http.MethodPatch, "/api/v1/orders/"+uuid.New().String(), admin, fiber.Map{"status": "CONFIRMED"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/orders", customer, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mine services.OrderPage
	decode(t, resp, &mine)
	assert.Equal(t, int64(1), mine.Total)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/orders?status=DELIVERED", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var all services.OrderPage
	decode(t, resp, &all)
	assert.Equal(t, int64(1), all.Total)
}

func TestCreateOrder_AmountIncludesShipping(t *testing.T) {
	env := setupApp(t)

	// 2 x 100 plus 99 shipping for carts under 999
	body := checkoutBody(env.products[0].ID)
	body["amount"] = 29900
	resp := env.do(t, http.MethodPost, "/api/v1/create-order", "", body)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var created map[string]interface{}
	decode(t, resp, &created)
	orderID, _ := created["dbOrderId"].(string)
	require.NotEmpty(t, orderID)

	var order models.Order
	require.NoError(t, env.db.First(&order, "id = ?", orderID).Error)
	assert.True(t, decimal.NewFromInt(299).Equal(order.Total), order.Total.String())
}

func TestCreateOrder_GuestAndValidation(t *testing.T) {
	env := setupAppWithOrders(t, config.OrdersConfig{VerifyTotal: true})

	resp := env.do(t, http.MethodPost, "/api/v1/create-order", "", checkoutBody(env.products[0].ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	mismatch := checkoutBody(env.products[0].ID)
	mismatch["amount"] = 10000
	resp = env.do(t, http.MethodPost, "/api/v1/create-order", "", mismatch)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	empty := checkoutBody(env.products[0].ID)
	empty["items"] = []fiber.Map{}
	resp = env.do(t, http.MethodPost, "/api/v1/create-order", "", empty)
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var body map[string]interface{}
	decode(t, resp, &body)
	assert.Equal(t, "Validation failed", body["error"])
	assert.Contains(t, body["errors"], "Items")
}

func TestVerifyPayment(t *testing.T) {
	env := setupApp(t)
	ctx := context.Background()

	orders := repositories.NewGORMOrderRepository(env.db)
	order := &models.Order{Total: decimal.NewFromInt(200), Status: models.OrderStatusPending, Address: "{}",
		Items: []models.OrderItem{{ProductID: env.products[0].ID, Quantity: 1, Price: decimal.NewFromInt(200)}}}
	require.NoError(t, orders.Create(ctx, order))
	require.NoError(t, orders.SetPaymentOrderID(ctx, order.ID, "order_1"))

	resp := env.do(t, http.MethodPost, "/api/v1/verify-payment", "", fiber.Map{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  "0000",
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid signature", errorOf(t, resp))

	signature := payment.NewVerifier(testPaymentSecret).Sign("order_1", "pay_1")
	resp = env.do(t, http.MethodPost, "/api/v1/verify-payment", "", fiber.Map{
		"razorpay_order_id":   "order_1",
		"razorpay_payment_id": "pay_1",
		"razorpay_signature":  signature,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var res map[string]interface{}
	decode(t, resp, &res)
	assert.Equal(t, true, res["success"])
	assert.NotContains(t, res, "demo")

	stored, err := orders.GetByID(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PaymentID)
	assert.Equal(t, "pay_1", *stored.PaymentID)
	assert.Equal(t, models.OrderStatusPending, stored.Status)
}

func TestDeleteCustomerRemovesOrders(t *testing.T) {
	env := setupApp(t)
	customer, customerID := env.signIn(t, "ext-aisha")
	admin, _ := env.signIn(t, "ext-admin")

	resp := env.do(t, http.MethodPost, "/api/v1/create-order", customer, checkoutBody(env.products[1].ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var created services.CheckoutResult
	decode(t, resp, &created)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers?search=aisha", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var page map[string]interface{}
	decode(t, resp, &page)
	customers := page["customers"].([]interface{})
	require.Len(t, customers, 1)
	assert.Equal(t, 1.0, customers[0].(map[string]interface{})["orderCount"])
	assert.Equal(t, 200.0, customers[0].(map[string]interface{})["totalSpent"])

	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers/"+customerID, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/customers/"+customerID, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/orders/"+created.DBOrderID, "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/customers/"+customerID, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Customer not found", errorOf(t, resp))
}

func TestWishlistAndReviews(t *testing.T) {
	env := setupApp(t)
	customer, _ := env.signIn(t, "ext-aisha")
	productID := env.products[0].ID

	for i := 0; i < 2; i++ {
		resp := env.do(t, http.MethodPost, "/api/v1/wishlist", customer, fiber.Map{"productId": productID, "action": "add"})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
	}

	resp := env.do(t, http.MethodGet, "/api/v1/wishlist", customer, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var wishlist services.WishlistView
	decode(t, resp, &wishlist)
	assert.Equal(t, 1, wishlist.Count)

	resp = env.do(t, http.MethodPost, "/api/v1/wishlist", customer, fiber.Map{"productId": productID, "action": "toggle"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/wishlist", env.token(t, "ext-unsynced"), fiber.Map{"productId": productID, "action": "add"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/reviews", customer, fiber.Map{"productId": productID, "rating": 4})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/api/v1/reviews", customer, fiber.Map{"productId": productID, "rating": 5, "comment": "Even better"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	resp = env.do(t, http.MethodPost, "/api/v1/reviews", customer, fiber.Map{"productId": productID, "rating": 9})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/reviews?productId="+productID, "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var reviews services.ProductReviews
	decode(t, resp, &reviews)
	assert.Equal(t, 1, reviews.TotalReviews)
	assert.Equal(t, 5.0, reviews.AverageRating)
}

func productForm(t *testing.T, fields map[string]string, image []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if image != nil {
		part, err := w.CreateFormFile("images", "bottle.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestAdminProducts(t *testing.T) {
	env := setupApp(t)
	admin, _ := env.signIn(t, "ext-admin")

	body, contentType := productForm(t, map[string]string{
		"name":           "Oud Wood",
		"slug":           "oud-wood",
		"price":          "899.50",
		"stock":          "7",
		"discount":       "oops",
		"categoryId":     env.category.ID,
		"isFeatured":     "true",
		"existingImages": `["https://cdn.example.com/a.jpg"]`,
	}, []byte("\x89PNG\r\n\x1a\n"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/products", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var product map[string]interface{}
	decode(t, resp, &product)
	assert.Equal(t, 899.5, product["price"])
	assert.Equal(t, 0.0, product["discount"])
	assert.Equal(t, true, product["isFeatured"])
	images := product["images"].([]interface{})
	require.Len(t, images, 2)
	assert.Equal(t, "https://cdn.example.com/a.jpg", images[0])
	assert.True(t, strings.HasPrefix(images[1].(string), "data:image/png;base64,"))
	productID := product["id"].(string)

	resp = env.do(t, http.MethodPost, "/api/v1/admin/products", admin, fiber.Map{
		"name": "Copy", "slug": "oud-wood", "price": 10, "categoryId": env.category.ID,
	})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Slug already exists", errorOf(t, resp))

	resp = env.do(t, http.MethodPost, "/api/v1/admin/products", admin, fiber.Map{"name": "No price", "slug": "no-price"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Missing required fields", errorOf(t, resp))

	resp = env.do(t, http.MethodPatch, "/api/v1/admin/products/"+productID, admin, fiber.Map{
		"name": "Oud Wood Intense", "slug": "oud-wood", "price": 999, "categoryId": env.category.ID,
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	decode(t, resp, &product)
	assert.Equal(t, "Oud Wood Intense", product["name"])
	assert.Equal(t, []interface{}{}, product["images"])

	resp = env.do(t, http.MethodGet, "/api/v1/admin/products", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var listed []map[string]interface{}
	decode(t, resp, &listed)
	assert.Len(t, listed, 6)
	assert.Contains(t, listed[0], "analytics")

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/products/"+productID, admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/v1/admin/products/"+productID, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminCategories(t *testing.T) {
	env := setupApp(t)
	admin, _ := env.signIn(t, "ext-admin")

	resp := env.do(t, http.MethodPost, "/api/v1/admin/categories", admin, fiber.Map{"name": "Bakhoor", "slug": "bakhoor"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var category models.Category
	decode(t, resp, &category)

	resp = env.do(t, http.MethodPost, "/api/v1/admin/categories", admin, fiber.Map{"name": "Dup", "slug": "bakhoor"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/v1/admin/categories", admin, fiber.Map{"slug": "nameless"})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	var invalid map[string]interface{}
	decode(t, resp, &invalid)
	assert.Contains(t, invalid["errors"], "Name")

	resp = env.do(t, http.MethodPatch, "/api/v1/admin/categories/"+category.ID, admin, fiber.Map{"name": "Bakhoor Chips", "slug": "bakhoor"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/categories/"+env.category.ID, admin, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/v1/admin/categories/"+category.ID, admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/categories/"+category.ID, admin, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestExport(t *testing.T) {
	env := setupApp(t)
	customer, _ := env.signIn(t, "ext-aisha")
	admin, _ := env.signIn(t, "ext-admin")

	resp := env.do(t, http.MethodPost, "/api/v1/create-order", customer, checkoutBody(env.products[1].ID))
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/v1/admin/export-data", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Regexp(t, `attachment; filename="jammal-perfume-data-\d{4}-\d{2}-\d{2}\.json"`, resp.Header.Get("Content-Disposition"))

	var export services.Export
	decode(t, resp, &export)
	assert.Equal(t, 5, export.Statistics.TotalProducts)
	assert.Equal(t, 1, export.Statistics.TotalOrders)
	assert.Equal(t, 1, export.Statistics.TotalCustomers)
	assert.True(t, decimal.NewFromInt(200).Equal(export.Statistics.TotalRevenue))
}
