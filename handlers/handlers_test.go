package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bookstore-service/internal/books"
	"bookstore-service/internal/cart"
	"bookstore-service/internal/checkout"
	"bookstore-service/internal/orders"
	"bookstore-service/middleware"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeCatalogStore struct {
	books      map[string]books.Book
	categories []books.Category
}

func (f *fakeCatalogStore) GetBookByID(ctx context.Context, bookID string) (books.Book, error) {
	b, ok := f.books[bookID]
	if !ok {
		return books.Book{}, books.ErrBookNotFound
	}
	return b, nil
}

func (f *fakeCatalogStore) ListAvailableBooks(ctx context.Context, filters books.ListFilters) ([]books.Book, error) {
	var list []books.Book
	for _, b := range f.books {
		if b.IsAvailable {
			list = append(list, b)
		}
	}
	return list, nil
}

func (f *fakeCatalogStore) ListCategories(ctx context.Context) ([]books.Category, error) {
	return f.categories, nil
}

type fakeOrderReader struct {
	orders map[string]orders.Order
}

func (f *fakeOrderReader) GetOrderByID(ctx context.Context, orderID string) (orders.Order, error) {
	o, ok := f.orders[orderID]
	if !ok {
		return orders.Order{}, orders.ErrOrderNotFound
	}
	return o, nil
}

func (f *fakeOrderReader) ListRecentOrders(ctx context.Context, limit int) ([]orders.Order, error) {
	var list []orders.Order
	for _, o := range f.orders {
		list = append(list, o)
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// fakeCommitter marks committed books as sold; committing an already sold
// book fails with the conflict error, like the storage layer does.
type fakeCommitter struct {
	sold map[string]bool
}

func (f *fakeCommitter) CommitCheckout(ctx context.Context, plan checkout.Plan) (string, error) {
	var unavailable []string
	for _, item := range plan.Items {
		if f.sold[item.BookID] {
			unavailable = append(unavailable, item.BookID)
		}
	}
	if len(unavailable) > 0 {
		return "", &checkout.UnavailableError{BookIDs: unavailable}
	}
	for _, item := range plan.Items {
		f.sold[item.BookID] = true
	}
	return "order-1", nil
}

type testServer struct {
	router  *gin.Engine
	catalog *fakeCatalogStore
	cookies []*http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	t.Setenv("SESSION_SECRET", strings.Repeat("x", 32))
	gin.SetMode(gin.TestMode)

	mid, err := middleware.NewMid()
	require.NoError(t, err)

	catalog := &fakeCatalogStore{
		books: map[string]books.Book{
			"b1": {ID: "b1", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald",
				Price: decimal.RequireFromString("299.00"), IsAvailable: true},
			"b2": {ID: "b2", Title: "1984", Author: "George Orwell",
				Price: decimal.RequireFromString("349.00"), IsAvailable: true},
			"b3": {ID: "b3", Title: "Sold Out", Author: "Nobody",
				Price: decimal.RequireFromString("100.00"), IsAvailable: false},
		},
		categories: []books.Category{{ID: "c1", Name: "Fiction", Slug: "fiction"}},
	}
	reader := &fakeOrderReader{orders: map[string]orders.Order{}}
	engine := checkout.NewEngine(catalog, &fakeCommitter{sold: make(map[string]bool)})

	router := API("/v1", mid, catalog, cart.NewMemoryStore(), engine, reader, nil)
	return &testServer{router: router, catalog: catalog}
}

// do sends a request carrying the session cookie from earlier responses, so a
// sequence of calls acts as one browser session.
func (s *testServer) do(t *testing.T, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, cookie := range s.cookies {
		req.AddCookie(cookie)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	if cookies := w.Result().Cookies(); len(cookies) > 0 {
		s.cookies = cookies
	}

	var response map[string]any
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	}
	return w, response
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	w, response := s.do(t, http.MethodGet, "/ping", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", response["status"])
}

func TestSessionCookieIssuedOnce(t *testing.T) {
	s := newTestServer(t)

	s.do(t, http.MethodGet, "/v1/cart", nil)
	require.NotEmpty(t, s.cookies, "first request must set the session cookie")
	first := s.cookies[0].Value

	w, _ := s.do(t, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Result().Cookies(), "a valid session keeps its cookie")
	require.Equal(t, first, s.cookies[0].Value)
}

func TestAddToCartAndGetCart(t *testing.T) {
	s := newTestServer(t)

	w, response := s.do(t, http.MethodPost, "/v1/cart/add",
		gin.H{"book_id": "b1", "quantity": 2})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), response["cart_count"])
	require.Contains(t, response["message"], "The Great Gatsby")

	w, response = s.do(t, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(2), response["cart_count"])
	require.Equal(t, "₹598.00", response["total_price_display"])
}

func TestAddToCartUnknownBook(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/cart/add",
		gin.H{"book_id": "ghost", "quantity": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddToCartUnavailableBook(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/cart/add",
		gin.H{"book_id": "b3", "quantity": 1})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestAddToCartInvalidQuantity(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPost, "/v1/cart/add",
		gin.H{"book_id": "b1", "quantity": 0})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateCartAbsentItem(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodPut, "/v1/cart/update",
		gin.H{"book_id": "b1", "quantity": 3})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFromCartClearsAllWithoutBookID(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b1", "quantity": 1})
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b2", "quantity": 1})

	w, response := s.do(t, http.MethodPost, "/v1/cart/remove", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "Cart cleared", response["message"])
	require.Equal(t, float64(0), response["cart_count"])
}

func TestCheckoutEmptyCart(t *testing.T) {
	s := newTestServer(t)

	w, response := s.do(t, http.MethodPost, "/v1/checkout", gin.H{
		"name": "Asha Rao", "email": "asha@example.com",
		"phone": "9876543210", "address": "12 MG Road",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Your cart is empty", response["error"])
}

func TestCheckoutInvalidEmail(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b1", "quantity": 1})

	w, _ := s.do(t, http.MethodPost, "/v1/checkout", gin.H{
		"name": "Asha Rao", "email": "not-an-email",
		"phone": "9876543210", "address": "12 MG Road",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCheckoutConflictLeavesCartIntact(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b1", "quantity": 1})

	// The book sells out after it was carted.
	sold := s.catalog.books["b1"]
	sold.IsAvailable = false
	s.catalog.books["b1"] = sold

	w, response := s.do(t, http.MethodPost, "/v1/checkout", gin.H{
		"name": "Asha Rao", "email": "asha@example.com",
		"phone": "9876543210", "address": "12 MG Road",
	})
	require.Equal(t, http.StatusConflict, w.Code)
	require.Equal(t, []any{"b1"}, response["book_ids"])

	// The failed checkout must not touch the cart.
	w, response = s.do(t, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(1), response["cart_count"])
}

func TestCheckoutSuccessClearsCart(t *testing.T) {
	s := newTestServer(t)
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b1", "quantity": 2})
	s.do(t, http.MethodPost, "/v1/cart/add", gin.H{"book_id": "b2", "quantity": 1})

	w, response := s.do(t, http.MethodPost, "/v1/checkout", gin.H{
		"name": "Asha Rao", "email": "asha@example.com",
		"phone": "9876543210", "address": "12 MG Road",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "order-1", response["order_id"])
	require.Equal(t, "₹947.00", response["total_price_display"])

	w, response = s.do(t, http.MethodGet, "/v1/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), response["cart_count"])
}

func TestListBooks(t *testing.T) {
	s := newTestServer(t)

	w, response := s.do(t, http.MethodGet, "/v1/books", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list, ok := response["books"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2, "only available books are listed")
}

func TestListBooksInvalidLimit(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/v1/books?limit=zero", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/v1/books/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetOrderNotFound(t *testing.T) {
	s := newTestServer(t)

	w, _ := s.do(t, http.MethodGet, "/v1/orders/ghost", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
