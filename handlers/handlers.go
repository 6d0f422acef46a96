package handlers

import (
	"context"
	"net/http"
	"os"

	"bookstore-service/internal/books"
	"bookstore-service/internal/cart"
	"bookstore-service/internal/checkout"
	"bookstore-service/internal/orders"
	"bookstore-service/internal/stores/kafka"
	"bookstore-service/middleware"

	"github.com/gin-gonic/gin"
)

// CatalogStore is the read side of the catalog as the HTTP layer needs it.
type CatalogStore interface {
	GetBookByID(ctx context.Context, bookID string) (books.Book, error)
	ListAvailableBooks(ctx context.Context, filters books.ListFilters) ([]books.Book, error)
	ListCategories(ctx context.Context) ([]books.Category, error)
}

// OrderReader serves the confirmation and history views.
type OrderReader interface {
	GetOrderByID(ctx context.Context, orderID string) (orders.Order, error)
	ListRecentOrders(ctx context.Context, limit int) ([]orders.Order, error)
}

type Handler struct {
	catalog CatalogStore
	carts   cart.Store
	engine  *checkout.Engine
	orders  OrderReader
	k       *kafka.Conf // nil disables event publishing
}

func NewHandler(catalog CatalogStore, carts cart.Store, engine *checkout.Engine,
	orderReader OrderReader, k *kafka.Conf) *Handler {
	return &Handler{
		catalog: catalog,
		carts:   carts,
		engine:  engine,
		orders:  orderReader,
		k:       k,
	}
}

func API(endpointPrefix string, mid *middleware.Mid, catalog CatalogStore, carts cart.Store,
	engine *checkout.Engine, orderReader OrderReader, k *kafka.Conf) *gin.Engine {

	r := gin.New()
	mode := os.Getenv("GIN_MODE")
	if mode == gin.ReleaseMode {
		gin.SetMode(mode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	h := NewHandler(catalog, carts, engine, orderReader, k)

	r.Use(middleware.TraceID(), middleware.Logger(), gin.Recovery())
	r.GET("/ping", healthCheck)

	v1 := r.Group(endpointPrefix)
	{
		v1.Use(mid.Session())
		v1.GET("/books", h.ListBooks)
		v1.GET("/books/:id", h.GetBook)
		v1.GET("/categories", h.ListCategories)

		v1.POST("/cart/add", h.AddToCart)
		v1.PUT("/cart/update", h.UpdateCart)
		v1.POST("/cart/remove", h.RemoveFromCart)
		v1.GET("/cart", h.GetCart)

		v1.POST("/checkout", h.Checkout)
		v1.GET("/orders", h.ListOrders)
		v1.GET("/orders/:id", h.GetOrder)
	}

	return r
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
