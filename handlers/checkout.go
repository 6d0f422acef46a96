package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"bookstore-service/internal/cart"
	"bookstore-service/internal/checkout"
	"bookstore-service/internal/orders"
	"bookstore-service/internal/stores/kafka"
	"bookstore-service/pkg/ctxmanage"
	"bookstore-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

// Checkout converts the session cart into a durable order. On any failure
// the cart is left intact so the client can retry; the cart is cleared only
// once the commit has durably succeeded.
func (h *Handler) Checkout(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	var details checkout.CustomerDetails
	if err := c.ShouldBindJSON(&details); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	userCart, err := h.carts.Load(c.Request.Context(), sessionId)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	snapshot := userCart.Snapshot()
	result, err := h.engine.Commit(c.Request.Context(), snapshot, details)
	if err != nil {
		h.renderCheckoutError(c, traceId, err)
		return
	}

	// The order is durable; clearing the cart happens exactly once, here.
	userCart.Clear()
	if err := h.carts.Save(c.Request.Context(), sessionId, userCart); err != nil {
		// The order exists either way, so report success but log the leak.
		slog.Error("error clearing cart after checkout", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
	}

	slog.Info("order placed", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.OrderID, result.OrderID),
		slog.String("Total", result.TotalPrice.StringFixed(2)))

	h.publishOrderPlaced(traceId, result, snapshot, details)

	c.JSON(http.StatusOK, gin.H{
		"order_id":            result.OrderID,
		"total_price":         result.TotalPrice,
		"total_price_display": "₹" + result.TotalPrice.StringFixed(2),
		"message":             "Order placed successfully!",
	})
}

func (h *Handler) renderCheckoutError(c *gin.Context, traceId string, err error) {
	var invalid *checkout.InvalidInputError
	var unavailable *checkout.UnavailableError

	switch {
	case errors.Is(err, checkout.ErrEmptyCart):
		slog.Error("checkout with empty cart", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty"})

	case errors.As(err, &invalid):
		slog.Error("checkout validation failed", slog.String(logkey.TraceID, traceId),
			slog.String("Field", invalid.Field), slog.String(logkey.ERROR, invalid.Reason))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": invalid.Error()})

	case errors.As(err, &unavailable):
		slog.Error("books unavailable at commit", slog.String(logkey.TraceID, traceId),
			slog.Any("BookIDs", unavailable.BookIDs))
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":    "Some books in your cart are no longer available",
			"book_ids": unavailable.BookIDs,
		})

	case errors.Is(err, checkout.ErrCommitFailed):
		slog.Error("checkout commit failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order, please retry"})

	default:
		slog.Error("checkout failed", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to place order"})
	}
}

// publishOrderPlaced emits the order event for downstream consumers. The
// order is already committed, so a publish failure is logged and swallowed.
func (h *Handler) publishOrderPlaced(traceId string, result checkout.Result,
	snapshot cart.Snapshot, details checkout.CustomerDetails) {
	if h.k == nil {
		return
	}

	event := kafka.OrderPlacedEvent{
		OrderID:       result.OrderID,
		CustomerEmail: details.Email,
		TotalPrice:    result.TotalPrice.StringFixed(2),
		CreatedAt:     time.Now().UTC(),
	}
	for _, item := range snapshot.Items {
		event.Items = append(event.Items, kafka.OrderPlacedItem{
			BookID:    item.BookID,
			Title:     item.Title,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.StringFixed(2),
		})
	}

	go func() {
		jsonData, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal order placed event",
				slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		if err := h.k.ProduceMessage(kafka.TopicOrderPlaced, []byte(result.OrderID), jsonData); err != nil {
			slog.Error("failed to produce order placed event",
				slog.String(logkey.TraceID, traceId), slog.String(logkey.ERROR, err.Error()))
			return
		}
		slog.Info("order placed event produced", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, result.OrderID))
	}()
}

func (h *Handler) GetOrder(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	orderID := c.Param("id")

	order, err := h.orders.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			slog.Error("order not found", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.OrderID, orderID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		slog.Error("error in retrieving order", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.OrderID, orderID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) ListOrders(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit <= 0 {
		slog.Error("invalid limit parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}

	list, err := h.orders.ListRecentOrders(c.Request.Context(), limit)
	if err != nil {
		slog.Error("error in fetching orders", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}
