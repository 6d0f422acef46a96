package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"bookstore-service/internal/books"
	"bookstore-service/internal/cart"
	"bookstore-service/pkg/ctxmanage"
	"bookstore-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) AddToCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	var request struct {
		BookID   string `json:"book_id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if request.BookID == "" || request.Quantity <= 0 {
		slog.Error("invalid book id or quantity", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Book ID and quantity must be valid"})
		return
	}

	book, err := h.catalog.GetBookByID(c.Request.Context(), request.BookID)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			slog.Error("book not found", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.BookID, request.BookID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Book not found or not available"})
			return
		}
		slog.Error("error fetching book", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.BookID, request.BookID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch book"})
		return
	}
	if !book.IsAvailable {
		slog.Error("book not available", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.BookID, request.BookID))
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Book not found or not available"})
		return
	}

	userCart, err := h.carts.Load(c.Request.Context(), sessionId)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	if err := userCart.Add(book, request.Quantity); err != nil {
		slog.Error("error adding book to cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.BookID, request.BookID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Quantity must be a positive integer"})
		return
	}

	if err := h.carts.Save(c.Request.Context(), sessionId, userCart); err != nil {
		slog.Error("error saving cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	slog.Info("book added to cart", slog.String(logkey.TraceID, traceId),
		slog.String(logkey.BookID, request.BookID), slog.Int("Quantity", request.Quantity))

	c.JSON(http.StatusOK, gin.H{
		"message":    "\"" + book.Title + "\" added to cart!",
		"cart_count": userCart.ItemCount(),
	})
}

func (h *Handler) UpdateCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	var request struct {
		BookID   string `json:"book_id"`
		Quantity int    `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if request.BookID == "" {
		slog.Error("missing book id", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Book ID is required"})
		return
	}

	userCart, err := h.carts.Load(c.Request.Context(), sessionId)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	if err := userCart.Update(request.BookID, request.Quantity); err != nil {
		if errors.Is(err, cart.ErrNotInCart) {
			slog.Error("book not in cart", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.BookID, request.BookID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Item not found in cart"})
			return
		}
		slog.Error("error updating cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid quantity"})
		return
	}

	if err := h.carts.Save(c.Request.Context(), sessionId, userCart); err != nil {
		slog.Error("error saving cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Cart updated",
		"cart_count": userCart.ItemCount(),
	})
}

// RemoveFromCart deletes one entry, or clears the whole cart when no book id
// is given. Removing an absent item succeeds silently.
func (h *Handler) RemoveFromCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	var request struct {
		BookID string `json:"book_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&request); err != nil {
			slog.Error("invalid request body", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.ERROR, err.Error()))
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
	}

	userCart, err := h.carts.Load(c.Request.Context(), sessionId)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	message := "Item removed from cart!"
	if request.BookID == "" {
		userCart.Clear()
		message = "Cart cleared"
	} else {
		userCart.Remove(request.BookID)
	}

	if err := h.carts.Save(c.Request.Context(), sessionId, userCart); err != nil {
		slog.Error("error saving cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"cart_count": userCart.ItemCount(),
	})
}

func (h *Handler) GetCart(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	sessionId := ctxmanage.GetSessionIdOfRequest(c)

	userCart, err := h.carts.Load(c.Request.Context(), sessionId)
	if err != nil {
		slog.Error("error loading cart", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.SessionID, sessionId), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load cart"})
		return
	}

	snapshot := userCart.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"cart_items":          snapshot.Items,
		"total_price":         snapshot.TotalPrice,
		"total_price_display": "₹" + snapshot.TotalPrice.StringFixed(2),
		"cart_count":          snapshot.ItemCount,
	})
}
