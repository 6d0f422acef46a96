package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"bookstore-service/internal/books"
	"bookstore-service/pkg/ctxmanage"
	"bookstore-service/pkg/logkey"

	"github.com/gin-gonic/gin"
)

func (h *Handler) ListBooks(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		slog.Error("invalid limit parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		slog.Error("invalid offset parameter", slog.String(logkey.TraceID, traceId))
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid offset parameter"})
		return
	}

	filters := books.ListFilters{
		Search:       c.Query("search"),
		CategorySlug: c.Query("category"),
		Limit:        limit,
		Offset:       offset,
	}

	list, err := h.catalog.ListAvailableBooks(c.Request.Context(), filters)
	if err != nil {
		slog.Error("error in fetching books", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch books"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"books": list})
}

func (h *Handler) GetBook(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)
	bookID := c.Param("id")

	book, err := h.catalog.GetBookByID(c.Request.Context(), bookID)
	if err != nil {
		if errors.Is(err, books.ErrBookNotFound) {
			slog.Error("book not found", slog.String(logkey.TraceID, traceId),
				slog.String(logkey.BookID, bookID))
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Book not found"})
			return
		}
		slog.Error("error in retrieving book", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.BookID, bookID), slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch book"})
		return
	}

	c.JSON(http.StatusOK, book)
}

func (h *Handler) ListCategories(c *gin.Context) {
	traceId := ctxmanage.GetTraceIdOfRequest(c)

	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		slog.Error("error in fetching categories", slog.String(logkey.TraceID, traceId),
			slog.String(logkey.ERROR, err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch categories"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}
