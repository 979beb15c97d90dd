package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"meera-system/internal/orders"
)

// OrderService is what the boundary needs from the order transaction
// engine.
type OrderService interface {
	PlaceOrder(ctx context.Context, req orders.PlaceOrderRequest) (orders.PlaceOrderResult, error)
	GetInvoice(ctx context.Context, orderID int64) (*orders.Invoice, error)
	ListSales(ctx context.Context, filter orders.SalesFilter) ([]orders.SaleRecord, error)
}

type SalesHandler struct {
	orders OrderService
	redis  *redis.Client
	log    *zap.Logger
}

func NewSalesHandler(svc OrderService, rdb *redis.Client, log *zap.Logger) *SalesHandler {
	return &SalesHandler{orders: svc, redis: rdb, log: log}
}

func (h *SalesHandler) List(c *gin.Context) {
	filter := orders.SalesFilter{
		From:    c.Query("from"),
		To:      c.Query("to"),
		Product: c.Query("product"),
	}

	records, err := h.orders.ListSales(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load sales"})
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *SalesHandler) Create(c *gin.Context) {
	var req orders.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing required fields: date, customer, or items array"})
		return
	}

	ctx := c.Request.Context()
	result, err := h.orders.PlaceOrder(ctx, req)
	if err != nil {
		c.JSON(statusForOrderError(err), gin.H{"error": err.Error()})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"order_id": result.OrderID,
	})
}

func (h *SalesHandler) Invoice(c *gin.Context) {
	orderID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	invoice, err := h.orders.GetInvoice(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, orders.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load invoice"})
		return
	}
	c.JSON(http.StatusOK, invoice)
}

func statusForOrderError(err error) int {
	var validation *orders.ValidationError
	var notFound *orders.ProductNotFoundError
	var stock *orders.InsufficientStockError
	var conflict *orders.ConflictError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &stock), errors.As(err, &conflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
