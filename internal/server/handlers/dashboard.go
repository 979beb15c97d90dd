package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
)

type DashboardHandler struct {
	db                *gorm.DB
	redis             *redis.Client
	log               *zap.Logger
	lowStockThreshold int
}

func NewDashboardHandler(db *gorm.DB, rdb *redis.Client, log *zap.Logger, lowStockThreshold int) *DashboardHandler {
	return &DashboardHandler{db: db, redis: rdb, log: log, lowStockThreshold: lowStockThreshold}
}

type dashboardSummary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalProfit   decimal.Decimal `json:"total_profit"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	Orders        int64           `json:"orders"`
	Customers     int64           `json:"customers"`
	Products      int64           `json:"products"`
	StockUnits    int64           `json:"stock_units"`
	LowStock      int64           `json:"low_stock"`
}

func (h *DashboardHandler) Summary(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		if cached, err := h.redis.Get(ctx, DashboardSummaryCacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	var summary dashboardSummary

	type orderTotals struct {
		Revenue decimal.Decimal
		Profit  decimal.Decimal
		Orders  int64
	}
	var ot orderTotals
	err := h.db.WithContext(ctx).Model(&models.Order{}).
		Select(`COALESCE(SUM(CAST(total_amount AS numeric)), 0) AS revenue,
			COALESCE(SUM(CAST(total_profit AS numeric)), 0) AS profit,
			COUNT(*) AS orders`).
		Scan(&ot).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	summary.TotalRevenue = ot.Revenue
	summary.TotalProfit = ot.Profit
	summary.Orders = ot.Orders

	var expenses decimal.Decimal
	err = h.db.WithContext(ctx).Model(&models.Expense{}).
		Select("COALESCE(SUM(CAST(amount AS numeric)), 0)").
		Scan(&expenses).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	summary.TotalExpenses = expenses
	summary.NetProfit = summary.TotalProfit.Sub(expenses)

	if err := h.db.WithContext(ctx).Model(&models.Customer{}).Count(&summary.Customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}

	type productTotals struct {
		Products   int64
		StockUnits int64
	}
	var pt productTotals
	err = h.db.WithContext(ctx).Model(&models.Product{}).
		Select("COUNT(*) AS products, COALESCE(SUM(stock_qty), 0) AS stock_units").
		Scan(&pt).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}
	summary.Products = pt.Products
	summary.StockUnits = pt.StockUnits

	err = h.db.WithContext(ctx).Model(&models.Product{}).
		Where("stock_qty <= ?", h.lowStockThreshold).
		Count(&summary.LowStock).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}

	if h.redis != nil {
		if payload, err := json.Marshal(summary); err == nil {
			_ = h.redis.Set(ctx, DashboardSummaryCacheKey, payload, CacheTTLShort)
		}
	}

	c.JSON(http.StatusOK, summary)
}
