package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
)

type ExpenseHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

func NewExpenseHandler(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *ExpenseHandler {
	return &ExpenseHandler{db: db, redis: rdb, log: log}
}

type expenseRequest struct {
	Date     string          `json:"date" binding:"required"`
	Category string          `json:"category" binding:"required"`
	Amount   decimal.Decimal `json:"amount"`
	Note     string          `json:"note"`
}

type expenseResponse struct {
	ID       int64  `json:"id"`
	Date     string `json:"date"`
	Category string `json:"category"`
	Amount   string `json:"amount"`
	Note     string `json:"note"`
}

func (h *ExpenseHandler) List(c *gin.Context) {
	query := h.db.WithContext(c.Request.Context()).Model(&models.Expense{})

	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var expenses []models.Expense
	if err := query.Order("date DESC, id DESC").Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load expenses"})
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		note := ""
		if e.Note != nil {
			note = *e.Note
		}
		out = append(out, expenseResponse{
			ID:       e.ID,
			Date:     e.Date,
			Category: e.Category,
			Amount:   e.Amount,
			Note:     note,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *ExpenseHandler) Create(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date and category required"})
		return
	}

	ctx := c.Request.Context()
	expense := models.Expense{
		Date:     req.Date,
		Category: strings.TrimSpace(req.Category),
		Amount:   req.Amount.StringFixed(2),
	}
	if note := strings.TrimSpace(req.Note); note != "" {
		expense.Note = &note
	}

	if err := h.db.WithContext(ctx).Create(&expense).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add expense"})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)
	c.JSON(http.StatusOK, gin.H{"success": true, "id": expense.ID})
}

func (h *ExpenseHandler) Update(c *gin.Context) {
	var req expenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Date and category required"})
		return
	}

	ctx := c.Request.Context()
	updates := map[string]interface{}{
		"date":     req.Date,
		"category": strings.TrimSpace(req.Category),
		"amount":   req.Amount.StringFixed(2),
		"note":     strings.TrimSpace(req.Note),
	}

	res := h.db.WithContext(ctx).Model(&models.Expense{}).Where("id = ?", c.Param("id")).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update expense"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Expense not found"})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
