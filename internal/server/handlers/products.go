package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
	"meera-system/internal/utils"
)

type ProductHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *zap.Logger
}

func NewProductHandler(db *gorm.DB, rdb *redis.Client, log *zap.Logger) *ProductHandler {
	return &ProductHandler{db: db, redis: rdb, log: log}
}

type productRequest struct {
	Name      string          `json:"name" binding:"required"`
	Category  string          `json:"category" binding:"required"`
	Color     string          `json:"color" binding:"required"`
	Fabric    string          `json:"fabric" binding:"required"`
	Image     string          `json:"image"`
	CostPrice decimal.Decimal `json:"cost_price"`
	SellPrice decimal.Decimal `json:"sell_price"`
	StockQty  int             `json:"stock_qty"`
}

type productResponse struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Category  string `json:"category"`
	Color     string `json:"color"`
	Fabric    string `json:"fabric"`
	SKU       string `json:"sku"`
	Image     string `json:"image"`
	CostPrice string `json:"cost_price"`
	SellPrice string `json:"sell_price"`
	StockQty  int32  `json:"stock_qty"`
	CreatedAt string `json:"created_at"`
}

func toProductResponse(p models.Product) productResponse {
	image := ""
	if p.Image != nil {
		image = *p.Image
		if image != "" && !strings.HasPrefix(image, "/uploads/") && !strings.HasPrefix(image, "http") {
			image = "/uploads/" + image
		}
	}
	return productResponse{
		ID:        p.ID,
		Name:      p.Name,
		Category:  p.Category,
		Color:     p.Color,
		Fabric:    p.Fabric,
		SKU:       p.SKU,
		Image:     image,
		CostPrice: p.CostPrice,
		SellPrice: p.SellPrice,
		StockQty:  p.StockQty,
		CreatedAt: p.CreatedAt.Format("2006-01-02"),
	}
}

func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if h.redis != nil {
		if cached, err := h.redis.Get(ctx, ProductListCacheKey).Result(); err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	var products []models.Product
	if err := h.db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}

	if h.redis != nil {
		if payload, err := json.Marshal(out); err == nil {
			_ = h.redis.Set(ctx, ProductListCacheKey, payload, CacheTTLShort)
		}
	}

	c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) Search(c *gin.Context) {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		c.JSON(http.StatusOK, []productResponse{})
		return
	}

	pattern := "%" + strings.ToLower(q) + "%"
	var products []models.Product
	err := h.db.WithContext(c.Request.Context()).
		Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern).
		Order("name").
		Limit(20).
		Find(&products).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, category, color, fabric required"})
		return
	}

	ctx := c.Request.Context()

	// SKU collisions are possible with a random suffix; retry until free.
	var sku string
	for {
		sku = utils.GenerateSKU(req.Category, req.Color, req.Fabric)
		var existing models.Product
		err := h.db.WithContext(ctx).Where("sku = ?", sku).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			break
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
			return
		}
	}

	stockQty := req.StockQty
	if stockQty < 0 {
		stockQty = 0
	}

	product := models.Product{
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Color:     strings.TrimSpace(req.Color),
		Fabric:    strings.TrimSpace(req.Fabric),
		SKU:       sku,
		CostPrice: req.CostPrice.StringFixed(2),
		SellPrice: req.SellPrice.StringFixed(2),
		StockQty:  int32(stockQty),
		CreatedAt: time.Now(),
	}
	if req.Image != "" {
		product.Image = &req.Image
	}

	if err := h.db.WithContext(ctx).Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)
	h.log.Info("product created", zap.Int64("id", product.ID), zap.String("sku", sku))

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"id":         product.ID,
		"sku":        sku,
		"created_at": product.CreatedAt.Format("2006-01-02"),
	})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name, category, color, fabric required"})
		return
	}

	ctx := c.Request.Context()

	stockQty := req.StockQty
	if stockQty < 0 {
		stockQty = 0
	}

	updates := map[string]interface{}{
		"name":       strings.TrimSpace(req.Name),
		"category":   strings.TrimSpace(req.Category),
		"color":      strings.TrimSpace(req.Color),
		"fabric":     strings.TrimSpace(req.Fabric),
		"cost_price": req.CostPrice.StringFixed(2),
		"sell_price": req.SellPrice.StringFixed(2),
		"stock_qty":  stockQty,
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}

	res := h.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", c.Param("id")).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	res := h.db.WithContext(ctx).Delete(&models.Product{}, "id = ?", c.Param("id"))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	invalidateCatalogCaches(ctx, h.redis)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
