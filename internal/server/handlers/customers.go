package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"meera-system/internal/database/models"
)

type CustomerHandler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewCustomerHandler(db *gorm.DB, log *zap.Logger) *CustomerHandler {
	return &CustomerHandler{db: db, log: log}
}

type customerSummary struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Phone      string          `json:"phone"`
	Address    string          `json:"address"`
	JoinedDate string          `json:"created_at"`
	Orders     int64           `json:"orders"`
	TotalItems int64           `json:"total_items"`
	TotalSpent decimal.Decimal `json:"total_spent"`
}

func (h *CustomerHandler) List(c *gin.Context) {
	type row struct {
		ID         int64
		Name       string
		Phone      string
		Address    *string
		JoinedDate string
		Orders     int64
		TotalItems int64
		TotalSpent decimal.Decimal
	}

	var rows []row
	err := h.db.WithContext(c.Request.Context()).
		Table("customers AS c").
		Select(`c.id, c.name, c.phone, c.address, c.joined_date,
			COUNT(DISTINCT o.id) AS orders,
			COUNT(oi.id) AS total_items,
			COALESCE(SUM(CAST(oi.final_price AS numeric)), 0) AS total_spent`).
		Joins("LEFT JOIN orders o ON o.customer_id = c.id").
		Joins("LEFT JOIN order_items oi ON oi.order_id = o.id").
		Group("c.id").
		Order("c.created_at DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load customers"})
		return
	}

	out := make([]customerSummary, 0, len(rows))
	for _, r := range rows {
		address := ""
		if r.Address != nil {
			address = *r.Address
		}
		out = append(out, customerSummary{
			ID:         r.ID,
			Name:       r.Name,
			Phone:      r.Phone,
			Address:    address,
			JoinedDate: r.JoinedDate,
			Orders:     r.Orders,
			TotalItems: r.TotalItems,
			TotalSpent: r.TotalSpent,
		})
	}
	c.JSON(http.StatusOK, out)
}

type createCustomerRequest struct {
	Name    string `json:"name" binding:"required"`
	Phone   string `json:"phone" binding:"required"`
	Address string `json:"address"`
}

func (h *CustomerHandler) Create(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Name and Phone are required"})
		return
	}

	ctx := c.Request.Context()
	phone := strings.TrimSpace(req.Phone)

	var existing models.Customer
	if err := h.db.WithContext(ctx).Where("phone = ?", phone).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Customer with this phone already exists"})
		return
	}

	customer := models.Customer{
		Name:       strings.TrimSpace(req.Name),
		Phone:      phone,
		JoinedDate: time.Now().Format("2006-01-02"),
	}
	if address := strings.TrimSpace(req.Address); address != "" {
		customer.Address = &address
	}

	if err := h.db.WithContext(ctx).Create(&customer).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add customer"})
		return
	}

	h.log.Info("customer created", zap.Int64("id", customer.ID))
	c.JSON(http.StatusOK, gin.H{"success": true, "id": customer.ID})
}

type purchaseHistoryRow struct {
	OrderID         int64           `json:"order_id"`
	Date            string          `json:"date"`
	Qty             int32           `json:"qty"`
	Total           decimal.Decimal `json:"total"`
	MRP             decimal.Decimal `json:"mrp"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ProductName     string          `json:"product_name"`
	SKU             string          `json:"sku"`
	Image           string          `json:"image"`
}

func (h *CustomerHandler) History(c *gin.Context) {
	type row struct {
		OrderID         int64
		Date            string
		Qty             int32
		FinalPrice      string
		MRP             string `gorm:"column:mrp"`
		DiscountPercent string
		ProductName     string
		SKU             string
		Image           *string
	}

	var rows []row
	err := h.db.WithContext(c.Request.Context()).
		Table("orders AS o").
		Select(`o.id AS order_id, o.date, oi.qty, oi.final_price, oi.mrp, oi.discount_percent,
			p.name AS product_name, p.sku, p.image`).
		Joins("JOIN order_items oi ON oi.order_id = o.id").
		Joins("JOIN products p ON p.id = oi.product_id").
		Where("o.customer_id = ?", c.Param("id")).
		Order("o.date DESC, oi.id").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}

	out := make([]purchaseHistoryRow, 0, len(rows))
	for _, r := range rows {
		image := ""
		if r.Image != nil {
			image = *r.Image
			if image != "" && !strings.HasPrefix(image, "/uploads/") && !strings.HasPrefix(image, "http") {
				image = "/uploads/" + image
			}
		}
		out = append(out, purchaseHistoryRow{
			OrderID:         r.OrderID,
			Date:            r.Date,
			Qty:             r.Qty,
			Total:           parseMoney(r.FinalPrice),
			MRP:             parseMoney(r.MRP),
			DiscountPercent: parseMoney(r.DiscountPercent),
			ProductName:     r.ProductName,
			SKU:             r.SKU,
			Image:           image,
		})
	}
	c.JSON(http.StatusOK, out)
}

func parseMoney(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
