package orders

import (
	"context"

	"github.com/shopspring/decimal"
)

type CustomerInfo struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type OrderLine struct {
	ProductID       int64           `json:"product_id"`
	Qty             int             `json:"qty"`
	MRP             decimal.Decimal `json:"mrp"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	FinalPrice      decimal.Decimal `json:"finalPrice"`
}

type PlaceOrderRequest struct {
	Date     string       `json:"date"`
	Customer CustomerInfo `json:"customer"`
	Items    []OrderLine  `json:"items"`
}

type PlaceOrderResult struct {
	OrderID    int64
	CustomerID int64
}

// ProductSnapshot is the sale-relevant view of a product, read at
// transaction start.
type ProductSnapshot struct {
	ID        int64
	SKU       string
	StockQty  int
	SellPrice decimal.Decimal
	CostPrice decimal.Decimal
}

type Customer struct {
	ID      int64
	Name    string
	Phone   string
	Address string
}

// OrderRecord is the order header handed to the write side. ID is filled
// in by InsertOrder.
type OrderRecord struct {
	ID            int64
	CustomerID    int64
	Date          string
	Subtotal      decimal.Decimal
	TotalDiscount decimal.Decimal
	TotalAmount   decimal.Decimal
	TotalProfit   decimal.Decimal
}

type OrderItemRecord struct {
	OrderID         int64
	ProductID       int64
	Qty             int
	MRP             decimal.Decimal
	DiscountPercent decimal.Decimal
	FinalPrice      decimal.Decimal
	Profit          decimal.Decimal
}

type Invoice struct {
	OrderID         int64           `json:"id"`
	Date            string          `json:"date"`
	Subtotal        decimal.Decimal `json:"subtotal"`
	TotalDiscount   decimal.Decimal `json:"total_discount"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	TotalProfit     decimal.Decimal `json:"total_profit"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	Items           []InvoiceItem   `json:"items"`
}

type InvoiceItem struct {
	ProductName     string          `json:"product_name"`
	SKU             string          `json:"sku"`
	Image           string          `json:"image"`
	Qty             int             `json:"qty"`
	MRP             decimal.Decimal `json:"mrp"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	FinalPrice      decimal.Decimal `json:"final_price"`
	Profit          decimal.Decimal `json:"profit"`
}

// SalesFilter narrows the flattened sales listing. Date bounds are
// inclusive; Product matches a case-insensitive substring of the product
// name or SKU.
type SalesFilter struct {
	From    string
	To      string
	Product string
}

// SaleRecord is one order item joined with its order and product.
type SaleRecord struct {
	Date        string          `json:"date"`
	ProductName string          `json:"product_name"`
	SKU         string          `json:"sku"`
	Image       string          `json:"image"`
	Qty         int             `json:"qty"`
	StockBefore int             `json:"stock_before"`
	StockAfter  int             `json:"stock_after"`
	Total       decimal.Decimal `json:"total"`
	Profit      decimal.Decimal `json:"profit"`
}

// InventoryLedger holds authoritative stock and pricing per product.
type InventoryLedger interface {
	// GetForSale reads the product snapshot used for validation and
	// pricing. Implementations must make the read part of the enclosing
	// transaction so the stock value cannot be decremented concurrently
	// between check and DecrementStock.
	GetForSale(ctx context.Context, productID int64) (ProductSnapshot, error)

	// DecrementStock applies only if current stock >= qty and returns
	// *InsufficientStockError otherwise.
	DecrementStock(ctx context.Context, productID int64, qty int) error
}

// CustomerDirectory maps a phone number to a customer record.
type CustomerDirectory interface {
	FindByPhone(ctx context.Context, phone string) (*Customer, error)

	// Create fails with *ConflictError if the phone already exists.
	Create(ctx context.Context, name, phone, address, date string) (Customer, error)

	// FindOrCreate returns the existing record for the phone, without
	// touching its name or address, or creates a new one dated with the
	// order date.
	FindOrCreate(ctx context.Context, name, phone, address, date string) (Customer, error)
}

// OrderWriter persists the order header and its line items.
type OrderWriter interface {
	InsertOrder(ctx context.Context, order *OrderRecord) error
	InsertOrderItem(ctx context.Context, item *OrderItemRecord) error
}

// Tx is the unit-of-work handed to the order transaction body. Every
// mutation made through it becomes visible atomically on commit.
type Tx interface {
	InventoryLedger
	CustomerDirectory
	OrderWriter
}

// OrderReader is the store's read side.
type OrderReader interface {
	// GetInvoice returns the order with resolved customer fields and
	// items in insertion order, or ErrOrderNotFound.
	GetInvoice(ctx context.Context, orderID int64) (*Invoice, error)

	// ListSales returns flattened sale records ordered by date
	// descending, then item insertion order descending.
	ListSales(ctx context.Context, filter SalesFilter) ([]SaleRecord, error)
}

// Store is the persistence boundary the engine is constructed with.
type Store interface {
	OrderReader

	// RunInTx executes fn atomically: either every mutation fn makes
	// through the Tx commits, or none do.
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}
