package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"meera-system/internal/database/models"
	"meera-system/internal/orders"
)

// Store is the gorm-backed implementation of orders.Store. The write
// side only ever runs inside RunInTx, so a half-applied order can never
// become visible.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ orders.Store = (*Store)(nil)

func (s *Store) RunInTx(ctx context.Context, fn func(tx orders.Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

// txStore implements orders.Tx against a single open transaction.
type txStore struct {
	db *gorm.DB
}

func (t *txStore) GetForSale(ctx context.Context, productID int64) (orders.ProductSnapshot, error) {
	var product models.Product
	// Row lock so a concurrent order cannot pass the stock check on the
	// same product before this transaction commits.
	err := t.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return orders.ProductSnapshot{}, &orders.ProductNotFoundError{ProductID: productID}
		}
		return orders.ProductSnapshot{}, err
	}

	sellPrice, err := decimal.NewFromString(product.SellPrice)
	if err != nil {
		return orders.ProductSnapshot{}, fmt.Errorf("product %d has malformed sell price %q: %w", productID, product.SellPrice, err)
	}
	costPrice, err := decimal.NewFromString(product.CostPrice)
	if err != nil {
		return orders.ProductSnapshot{}, fmt.Errorf("product %d has malformed cost price %q: %w", productID, product.CostPrice, err)
	}

	return orders.ProductSnapshot{
		ID:        product.ID,
		SKU:       product.SKU,
		StockQty:  int(product.StockQty),
		SellPrice: sellPrice,
		CostPrice: costPrice,
	}, nil
}

func (t *txStore) DecrementStock(ctx context.Context, productID int64, qty int) error {
	res := t.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND stock_qty >= ?", productID, qty).
		UpdateColumn("stock_qty", gorm.Expr("stock_qty - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var product models.Product
		if err := t.db.WithContext(ctx).First(&product, productID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &orders.ProductNotFoundError{ProductID: productID}
			}
			return err
		}
		return &orders.InsufficientStockError{SKU: product.SKU, Have: int(product.StockQty), Need: qty}
	}
	return nil
}

func (t *txStore) FindByPhone(ctx context.Context, phone string) (*orders.Customer, error) {
	var customer models.Customer
	err := t.db.WithContext(ctx).Where("phone = ?", phone).First(&customer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	c := toCustomer(customer)
	return &c, nil
}

func (t *txStore) Create(ctx context.Context, name, phone, address, date string) (orders.Customer, error) {
	existing, err := t.FindByPhone(ctx, phone)
	if err != nil {
		return orders.Customer{}, err
	}
	if existing != nil {
		return orders.Customer{}, &orders.ConflictError{Msg: fmt.Sprintf("customer with phone %s already exists", phone)}
	}

	customer := models.Customer{
		Name:       name,
		Phone:      phone,
		JoinedDate: date,
	}
	if address != "" {
		customer.Address = &address
	}
	if err := t.db.WithContext(ctx).Create(&customer).Error; err != nil {
		return orders.Customer{}, err
	}
	return toCustomer(customer), nil
}

func (t *txStore) FindOrCreate(ctx context.Context, name, phone, address, date string) (orders.Customer, error) {
	existing, err := t.FindByPhone(ctx, phone)
	if err != nil {
		return orders.Customer{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return t.Create(ctx, name, phone, address, date)
}

func (t *txStore) InsertOrder(ctx context.Context, order *orders.OrderRecord) error {
	row := models.Order{
		CustomerID:    order.CustomerID,
		Date:          order.Date,
		Subtotal:      order.Subtotal.StringFixed(2),
		TotalDiscount: order.TotalDiscount.StringFixed(2),
		TotalAmount:   order.TotalAmount.StringFixed(2),
		TotalProfit:   order.TotalProfit.StringFixed(2),
	}
	if err := t.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	order.ID = row.ID
	return nil
}

func (t *txStore) InsertOrderItem(ctx context.Context, item *orders.OrderItemRecord) error {
	row := models.OrderItem{
		OrderID:         item.OrderID,
		ProductID:       item.ProductID,
		Qty:             int32(item.Qty),
		MRP:             item.MRP.StringFixed(2),
		DiscountPercent: item.DiscountPercent.StringFixed(2),
		FinalPrice:      item.FinalPrice.StringFixed(2),
		Profit:          item.Profit.StringFixed(2),
	}
	return t.db.WithContext(ctx).Create(&row).Error
}

func (s *Store) GetInvoice(ctx context.Context, orderID int64) (*orders.Invoice, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Customer").
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_items.id")
		}).
		Preload("Items.Product").
		First(&order, orderID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, orders.ErrOrderNotFound
		}
		return nil, err
	}

	invoice := orders.Invoice{
		OrderID:       order.ID,
		Date:          order.Date,
		Subtotal:      mustDecimal(order.Subtotal),
		TotalDiscount: mustDecimal(order.TotalDiscount),
		TotalAmount:   mustDecimal(order.TotalAmount),
		TotalProfit:   mustDecimal(order.TotalProfit),
	}
	if order.Customer != nil {
		invoice.CustomerName = order.Customer.Name
		invoice.CustomerPhone = order.Customer.Phone
		if order.Customer.Address != nil {
			invoice.CustomerAddress = *order.Customer.Address
		}
	}

	invoice.Items = make([]orders.InvoiceItem, 0, len(order.Items))
	for _, item := range order.Items {
		out := orders.InvoiceItem{
			Qty:             int(item.Qty),
			MRP:             mustDecimal(item.MRP),
			DiscountPercent: mustDecimal(item.DiscountPercent),
			FinalPrice:      mustDecimal(item.FinalPrice),
			Profit:          mustDecimal(item.Profit),
		}
		if item.Product != nil {
			out.ProductName = item.Product.Name
			out.SKU = item.Product.SKU
			out.Image = imagePath(item.Product.Image)
		}
		invoice.Items = append(invoice.Items, out)
	}

	return &invoice, nil
}

type saleRow struct {
	Date        string
	ProductName string
	SKU         string
	Image       *string
	Qty         int32
	FinalPrice  string
	Profit      string
	StockAfter  int32
}

func (s *Store) ListSales(ctx context.Context, filter orders.SalesFilter) ([]orders.SaleRecord, error) {
	query := s.db.WithContext(ctx).
		Table("order_items AS oi").
		Select("o.date, p.name AS product_name, p.sku, p.image, oi.qty, oi.final_price, oi.profit, p.stock_qty AS stock_after").
		Joins("JOIN orders o ON oi.order_id = o.id").
		Joins("JOIN products p ON oi.product_id = p.id")

	if filter.From != "" {
		query = query.Where("o.date >= ?", filter.From)
	}
	if filter.To != "" {
		query = query.Where("o.date <= ?", filter.To)
	}
	if filter.Product != "" {
		pattern := "%" + strings.ToLower(filter.Product) + "%"
		query = query.Where("LOWER(p.name) LIKE ? OR LOWER(p.sku) LIKE ?", pattern, pattern)
	}

	var rows []saleRow
	if err := query.Order("o.date DESC, oi.id DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	records := make([]orders.SaleRecord, 0, len(rows))
	for _, r := range rows {
		qty := int(r.Qty)
		stockAfter := int(r.StockAfter)
		records = append(records, orders.SaleRecord{
			Date:        r.Date,
			ProductName: r.ProductName,
			SKU:         r.SKU,
			Image:       imagePath(r.Image),
			Qty:         qty,
			StockBefore: stockAfter + qty,
			StockAfter:  stockAfter,
			Total:       mustDecimal(r.FinalPrice),
			Profit:      mustDecimal(r.Profit),
		})
	}
	return records, nil
}

func toCustomer(c models.Customer) orders.Customer {
	out := orders.Customer{
		ID:    c.ID,
		Name:  c.Name,
		Phone: c.Phone,
	}
	if c.Address != nil {
		out.Address = *c.Address
	}
	return out
}

// mustDecimal parses money read back from our own rows; every writer
// goes through StringFixed(2), so a parse failure means data corruption
// and zero is the least-bad answer for a read path.
func mustDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func imagePath(image *string) string {
	if image == nil || *image == "" {
		return ""
	}
	path := *image
	if !strings.HasPrefix(path, "/uploads/") && !strings.HasPrefix(path, "http") {
		path = "/uploads/" + path
	}
	return path
}
