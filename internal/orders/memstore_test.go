package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/shopspring/decimal"
)

// memStore is an in-memory Store with real transaction semantics: the
// whole RunInTx body runs under one lock against a snapshot, and any
// error restores the pre-transaction state.
type memStore struct {
	mu sync.Mutex

	products  map[int64]*memProduct
	customers []Customer
	orders    []OrderRecord
	items     []OrderItemRecord

	nextCustomerID int64
	nextOrderID    int64
}

type memProduct struct {
	id    int64
	name  string
	sku   string
	stock int
	sell  decimal.Decimal
	cost  decimal.Decimal
}

func newMemStore() *memStore {
	return &memStore{
		products:       make(map[int64]*memProduct),
		nextCustomerID: 1,
		nextOrderID:    1,
	}
}

func (s *memStore) addProduct(id int64, name, sku string, stock int, sell, cost decimal.Decimal) {
	s.products[id] = &memProduct{id: id, name: name, sku: sku, stock: stock, sell: sell, cost: cost}
}

func (s *memStore) stockOf(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].stock
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memStore) itemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *memStore) customerByPhone(phone string) *Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.customers {
		if s.customers[i].Phone == phone {
			c := s.customers[i]
			return &c
		}
	}
	return nil
}

type memSnapshot struct {
	products       map[int64]memProduct
	customers      []Customer
	orders         []OrderRecord
	items          []OrderItemRecord
	nextCustomerID int64
	nextOrderID    int64
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products:       make(map[int64]memProduct, len(s.products)),
		customers:      append([]Customer(nil), s.customers...),
		orders:         append([]OrderRecord(nil), s.orders...),
		items:          append([]OrderItemRecord(nil), s.items...),
		nextCustomerID: s.nextCustomerID,
		nextOrderID:    s.nextOrderID,
	}
	for id, p := range s.products {
		snap.products[id] = *p
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = make(map[int64]*memProduct, len(snap.products))
	for id, p := range snap.products {
		copied := p
		s.products[id] = &copied
	}
	s.customers = snap.customers
	s.orders = snap.orders
	s.items = snap.items
	s.nextCustomerID = snap.nextCustomerID
	s.nextOrderID = snap.nextOrderID
}

func (s *memStore) RunInTx(ctx context.Context, fn func(tx Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

type memTx struct {
	s *memStore
}

func (t *memTx) GetForSale(ctx context.Context, productID int64) (ProductSnapshot, error) {
	p, ok := t.s.products[productID]
	if !ok {
		return ProductSnapshot{}, &ProductNotFoundError{ProductID: productID}
	}
	return ProductSnapshot{
		ID:        p.id,
		SKU:       p.sku,
		StockQty:  p.stock,
		SellPrice: p.sell,
		CostPrice: p.cost,
	}, nil
}

func (t *memTx) DecrementStock(ctx context.Context, productID int64, qty int) error {
	p, ok := t.s.products[productID]
	if !ok {
		return &ProductNotFoundError{ProductID: productID}
	}
	if p.stock < qty {
		return &InsufficientStockError{SKU: p.sku, Have: p.stock, Need: qty}
	}
	p.stock -= qty
	return nil
}

func (t *memTx) FindByPhone(ctx context.Context, phone string) (*Customer, error) {
	for i := range t.s.customers {
		if t.s.customers[i].Phone == phone {
			c := t.s.customers[i]
			return &c, nil
		}
	}
	return nil, nil
}

func (t *memTx) Create(ctx context.Context, name, phone, address, date string) (Customer, error) {
	if existing, _ := t.FindByPhone(ctx, phone); existing != nil {
		return Customer{}, &ConflictError{Msg: "customer with phone " + phone + " already exists"}
	}
	customer := Customer{
		ID:      t.s.nextCustomerID,
		Name:    name,
		Phone:   phone,
		Address: address,
	}
	t.s.nextCustomerID++
	t.s.customers = append(t.s.customers, customer)
	return customer, nil
}

func (t *memTx) FindOrCreate(ctx context.Context, name, phone, address, date string) (Customer, error) {
	if existing, _ := t.FindByPhone(ctx, phone); existing != nil {
		return *existing, nil
	}
	return t.Create(ctx, name, phone, address, date)
}

func (t *memTx) InsertOrder(ctx context.Context, order *OrderRecord) error {
	order.ID = t.s.nextOrderID
	t.s.nextOrderID++
	t.s.orders = append(t.s.orders, *order)
	return nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, item *OrderItemRecord) error {
	t.s.items = append(t.s.items, *item)
	return nil
}

func (s *memStore) GetInvoice(ctx context.Context, orderID int64) (*Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var order *OrderRecord
	for i := range s.orders {
		if s.orders[i].ID == orderID {
			order = &s.orders[i]
			break
		}
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	invoice := &Invoice{
		OrderID:       order.ID,
		Date:          order.Date,
		Subtotal:      order.Subtotal,
		TotalDiscount: order.TotalDiscount,
		TotalAmount:   order.TotalAmount,
		TotalProfit:   order.TotalProfit,
	}
	for i := range s.customers {
		if s.customers[i].ID == order.CustomerID {
			invoice.CustomerName = s.customers[i].Name
			invoice.CustomerPhone = s.customers[i].Phone
			invoice.CustomerAddress = s.customers[i].Address
			break
		}
	}
	for _, item := range s.items {
		if item.OrderID != orderID {
			continue
		}
		out := InvoiceItem{
			Qty:             item.Qty,
			MRP:             item.MRP,
			DiscountPercent: item.DiscountPercent,
			FinalPrice:      item.FinalPrice,
			Profit:          item.Profit,
		}
		if p, ok := s.products[item.ProductID]; ok {
			out.ProductName = p.name
			out.SKU = p.sku
		}
		invoice.Items = append(invoice.Items, out)
	}
	return invoice, nil
}

func (s *memStore) ListSales(ctx context.Context, filter SalesFilter) ([]SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	dateOf := make(map[int64]string, len(s.orders))
	for _, o := range s.orders {
		dateOf[o.ID] = o.Date
	}

	records := make([]SaleRecord, 0, len(s.items))
	for idx := len(s.items) - 1; idx >= 0; idx-- {
		item := s.items[idx]
		date := dateOf[item.OrderID]
		if filter.From != "" && date < filter.From {
			continue
		}
		if filter.To != "" && date > filter.To {
			continue
		}
		p := s.products[item.ProductID]
		records = append(records, SaleRecord{
			Date:        date,
			ProductName: p.name,
			SKU:         p.sku,
			Qty:         item.Qty,
			StockBefore: p.stock + item.Qty,
			StockAfter:  p.stock,
			Total:       item.FinalPrice,
			Profit:      item.Profit,
		})
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Date > records[j].Date
	})
	return records, nil
}
