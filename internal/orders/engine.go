package orders

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var hundred = decimal.NewFromInt(100)

// Engine runs the order-placement transaction: validate the cart,
// resolve the customer, decrement stock, compute totals and persist the
// order with its items as one atomic unit.
type Engine struct {
	store        Store
	log          *zap.Logger
	mrpTolerance decimal.Decimal
}

type Option func(*Engine)

// WithMRPTolerance sets how far (in percent) a submitted unit price may
// exceed the product's current sell price before the engine logs a
// warning. The order is never rejected for this.
func WithMRPTolerance(percent int) Option {
	return func(e *Engine) {
		e.mrpTolerance = decimal.NewFromInt(int64(percent)).Div(hundred)
	}
}

func NewEngine(store Store, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		store:        store,
		log:          log,
		mrpTolerance: decimal.NewFromInt(20).Div(hundred),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (PlaceOrderResult, error) {
	if err := validatePlaceOrder(req); err != nil {
		return PlaceOrderResult{}, err
	}

	var result PlaceOrderResult
	err := e.store.RunInTx(ctx, func(tx Tx) error {
		customer, err := tx.FindOrCreate(ctx, req.Customer.Name, req.Customer.Phone, req.Customer.Address, req.Date)
		if err != nil {
			return err
		}

		subtotal := decimal.Zero
		totalDiscount := decimal.Zero
		totalAmount := decimal.Zero
		totalProfit := decimal.Zero
		profits := make([]decimal.Decimal, len(req.Items))

		for i, item := range req.Items {
			product, err := tx.GetForSale(ctx, item.ProductID)
			if err != nil {
				return err
			}

			if item.Qty > product.StockQty {
				return &InsufficientStockError{SKU: product.SKU, Have: product.StockQty, Need: item.Qty}
			}

			ceiling := product.SellPrice.Mul(decimal.NewFromInt(1).Add(e.mrpTolerance))
			if item.MRP.GreaterThan(ceiling) {
				e.log.Warn("submitted mrp exceeds current sell price tolerance",
					zap.String("sku", product.SKU),
					zap.String("mrp", item.MRP.String()),
					zap.String("sell_price", product.SellPrice.String()))
			}

			qty := decimal.NewFromInt(int64(item.Qty))
			lineGross := item.MRP.Mul(qty)
			profit := item.FinalPrice.Sub(product.CostPrice.Mul(qty))
			profits[i] = profit

			subtotal = subtotal.Add(lineGross)
			totalDiscount = totalDiscount.Add(lineGross.Mul(item.DiscountPercent).Div(hundred))
			totalAmount = totalAmount.Add(item.FinalPrice)
			totalProfit = totalProfit.Add(profit)

			if err := tx.DecrementStock(ctx, item.ProductID, item.Qty); err != nil {
				return err
			}
		}

		order := OrderRecord{
			CustomerID:    customer.ID,
			Date:          req.Date,
			Subtotal:      subtotal,
			TotalDiscount: totalDiscount,
			TotalAmount:   totalAmount,
			TotalProfit:   totalProfit,
		}
		if err := tx.InsertOrder(ctx, &order); err != nil {
			return err
		}

		for i, item := range req.Items {
			record := OrderItemRecord{
				OrderID:         order.ID,
				ProductID:       item.ProductID,
				Qty:             item.Qty,
				MRP:             item.MRP,
				DiscountPercent: item.DiscountPercent,
				FinalPrice:      item.FinalPrice,
				Profit:          profits[i],
			}
			if err := tx.InsertOrderItem(ctx, &record); err != nil {
				return err
			}
		}

		result = PlaceOrderResult{OrderID: order.ID, CustomerID: customer.ID}
		return nil
	})
	if err != nil {
		return PlaceOrderResult{}, err
	}

	e.log.Info("order placed",
		zap.Int64("order_id", result.OrderID),
		zap.Int64("customer_id", result.CustomerID),
		zap.Int("items", len(req.Items)))

	return result, nil
}

func (e *Engine) GetInvoice(ctx context.Context, orderID int64) (*Invoice, error) {
	return e.store.GetInvoice(ctx, orderID)
}

func (e *Engine) ListSales(ctx context.Context, filter SalesFilter) ([]SaleRecord, error) {
	return e.store.ListSales(ctx, filter)
}

func validatePlaceOrder(req PlaceOrderRequest) error {
	if req.Date == "" {
		return &ValidationError{Field: "date", Msg: "required"}
	}
	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return &ValidationError{Field: "date", Msg: "must be yyyy-mm-dd"}
	}
	if req.Customer.Name == "" {
		return &ValidationError{Field: "customer.name", Msg: "required"}
	}
	if req.Customer.Phone == "" {
		return &ValidationError{Field: "customer.phone", Msg: "required"}
	}
	if len(req.Items) == 0 {
		return &ValidationError{Field: "items", Msg: "at least one item required"}
	}

	for _, item := range req.Items {
		if item.ProductID <= 0 {
			return &ValidationError{Field: "items.product_id", Msg: "required"}
		}
		if item.Qty < 1 {
			return &ValidationError{Field: "items.qty", Msg: "must be at least 1"}
		}
		if item.MRP.IsNegative() {
			return &ValidationError{Field: "items.mrp", Msg: "must not be negative"}
		}
		if item.DiscountPercent.IsNegative() || item.DiscountPercent.GreaterThan(hundred) {
			return &ValidationError{Field: "items.discountPercent", Msg: "must be between 0 and 100"}
		}
		if item.FinalPrice.IsNegative() {
			return &ValidationError{Field: "items.finalPrice", Msg: "must not be negative"}
		}
	}
	return nil
}
