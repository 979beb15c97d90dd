package orders

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func d(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func testCustomer() CustomerInfo {
	return CustomerInfo{Name: "Asha", Phone: "9999999999", Address: "12 Hill Road"}
}

func TestPlaceOrderTotals(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 1, Qty: 3, MRP: d("100"), DiscountPercent: d("10"), FinalPrice: d("270")},
		},
	})
	require.NoError(t, err)
	require.NotZero(t, result.OrderID)
	require.NotZero(t, result.CustomerID)

	assert.Equal(t, 7, store.stockOf(1))

	invoice, err := engine.GetInvoice(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.True(t, invoice.Subtotal.Equal(d("300")), "subtotal = %s", invoice.Subtotal)
	assert.True(t, invoice.TotalDiscount.Equal(d("30")), "discount = %s", invoice.TotalDiscount)
	assert.True(t, invoice.TotalAmount.Equal(d("270")), "amount = %s", invoice.TotalAmount)
	assert.True(t, invoice.TotalProfit.Equal(d("90")), "profit = %s", invoice.TotalProfit)
	assert.Equal(t, "Asha", invoice.CustomerName)
	assert.Equal(t, "9999999999", invoice.CustomerPhone)
	require.Len(t, invoice.Items, 1)
	assert.Equal(t, "LX-KU-BL-LI-1001", invoice.Items[0].SKU)
	assert.True(t, invoice.Items[0].Profit.Equal(d("90")))
}

func TestPlaceOrderMultiItem(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	store.addProduct(2, "Cotton Saree", "LX-SA-RE-CO-2002", 4, d("250"), d("150"))
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 1, Qty: 2, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("200")},
			{ProductID: 2, Qty: 1, MRP: d("250"), DiscountPercent: d("20"), FinalPrice: d("200")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, 8, store.stockOf(1))
	assert.Equal(t, 3, store.stockOf(2))

	invoice, err := engine.GetInvoice(context.Background(), result.OrderID)
	require.NoError(t, err)
	assert.True(t, invoice.Subtotal.Equal(d("450")))
	assert.True(t, invoice.TotalDiscount.Equal(d("50")))
	assert.True(t, invoice.TotalAmount.Equal(d("400")))
	assert.True(t, invoice.TotalProfit.Equal(d("130")))
	require.Len(t, invoice.Items, 2)
	assert.Equal(t, "LX-KU-BL-LI-1001", invoice.Items[0].SKU)
	assert.Equal(t, "LX-SA-RE-CO-2002", invoice.Items[1].SKU)
}

func TestPlaceOrderInsufficientStock(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 2, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 1, Qty: 5, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("500")},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "LX-KU-BL-LI-1001", stockErr.SKU)
	assert.Equal(t, 2, stockErr.Have)
	assert.Equal(t, 5, stockErr.Need)

	assert.Equal(t, 2, store.stockOf(1), "stock must be untouched")
	assert.Zero(t, store.orderCount(), "no order row may survive")
	assert.Zero(t, store.itemCount())
}

func TestPlaceOrderRollsBackEarlierItems(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	store.addProduct(2, "Cotton Saree", "LX-SA-RE-CO-2002", 1, d("250"), d("150"))
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 1, Qty: 4, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("400")},
			{ProductID: 2, Qty: 3, MRP: d("250"), DiscountPercent: d("0"), FinalPrice: d("750")},
		},
	})

	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)

	assert.Equal(t, 10, store.stockOf(1), "first item's decrement must be rolled back")
	assert.Equal(t, 1, store.stockOf(2))
	assert.Zero(t, store.orderCount())
	assert.Zero(t, store.itemCount())
	assert.Nil(t, store.customerByPhone("9999999999"), "customer created in the failed transaction must not persist")
}

func TestPlaceOrderUnknownProduct(t *testing.T) {
	store := newMemStore()
	engine := NewEngine(store, zap.NewNop())

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 42, Qty: 1, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("100")},
		},
	})

	var notFound *ProductNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, int64(42), notFound.ProductID)
}

func TestPlaceOrderValidation(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	validItem := OrderLine{ProductID: 1, Qty: 1, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("100")}

	tests := []struct {
		name  string
		req   PlaceOrderRequest
		field string
	}{
		{
			name:  "missing date",
			req:   PlaceOrderRequest{Customer: testCustomer(), Items: []OrderLine{validItem}},
			field: "date",
		},
		{
			name:  "malformed date",
			req:   PlaceOrderRequest{Date: "30-08-2026", Customer: testCustomer(), Items: []OrderLine{validItem}},
			field: "date",
		},
		{
			name:  "missing phone",
			req:   PlaceOrderRequest{Date: "2026-08-30", Customer: CustomerInfo{Name: "Asha"}, Items: []OrderLine{validItem}},
			field: "customer.phone",
		},
		{
			name:  "missing name",
			req:   PlaceOrderRequest{Date: "2026-08-30", Customer: CustomerInfo{Phone: "9999999999"}, Items: []OrderLine{validItem}},
			field: "customer.name",
		},
		{
			name:  "empty cart",
			req:   PlaceOrderRequest{Date: "2026-08-30", Customer: testCustomer()},
			field: "items",
		},
		{
			name: "zero qty",
			req: PlaceOrderRequest{Date: "2026-08-30", Customer: testCustomer(),
				Items: []OrderLine{{ProductID: 1, Qty: 0, MRP: d("100"), FinalPrice: d("100")}}},
			field: "items.qty",
		},
		{
			name: "discount above hundred",
			req: PlaceOrderRequest{Date: "2026-08-30", Customer: testCustomer(),
				Items: []OrderLine{{ProductID: 1, Qty: 1, MRP: d("100"), DiscountPercent: d("101"), FinalPrice: d("0")}}},
			field: "items.discountPercent",
		},
		{
			name: "negative final price",
			req: PlaceOrderRequest{Date: "2026-08-30", Customer: testCustomer(),
				Items: []OrderLine{{ProductID: 1, Qty: 1, MRP: d("100"), FinalPrice: d("-1")}}},
			field: "items.finalPrice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.PlaceOrder(context.Background(), tt.req)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.field, vErr.Field)
			assert.Zero(t, store.orderCount())
		})
	}
}

func TestPlaceOrderReusesCustomerByPhone(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	first, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-29",
		Customer: CustomerInfo{Name: "Asha", Phone: "9999999999"},
		Items: []OrderLine{
			{ProductID: 1, Qty: 1, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("100")},
		},
	})
	require.NoError(t, err)

	second, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: CustomerInfo{Name: "Asha K", Phone: "9999999999", Address: "new address"},
		Items: []OrderLine{
			{ProductID: 1, Qty: 1, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("100")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, first.CustomerID, second.CustomerID, "same phone must resolve to the same customer")

	customer := store.customerByPhone("9999999999")
	require.NotNil(t, customer)
	assert.Equal(t, "Asha", customer.Name, "stored profile must not change on repeat orders")
	assert.Empty(t, customer.Address)
}

func TestPlaceOrderMRPAboveToleranceStillSucceeds(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop(), WithMRPTolerance(10))

	_, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 1, Qty: 1, MRP: d("200"), DiscountPercent: d("0"), FinalPrice: d("200")},
		},
	})
	require.NoError(t, err, "an out-of-tolerance price is logged, never rejected")
	assert.Equal(t, 9, store.stockOf(1))
}

func TestGetInvoiceRepeatableAndStable(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	store.addProduct(2, "Cotton Saree", "LX-SA-RE-CO-2002", 10, d("250"), d("150"))
	engine := NewEngine(store, zap.NewNop())

	result, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
		Date:     "2026-08-30",
		Customer: testCustomer(),
		Items: []OrderLine{
			{ProductID: 2, Qty: 1, MRP: d("250"), DiscountPercent: d("0"), FinalPrice: d("250")},
			{ProductID: 1, Qty: 2, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("200")},
		},
	})
	require.NoError(t, err)

	first, err := engine.GetInvoice(context.Background(), result.OrderID)
	require.NoError(t, err)
	second, err := engine.GetInvoice(context.Background(), result.OrderID)
	require.NoError(t, err)

	require.Len(t, first.Items, 2)
	assert.Equal(t, first.Items[0].SKU, second.Items[0].SKU, "item order must be stable across reads")
	assert.Equal(t, first.Items[1].SKU, second.Items[1].SKU)
	assert.Equal(t, "LX-SA-RE-CO-2002", first.Items[0].SKU, "items keep cart order")
}

func TestGetInvoiceUnknownOrder(t *testing.T) {
	engine := NewEngine(newMemStore(), zap.NewNop())

	_, err := engine.GetInvoice(context.Background(), 404)
	require.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListSalesDateFilter(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 10, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	for _, date := range []string{"2026-08-01", "2026-08-15", "2026-08-30"} {
		_, err := engine.PlaceOrder(context.Background(), PlaceOrderRequest{
			Date:     date,
			Customer: testCustomer(),
			Items: []OrderLine{
				{ProductID: 1, Qty: 1, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("100")},
			},
		})
		require.NoError(t, err)
	}

	records, err := engine.ListSales(context.Background(), SalesFilter{From: "2026-08-15", To: "2026-08-15"})
	require.NoError(t, err)
	require.Len(t, records, 1, "date bounds are inclusive")
	assert.Equal(t, "2026-08-15", records[0].Date)

	all, err := engine.ListSales(context.Background(), SalesFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-08-30", all[0].Date, "newest first")
	assert.Equal(t, "2026-08-01", all[2].Date)
}

func TestConcurrentOrdersSameProduct(t *testing.T) {
	store := newMemStore()
	store.addProduct(1, "Linen Kurta", "LX-KU-BL-LI-1001", 5, d("100"), d("60"))
	engine := NewEngine(store, zap.NewNop())

	req := func(phone string) PlaceOrderRequest {
		return PlaceOrderRequest{
			Date:     "2026-08-30",
			Customer: CustomerInfo{Name: "Buyer", Phone: phone},
			Items: []OrderLine{
				{ProductID: 1, Qty: 4, MRP: d("100"), DiscountPercent: d("0"), FinalPrice: d("400")},
			},
		}
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, phone := range []string{"1111111111", "2222222222"} {
		wg.Add(1)
		go func(i int, phone string) {
			defer wg.Done()
			_, errs[i] = engine.PlaceOrder(context.Background(), req(phone))
		}(i, phone)
	}
	wg.Wait()

	var succeeded, failed int
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		failed++
		var stockErr *InsufficientStockError
		require.True(t, errors.As(err, &stockErr), "loser must fail with a stock error, got %v", err)
	}
	assert.Equal(t, 1, succeeded, "exactly one order may win the remaining stock")
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, store.stockOf(1))
	assert.Equal(t, 1, store.orderCount())
}
