package models

import "time"

// Money columns are stored as fixed-point strings and parsed with
// shopspring/decimal wherever arithmetic happens. Business dates
// (order date, expense date) are ISO yyyy-mm-dd strings so inclusive
// range filters stay plain string comparisons.

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Username  string `gorm:"type:varchar(64);uniqueIndex;not null"`
	Password  string `gorm:"not null"`
	CreatedAt time.Time
}

type Product struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Name      string  `gorm:"type:varchar(128);not null"`
	Category  string  `gorm:"type:varchar(64);not null"`
	Color     string  `gorm:"type:varchar(32);not null"`
	Fabric    string  `gorm:"type:varchar(32);not null"`
	SKU       string  `gorm:"column:sku;type:varchar(32);uniqueIndex;not null"`
	Image     *string `gorm:"type:varchar(256)"`
	CostPrice string  `gorm:"type:varchar(32);not null"`
	SellPrice string  `gorm:"type:varchar(32);not null"`
	StockQty  int32   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Customer struct {
	ID      int64   `gorm:"primaryKey;autoIncrement"`
	Name    string  `gorm:"type:varchar(128);not null"`
	Phone   string  `gorm:"type:varchar(20);uniqueIndex;not null"`
	Address *string `gorm:"type:text"`
	// JoinedDate carries the date of the order that introduced the
	// customer, not the row's wall-clock insert time.
	JoinedDate string `gorm:"type:varchar(10);not null"`
	CreatedAt  time.Time
}

type Order struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	CustomerID    int64  `gorm:"index;not null"`
	Date          string `gorm:"type:varchar(10);index;not null"`
	Subtotal      string `gorm:"type:varchar(32);not null"`
	TotalDiscount string `gorm:"type:varchar(32);not null"`
	TotalAmount   string `gorm:"type:varchar(32);not null"`
	TotalProfit   string `gorm:"type:varchar(32);not null"`
	CreatedAt     time.Time

	Items    []OrderItem `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Customer *Customer   `gorm:"foreignKey:CustomerID"`
}

type OrderItem struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	OrderID         int64  `gorm:"index;not null"`
	ProductID       int64  `gorm:"not null"`
	Qty             int32  `gorm:"not null"`
	MRP             string `gorm:"column:mrp;type:varchar(32);not null"`
	DiscountPercent string `gorm:"type:varchar(32);not null"`
	FinalPrice      string `gorm:"type:varchar(32);not null"`
	Profit          string `gorm:"type:varchar(32);not null"`

	Product *Product `gorm:"foreignKey:ProductID"`
}

type Expense struct {
	ID        int64   `gorm:"primaryKey;autoIncrement"`
	Date      string  `gorm:"type:varchar(10);index;not null"`
	Category  string  `gorm:"type:varchar(64);not null"`
	Amount    string  `gorm:"type:varchar(32);not null"`
	Note      *string `gorm:"type:text"`
	CreatedAt time.Time
}

type Category struct {
	ID   int32  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);uniqueIndex;not null"`
}

type Color struct {
	ID   int32  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);uniqueIndex;not null"`
}

type Fabric struct {
	ID   int32  `gorm:"primaryKey;autoIncrement"`
	Name string `gorm:"type:varchar(64);uniqueIndex;not null"`
}
