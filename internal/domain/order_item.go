package domain

import "time"

type OrderItem struct {
	ID           uint
	OrderID      string
	ProductID    string
	ProductName  string
	ProductPrice int64
	Quantity     int
	VendorID     *string
	CreatedAt    time.Time
}

func (i OrderItem) LineTotal() int64 {
	return i.ProductPrice * int64(i.Quantity)
}

// Subtotal sums price snapshots over items, before any discount.
func Subtotal(items []OrderItem) int64 {
	var total int64
	for _, it := range items {
		total += it.LineTotal()
	}
	return total
}
