package usecase

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"storefront/internal/domain"
	"storefront/internal/money"
)

var invoiceTemplate = template.Must(template.New("invoice").Funcs(template.FuncMap{
	"amount": func(v int64, currency string) string { return money.Format(v, currency) },
	"date":   func(t time.Time) string { return t.UTC().Format("02/01/2006") },
}).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice {{.ShortID}}</title>
<style>
body{font-family:Arial,sans-serif;margin:40px;color:#222}
table{width:100%;border-collapse:collapse;margin-top:24px}
th,td{padding:8px;border-bottom:1px solid #ddd;text-align:left}
.total{font-weight:bold;font-size:1.1em}
.status{display:inline-block;padding:2px 8px;border-radius:4px;background:#eee}
</style>
</head>
<body>
<h1>Invoice #{{.ShortID}}</h1>
<p>Date: {{date .Order.CreatedAt}}</p>
<p>Customer: {{.Order.CustomerEmail}}{{if .Order.CustomerPhone}} &middot; {{.Order.CustomerPhone}}{{end}}</p>
{{if .Order.DeliveryAddress}}<p>Delivery address: {{.Order.DeliveryAddress}}</p>{{end}}
<p>Payment: {{.Order.PaymentMethod}} <span class="status">{{.Order.PaymentStatus}}</span>{{if .Order.PaymentReference}} (ref {{.Order.PaymentReference}}){{end}}</p>
<table>
<thead><tr><th>Product</th><th>Unit price</th><th>Qty</th><th>Total</th></tr></thead>
<tbody>
{{range .Items}}<tr><td>{{.ProductName}}</td><td>{{amount .ProductPrice $.Currency}}</td><td>{{.Quantity}}</td><td>{{amount .LineTotal $.Currency}}</td></tr>
{{end}}</tbody>
</table>
<p>Subtotal: {{amount .Subtotal .Currency}}</p>
{{if .Order.DiscountAmount}}<p>Discount{{if .Order.PromoCode}} ({{.Order.PromoCode}}){{end}}: -{{amount .Order.DiscountAmount .Currency}}</p>{{end}}
<p class="total">Total: {{amount .Order.TotalAmount .Currency}}</p>
</body>
</html>
`))

type invoiceView struct {
	ShortID  string
	Order    domain.Order
	Items    []domain.OrderItem
	Subtotal int64
	Currency string
}

// InvoiceUseCase renders the printable invoice of a shopper's order.
type InvoiceUseCase struct {
	orders   *OrderQueryUseCase
	currency string
}

func NewInvoiceUseCase(orders *OrderQueryUseCase, currency string) *InvoiceUseCase {
	return &InvoiceUseCase{orders: orders, currency: currency}
}

func (uc *InvoiceUseCase) Render(ctx context.Context, session *domain.Session, orderID string) ([]byte, error) {
	o, err := uc.orders.GetMine(ctx, session, orderID)
	if err != nil {
		return nil, err
	}
	return RenderInvoice(o.Order, o.Items, uc.currency)
}

func RenderInvoice(order domain.Order, items []domain.OrderItem, currency string) ([]byte, error) {
	shortID := order.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}

	var buf bytes.Buffer
	err := invoiceTemplate.Execute(&buf, invoiceView{
		ShortID:  shortID,
		Order:    order,
		Items:    items,
		Subtotal: domain.Subtotal(items),
		Currency: currency,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering invoice: %w", err)
	}
	return buf.Bytes(), nil
}
