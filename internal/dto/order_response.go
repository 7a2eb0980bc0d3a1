package dto

import (
	"encoding/json"
	"time"

	"storefront/internal/domain"
)

type OrderResponse struct {
	ID                string              `json:"id"`
	UserID            *string             `json:"userId"`
	PaymentStatus     string              `json:"paymentStatus"`
	PaymentReference  *string             `json:"paymentReference"`
	PaymentMethod     string              `json:"paymentMethod"`
	DeliveryMethod    string              `json:"deliveryMethod"`
	DeliveryAddress   *string             `json:"deliveryAddress"`
	FulfillmentStatus string              `json:"fulfillmentStatus"`
	CustomerEmail     string              `json:"customerEmail"`
	CustomerPhone     string              `json:"customerPhone"`
	PromoCode         *string             `json:"promoCode"`
	DiscountAmount    int64               `json:"discountAmount"`
	TotalAmount       int64               `json:"totalAmount"`
	Items             []OrderItemResponse `json:"items,omitempty"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

type OrderItemResponse struct {
	ProductID    string `json:"productId"`
	ProductName  string `json:"productName"`
	ProductPrice int64  `json:"productPrice"`
	Quantity     int    `json:"quantity"`
	LineTotal    int64  `json:"lineTotal"`
}

type OrderListResponse struct {
	TraceID string          `json:"traceId"`
	Orders  []OrderResponse `json:"orders"`
}

type VerifyPaymentResponse struct {
	Success bool            `json:"success"`
	TraceID string          `json:"traceId,omitempty"`
	Order   OrderResponse   `json:"order"`
	Payment json.RawMessage `json:"payment"`
}

func NewOrderResponse(o domain.Order, items []domain.OrderItem) OrderResponse {
	resp := OrderResponse{
		ID:                o.ID,
		UserID:            o.UserID,
		PaymentStatus:     o.PaymentStatus,
		PaymentReference:  o.PaymentReference,
		PaymentMethod:     o.PaymentMethod,
		DeliveryMethod:    o.DeliveryMethod,
		DeliveryAddress:   o.DeliveryAddress,
		FulfillmentStatus: o.FulfillmentStatus,
		CustomerEmail:     o.CustomerEmail,
		CustomerPhone:     o.CustomerPhone,
		PromoCode:         o.PromoCode,
		DiscountAmount:    o.DiscountAmount,
		TotalAmount:       o.TotalAmount,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
	}
	for _, it := range items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:    it.ProductID,
			ProductName:  it.ProductName,
			ProductPrice: it.ProductPrice,
			Quantity:     it.Quantity,
			LineTotal:    it.LineTotal(),
		})
	}
	return resp
}

// ToDomain maps a response back onto the domain order, items excluded.
func (r OrderResponse) ToDomain() domain.Order {
	return domain.Order{
		ID:                r.ID,
		UserID:            r.UserID,
		PaymentStatus:     r.PaymentStatus,
		PaymentReference:  r.PaymentReference,
		PaymentMethod:     r.PaymentMethod,
		DeliveryMethod:    r.DeliveryMethod,
		DeliveryAddress:   r.DeliveryAddress,
		FulfillmentStatus: r.FulfillmentStatus,
		CustomerEmail:     r.CustomerEmail,
		CustomerPhone:     r.CustomerPhone,
		PromoCode:         r.PromoCode,
		DiscountAmount:    r.DiscountAmount,
		TotalAmount:       r.TotalAmount,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}
