package dto

import (
	"time"

	"storefront/internal/domain"
)

type VendorApplicationRequest struct {
	BusinessName        string `json:"businessName"`
	BusinessDescription string `json:"businessDescription"`
	BusinessLogoURL     string `json:"businessLogoUrl"`
}

type VendorStatusRequest struct {
	Status string `json:"status"`
}

type VendorResponse struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"userId"`
	BusinessName        string    `json:"businessName"`
	BusinessDescription string    `json:"businessDescription"`
	BusinessLogoURL     *string   `json:"businessLogoUrl"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

type VendorListResponse struct {
	TraceID string           `json:"traceId"`
	Vendors []VendorResponse `json:"vendors"`
}

type VendorTransactionResponse struct {
	OrderID       string    `json:"orderId"`
	VendorAmount  int64     `json:"vendorAmount"`
	PaymentStatus string    `json:"paymentStatus"`
	CreatedAt     time.Time `json:"createdAt"`
}

type VendorDashboardResponse struct {
	TraceID      string                      `json:"traceId"`
	Vendor       VendorResponse              `json:"vendor"`
	TotalOrders  int                         `json:"totalOrders"`
	TotalRevenue int64                       `json:"totalRevenue"`
	Transactions []VendorTransactionResponse `json:"transactions"`
}

func NewVendorResponse(v domain.Vendor) VendorResponse {
	return VendorResponse{
		ID:                  v.ID,
		UserID:              v.UserID,
		BusinessName:        v.BusinessName,
		BusinessDescription: v.BusinessDescription,
		BusinessLogoURL:     v.BusinessLogoURL,
		Status:              v.Status,
		CreatedAt:           v.CreatedAt,
		UpdatedAt:           v.UpdatedAt,
	}
}

func NewVendorTransactionResponses(txs []domain.VendorTransaction) []VendorTransactionResponse {
	out := make([]VendorTransactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, VendorTransactionResponse{
			OrderID:       t.OrderID,
			VendorAmount:  t.VendorAmount,
			PaymentStatus: t.PaymentStatus,
			CreatedAt:     t.CreatedAt,
		})
	}
	return out
}
