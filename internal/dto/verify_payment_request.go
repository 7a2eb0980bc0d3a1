package dto

type VerifyPaymentRequest struct {
	Reference string `json:"reference"`
	OrderID   string `json:"orderId"`
}

type UpdateFulfillmentRequest struct {
	Status string `json:"status"`
}
