package dto

import (
	"math"
	"strconv"
	"time"

	"storefront/internal/domain"
)

type ReviewRequest struct {
	Rating  int     `json:"rating"`
	Comment string  `json:"comment"`
	OrderID *string `json:"orderId"`
}

type ReviewResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ProductID string    `json:"productId"`
	OrderID   *string   `json:"orderId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"createdAt"`
}

// RatingSummaryResponse keys the distribution by star count, "1" to "5".
type RatingSummaryResponse struct {
	Count        int            `json:"count"`
	Average      float64        `json:"average"`
	Distribution map[string]int `json:"distribution"`
}

type ProductReviewsResponse struct {
	TraceID   string                `json:"traceId"`
	ProductID string                `json:"productId"`
	Summary   RatingSummaryResponse `json:"summary"`
	Reviews   []ReviewResponse      `json:"reviews"`
}

func NewReviewResponse(r domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        r.ID,
		UserID:    r.UserID,
		ProductID: r.ProductID,
		OrderID:   r.OrderID,
		Rating:    r.Rating,
		Comment:   r.Comment,
		CreatedAt: r.CreatedAt,
	}
}

func NewRatingSummaryResponse(s domain.RatingSummary) RatingSummaryResponse {
	dist := make(map[string]int, domain.MaxRating)
	for star := domain.MinRating; star <= domain.MaxRating; star++ {
		dist[strconv.Itoa(star)] = s.Distribution[star]
	}
	return RatingSummaryResponse{
		Count:        s.Count,
		Average:      math.Round(s.Average*10) / 10,
		Distribution: dist,
	}
}
