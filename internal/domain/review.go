package domain

import "time"

const (
	MinRating        = 1
	MaxRating        = 5
	MaxReviewComment = 500
)

type Review struct {
	ID        string
	UserID    string
	ProductID string
	OrderID   *string
	Rating    int
	Comment   string
	CreatedAt time.Time
}

// RatingSummary aggregates the reviews of one product. Distribution is
// indexed by rating, so Distribution[5] counts five-star reviews.
type RatingSummary struct {
	Count        int
	Average      float64
	Distribution [MaxRating + 1]int
}

func SummarizeRatings(reviews []Review) RatingSummary {
	var s RatingSummary
	total := 0
	for _, r := range reviews {
		if r.Rating < MinRating || r.Rating > MaxRating {
			continue
		}
		s.Count++
		s.Distribution[r.Rating]++
		total += r.Rating
	}
	if s.Count > 0 {
		s.Average = float64(total) / float64(s.Count)
	}
	return s
}
