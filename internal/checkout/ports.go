package checkout

import (
	"context"
	"encoding/json"

	"storefront/internal/cart"
	"storefront/internal/domain"
)

type OrderStore interface {
	Insert(ctx context.Context, order domain.Order) (*domain.Order, error)
	RecordAttempt(ctx context.Context, orderID string, reference string) error
}

type ItemStore interface {
	InsertBatch(ctx context.Context, orderID string, items []domain.OrderItem) error
}

type PromoLookup interface {
	FindActive(ctx context.Context, code string) (*domain.PromoCode, error)
}

type Cart interface {
	Items() []cart.Item
	Clear(ctx context.Context) error
}

// OpenRequest describes one hosted payment session. Amount is in minor units.
type OpenRequest struct {
	Reference string
	Amount    int64
	Currency  string
	Email     string
	Metadata  map[string]string
}

// PopupOutcome is what the hosted checkout reported back: either a reference
// the shopper paid against, or a cancellation.
type PopupOutcome struct {
	Reference string
	Cancelled bool
}

// Popup opens the gateway's hosted checkout and blocks until the shopper
// completes or cancels it.
type Popup interface {
	Open(ctx context.Context, req OpenRequest) (PopupOutcome, error)
}

type Verification struct {
	Order   domain.Order
	Payment json.RawMessage
}

// Verifier asks the server to confirm a payment and mark the order paid.
type Verifier interface {
	Verify(ctx context.Context, reference string, orderID string) (*Verification, error)
}
