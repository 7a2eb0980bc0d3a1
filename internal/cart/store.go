// Package cart holds the shopper's basket. The store is the single owner of
// the item list; every mutation is written through to a Persister.
package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"storefront/internal/errors"
)

type Item struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
	VendorID  string `json:"vendorId,omitempty"`
}

func (i Item) LineTotal() int64 {
	return i.Price * int64(i.Quantity)
}

type Persister interface {
	Load(ctx context.Context) ([]Item, error)
	Save(ctx context.Context, items []Item) error
}

type Store struct {
	mu        sync.Mutex
	items     []Item
	persister Persister
	logger    *zap.Logger
}

// NewStore restores the basket from p.
func NewStore(ctx context.Context, p Persister, logger *zap.Logger) (*Store, error) {
	items, err := p.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}
	return &Store{items: items, persister: p, logger: logger}, nil
}

// Items returns a copy of the basket.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Total() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total int64
	for _, it := range s.items {
		total += it.LineTotal()
	}
	return total
}

func (s *Store) IsEmpty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items) == 0
}

// Add merges quantities when the product is already in the basket.
func (s *Store) Add(ctx context.Context, item Item) error {
	if strings.TrimSpace(item.ProductID) == "" {
		return errors.NewValidationError("product id is required")
	}
	if item.Quantity <= 0 {
		return errors.NewValidationError("quantity must be positive")
	}
	if item.Price <= 0 {
		return errors.NewValidationError("price must be positive")
	}

	return s.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Quantity += item.Quantity
				return items
			}
		}
		return append(items, item)
	})
}

func (s *Store) Remove(ctx context.Context, productID string) error {
	return s.mutate(ctx, func(items []Item) []Item {
		out := items[:0]
		for _, it := range items {
			if it.ProductID != productID {
				out = append(out, it)
			}
		}
		return out
	})
}

// SetQuantity removes the line when qty is zero or less.
func (s *Store) SetQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return s.Remove(ctx, productID)
	}

	found := false
	err := s.mutate(ctx, func(items []Item) []Item {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity = qty
				found = true
			}
		}
		return items
	})
	if err != nil {
		return err
	}
	if !found {
		return errors.NewNotFoundError(fmt.Sprintf("product %s is not in the cart", productID))
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	return s.mutate(ctx, func([]Item) []Item { return []Item{} })
}

// mutate applies fn to a copy and only keeps the result once it is persisted.
func (s *Store) mutate(ctx context.Context, fn func([]Item) []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]Item, len(s.items))
	copy(next, s.items)
	next = fn(next)

	if err := s.persister.Save(ctx, next); err != nil {
		s.logger.Error("failed to persist cart", zap.Error(err))
		return fmt.Errorf("saving cart: %w", err)
	}

	s.items = next
	return nil
}
