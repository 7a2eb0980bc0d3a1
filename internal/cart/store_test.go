package cart

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"storefront/internal/errors"
)

func newTestStore(t *testing.T, items ...Item) (*Store, *MemoryPersister) {
	t.Helper()
	p := NewMemoryPersister(items...)
	s, err := NewStore(context.Background(), p, zap.NewNop())
	require.NoError(t, err)
	return s, p
}

func TestStore_AddMergesQuantities(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", Name: "Shea butter", Price: 9000, Quantity: 1}))
	require.NoError(t, s.Add(ctx, Item{ProductID: "p1", Name: "Shea butter", Price: 9000, Quantity: 1}))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, int64(18000), s.Total())
}

func TestStore_AddValidation(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Add(context.Background(), Item{ProductID: "p1", Quantity: 0})

	_, ok := errors.IsValidationError(err)
	assert.True(t, ok)
	assert.True(t, s.IsEmpty())
}

func TestStore_AddRejectsFreeItem(t *testing.T) {
	s, p := newTestStore(t)

	err := s.Add(context.Background(), Item{ProductID: "p1", Price: 0, Quantity: 1})

	_, ok := errors.IsValidationError(err)
	assert.True(t, ok)
	assert.True(t, s.IsEmpty())
	assert.Empty(t, p.items)
}

func TestStore_Total(t *testing.T) {
	s, _ := newTestStore(t,
		Item{ProductID: "p1", Price: 18000, Quantity: 1},
		Item{ProductID: "p2", Price: 9000, Quantity: 2},
	)

	assert.Equal(t, int64(36000), s.Total())
}

func TestStore_SetQuantity(t *testing.T) {
	s, _ := newTestStore(t, Item{ProductID: "p1", Price: 100, Quantity: 1})
	ctx := context.Background()

	require.NoError(t, s.SetQuantity(ctx, "p1", 3))
	assert.Equal(t, 3, s.Items()[0].Quantity)

	require.NoError(t, s.SetQuantity(ctx, "p1", 0))
	assert.True(t, s.IsEmpty())

	err := s.SetQuantity(ctx, "missing", 2)
	_, ok := errors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestStore_RemoveAndClear(t *testing.T) {
	s, p := newTestStore(t,
		Item{ProductID: "p1", Price: 100, Quantity: 1},
		Item{ProductID: "p2", Price: 200, Quantity: 1},
	)
	ctx := context.Background()

	require.NoError(t, s.Remove(ctx, "p1"))
	require.Len(t, s.Items(), 1)

	require.NoError(t, s.Clear(ctx))
	assert.True(t, s.IsEmpty())

	persisted, err := p.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, persisted)
}

func TestStore_PersistFailureKeepsState(t *testing.T) {
	s, p := newTestStore(t, Item{ProductID: "p1", Price: 100, Quantity: 1})
	p.SaveErr = stderrors.New("redis down")

	err := s.Clear(context.Background())

	require.Error(t, err)
	assert.Len(t, s.Items(), 1)
}

func TestStore_ItemsReturnsCopy(t *testing.T) {
	s, _ := newTestStore(t, Item{ProductID: "p1", Price: 100, Quantity: 1})

	items := s.Items()
	items[0].Quantity = 99

	assert.Equal(t, 1, s.Items()[0].Quantity)
}
