package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// KeyCart is cart:{owner}, owner being a user id or a device id for guests.
const KeyCart = "cart:%s"

type RedisPersister struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisPersister(client *redis.Client, owner string, ttl time.Duration) *RedisPersister {
	return &RedisPersister{client: client, key: fmt.Sprintf(KeyCart, owner), ttl: ttl}
}

func (p *RedisPersister) Load(ctx context.Context) ([]Item, error) {
	raw, err := p.client.Get(ctx, p.key).Bytes()
	if err == redis.Nil {
		return []Item{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading cart %s: %w", p.key, err)
	}

	var items []Item
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding cart %s: %w", p.key, err)
	}
	return items, nil
}

func (p *RedisPersister) Save(ctx context.Context, items []Item) error {
	if len(items) == 0 {
		if err := p.client.Del(ctx, p.key).Err(); err != nil {
			return fmt.Errorf("deleting cart %s: %w", p.key, err)
		}
		return nil
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := p.client.Set(ctx, p.key, raw, p.ttl).Err(); err != nil {
		return fmt.Errorf("writing cart %s: %w", p.key, err)
	}
	return nil
}

// MemoryPersister keeps the cart in process memory.
type MemoryPersister struct {
	mu    sync.Mutex
	items []Item
	// SaveErr, when set, is returned by every Save.
	SaveErr error
}

func NewMemoryPersister(items ...Item) *MemoryPersister {
	return &MemoryPersister{items: items}
}

func (p *MemoryPersister) Load(context.Context) ([]Item, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Item, len(p.items))
	copy(out, p.items)
	return out, nil
}

func (p *MemoryPersister) Save(_ context.Context, items []Item) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.items = make([]Item, len(items))
	copy(p.items, items)
	return nil
}
