package repository

import (
	"context"
	"sync"
	"time"

	"roomdesk/internal/models"
)

type MemoryCartRepository struct {
	carts sync.Map
	ttl   time.Duration
}

type memoryEntry struct {
	cart      *models.Cart
	expiresAt time.Time
}

func NewMemoryCartRepository(ttl time.Duration) *MemoryCartRepository {
	return &MemoryCartRepository{
		ttl: ttl,
	}
}

func (r *MemoryCartRepository) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	val, ok := r.carts.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(*memoryEntry)
	if r.ttl > 0 && time.Now().After(entry.expiresAt) {
		r.carts.Delete(sessionID)
		return nil, nil
	}
	return entry.cart, nil
}

func (r *MemoryCartRepository) SetCart(ctx context.Context, cart *models.Cart) error {
	r.carts.Store(cart.SessionID, &memoryEntry{
		cart:      cart,
		expiresAt: time.Now().Add(r.ttl),
	})
	return nil
}

func (r *MemoryCartRepository) ClearCart(ctx context.Context, sessionID string) error {
	r.carts.Delete(sessionID)
	return nil
}
