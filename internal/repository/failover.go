package repository

import (
	"context"
	"sync/atomic"
	"time"

	"roomdesk/internal/domain"
	"roomdesk/internal/models"

	"github.com/rs/zerolog"
)

// FailoverCartRepository keeps carts in the primary store and falls back to
// the in-memory store while the primary is down, probing it again after a
// minute.
type FailoverCartRepository struct {
	primary   domain.CartRepository
	fallback  domain.CartRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	lastCheck atomic.Int64
}

func NewFailoverCartRepository(primary, fallback domain.CartRepository, logger *zerolog.Logger) *FailoverCartRepository {
	return &FailoverCartRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (r *FailoverCartRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary cart repository failed, falling back to memory")
	r.isDown.Store(true)
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverCartRepository) shouldProbe() bool {
	last := time.Unix(0, r.lastCheck.Load())
	return time.Since(last) > time.Minute
}

func (r *FailoverCartRepository) GetCart(ctx context.Context, sessionID string) (*models.Cart, error) {
	if !r.isDown.Load() {
		cart, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			return cart, nil
		}
		r.markDown(err)
	} else if r.shouldProbe() {
		cart, err := r.primary.GetCart(ctx, sessionID)
		if err == nil {
			r.isDown.Store(false)
			return cart, nil
		}
		r.lastCheck.Store(time.Now().UnixNano())
	}

	return r.fallback.GetCart(ctx, sessionID)
}

func (r *FailoverCartRepository) SetCart(ctx context.Context, cart *models.Cart) error {
	if !r.isDown.Load() {
		err := r.primary.SetCart(ctx, cart)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SetCart(ctx, cart)
}

func (r *FailoverCartRepository) ClearCart(ctx context.Context, sessionID string) error {
	if !r.isDown.Load() {
		err := r.primary.ClearCart(ctx, sessionID)
		if err == nil {
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.ClearCart(ctx, sessionID)
}
