package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/cache"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/utils"
)

type CartRepository interface {
	// GetCart returns a snapshot of the session's cart, empty when none is stored.
	GetCart(ctx context.Context, sessionID string) (models.Cart, error)
	// UpdateCart runs mutate on the current cart and stores the result. Calls
	// for the same session never interleave.
	UpdateCart(ctx context.Context, sessionID string, mutate func(models.Cart) error) (models.Cart, error)
	DeleteCart(ctx context.Context, sessionID string) error
	// TouchCart pushes the cart's expiry forward without reading it.
	TouchCart(ctx context.Context, sessionID string) error
}

type cartRepository struct {
	cache   cache.Cache
	ttl     time.Duration
	timeout time.Duration
	locks   *keyedMutex
}

// NewCartRepo stores carts in c. Each stored cart lives for ttl after its
// last access.
func NewCartRepo(c cache.Cache, ttl, timeout time.Duration) CartRepository {
	return &cartRepository{
		cache:   c,
		ttl:     ttl,
		timeout: timeout,
		locks:   newKeyedMutex(),
	}
}

func (r *cartRepository) GetCart(ctx context.Context, sessionID string) (models.Cart, error) {
	unlock := r.locks.Lock(sessionID)
	defer unlock()

	storeCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	cart, found, err := r.load(storeCtx, sessionID)
	if err != nil {
		return nil, err
	}

	if found {
		if err := r.cache.Touch(storeCtx, r.key(sessionID), r.ttl); err != nil {
			// the read itself succeeded; a missed refresh only shortens the lifetime
			middleware.LoggerFromContext(ctx).Warn("Failed to refresh cart expiry",
				slog.String("sessionId", sessionID), slog.Any("error", err))
		}
	}

	return cart.Snapshot(), nil
}

func (r *cartRepository) UpdateCart(ctx context.Context, sessionID string, mutate func(models.Cart) error) (models.Cart, error) {
	unlock := r.locks.Lock(sessionID)
	defer unlock()

	storeCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	cart, _, err := r.load(storeCtx, sessionID)
	if err != nil {
		return nil, err
	}

	if err := mutate(cart); err != nil {
		return nil, err
	}

	// an empty cart is indistinguishable from a missing one
	if len(cart) == 0 {
		if err := r.cache.Delete(storeCtx, r.key(sessionID)); err != nil {
			return nil, fmt.Errorf("deleting cart: %w", err)
		}
		return models.NewCart(), nil
	}

	if err := r.cache.Set(storeCtx, r.key(sessionID), cart, r.ttl); err != nil {
		return nil, fmt.Errorf("storing cart: %w", err)
	}

	return cart.Snapshot(), nil
}

func (r *cartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	unlock := r.locks.Lock(sessionID)
	defer unlock()

	storeCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.cache.Delete(storeCtx, r.key(sessionID)); err != nil {
		return fmt.Errorf("deleting cart: %w", err)
	}

	return nil
}

func (r *cartRepository) TouchCart(ctx context.Context, sessionID string) error {
	storeCtx, cancel := utils.WithStoreTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.cache.Touch(storeCtx, r.key(sessionID), r.ttl); err != nil {
		return fmt.Errorf("refreshing cart: %w", err)
	}

	return nil
}

func (r *cartRepository) load(ctx context.Context, sessionID string) (models.Cart, bool, error) {
	cart := models.NewCart()

	found, err := r.cache.Get(ctx, r.key(sessionID), &cart)
	if err != nil {
		return nil, false, fmt.Errorf("loading cart: %w", err)
	}

	// drop anything that breaks the positive-quantity invariant
	for id, qty := range cart {
		if qty <= 0 {
			delete(cart, id)
		}
	}

	return cart, found, nil
}

func (r *cartRepository) key(sessionID string) string {
	return cache.Key(cache.CartKeyPrefix, sessionID)
}
