package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/metrics"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
	"github.com/shopspring/decimal"
)

type CartService interface {
	GetCart(ctx context.Context, sessionID string) (*models.CartResponse, error)
	AddItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error)
	RemoveItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error)
	ClearCart(ctx context.Context, sessionID string) (*models.CartResponse, error)
	// Total is the value of the session's cart at catalog prices.
	Total(ctx context.Context, sessionID string) (decimal.Decimal, error)
}

type cartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) CartService {
	return &cartService{carts: carts, products: products}
}

// CalculateTotal sums quantity times price over the cart. Ids missing from
// the catalog contribute nothing.
func CalculateTotal(ctx context.Context, cart models.Cart, products repository.ProductRepository) decimal.Decimal {
	total := decimal.Zero
	for id, qty := range cart {
		product, ok := products.GetProductByID(ctx, id)
		if !ok {
			continue
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	return total
}

// GetCart implements CartService.
func (s *cartService) GetCart(ctx context.Context, sessionID string) (*models.CartResponse, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return nil, errors.StorageError("Failed to load cart").WithError(err)
	}

	return s.respond(ctx, cart, false), nil
}

// AddItem implements CartService.
func (s *cartService) AddItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.ValidationError("productId is required")
	}

	cart, err := s.carts.UpdateCart(ctx, sessionID, func(c models.Cart) error {
		c.Add(productID)
		return nil
	})
	if err != nil {
		return nil, errors.StorageError("Failed to update cart").WithError(err)
	}

	metrics.RecordCartOperation(metrics.CartAdd)
	middleware.LoggerFromContext(ctx).Debug("Cart item added",
		slog.String("productId", productID), slog.Int("quantity", cart[productID]))

	return s.respond(ctx, cart, true), nil
}

// RemoveItem implements CartService.
func (s *cartService) RemoveItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, errors.ValidationError("productId is required")
	}

	cart, err := s.carts.UpdateCart(ctx, sessionID, func(c models.Cart) error {
		c.Remove(productID)
		return nil
	})
	if err != nil {
		return nil, errors.StorageError("Failed to update cart").WithError(err)
	}

	metrics.RecordCartOperation(metrics.CartRemove)

	return s.respond(ctx, cart, true), nil
}

// ClearCart implements CartService.
func (s *cartService) ClearCart(ctx context.Context, sessionID string) (*models.CartResponse, error) {
	if err := s.carts.DeleteCart(ctx, sessionID); err != nil {
		return nil, errors.StorageError("Failed to clear cart").WithError(err)
	}

	metrics.RecordCartOperation(metrics.CartClear)

	return s.respond(ctx, models.NewCart(), true), nil
}

// Total implements CartService.
func (s *cartService) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	cart, err := s.carts.GetCart(ctx, sessionID)
	if err != nil {
		return decimal.Zero, errors.StorageError("Failed to load cart").WithError(err)
	}

	return CalculateTotal(ctx, cart, s.products), nil
}

func (s *cartService) respond(ctx context.Context, cart models.Cart, ok bool) *models.CartResponse {
	return &models.CartResponse{
		OK:    ok,
		Items: cart,
		Total: CalculateTotal(ctx, cart, s.products),
	}
}
