package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/mock"
)

// CartRepository is a testify mock. UpdateCart applies the mutation to the
// cart given as the second return value before returning it, so callers see
// the same shape the real repository produces.
type CartRepository struct {
	mock.Mock
}

func (m *CartRepository) GetCart(ctx context.Context, sessionID string) (models.Cart, error) {
	args := m.Called(ctx, sessionID)

	var cart models.Cart
	if c := args.Get(0); c != nil {
		cart = c.(models.Cart)
	}

	return cart, args.Error(1)
}

func (m *CartRepository) UpdateCart(ctx context.Context, sessionID string, mutate func(models.Cart) error) (models.Cart, error) {
	args := m.Called(ctx, sessionID, mutate)

	if err := args.Error(1); err != nil {
		return nil, err
	}

	cart := models.NewCart()
	if c := args.Get(0); c != nil {
		cart = c.(models.Cart).Snapshot()
	}

	if err := mutate(cart); err != nil {
		return nil, err
	}

	return cart, nil
}

func (m *CartRepository) DeleteCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func (m *CartRepository) TouchCart(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

func NewCartRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartRepository {
	m := &CartRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
