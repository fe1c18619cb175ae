package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type CartService struct {
	mock.Mock
}

func (m *CartService) cartResult(args mock.Arguments) (*models.CartResponse, error) {
	var resp *models.CartResponse
	if r := args.Get(0); r != nil {
		resp = r.(*models.CartResponse)
	}
	return resp, args.Error(1)
}

func (m *CartService) GetCart(ctx context.Context, sessionID string) (*models.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID))
}

func (m *CartService) AddItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *CartService) RemoveItem(ctx context.Context, sessionID, productID string) (*models.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID, productID))
}

func (m *CartService) ClearCart(ctx context.Context, sessionID string) (*models.CartResponse, error) {
	return m.cartResult(m.Called(ctx, sessionID))
}

func (m *CartService) Total(ctx context.Context, sessionID string) (decimal.Decimal, error) {
	args := m.Called(ctx, sessionID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func NewCartService(t interface {
	mock.TestingT
	Cleanup(func())
}) *CartService {
	m := &CartService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
