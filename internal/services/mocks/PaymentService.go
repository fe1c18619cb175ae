package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type PaymentService struct {
	mock.Mock
}

func (m *PaymentService) linkResult(args mock.Arguments) (*models.PaymentLink, error) {
	var link *models.PaymentLink
	if l := args.Get(0); l != nil {
		link = l.(*models.PaymentLink)
	}
	return link, args.Error(1)
}

func (m *PaymentService) CreatePaymentURL(ctx context.Context, amount *decimal.Decimal) (*models.PaymentLink, error) {
	return m.linkResult(m.Called(ctx, amount))
}

func (m *PaymentService) Checkout(ctx context.Context, sessionID string) (*models.PaymentLink, error) {
	return m.linkResult(m.Called(ctx, sessionID))
}

func NewPaymentService(t interface {
	mock.TestingT
	Cleanup(func())
}) *PaymentService {
	m := &PaymentService{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
