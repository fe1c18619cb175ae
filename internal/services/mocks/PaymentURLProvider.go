package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type PaymentURLProvider struct {
	mock.Mock
}

func (m *PaymentURLProvider) Name() string {
	return "mock"
}

func (m *PaymentURLProvider) CreatePaymentURL(ctx context.Context, reference string, amount decimal.Decimal) (string, error) {
	args := m.Called(ctx, reference, amount)
	return args.String(0), args.Error(1)
}

func NewPaymentURLProvider(t interface {
	mock.TestingT
	Cleanup(func())
}) *PaymentURLProvider {
	m := &PaymentURLProvider{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
