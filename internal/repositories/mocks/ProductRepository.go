package mocks

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/stretchr/testify/mock"
)

type ProductRepository struct {
	mock.Mock
}

func (m *ProductRepository) GetCatalog(ctx context.Context) models.Catalog {
	args := m.Called(ctx)
	return args.Get(0).(models.Catalog)
}

func (m *ProductRepository) GetProductByID(ctx context.Context, id string) (models.Product, bool) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Product), args.Bool(1)
}

func NewProductRepository(t interface {
	mock.TestingT
	Cleanup(func())
}) *ProductRepository {
	m := &ProductRepository{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
