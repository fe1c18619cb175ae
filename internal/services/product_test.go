package service_test

import (
	"context"
	"testing"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/aaravmahajanofficial/storefront/internal/repositories/mocks"
	service "github.com/aaravmahajanofficial/storefront/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListProducts(t *testing.T) {
	// Arrange
	mockRepo := mocks.NewProductRepository(t)
	productService := service.NewProductService(mockRepo)
	mockRepo.On("GetCatalog", mock.Anything).Return(testCatalog()).Once()

	// Act
	catalog := productService.ListProducts(context.Background())

	// Assert
	assert.Equal(t, "DV Shop", catalog.Name)
	assert.Len(t, catalog.Products, 2)
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()

	t.Run("Success - Get Product", func(t *testing.T) {
		// Arrange
		mockRepo := mocks.NewProductRepository(t)
		productService := service.NewProductService(mockRepo)
		expected := models.Product{ID: "p1", Name: "Hoodie", Price: decimal.NewFromInt(10)}
		mockRepo.On("GetProductByID", mock.Anything, "p1").Return(expected, true).Once()

		// Act
		product, err := productService.GetProduct(ctx, "p1")

		// Assert
		require.NoError(t, err)
		assert.Equal(t, expected, *product)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		// Arrange
		mockRepo := mocks.NewProductRepository(t)
		productService := service.NewProductService(mockRepo)
		mockRepo.On("GetProductByID", mock.Anything, "p9").Return(models.Product{}, false).Once()

		// Act
		product, err := productService.GetProduct(ctx, "p9")

		// Assert
		assert.Nil(t, product)
		appErr, ok := appErrors.IsAppError(err)
		require.True(t, ok)
		assert.Equal(t, appErrors.ErrCodeNotFound, appErr.Code)
	})
}
