package service

import (
	"context"

	"github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
	repository "github.com/aaravmahajanofficial/storefront/internal/repositories"
)

type ProductService interface {
	ListProducts(ctx context.Context) models.Catalog
	GetProduct(ctx context.Context, id string) (*models.Product, error)
}

type productService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) ProductService {
	return &productService{repo: repo}
}

// ListProducts implements ProductService.
func (s *productService) ListProducts(ctx context.Context) models.Catalog {
	return s.repo.GetCatalog(ctx)
}

// GetProduct implements ProductService.
func (s *productService) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	product, ok := s.repo.GetProductByID(ctx, id)
	if !ok {
		return nil, errors.NotFoundError("Product not found").WithDetail(id)
	}

	return &product, nil
}
