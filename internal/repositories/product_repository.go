package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/url"
	"os"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/models"
	"github.com/microcosm-cc/bluemonday"
)

type ProductRepository interface {
	GetCatalog(ctx context.Context) models.Catalog
	GetProductByID(ctx context.Context, id string) (models.Product, bool)
}

type productRepository struct {
	catalog models.Catalog
	byID    map[string]models.Product
}

// NewProductRepo indexes a catalog that was already loaded and checked.
func NewProductRepo(catalog models.Catalog) ProductRepository {
	byID := make(map[string]models.Product, len(catalog.Products))
	for _, p := range catalog.Products {
		byID[p.ID] = p
	}

	return &productRepository{catalog: catalog, byID: byID}
}

func (r *productRepository) GetCatalog(_ context.Context) models.Catalog {
	products := make([]models.Product, len(r.catalog.Products))
	copy(products, r.catalog.Products)

	return models.Catalog{Name: r.catalog.Name, Products: products}
}

func (r *productRepository) GetProductByID(_ context.Context, id string) (models.Product, bool) {
	p, ok := r.byID[id]
	return p, ok
}

// LoadCatalogFile reads a catalog in the data.json format from disk.
func LoadCatalogFile(path string) (models.Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return models.Catalog{}, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()

	return LoadCatalog(f)
}

// LoadCatalog decodes and checks a catalog. Names are kept exactly as written;
// a name that carries markup fails the load.
func LoadCatalog(r io.Reader) (models.Catalog, error) {
	var catalog models.Catalog

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&catalog); err != nil {
		return models.Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
	}

	policy := bluemonday.StrictPolicy()
	if hasMarkup(policy, catalog.Name) {
		return models.Catalog{}, fmt.Errorf("catalog name contains markup")
	}

	seen := make(map[string]struct{}, len(catalog.Products))
	for i := range catalog.Products {
		p := &catalog.Products[i]

		p.ID = strings.TrimSpace(p.ID)
		if p.ID == "" {
			return models.Catalog{}, fmt.Errorf("product at index %d has no id", i)
		}
		if _, dup := seen[p.ID]; dup {
			return models.Catalog{}, fmt.Errorf("duplicate product id %q", p.ID)
		}
		seen[p.ID] = struct{}{}

		if p.Price.IsNegative() {
			return models.Catalog{}, fmt.Errorf("product %q has a negative price", p.ID)
		}

		if err := checkImage(p.Image); err != nil {
			return models.Catalog{}, fmt.Errorf("product %q: %w", p.ID, err)
		}

		if hasMarkup(policy, p.Name) {
			return models.Catalog{}, fmt.Errorf("product %q name contains markup", p.ID)
		}
	}

	return catalog, nil
}

// hasMarkup reports whether the policy would drop anything from s. The
// sanitized output escapes plain text, so both sides are compared unescaped.
func hasMarkup(policy *bluemonday.Policy, s string) bool {
	return html.UnescapeString(policy.Sanitize(s)) != html.UnescapeString(s)
}

func checkImage(raw string) error {
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image url: %w", err)
	}

	switch u.Scheme {
	case "", "http", "https":
		return nil
	default:
		return fmt.Errorf("image url scheme %q not allowed", u.Scheme)
	}
}
