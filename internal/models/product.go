package models

import "github.com/shopspring/decimal"

func init() {
	// The client does arithmetic on prices, so they go out as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

type Product struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Image string          `json:"image"`
}

// Catalog is the storefront name plus its fixed product list.
type Catalog struct {
	Name     string    `json:"name"`
	Products []Product `json:"products"`
}
