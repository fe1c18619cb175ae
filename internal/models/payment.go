package models

import "github.com/shopspring/decimal"

type PayURLRequest struct {
	Amount *decimal.Decimal `json:"amount"`
}

type PayURLResponse struct {
	OK     bool            `json:"ok"`
	PayURL string          `json:"payUrl"`
	Amount decimal.Decimal `json:"amount,omitzero"`
}

// PaymentLink is the result of one call to the payment provider.
type PaymentLink struct {
	StoreExternalID string
	PayURL          string
	Amount          decimal.Decimal
}
