package types

import "github.com/shopspring/decimal"

// PriceTuple is the effective price of a variant on one date.
type PriceTuple struct {
	Sale     decimal.Decimal `json:"sale"`
	Cost     decimal.Decimal `json:"cost"`
	OwnerRef decimal.Decimal `json:"owner_ref"`
	Agent    decimal.Decimal `json:"agent"`
}
