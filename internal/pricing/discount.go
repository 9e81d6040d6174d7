package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/pkg/types"
)

const presentationPlaces = 2

var hundred = decimal.NewFromInt(100)

// DiscountResult holds the customer-facing figures derived from a price tuple.
type DiscountResult struct {
	DiscountAmount  decimal.Decimal `json:"discount_amount"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	SellingPrice    decimal.Decimal `json:"selling_price"`
}

// ComputeDiscount returns rate's share of the sale-minus-cost margin as the
// discount. A non-positive cost yields no discount. The percent is measured
// against the owner reference price and is zero when that price is zero.
// All outputs are rounded to two places.
func ComputeDiscount(tuple types.PriceTuple, rate decimal.Decimal) DiscountResult {
	amount := decimal.Zero
	if tuple.Cost.IsPositive() {
		amount = tuple.Sale.Sub(tuple.Cost).Mul(rate)
	}
	selling := tuple.Sale.Sub(amount)

	percent := decimal.Zero
	if !tuple.OwnerRef.IsZero() {
		percent = tuple.OwnerRef.Sub(selling).Div(tuple.OwnerRef).Mul(hundred)
	}

	return DiscountResult{
		DiscountAmount:  amount.Round(presentationPlaces),
		DiscountPercent: percent.Round(presentationPlaces),
		SellingPrice:    selling.Round(presentationPlaces),
	}
}
