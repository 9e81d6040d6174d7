package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/enums"
)

// RateTable maps a product category to its discount rate.
type RateTable map[enums.ProductCategory]decimal.Decimal

// RatesFromConfig builds the table from the pricing configuration.
func RatesFromConfig(cfg config.PricingConfig) RateTable {
	return RateTable{
		enums.ProductCategoryHotel:   cfg.RateFor(enums.ProductCategoryHotel),
		enums.ProductCategoryTicket:  cfg.RateFor(enums.ProductCategoryTicket),
		enums.ProductCategoryVanTour: cfg.RateFor(enums.ProductCategoryVanTour),
	}
}

// For returns the rate of category, zero when unset.
func (t RateTable) For(category enums.ProductCategory) decimal.Decimal {
	if rate, ok := t[category]; ok {
		return rate
	}
	return decimal.Zero
}
