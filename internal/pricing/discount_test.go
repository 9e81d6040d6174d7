package pricing

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/pkg/types"
)

func dec(value string) decimal.Decimal {
	return decimal.RequireFromString(value)
}

func TestComputeDiscount(t *testing.T) {
	tests := []struct {
		name        string
		tuple       types.PriceTuple
		rate        string
		wantAmount  string
		wantPercent string
		wantSelling string
	}{
		{
			name:        "half the margin",
			tuple:       types.PriceTuple{Sale: dec("1000"), Cost: dec("600"), OwnerRef: dec("1000")},
			rate:        "0.5",
			wantAmount:  "200",
			wantPercent: "20",
			wantSelling: "800",
		},
		{
			name:        "percent against owner reference",
			tuple:       types.PriceTuple{Sale: dec("1000"), Cost: dec("600"), OwnerRef: dec("1200")},
			rate:        "0.5",
			wantAmount:  "200",
			wantPercent: "33.33",
			wantSelling: "800",
		},
		{
			name:        "zero owner reference",
			tuple:       types.PriceTuple{Sale: dec("1000"), Cost: dec("600"), OwnerRef: decimal.Zero},
			rate:        "0.5",
			wantAmount:  "200",
			wantPercent: "0",
			wantSelling: "800",
		},
		{
			name:        "zero cost gives no discount",
			tuple:       types.PriceTuple{Sale: dec("1000"), Cost: decimal.Zero, OwnerRef: dec("1000")},
			rate:        "0.5",
			wantAmount:  "0",
			wantPercent: "0",
			wantSelling: "1000",
		},
		{
			name:        "zero rate",
			tuple:       types.PriceTuple{Sale: dec("450"), Cost: dec("300"), OwnerRef: dec("500")},
			rate:        "0",
			wantAmount:  "0",
			wantPercent: "10",
			wantSelling: "450",
		},
		{
			name:        "rounds to two places",
			tuple:       types.PriceTuple{Sale: dec("100.10"), Cost: dec("33.33"), OwnerRef: dec("120")},
			rate:        "0.333",
			wantAmount:  "22.23",
			wantPercent: "35.11",
			wantSelling: "77.87",
		},
		{
			name:        "cost above sale raises the price",
			tuple:       types.PriceTuple{Sale: dec("100"), Cost: dec("150"), OwnerRef: dec("100")},
			rate:        "0.5",
			wantAmount:  "-25",
			wantPercent: "-25",
			wantSelling: "125",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeDiscount(tt.tuple, dec(tt.rate))
			if !got.DiscountAmount.Equal(dec(tt.wantAmount)) {
				t.Fatalf("amount: want %s got %s", tt.wantAmount, got.DiscountAmount)
			}
			if !got.DiscountPercent.Equal(dec(tt.wantPercent)) {
				t.Fatalf("percent: want %s got %s", tt.wantPercent, got.DiscountPercent)
			}
			if !got.SellingPrice.Equal(dec(tt.wantSelling)) {
				t.Fatalf("selling: want %s got %s", tt.wantSelling, got.SellingPrice)
			}
		})
	}
}

func TestComputeDiscountZeroReferenceNeverDivides(t *testing.T) {
	for _, sale := range []string{"0", "1", "99999.99"} {
		got := ComputeDiscount(types.PriceTuple{Sale: dec(sale), Cost: dec("0.01")}, dec("1"))
		if !got.DiscountPercent.IsZero() {
			t.Fatalf("sale %s: expected zero percent, got %s", sale, got.DiscountPercent)
		}
	}
}
