package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/types"
)

// Service quotes customer prices for variants.
type Service interface {
	Quote(ctx context.Context, variantID uuid.UUID, on time.Time) (*Quote, error)
	QuoteStay(ctx context.Context, variantID uuid.UUID, checkIn, checkOut time.Time) (*StayQuote, error)
	QuoteVariant(ctx context.Context, variant *models.PricedVariant, on time.Time) Quote
}

// VariantLoader loads a variant with its product.
type VariantLoader interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.PricedVariant, error)
}

// Quote is the customer price of one variant on one date.
type Quote struct {
	VariantID uuid.UUID             `json:"variant_id"`
	Kind      enums.VariantKind     `json:"kind"`
	Category  enums.ProductCategory `json:"category"`
	Date      string                `json:"date"`
	Price     types.PriceTuple      `json:"price"`
	PeriodID  *uuid.UUID            `json:"period_id,omitempty"`
	Rate      decimal.Decimal       `json:"discount_rate"`
	DiscountResult
}

// StayQuote prices every service date of a stay.
type StayQuote struct {
	VariantID    uuid.UUID       `json:"variant_id"`
	CheckIn      string          `json:"check_in"`
	CheckOut     string          `json:"check_out,omitempty"`
	Dates        []Quote         `json:"dates"`
	TotalSelling decimal.Decimal `json:"total_selling"`
}

type service struct {
	variants VariantLoader
	resolver *Resolver
	rates    RateTable
}

func NewService(variants VariantLoader, resolver *Resolver, rates RateTable) (Service, error) {
	if variants == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver required")
	}
	if rates == nil {
		rates = RateTable{}
	}
	return &service{variants: variants, resolver: resolver, rates: rates}, nil
}

func (s *service) Quote(ctx context.Context, variantID uuid.UUID, on time.Time) (*Quote, error) {
	if on.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date is required")
	}
	variant, err := s.variants.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}
	quote := s.QuoteVariant(ctx, variant, on)
	return &quote, nil
}

func (s *service) QuoteStay(ctx context.Context, variantID uuid.UUID, checkIn, checkOut time.Time) (*StayQuote, error) {
	if checkIn.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check_in is required")
	}
	variant, err := s.variants.FindVariant(ctx, variantID)
	if err != nil {
		return nil, err
	}

	serviceDates := dates.ServiceDates(checkIn, checkOut, variant.Kind.NightBased())
	if len(serviceDates) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check_out must be after check_in")
	}

	stay := &StayQuote{
		VariantID:    variant.ID,
		CheckIn:      dates.Format(checkIn),
		Dates:        make([]Quote, 0, len(serviceDates)),
		TotalSelling: decimal.Zero,
	}
	if !checkOut.IsZero() {
		stay.CheckOut = dates.Format(checkOut)
	}
	for _, d := range serviceDates {
		q := s.QuoteVariant(ctx, variant, d)
		stay.Dates = append(stay.Dates, q)
		stay.TotalSelling = stay.TotalSelling.Add(q.SellingPrice)
	}
	return stay, nil
}

// QuoteVariant prices an already loaded variant. The category comes from the
// variant kind so a missing product association cannot change the rate.
func (s *service) QuoteVariant(ctx context.Context, variant *models.PricedVariant, on time.Time) Quote {
	category := variant.Kind.Category()
	rate := s.rates.For(category)
	res := s.resolver.Lookup(ctx, variant, on)

	return Quote{
		VariantID:      variant.ID,
		Kind:           variant.Kind,
		Category:       category,
		Date:           dates.Format(on),
		Price:          res.Tuple,
		PeriodID:       res.PeriodID,
		Rate:           rate,
		DiscountResult: ComputeDiscount(res.Tuple, rate),
	}
}
