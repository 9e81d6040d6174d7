package pricing

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/metrics"
	"github.com/tripdesk/backoffice/pkg/types"
)

// Priced is the pricing capability shared by every variant kind.
type Priced interface {
	PricingID() uuid.UUID
	PricingKind() enums.VariantKind
	BaseTuple() types.PriceTuple
}

// PeriodFinder returns the override period covering day, or nil.
type PeriodFinder interface {
	FindCoveringPeriod(ctx context.Context, variantID uuid.UUID, day time.Time) (*models.PricePeriod, error)
}

// Resolution is a resolved tuple plus the period that produced it, if any.
type Resolution struct {
	Tuple    types.PriceTuple
	PeriodID *uuid.UUID
	Source   string
}

// Resolver picks the effective price of a variant on a date.
type Resolver struct {
	periods PeriodFinder
	logg    *logger.Logger
	metrics *metrics.PricingMetrics
}

func NewResolver(periods PeriodFinder, logg *logger.Logger, m *metrics.PricingMetrics) *Resolver {
	return &Resolver{periods: periods, logg: logg, metrics: m}
}

// Resolve returns the effective price tuple of variant on the given date.
func (r *Resolver) Resolve(ctx context.Context, variant Priced, on time.Time) types.PriceTuple {
	return r.Lookup(ctx, variant, on).Tuple
}

// Lookup resolves the price and reports its source. It never fails: a
// missing period or a store error both yield the variant's base tuple.
func (r *Resolver) Lookup(ctx context.Context, variant Priced, on time.Time) Resolution {
	base := variant.BaseTuple()
	kind := variant.PricingKind().String()

	if r == nil || r.periods == nil {
		return Resolution{Tuple: base, Source: metrics.PriceSourceBase}
	}

	period, err := r.periods.FindCoveringPeriod(ctx, variant.PricingID(), dates.Normalize(on))
	if err != nil {
		ctx = r.logg.WithFields(ctx, map[string]any{
			"variant_id": variant.PricingID().String(),
			"date":       dates.Format(on),
		})
		r.logg.Error(ctx, "price period lookup failed, using base price", err)
		r.metrics.IncResolution(metrics.PriceSourceFallback, kind)
		return Resolution{Tuple: base, Source: metrics.PriceSourceFallback}
	}
	if period == nil {
		r.metrics.IncResolution(metrics.PriceSourceBase, kind)
		return Resolution{Tuple: base, Source: metrics.PriceSourceBase}
	}

	r.metrics.IncResolution(metrics.PriceSourcePeriod, kind)
	id := period.ID
	return Resolution{
		Tuple: types.PriceTuple{
			Sale:     period.SalePrice,
			Cost:     period.CostPrice,
			OwnerRef: base.OwnerRef,
			Agent:    period.AgentPrice,
		},
		PeriodID: &id,
		Source:   metrics.PriceSourcePeriod,
	}
}
