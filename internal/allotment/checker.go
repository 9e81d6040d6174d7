package allotment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/metrics"
)

// Store is the read side of the inventory ledger.
type Store interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.PricedVariant, error)
	CountPartners(ctx context.Context, productID uuid.UUID) (int64, error)
	FindAllotment(ctx context.Context, partnerID, variantID uuid.UUID, day time.Time) (*models.PartnerAllotment, error)
	FindAllotmentDefault(ctx context.Context, partnerID, variantID uuid.UUID) (*models.PartnerAllotmentDefault, error)
	BookedQuantity(ctx context.Context, variantID uuid.UUID, day time.Time) (int64, error)
}

// Reasons label why a check ended the way it did.
const (
	ReasonOK                = "ok"
	ReasonInvalidQuantity   = "invalid_quantity"
	ReasonEmptyRange        = "empty_range"
	ReasonVariantNotFound   = "variant_not_found"
	ReasonNoPartner         = "no_partner"
	ReasonLookupFailed      = "lookup_failed"
	ReasonInsufficientStock = "insufficient_stock"
)

// Stock sources of a night.
const (
	SourceAllotment = "allotment"
	SourceDefault   = "default"
	SourceNone      = "none"
)

// Request asks whether Quantity units are free on every service date of the
// stay. CheckOut is exclusive.
type Request struct {
	PartnerID uuid.UUID
	VariantID uuid.UUID
	CheckIn   time.Time
	CheckOut  time.Time
	Quantity  int64
}

// NightCapacity is the ledger state of one evaluated service date.
type NightCapacity struct {
	Date      string `json:"date"`
	Stock     int64  `json:"stock"`
	Booked    int64  `json:"booked"`
	Remaining int64  `json:"remaining"`
	Source    string `json:"source"`
}

// Result is the outcome of a check. Nights stops at the first failing date.
type Result struct {
	Outcome enums.AllotmentOutcome `json:"outcome"`
	Reason  string                 `json:"reason"`
	Note    string                 `json:"note"`
	Nights  []NightCapacity        `json:"nights"`
}

// Satisfiable reports whether the outcome is satisfiable.
func (r Result) Satisfiable() bool {
	return r.Outcome == enums.AllotmentOutcomeSatisfiable
}

// Checker evaluates partner capacity against booked reservation lines. It
// holds no state between calls.
type Checker struct {
	store   Store
	logg    *logger.Logger
	metrics *metrics.AllotmentMetrics
}

func NewChecker(store Store, logg *logger.Logger, m *metrics.AllotmentMetrics) *Checker {
	return &Checker{store: store, logg: logg, metrics: m}
}

// WithStore returns a checker reading through store, typically bound to an
// open transaction.
func (c *Checker) WithStore(store Store) *Checker {
	return &Checker{store: store, logg: c.logg, metrics: c.metrics}
}

// IsSatisfiable reports whether the partner can supply quantity units on every
// night of [checkIn, checkOut).
func (c *Checker) IsSatisfiable(ctx context.Context, partnerID, variantID uuid.UUID, checkIn, checkOut time.Time, quantity int64) bool {
	return c.Check(ctx, Request{
		PartnerID: partnerID,
		VariantID: variantID,
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Quantity:  quantity,
	}).Satisfiable()
}

// Check evaluates req and never fails: lookup errors and missing data yield
// an unsatisfiable result carrying the reason.
func (c *Checker) Check(ctx context.Context, req Request) Result {
	started := time.Now()
	ctx = c.logg.WithFields(ctx, map[string]any{
		"partner_id": req.PartnerID.String(),
		"variant_id": req.VariantID.String(),
	})

	res := c.evaluate(ctx, req)
	c.metrics.ObserveCheck(res.Outcome.String(), res.Reason, len(res.Nights), time.Since(started))
	if !res.Satisfiable() {
		c.logg.Debug(c.logg.WithField(ctx, "reason", res.Reason), res.Note)
	}
	return res
}

func (c *Checker) evaluate(ctx context.Context, req Request) Result {
	if req.Quantity <= 0 {
		return unsatisfiable(ReasonInvalidQuantity, fmt.Sprintf("requested quantity %d is not positive", req.Quantity), nil)
	}

	variant, err := c.store.FindVariant(ctx, req.VariantID)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
			return unsatisfiable(ReasonVariantNotFound, "variant not found", nil)
		}
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "allotment variant lookup failed")
		return unsatisfiable(ReasonLookupFailed, "variant lookup failed", nil)
	}

	partners, err := c.store.CountPartners(ctx, variant.ProductID)
	if err != nil {
		c.logg.Warn(c.logg.WithField(ctx, "error", err.Error()), "allotment partner lookup failed")
		return unsatisfiable(ReasonLookupFailed, "partner lookup failed", nil)
	}
	if partners == 0 {
		return unsatisfiable(ReasonNoPartner, "product has no partner-managed allotment", nil)
	}

	serviceDates := dates.ServiceDates(req.CheckIn, req.CheckOut, variant.Kind.NightBased())
	if len(serviceDates) == 0 {
		return unsatisfiable(ReasonEmptyRange, "stay covers no service dates", nil)
	}

	// loaded lazily, at most once per check
	var (
		fallback       *models.PartnerAllotmentDefault
		fallbackLoaded bool
	)
	nights := make([]NightCapacity, 0, len(serviceDates))
	for _, d := range serviceDates {
		night := NightCapacity{Date: dates.Format(d), Source: SourceNone}

		row, err := c.store.FindAllotment(ctx, req.PartnerID, req.VariantID, d)
		if err != nil {
			return c.lookupFailed(ctx, night.Date, err, nights)
		}
		if row != nil {
			night.Stock, night.Source = row.Stock, SourceAllotment
		} else {
			if !fallbackLoaded {
				fallback, err = c.store.FindAllotmentDefault(ctx, req.PartnerID, req.VariantID)
				if err != nil {
					return c.lookupFailed(ctx, night.Date, err, nights)
				}
				fallbackLoaded = true
			}
			if fallback != nil {
				night.Stock, night.Source = fallback.Stock, SourceDefault
			}
		}

		booked, err := c.store.BookedQuantity(ctx, req.VariantID, d)
		if err != nil {
			return c.lookupFailed(ctx, night.Date, err, nights)
		}
		night.Booked = booked
		night.Remaining = night.Stock - booked
		nights = append(nights, night)

		if night.Remaining < req.Quantity {
			return unsatisfiable(ReasonInsufficientStock,
				fmt.Sprintf("%s: requested %d, remaining %d of %d", night.Date, req.Quantity, night.Remaining, night.Stock),
				nights)
		}
	}

	return Result{
		Outcome: enums.AllotmentOutcomeSatisfiable,
		Reason:  ReasonOK,
		Note:    fmt.Sprintf("%d service date(s) available", len(nights)),
		Nights:  nights,
	}
}

func (c *Checker) lookupFailed(ctx context.Context, date string, err error, nights []NightCapacity) Result {
	ctx = c.logg.WithFields(ctx, map[string]any{"date": date, "error": err.Error()})
	c.logg.Warn(ctx, "allotment ledger lookup failed")
	return unsatisfiable(ReasonLookupFailed, fmt.Sprintf("%s: ledger lookup failed", date), nights)
}

func unsatisfiable(reason, note string, nights []NightCapacity) Result {
	return Result{
		Outcome: enums.AllotmentOutcomeUnsatisfiable,
		Reason:  reason,
		Note:    note,
		Nights:  nights,
	}
}
