package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/internal/app"
	"github.com/tripdesk/backoffice/internal/booking"
	"github.com/tripdesk/backoffice/pkg/config"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/db/dbtest"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
)

type harness struct {
	services  *app.Services
	productID uuid.UUID
	variantID uuid.UUID
	partnerID uuid.UUID
}

func newHarness(t *testing.T, policy enums.AllotmentPolicy) *harness {
	t.Helper()
	ctx := context.Background()
	services, err := app.NewServices(app.ServiceParams{
		Config: &config.Config{
			Pricing: config.PricingConfig{
				TicketDiscountRate: decimal.RequireFromString("0.5"),
			},
			Allotment: config.AllotmentConfig{Policy: policy, Guard: enums.AllotmentGuardNone},
		},
		DB: db.NewFromConn(dbtest.Open(t)),
	})
	if err != nil {
		t.Fatalf("NewServices: %v", err)
	}

	product, err := services.Catalog.CreateProduct(ctx, &models.Product{Category: enums.ProductCategoryTicket, Name: "Harbour Cruise", IsActive: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant, err := services.Catalog.CreateVariant(ctx, &models.PricedVariant{
		ProductID:  product.ID,
		Kind:       enums.VariantKindTicketTier,
		Name:       "Adult",
		BasePrice:  decimal.NewFromInt(100),
		BaseCost:   decimal.NewFromInt(60),
		OwnerPrice: decimal.NewFromInt(120),
	})
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}
	return &harness{services: services, productID: product.ID, variantID: variant.ID, partnerID: uuid.New()}
}

func (h *harness) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	root := newRootCmd(&cli{out: out, services: h.services})
	root.SetArgs(args)
	root.SetErr(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuoteCommandAppliesPeriodAndDiscount(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyAdvisory)

	if _, err := h.run(t, "period", "add", h.variantID.String(), "--start", "2025-07-01", "--end", "2025-07-31", "--sale", "150", "--cost", "90"); err != nil {
		t.Fatalf("period add: %v", err)
	}

	out, err := h.run(t, "quote", h.variantID.String(), "--date", "2025-07-10", "-o", "json")
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	var quote struct {
		SellingPrice decimal.Decimal `json:"selling_price"`
		PeriodID     *uuid.UUID      `json:"period_id"`
	}
	if err := json.Unmarshal([]byte(out), &quote); err != nil {
		t.Fatalf("decode quote: %v (%s)", err, out)
	}
	if quote.PeriodID == nil {
		t.Fatalf("expected the period to apply, got %s", out)
	}
	if !quote.SellingPrice.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("expected selling 120, got %s", quote.SellingPrice)
	}

	out, err = h.run(t, "quote", h.variantID.String(), "--date", "2025-08-01")
	if err != nil {
		t.Fatalf("quote outside period: %v", err)
	}
	if !strings.Contains(out, "base") || !strings.Contains(out, "80.00") {
		t.Fatalf("expected base price table with selling 80.00, got:\n%s", out)
	}
}

func TestQuoteCommandRequiresOneDateMode(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyAdvisory)
	if _, err := h.run(t, "quote", h.variantID.String()); err == nil {
		t.Fatal("expected error without --date or --check-in")
	}
	if _, err := h.run(t, "quote", h.variantID.String(), "--date", "2025-07-01", "--check-in", "2025-07-01"); err == nil {
		t.Fatal("expected error with both --date and --check-in")
	}
}

func TestCheckAndReserveFlow(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyEnforcing)
	partner, variant := h.partnerID.String(), h.variantID.String()

	out, err := h.run(t, "check", partner, variant, "--check-in", "2025-07-01", "-o", "json")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var result allotment.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Reason != allotment.ReasonNoPartner {
		t.Fatalf("expected no partner before linking, got %+v", result)
	}

	if _, err := h.run(t, "allotment", "link", h.productID.String(), partner); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := h.run(t, "allotment", "set", partner, variant, "--date", "2025-07-01", "--stock", "2"); err != nil {
		t.Fatalf("allotment set: %v", err)
	}

	out, err = h.run(t, "reserve", "--partner", partner, "--variant", variant, "--check-in", "2025-07-01", "--qty", "2", "-o", "json")
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	var reservation booking.ReservationDTO
	if err := json.Unmarshal([]byte(out), &reservation); err != nil {
		t.Fatalf("decode reservation: %v", err)
	}
	if reservation.AllotmentOutcome != enums.AllotmentOutcomeSatisfiable || len(reservation.Lines) != 1 {
		t.Fatalf("unexpected reservation %+v", reservation)
	}

	if _, err := h.run(t, "reserve", "--partner", partner, "--variant", variant, "--check-in", "2025-07-01"); err == nil {
		t.Fatal("enforcing policy should reject a third unit")
	}

	out, err = h.run(t, "check", partner, variant, "--check-in", "2025-07-01")
	if err != nil {
		t.Fatalf("check after booking: %v", err)
	}
	if !strings.Contains(out, "unsatisfiable") || !strings.Contains(out, "allotment") {
		t.Fatalf("expected exhausted allotment table, got:\n%s", out)
	}

	if _, err := h.run(t, "cancel", reservation.ID.String()); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	out, err = h.run(t, "show", reservation.ID.String())
	if err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(out, "cancelled at") {
		t.Fatalf("expected cancelled reservation, got:\n%s", out)
	}

	out, err = h.run(t, "list", "--partner", partner, "--active", "-o", "json")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var list booking.ReservationList
	if err := json.Unmarshal([]byte(out), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Reservations) != 0 {
		t.Fatalf("expected no active reservations after cancel, got %d", len(list.Reservations))
	}
	out, err = h.run(t, "list", "--partner", partner)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if !strings.Contains(out, reservation.ID.String()) || !strings.Contains(out, "true") {
		t.Fatalf("expected cancelled reservation in table, got:\n%s", out)
	}
}

func TestAllotmentDefaultCommand(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyAdvisory)
	partner, variant := h.partnerID.String(), h.variantID.String()

	if _, err := h.run(t, "allotment", "link", h.productID.String(), partner); err != nil {
		t.Fatalf("link: %v", err)
	}
	if _, err := h.run(t, "allotment", "default", partner, variant, "--stock", "4"); err != nil {
		t.Fatalf("default: %v", err)
	}

	out, err := h.run(t, "check", partner, variant, "--check-in", "2025-09-01", "--qty", "4", "-o", "json")
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	var result allotment.Result
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !result.Satisfiable() || result.Nights[0].Source != allotment.SourceDefault {
		t.Fatalf("expected default stock to satisfy, got %+v", result)
	}
}

func TestPeriodListAndDelete(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyAdvisory)
	variant := h.variantID.String()

	if _, err := h.run(t, "period", "add", variant, "--start", "2025-07-10", "--end", "2025-07-01", "--sale", "1", "--cost", "1"); err == nil {
		t.Fatal("expected inverted range to be rejected")
	}
	if _, err := h.run(t, "period", "add", variant, "--start", "2025-07-01", "--end", "2025-07-10", "--sale", "150", "--cost", "90"); err != nil {
		t.Fatalf("period add: %v", err)
	}

	out, err := h.run(t, "period", "list", variant, "-o", "json")
	if err != nil {
		t.Fatalf("period list: %v", err)
	}
	var periods []models.PricePeriod
	if err := json.Unmarshal([]byte(out), &periods); err != nil {
		t.Fatalf("decode periods: %v", err)
	}
	if len(periods) != 1 {
		t.Fatalf("expected one period, got %d", len(periods))
	}

	if _, err := h.run(t, "period", "delete", periods[0].ID.String()); err != nil {
		t.Fatalf("period delete: %v", err)
	}
	if _, err := h.run(t, "period", "delete", periods[0].ID.String()); err == nil {
		t.Fatal("expected deleting twice to fail")
	}
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	h := newHarness(t, enums.AllotmentPolicyAdvisory)
	if _, err := h.run(t, "quote", h.variantID.String(), "--date", "2025-07-01", "-o", "yaml"); err == nil {
		t.Fatal("expected invalid output format to fail")
	}
}
