package booking

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/internal/catalog"
	"github.com/tripdesk/backoffice/internal/pricing"
	"github.com/tripdesk/backoffice/pkg/db"
	"github.com/tripdesk/backoffice/pkg/db/dbtest"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/metrics"
	"github.com/tripdesk/backoffice/pkg/pagination"
)

type fixture struct {
	conn      *gorm.DB
	catalog   *catalog.Repository
	partnerID uuid.UUID
	variant   *models.PricedVariant
	registry  *prometheus.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	conn := dbtest.Open(t)
	repo := catalog.NewRepository(conn)

	product, err := repo.CreateProduct(ctx, &models.Product{Category: enums.ProductCategoryHotel, Name: "Lagoon Resort", IsActive: true})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	variant, err := repo.CreateVariant(ctx, &models.PricedVariant{
		ProductID:  product.ID,
		Kind:       enums.VariantKindRoomType,
		Name:       "Garden Villa",
		BasePrice:  decimal.NewFromInt(1000),
		BaseCost:   decimal.NewFromInt(600),
		OwnerPrice: decimal.NewFromInt(1200),
		AgentPrice: decimal.NewFromInt(900),
	})
	if err != nil {
		t.Fatalf("create variant: %v", err)
	}

	partnerID := uuid.New()
	if err := repo.LinkPartner(ctx, product.ID, partnerID); err != nil {
		t.Fatalf("link partner: %v", err)
	}
	if _, err := repo.UpsertAllotmentDefault(ctx, &models.PartnerAllotmentDefault{PartnerID: partnerID, VariantID: variant.ID, Stock: 2}); err != nil {
		t.Fatalf("seed default allotment: %v", err)
	}

	return &fixture{conn: conn, catalog: repo, partnerID: partnerID, variant: variant, registry: prometheus.NewRegistry()}
}

func (f *fixture) service(t *testing.T, guard Guard, policy enums.AllotmentPolicy) Service {
	t.Helper()
	quotes, err := pricing.NewService(f.catalog, pricing.NewResolver(f.catalog, nil, nil), pricing.RateTable{
		enums.ProductCategoryHotel: decimal.RequireFromString("0.5"),
	})
	if err != nil {
		t.Fatalf("pricing service: %v", err)
	}
	svc, err := NewService(
		db.NewFromConn(f.conn),
		NewRepository(f.conn),
		f.catalog,
		func(tx *gorm.DB) allotment.Store {
			if tx == nil {
				return f.catalog
			}
			return f.catalog.WithTx(tx)
		},
		allotment.NewChecker(f.catalog, nil, nil),
		quotes,
		guard,
		policy,
		nil,
		metrics.NewBookingMetrics(f.registry),
	)
	if err != nil {
		t.Fatalf("booking service: %v", err)
	}
	return svc
}

func (f *fixture) input(checkIn, checkOut string, qty int64) CreateReservationInput {
	return CreateReservationInput{
		PartnerID: f.partnerID.String(),
		VariantID: f.variant.ID.String(),
		CheckIn:   checkIn,
		CheckOut:  checkOut,
		Quantity:  qty,
	}
}

func TestCreateReservationWritesLinePerNight(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)

	res, err := svc.CreateReservation(context.Background(), f.input("2025-07-01", "2025-07-04", 2))
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if res.AllotmentOutcome != enums.AllotmentOutcomeSatisfiable {
		t.Fatalf("expected satisfiable outcome, got %s (%s)", res.AllotmentOutcome, res.AllotmentNote)
	}
	if len(res.Lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(res.Lines))
	}
	if res.Lines[0].ServiceDate != "2025-07-01" || res.Lines[2].ServiceDate != "2025-07-03" {
		t.Fatalf("unexpected service dates %+v", res.Lines)
	}
	// selling 800 per night, 3 nights, 2 rooms
	if !res.TotalSale.Equal(decimal.NewFromInt(4800)) {
		t.Fatalf("expected total 4800, got %s", res.TotalSale)
	}
	if !res.Lines[0].UnitCost.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("expected unit cost 600, got %s", res.Lines[0].UnitCost)
	}

	booked, err := f.catalog.BookedQuantity(context.Background(), f.variant.ID, time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("booked quantity: %v", err)
	}
	if booked != 2 {
		t.Fatalf("expected 2 booked, got %d", booked)
	}
}

func TestAdvisoryPolicyRecordsUnsatisfiableBooking(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-02", 2)); err != nil {
		t.Fatalf("first reservation: %v", err)
	}
	res, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-02", 1))
	if err != nil {
		t.Fatalf("advisory policy must not reject: %v", err)
	}
	if res.AllotmentOutcome != enums.AllotmentOutcomeUnsatisfiable {
		t.Fatalf("expected unsatisfiable flag, got %s", res.AllotmentOutcome)
	}
	if res.AllotmentNote == "" {
		t.Fatal("expected a descriptive allotment note")
	}

	stored, err := svc.GetReservation(ctx, res.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if stored.AllotmentOutcome != enums.AllotmentOutcomeUnsatisfiable {
		t.Fatalf("expected stored flag, got %s", stored.AllotmentOutcome)
	}
}

func TestEnforcingPolicyRejectsUnsatisfiableBooking(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyEnforcing)
	ctx := context.Background()

	_, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-03", 3))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	var count int64
	if err := f.conn.Model(&models.Reservation{}).Count(&count).Error; err != nil {
		t.Fatalf("count reservations: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected nothing persisted, got %d reservations", count)
	}
}

func TestNoPartnerProductIsFlaggedNotRejected(t *testing.T) {
	f := newFixture(t)
	if err := f.catalog.UnlinkPartner(context.Background(), f.variant.ProductID, f.partnerID); err != nil {
		t.Fatalf("unlink: %v", err)
	}
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)

	res, err := svc.CreateReservation(context.Background(), f.input("2025-07-01", "2025-07-02", 1))
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if res.AllotmentOutcome != enums.AllotmentOutcomeUnsatisfiable {
		t.Fatalf("expected unsatisfiable outcome without partner link, got %s", res.AllotmentOutcome)
	}
}

func TestTransactionGuardWritesInsideTransaction(t *testing.T) {
	f := newFixture(t)
	guard, err := NewGuard(configFor(enums.AllotmentGuardTransaction), db.NewFromConn(f.conn), nil, nil)
	if err != nil {
		t.Fatalf("new guard: %v", err)
	}
	svc := f.service(t, guard, enums.AllotmentPolicyEnforcing)
	ctx := context.Background()

	if _, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-03", 2)); err != nil {
		t.Fatalf("guarded reservation: %v", err)
	}
	_, err = svc.CreateReservation(ctx, f.input("2025-07-02", "2025-07-03", 1))
	if !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected the second booking to see the first, got %v", err)
	}
}

type failingSerializableRunner struct{}

func (failingSerializableRunner) WithSerializableTx(context.Context, func(tx *gorm.DB) error) error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access due to read/write dependencies"}
}

func TestTransactionGuardMapsSerializationFailure(t *testing.T) {
	guard := TransactionGuard{runner: failingSerializableRunner{}}
	err := guard.Run(context.Background(), nil, func(context.Context, *gorm.DB) error { return nil })
	if !pkgerrors.IsCode(err, pkgerrors.CodeContention) {
		t.Fatalf("expected contention, got %v", err)
	}
	if !pkgerrors.IsRetryable(err) {
		t.Fatal("expected contention to be retryable")
	}
}

func TestCancelReservationReleasesStock(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyEnforcing)
	ctx := context.Background()

	first, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-02", 2))
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if _, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-02", 1)); !pkgerrors.IsCode(err, pkgerrors.CodeConflict) {
		t.Fatalf("expected the night to be full, got %v", err)
	}

	if err := svc.CancelReservation(ctx, first.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if err := svc.CancelReservation(ctx, first.ID); err != nil {
		t.Fatalf("second cancel should be a no-op: %v", err)
	}

	cancelled, err := svc.GetReservation(ctx, first.ID)
	if err != nil {
		t.Fatalf("get reservation: %v", err)
	}
	if cancelled.CancelledAt == nil || len(cancelled.Lines) != 1 || !cancelled.Lines[0].Cancelled {
		t.Fatalf("expected cancelled reservation with released line, got %+v", cancelled)
	}

	if _, err := svc.CreateReservation(ctx, f.input("2025-07-01", "2025-07-02", 2)); err != nil {
		t.Fatalf("expected stock to be free again: %v", err)
	}

	if err := svc.CancelReservation(ctx, uuid.New()); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListReservationsPagesNewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)
	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.(*service).now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	ctx := context.Background()

	var ids []uuid.UUID
	for _, checkIn := range []string{"2025-07-01", "2025-07-02", "2025-07-03"} {
		day, _ := time.Parse("2006-01-02", checkIn)
		created, err := svc.CreateReservation(ctx, f.input(checkIn, day.AddDate(0, 0, 1).Format("2006-01-02"), 1))
		if err != nil {
			t.Fatalf("create %s: %v", checkIn, err)
		}
		ids = append(ids, created.ID)
	}
	if err := svc.CancelReservation(ctx, ids[0]); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	page, err := svc.ListReservations(ctx, ListReservationsParams{Params: pagination.Params{Limit: 2}, PartnerID: f.partnerID})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Reservations) != 2 || page.Cursor == "" {
		t.Fatalf("expected a full first page with cursor, got %+v", page)
	}
	if page.Reservations[0].ID != ids[2] || page.Reservations[1].ID != ids[1] {
		t.Fatalf("expected newest first, got %s then %s", page.Reservations[0].ID, page.Reservations[1].ID)
	}

	rest, err := svc.ListReservations(ctx, ListReservationsParams{Params: pagination.Params{Limit: 2, Cursor: page.Cursor}, PartnerID: f.partnerID})
	if err != nil {
		t.Fatalf("list second page: %v", err)
	}
	if len(rest.Reservations) != 1 || rest.Reservations[0].ID != ids[0] || rest.Cursor != "" {
		t.Fatalf("unexpected second page %+v", rest)
	}

	active, err := svc.ListReservations(ctx, ListReservationsParams{PartnerID: f.partnerID, ActiveOnly: true})
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active.Reservations) != 2 {
		t.Fatalf("expected cancelled reservation to be filtered, got %d", len(active.Reservations))
	}

	other, err := svc.ListReservations(ctx, ListReservationsParams{PartnerID: uuid.New()})
	if err != nil || len(other.Reservations) != 0 {
		t.Fatalf("expected empty page for unknown partner, got %+v (%v)", other, err)
	}

	if _, err := svc.ListReservations(ctx, ListReservationsParams{Params: pagination.Params{Cursor: "%%%"}}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for bad cursor, got %v", err)
	}
}

func TestCreateReservationValidation(t *testing.T) {
	f := newFixture(t)
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateReservationInput
		code  pkgerrors.Code
	}{
		{name: "bad partner", input: CreateReservationInput{PartnerID: "x", VariantID: f.variant.ID.String(), CheckIn: "2025-07-01", Quantity: 1}, code: pkgerrors.CodeValidation},
		{name: "zero quantity", input: f.input("2025-07-01", "2025-07-02", 0), code: pkgerrors.CodeValidation},
		{name: "bad date", input: f.input("07/01/2025", "", 1), code: pkgerrors.CodeValidation},
		{name: "night stay without checkout", input: f.input("2025-07-01", "", 1), code: pkgerrors.CodeValidation},
		{name: "checkout before checkin", input: f.input("2025-07-03", "2025-07-01", 1), code: pkgerrors.CodeValidation},
		{name: "unknown variant", input: CreateReservationInput{PartnerID: f.partnerID.String(), VariantID: uuid.NewString(), CheckIn: "2025-07-01", CheckOut: "2025-07-02", Quantity: 1}, code: pkgerrors.CodeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateReservation(ctx, tt.input)
			if !pkgerrors.IsCode(err, tt.code) {
				t.Fatalf("expected %s, got %v", tt.code, err)
			}
		})
	}
}

func TestCreateReservationRejectsRetiredVariant(t *testing.T) {
	f := newFixture(t)
	if err := f.catalog.RetireVariant(context.Background(), f.variant.ID, time.Now()); err != nil {
		t.Fatalf("retire: %v", err)
	}
	svc := f.service(t, NoGuard{}, enums.AllotmentPolicyAdvisory)

	_, err := svc.CreateReservation(context.Background(), f.input("2025-07-01", "2025-07-02", 1))
	if !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(nil, nil, nil, nil, nil, nil, nil, "", nil, nil)
	if err == nil {
		t.Fatal("expected error for missing dependencies")
	}
}
