package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/internal/pricing"
	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/metrics"
	"github.com/tripdesk/backoffice/pkg/pagination"
	"github.com/tripdesk/backoffice/pkg/validation"
)

// Service records reservations against partner allotment.
type Service interface {
	CreateReservation(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error)
	GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error)
	ListReservations(ctx context.Context, params ListReservationsParams) (*ReservationList, error)
	CancelReservation(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type variantLoader interface {
	FindVariant(ctx context.Context, id uuid.UUID) (*models.PricedVariant, error)
}

type quoter interface {
	QuoteVariant(ctx context.Context, variant *models.PricedVariant, on time.Time) pricing.Quote
}

// LedgerFunc returns the allotment store to read through. tx is nil outside
// a guarded transaction.
type LedgerFunc func(tx *gorm.DB) allotment.Store

type service struct {
	tx           txRunner
	reservations *Repository
	variants     variantLoader
	ledger       LedgerFunc
	checker      *allotment.Checker
	quotes       quoter
	guard        Guard
	policy       enums.AllotmentPolicy
	logg         *logger.Logger
	metrics      *metrics.BookingMetrics
	now          func() time.Time
}

func NewService(
	tx txRunner,
	reservations *Repository,
	variants variantLoader,
	ledger LedgerFunc,
	checker *allotment.Checker,
	quotes quoter,
	guard Guard,
	policy enums.AllotmentPolicy,
	logg *logger.Logger,
	m *metrics.BookingMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation repository required")
	}
	if variants == nil {
		return nil, fmt.Errorf("variant loader required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("ledger required")
	}
	if checker == nil {
		return nil, fmt.Errorf("allotment checker required")
	}
	if quotes == nil {
		return nil, fmt.Errorf("quote service required")
	}
	if guard == nil {
		guard = NoGuard{}
	}
	if policy == "" {
		policy = enums.AllotmentPolicyAdvisory
	}
	if !policy.IsValid() {
		return nil, fmt.Errorf("unknown allotment policy %q", policy)
	}
	return &service{
		tx:           tx,
		reservations: reservations,
		variants:     variants,
		ledger:       ledger,
		checker:      checker,
		quotes:       quotes,
		guard:        guard,
		policy:       policy,
		logg:         logg,
		metrics:      m,
		now:          time.Now,
	}, nil
}

type parsedInput struct {
	partnerID uuid.UUID
	variantID uuid.UUID
	checkIn   time.Time
	checkOut  time.Time
	quantity  int64
}

func parseInput(input CreateReservationInput) (parsedInput, error) {
	if err := validation.Struct(&input); err != nil {
		return parsedInput{}, err
	}
	out := parsedInput{
		partnerID: uuid.MustParse(input.PartnerID),
		variantID: uuid.MustParse(input.VariantID),
		quantity:  input.Quantity,
	}
	var err error
	if out.checkIn, err = dates.Parse(input.CheckIn); err != nil {
		return parsedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid check_in")
	}
	if input.CheckOut != "" {
		if out.checkOut, err = dates.Parse(input.CheckOut); err != nil {
			return parsedInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid check_out")
		}
	}
	return out, nil
}

func (s *service) CreateReservation(ctx context.Context, input CreateReservationInput) (*ReservationDTO, error) {
	in, err := parseInput(input)
	if err != nil {
		s.metrics.IncRejected("validation")
		return nil, err
	}
	ctx = s.logg.WithPartnerID(ctx, in.partnerID.String())
	ctx = s.logg.WithVariantID(ctx, in.variantID.String())

	variant, err := s.variants.FindVariant(ctx, in.variantID)
	if err != nil {
		s.metrics.IncRejected("variant")
		return nil, err
	}
	if variant.IsRetired() {
		s.metrics.IncRejected("retired")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant is retired")
	}

	serviceDates := dates.ServiceDates(in.checkIn, in.checkOut, variant.Kind.NightBased())
	if len(serviceDates) == 0 {
		s.metrics.IncRejected("validation")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "check_out must be after check_in").
			WithDetails(map[string]string{"check_out": "must be after check_in"})
	}

	reservation := &models.Reservation{
		PartnerID: in.partnerID,
		VariantID: variant.ID,
		CheckIn:   dates.Normalize(in.checkIn),
		Quantity:  in.quantity,
		TotalSale: decimal.Zero,
		CreatedAt: s.now().UTC(),
		Lines:     make([]models.ReservationLine, 0, len(serviceDates)),
	}
	if !in.checkOut.IsZero() {
		checkOut := dates.Normalize(in.checkOut)
		reservation.CheckOut = &checkOut
	}
	slots := make([]Slot, 0, len(serviceDates))
	qty := decimal.NewFromInt(in.quantity)
	for _, d := range serviceDates {
		quote := s.quotes.QuoteVariant(ctx, variant, d)
		reservation.Lines = append(reservation.Lines, models.ReservationLine{
			VariantID:   variant.ID,
			ServiceDate: d,
			Quantity:    in.quantity,
			UnitSale:    quote.SellingPrice,
			UnitCost:    quote.Price.Cost,
		})
		reservation.TotalSale = reservation.TotalSale.Add(quote.SellingPrice.Mul(qty))
		slots = append(slots, Slot{PartnerID: in.partnerID, VariantID: variant.ID, Date: d})
	}

	var check allotment.Result
	err = s.guard.Run(ctx, slots, func(ctx context.Context, tx *gorm.DB) error {
		check = s.checker.WithStore(s.ledger(tx)).Check(ctx, allotment.Request{
			PartnerID: in.partnerID,
			VariantID: variant.ID,
			CheckIn:   in.checkIn,
			CheckOut:  in.checkOut,
			Quantity:  in.quantity,
		})
		if !check.Satisfiable() && s.policy == enums.AllotmentPolicyEnforcing {
			return pkgerrors.New(pkgerrors.CodeConflict, "allotment cannot satisfy the requested quantity").
				WithDetails(map[string]any{
					"reason": check.Reason,
					"note":   check.Note,
					"nights": check.Nights,
				})
		}

		reservation.AllotmentOutcome = check.Outcome
		reservation.AllotmentNote = check.Note
		if tx != nil {
			return s.reservations.WithTx(tx).Create(ctx, reservation)
		}
		return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			return s.reservations.WithTx(tx).Create(ctx, reservation)
		})
	})
	if err != nil {
		s.metrics.IncRejected(rejectReason(err))
		return nil, err
	}

	ctx = s.logg.WithReservationID(ctx, reservation.ID.String())
	ctx = s.logg.WithFields(ctx, map[string]any{
		"allotment_outcome": check.Outcome.String(),
		"allotment_reason":  check.Reason,
		"allotment_guard":   s.guard.Mode().String(),
		"allotment_policy":  s.policy.String(),
	})
	if check.Satisfiable() {
		s.logg.Info(ctx, "reservation created")
	} else {
		s.logg.Warn(ctx, "reservation created without allotment guarantee")
	}
	s.metrics.IncCreated(check.Outcome.String(), s.policy.String())

	dto := toDTO(reservation)
	dto.Nights = check.Nights
	return dto, nil
}

func (s *service) GetReservation(ctx context.Context, id uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.reservations.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toDTO(reservation), nil
}

func (s *service) ListReservations(ctx context.Context, params ListReservationsParams) (*ReservationList, error) {
	query := listQuery{
		partnerID:  params.PartnerID,
		variantID:  params.VariantID,
		activeOnly: params.ActiveOnly,
		limit:      pagination.LimitWithBuffer(params.Limit),
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.cursor = cursor
	}

	rows, err := s.reservations.List(ctx, query)
	if err != nil {
		return nil, err
	}

	rows, next := pagination.Split(rows, params.Limit, func(r models.Reservation) pagination.Cursor {
		return pagination.Cursor{CreatedAt: r.CreatedAt, ID: r.ID}
	})

	out := &ReservationList{Reservations: make([]ReservationDTO, 0, len(rows)), Cursor: next}
	for i := range rows {
		out.Reservations = append(out.Reservations, *toDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) CancelReservation(ctx context.Context, id uuid.UUID) error {
	ctx = s.logg.WithReservationID(ctx, id.String())
	var cancelled bool
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.reservations.WithTx(tx)
		if _, err := repo.FindByID(ctx, id); err != nil {
			return err
		}
		var err error
		cancelled, err = repo.Cancel(ctx, id, s.now())
		return err
	})
	if err != nil {
		return err
	}
	if cancelled {
		s.metrics.IncCancelled()
		s.logg.Info(ctx, "reservation cancelled")
	}
	return nil
}

func rejectReason(err error) string {
	typed := pkgerrors.As(err)
	if typed == nil {
		return "internal"
	}
	switch typed.Code() {
	case pkgerrors.CodeConflict:
		return "allotment"
	case pkgerrors.CodeContention:
		return "contention"
	case pkgerrors.CodeDependency:
		return "dependency"
	}
	return "internal"
}
