package booking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripdesk/backoffice/internal/allotment"
	"github.com/tripdesk/backoffice/pkg/dates"
	"github.com/tripdesk/backoffice/pkg/db/models"
	"github.com/tripdesk/backoffice/pkg/enums"
	"github.com/tripdesk/backoffice/pkg/pagination"
)

// CreateReservationInput is the validated request to book a variant through
// a partner. CheckOut is exclusive and required for night-based variants.
type CreateReservationInput struct {
	PartnerID string `json:"partner_id" validate:"required,uuid"`
	VariantID string `json:"variant_id" validate:"required,uuid"`
	CheckIn   string `json:"check_in" validate:"required,datetime=2006-01-02"`
	CheckOut  string `json:"check_out" validate:"omitempty,datetime=2006-01-02"`
	Quantity  int64  `json:"quantity" validate:"required,gte=1,lte=500"`
}

// ListReservationsParams filters a reservation listing. Zero ids match any
// partner or variant.
type ListReservationsParams struct {
	pagination.Params
	PartnerID  uuid.UUID
	VariantID  uuid.UUID
	ActiveOnly bool
}

// ReservationList is one page of reservations. Lines are not loaded.
type ReservationList struct {
	Reservations []ReservationDTO `json:"reservations"`
	Cursor       string           `json:"cursor,omitempty"`
}

// ReservationLineDTO is one service date of a reservation.
type ReservationLineDTO struct {
	ID          uuid.UUID       `json:"id"`
	ServiceDate string          `json:"service_date"`
	Quantity    int64           `json:"quantity"`
	UnitSale    decimal.Decimal `json:"unit_sale"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	Cancelled   bool            `json:"cancelled"`
}

// ReservationDTO is the read model returned to callers.
type ReservationDTO struct {
	ID               uuid.UUID                 `json:"id"`
	PartnerID        uuid.UUID                 `json:"partner_id"`
	VariantID        uuid.UUID                 `json:"variant_id"`
	CheckIn          string                    `json:"check_in"`
	CheckOut         string                    `json:"check_out,omitempty"`
	Quantity         int64                     `json:"quantity"`
	AllotmentOutcome enums.AllotmentOutcome    `json:"allotment_outcome"`
	AllotmentNote    string                    `json:"allotment_note"`
	TotalSale        decimal.Decimal           `json:"total_sale"`
	CancelledAt      *time.Time                `json:"cancelled_at,omitempty"`
	CreatedAt        time.Time                 `json:"created_at"`
	Lines            []ReservationLineDTO      `json:"lines"`
	Nights           []allotment.NightCapacity `json:"allotment_nights,omitempty"`
}

func toDTO(r *models.Reservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	out := &ReservationDTO{
		ID:               r.ID,
		PartnerID:        r.PartnerID,
		VariantID:        r.VariantID,
		CheckIn:          dates.Format(r.CheckIn),
		Quantity:         r.Quantity,
		AllotmentOutcome: r.AllotmentOutcome,
		AllotmentNote:    r.AllotmentNote,
		TotalSale:        r.TotalSale,
		CancelledAt:      r.CancelledAt,
		CreatedAt:        r.CreatedAt,
		Lines:            make([]ReservationLineDTO, 0, len(r.Lines)),
	}
	if r.CheckOut != nil {
		out.CheckOut = dates.Format(*r.CheckOut)
	}
	for _, line := range r.Lines {
		out.Lines = append(out.Lines, ReservationLineDTO{
			ID:          line.ID,
			ServiceDate: dates.Format(line.ServiceDate),
			Quantity:    line.Quantity,
			UnitSale:    line.UnitSale,
			UnitCost:    line.UnitCost,
			Cancelled:   line.DeletedAt.Valid,
		})
	}
	return out
}
