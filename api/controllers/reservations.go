package controllers

import (
	"net/http"
	"strings"

	"github.com/tripdesk/backoffice/api/responses"
	"github.com/tripdesk/backoffice/api/validators"
	"github.com/tripdesk/backoffice/internal/booking"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
	"github.com/tripdesk/backoffice/pkg/pagination"
)

// ReservationCreate records a reservation. Under the advisory policy an
// over-allotted booking is still created and flagged in the response.
func ReservationCreate(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var input booking.CreateReservationInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		reservation, err := svc.CreateReservation(ctx, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reservation)
	}
}

func ReservationGet(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		reservation, err := svc.GetReservation(logg.WithReservationID(ctx, id.String()), id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, reservation)
	}
}

// ReservationList pages reservations newest first. partner_id and variant_id
// narrow the listing; active=true hides cancelled reservations.
func ReservationList(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		partnerID, err := validators.ParseOptionalQueryUUID(r, "partner_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		variantID, err := validators.ParseOptionalQueryUUID(r, "variant_id")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		list, err := svc.ListReservations(ctx, booking.ListReservationsParams{
			Params: pagination.Params{
				Limit:  limit,
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
			PartnerID:  partnerID,
			VariantID:  variantID,
			ActiveOnly: r.URL.Query().Get("active") == "true",
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}

// ReservationCancel releases the reservation's stock. Cancelling twice is a
// no-op.
func ReservationCancel(svc booking.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		id, err := validators.ParseUUIDParam(r, "reservationID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithReservationID(ctx, id.String())
		if err := svc.CancelReservation(ctx, id); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}
