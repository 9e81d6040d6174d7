package controllers

import (
	"net/http"

	"github.com/tripdesk/backoffice/api/responses"
	"github.com/tripdesk/backoffice/api/validators"
	"github.com/tripdesk/backoffice/internal/pricing"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
)

// VariantQuote prices a variant on the ?date= service date.
func VariantQuote(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		variantID, err := validators.ParseUUIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		on, err := validators.ParseQueryDate(r, "date")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := svc.Quote(logg.WithVariantID(ctx, variantID.String()), variantID, on)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}

// VariantStayQuote prices every service date between ?check_in= and the
// exclusive ?check_out=.
func VariantStayQuote(svc pricing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		variantID, err := validators.ParseUUIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		checkIn, err := validators.ParseQueryDate(r, "check_in")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		checkOut, err := validators.ParseOptionalQueryDate(r, "check_out")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		quote, err := svc.QuoteStay(logg.WithVariantID(ctx, variantID.String()), variantID, checkIn, checkOut)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, quote)
	}
}
