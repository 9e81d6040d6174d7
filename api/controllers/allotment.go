package controllers

import (
	"context"
	"net/http"

	"github.com/tripdesk/backoffice/api/responses"
	"github.com/tripdesk/backoffice/api/validators"
	"github.com/tripdesk/backoffice/internal/allotment"
	pkgerrors "github.com/tripdesk/backoffice/pkg/errors"
	"github.com/tripdesk/backoffice/pkg/logger"
)

const maxCheckQuantity = 500

type allotmentChecker interface {
	Check(ctx context.Context, req allotment.Request) allotment.Result
}

// AllotmentCheck answers whether ?qty= units are free for the partner on
// every service date of the stay. An unsatisfiable outcome is still a 200.
func AllotmentCheck(checker allotmentChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if checker == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "allotment checker unavailable"))
			return
		}

		partnerID, err := validators.ParseUUIDParam(r, "partnerID")
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
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
		qty, err := validators.ParseQueryInt(r, "qty", 1, 1, maxCheckQuantity)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithPartnerID(ctx, partnerID.String())
		ctx = logg.WithVariantID(ctx, variantID.String())
		result := checker.Check(ctx, allotment.Request{
			PartnerID: partnerID,
			VariantID: variantID,
			CheckIn:   checkIn,
			CheckOut:  checkOut,
			Quantity:  int64(qty),
		})
		responses.WriteSuccess(w, result)
	}
}
