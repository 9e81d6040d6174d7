package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tripdesk/backoffice/api/responses"
	"github.com/tripdesk/backoffice/pkg/logger"
)

func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(responses.RequestIDHeader)
			if reqID == "" {
				reqID = uuid.NewString()
			}

			w.Header().Set(responses.RequestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
