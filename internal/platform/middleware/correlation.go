package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"caredays/pkg/requestcontext"
)

const (
	// HeaderCorrelationID follows the request across every external call.
	HeaderCorrelationID = "X-Correlation-ID"
	// HeaderRequestID is an optional caller-supplied id echoed onto the
	// published record's envelope.
	HeaderRequestID = "X-Request-ID"
)

// Correlation ensures every request carries a correlation id, generating one
// when the caller did not supply it.
func Correlation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		correlationID := r.Header.Get(HeaderCorrelationID)
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		ctx := requestcontext.WithCorrelationID(r.Context(), correlationID)
		if requestID := r.Header.Get(HeaderRequestID); requestID != "" {
			ctx = requestcontext.WithRequestID(ctx, requestID)
		}
		w.Header().Set(HeaderCorrelationID, correlationID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
