package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/lunamart/eshop/pkg/correlationid"
)

// CorrelationID propagates the caller's correlation ID, generating one when
// the header is absent. The ID is echoed back on the response.
func CorrelationID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			correlationID := r.Header.Get(correlationid.Header)
			if correlationID == "" {
				correlationID = uuid.NewString()
			}

			w.Header().Set(correlationid.Header, correlationID)

			ctx := correlationid.NewContext(r.Context(), correlationID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
