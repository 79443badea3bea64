package middleware

import (
	"net/http"

	"github.com/lunamart/eshop/internal/identity"
)

// Identity extracts the caller identity headers set by the gateway into the
// request context. Requests without identity still pass through; handlers
// that require identity reject them.
func Identity() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			customerID := r.Header.Get(identity.CustomerIDHeader)
			if customerID == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := identity.NewContext(r.Context(), identity.Identity{
				CustomerID: customerID,
				Role:       r.Header.Get(identity.RoleHeader),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
