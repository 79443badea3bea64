package identity

import "context"

const (
	// Header names populated by the API gateway after token validation.
	// Token validation itself is not this repository's concern.
	CustomerIDHeader = "X-Customer-Id"
	RoleHeader       = "X-Customer-Role"

	RoleAdmin = "admin"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	CustomerID string
	Role       string
}

func (id Identity) IsAdmin() bool {
	return id.Role == RoleAdmin
}

// MayAccessBasket reports whether the caller may read or write the basket of
// the given customer. Customers own their basket; admins see all.
func (id Identity) MayAccessBasket(customerID string) bool {
	return id.IsAdmin() || id.CustomerID == customerID
}

type contextKey struct{}

func NewContext(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(Identity)
	return id, ok
}
