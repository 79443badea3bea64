package identity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lunamart/eshop/internal/identity"
)

func TestMayAccessBasket(t *testing.T) {
	t.Run("Should allow customer to access own basket", func(t *testing.T) {
		id := identity.Identity{CustomerID: "alice"}
		assert.True(t, id.MayAccessBasket("alice"))
	})

	t.Run("Should deny customer access to another basket", func(t *testing.T) {
		id := identity.Identity{CustomerID: "alice"}
		assert.False(t, id.MayAccessBasket("bob"))
	})

	t.Run("Should allow admin access to any basket", func(t *testing.T) {
		id := identity.Identity{CustomerID: "root", Role: identity.RoleAdmin}
		assert.True(t, id.MayAccessBasket("bob"))
	})
}

func TestContext(t *testing.T) {
	t.Run("Should round trip identity through context", func(t *testing.T) {
		ctx := identity.NewContext(context.Background(), identity.Identity{CustomerID: "alice"})

		id, ok := identity.FromContext(ctx)
		assert.True(t, ok)
		assert.Equal(t, "alice", id.CustomerID)
	})

	t.Run("Should report missing identity", func(t *testing.T) {
		_, ok := identity.FromContext(context.Background())
		assert.False(t, ok)
	})
}
