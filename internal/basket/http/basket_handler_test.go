package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunamart/eshop/internal/apperr"
	baskethttp "github.com/lunamart/eshop/internal/basket/http"
	"github.com/lunamart/eshop/internal/basket/model"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/event"
	"github.com/lunamart/eshop/internal/http/middleware"
	"github.com/lunamart/eshop/internal/identity"
)

type fakeBasketService struct {
	mu      sync.Mutex
	baskets map[string]model.CustomerBasket
}

func (s *fakeBasketService) ListAllBaskets(context.Context) ([]model.CustomerBasket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	baskets := []model.CustomerBasket{}
	for _, basket := range s.baskets {
		baskets = append(baskets, basket)
	}
	return baskets, nil
}

func (s *fakeBasketService) GetBasket(_ context.Context, customerID string) (model.CustomerBasket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	basket, ok := s.baskets[customerID]
	if !ok {
		return model.NewCustomerBasket(customerID), nil
	}
	return basket, nil
}

func (s *fakeBasketService) UpdateBasket(_ context.Context, basket model.CustomerBasket) (model.CustomerBasket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.baskets[basket.CustomerID] = basket
	return basket, nil
}

func (s *fakeBasketService) DeleteBasket(_ context.Context, customerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.baskets[customerID]; !ok {
		return apperr.BasketNotFoundErr
	}
	delete(s.baskets, customerID)
	return nil
}

func (s *fakeBasketService) ApplyPriceChange(context.Context, event.CatalogItemPriceChangedEvent) error {
	return nil
}

// The service registers prometheus collectors on the default registry, so it
// is constructed once for the whole test package.
var (
	setupOnce  sync.Once
	testRouter chi.Router
	testSvc    *fakeBasketService
)

func setup() (chi.Router, *fakeBasketService) {
	setupOnce.Do(func() {
		testSvc = &fakeBasketService{baskets: map[string]model.CustomerBasket{}}
		svc := baskethttp.New(config.HTTP{}, slog.New(slog.DiscardHandler), testSvc)

		testRouter = chi.NewRouter()
		testRouter.Use(middleware.Identity())
		svc.RegisterHandlers(testRouter)
	})
	return testRouter, testSvc
}

func doRequest(r chi.Router, method, path, customerID, role string, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if customerID != "" {
		req.Header.Set(identity.CustomerIDHeader, customerID)
	}
	if role != "" {
		req.Header.Set(identity.RoleHeader, role)
	}

	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGetBasketAuthz(t *testing.T) {
	router, _ := setup()

	t.Run("Should reject request without identity", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/alice", "", "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should reject another customer", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/alice", "bob", "", "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("Should allow the owner", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/alice", "alice", "", "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should allow an admin", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/alice", "root", identity.RoleAdmin, "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should return empty basket for new customer", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/fresh-customer", "fresh-customer", "", "")
		require.Equal(t, http.StatusOK, resp.Code)

		var basket model.CustomerBasket
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &basket))
		assert.Equal(t, "fresh-customer", basket.CustomerID)
		assert.Empty(t, basket.Items)
	})
}

func TestListAllBasketsAuthz(t *testing.T) {
	router, _ := setup()

	t.Run("Should reject request without identity", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/all", "", "", "")
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should reject non admin", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/all", "alice", "", "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("Should allow admin", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/basket/all", "root", identity.RoleAdmin, "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})
}

func TestUpdateBasketHandler(t *testing.T) {
	router, svc := setup()

	validBody := func(customerID string) string {
		basket := map[string]any{
			"customer_id": customerID,
			"items": []map[string]any{
				{"product_id": 1, "quantity": 2, "unit_price": "10.00"},
			},
		}
		raw, _ := json.Marshal(basket)
		return string(raw)
	}

	t.Run("Should store basket for the owner", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "carol", "", validBody("carol"))
		require.Equal(t, http.StatusOK, resp.Code)

		stored, err := svc.GetBasket(context.Background(), "carol")
		require.NoError(t, err)
		require.Len(t, stored.Items, 1)
		assert.True(t, stored.Items[0].UnitPrice.Equal(decimal.RequireFromString("10.00")))
	})

	t.Run("Should reject writing another customer's basket", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "bob", "", validBody("carol"))
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})

	t.Run("Should reject request without identity", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "", "", validBody("carol"))
		assert.Equal(t, http.StatusUnauthorized, resp.Code)
	})

	t.Run("Should reject malformed body", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "carol", "", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should reject zero quantity", func(t *testing.T) {
		body := `{"customer_id":"carol","items":[{"product_id":1,"quantity":0,"unit_price":"10.00"}]}`
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "carol", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should reject missing customer id", func(t *testing.T) {
		body := `{"items":[]}`
		resp := doRequest(router, http.MethodPost, "/api/v1/basket/", "carol", "", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})
}

func TestDeleteBasketHandler(t *testing.T) {
	router, svc := setup()

	t.Run("Should delete the owner's basket", func(t *testing.T) {
		_, err := svc.UpdateBasket(context.Background(), model.NewCustomerBasket("dave"))
		require.NoError(t, err)

		resp := doRequest(router, http.MethodDelete, "/api/v1/basket/dave", "dave", "", "")
		assert.Equal(t, http.StatusOK, resp.Code)
	})

	t.Run("Should return not found for missing basket", func(t *testing.T) {
		resp := doRequest(router, http.MethodDelete, "/api/v1/basket/nobody", "nobody", "", "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("Should reject deleting another customer's basket", func(t *testing.T) {
		resp := doRequest(router, http.MethodDelete, "/api/v1/basket/dave", "bob", "", "")
		assert.Equal(t, http.StatusForbidden, resp.Code)
	})
}
