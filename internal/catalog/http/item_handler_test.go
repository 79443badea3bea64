package http_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunamart/eshop/internal/apperr"
	cataloghttp "github.com/lunamart/eshop/internal/catalog/http"
	"github.com/lunamart/eshop/internal/catalog/model"
	"github.com/lunamart/eshop/internal/catalog/service"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/pkg/ptr"
)

type fakeCatalogService struct {
	mu     sync.Mutex
	items  map[int64]model.CatalogItem
	brands map[int64]model.CatalogBrand
	types  map[int64]model.CatalogType
	nextID int64
}

func newFakeCatalogService() *fakeCatalogService {
	return &fakeCatalogService{
		items:  map[int64]model.CatalogItem{},
		brands: map[int64]model.CatalogBrand{},
		types:  map[int64]model.CatalogType{},
		nextID: 1,
	}
}

func (s *fakeCatalogService) CreateItem(_ context.Context, params service.CreateItemParams) (model.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := model.CatalogItem{
		ID:              s.nextID,
		Name:            params.Name,
		Description:     params.Description,
		Price:           params.Price,
		PictureFileName: params.PictureFileName,
		CatalogBrandID:  params.CatalogBrandID,
		CatalogTypeID:   params.CatalogTypeID,
		AvailableStock:  params.AvailableStock,
		OnReorder:       params.OnReorder,
	}
	s.nextID++
	s.items[item.ID] = item
	return item, nil
}

func (s *fakeCatalogService) GetItem(_ context.Context, id int64) (model.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return model.CatalogItem{}, apperr.CatalogItemNotFoundErr
	}
	return item, nil
}

func (s *fakeCatalogService) ListItems(_ context.Context, params service.ListItemsParams) (model.PaginatedItems, error) {
	if params.PageSize < 1 || params.PageIndex < 0 {
		return model.PaginatedItems{}, apperr.InvalidPaginationErr
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	items := []model.CatalogItem{}
	for id := int64(1); id < s.nextID; id++ {
		if item, ok := s.items[id]; ok {
			items = append(items, item)
		}
	}

	return model.PaginatedItems{
		PageIndex:  params.PageIndex,
		PageSize:   params.PageSize,
		TotalCount: int64(len(items)),
		Items:      items,
	}, nil
}

func (s *fakeCatalogService) UpdateItem(_ context.Context, params service.UpdateItemParams) (model.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[params.ID]
	if !ok {
		return model.CatalogItem{}, apperr.CatalogItemNotFoundErr
	}

	item.Name = ptr.Coalesce(params.Name, item.Name)
	item.Description = ptr.Coalesce(params.Description, item.Description)
	item.Price = ptr.Coalesce(params.Price, item.Price)
	s.items[item.ID] = item
	return item, nil
}

func (s *fakeCatalogService) DeleteItem(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[id]; !ok {
		return apperr.CatalogItemNotFoundErr
	}
	delete(s.items, id)
	return nil
}

func (s *fakeCatalogService) CreateBrand(_ context.Context, brand string) (model.CatalogBrand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.CatalogBrand{ID: s.nextID, Brand: brand}
	s.nextID++
	s.brands[created.ID] = created
	return created, nil
}

func (s *fakeCatalogService) GetBrand(_ context.Context, id int64) (model.CatalogBrand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brand, ok := s.brands[id]
	if !ok {
		return model.CatalogBrand{}, apperr.CatalogBrandNotFoundErr
	}
	return brand, nil
}

func (s *fakeCatalogService) ListBrands(context.Context) ([]model.CatalogBrand, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	brands := []model.CatalogBrand{}
	for _, brand := range s.brands {
		brands = append(brands, brand)
	}
	return brands, nil
}

func (s *fakeCatalogService) UpdateBrand(_ context.Context, id int64, brand *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.brands[id]
	if !ok {
		return apperr.CatalogBrandNotFoundErr
	}
	existing.Brand = ptr.Coalesce(brand, existing.Brand)
	s.brands[id] = existing
	return nil
}

func (s *fakeCatalogService) DeleteBrand(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.brands[id]; !ok {
		return apperr.CatalogBrandNotFoundErr
	}
	delete(s.brands, id)
	return nil
}

func (s *fakeCatalogService) CreateType(_ context.Context, catalogType string) (model.CatalogType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := model.CatalogType{ID: s.nextID, Type: catalogType}
	s.nextID++
	s.types[created.ID] = created
	return created, nil
}

func (s *fakeCatalogService) GetType(_ context.Context, id int64) (model.CatalogType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	catalogType, ok := s.types[id]
	if !ok {
		return model.CatalogType{}, apperr.CatalogTypeNotFoundErr
	}
	return catalogType, nil
}

func (s *fakeCatalogService) ListTypes(context.Context) ([]model.CatalogType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	types := []model.CatalogType{}
	for _, catalogType := range s.types {
		types = append(types, catalogType)
	}
	return types, nil
}

func (s *fakeCatalogService) UpdateType(_ context.Context, id int64, catalogType *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.types[id]
	if !ok {
		return apperr.CatalogTypeNotFoundErr
	}
	existing.Type = ptr.Coalesce(catalogType, existing.Type)
	s.types[id] = existing
	return nil
}

func (s *fakeCatalogService) DeleteType(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.types[id]; !ok {
		return apperr.CatalogTypeNotFoundErr
	}
	delete(s.types, id)
	return nil
}

// The service registers prometheus collectors on the default registry, so it
// is constructed once for the whole test package.
var (
	setupOnce  sync.Once
	testRouter chi.Router
	testSvc    *fakeCatalogService
)

func setup() (chi.Router, *fakeCatalogService) {
	setupOnce.Do(func() {
		testSvc = newFakeCatalogService()
		svc := cataloghttp.New(config.HTTP{}, slog.New(slog.DiscardHandler), testSvc)

		testRouter = chi.NewRouter()
		svc.RegisterHandlers(testRouter)
	})
	return testRouter, testSvc
}

func doRequest(r chi.Router, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestItemHandlers(t *testing.T) {
	router, svc := setup()

	t.Run("Should create item", func(t *testing.T) {
		body := `{"name":"Running shoes","price":"49.90","catalog_brand_id":1,"catalog_type_id":1,"available_stock":10}`
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/items", body)
		require.Equal(t, http.StatusCreated, resp.Code)

		var item model.CatalogItem
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &item))
		assert.NotZero(t, item.ID)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("49.90")))
	})

	t.Run("Should reject item without name", func(t *testing.T) {
		body := `{"price":"49.90","catalog_brand_id":1,"catalog_type_id":1}`
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/items", body)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should reject malformed json", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/items", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should get item by id", func(t *testing.T) {
		created, err := svc.CreateItem(context.Background(), service.CreateItemParams{
			Name:  "Trail shoes",
			Price: decimal.RequireFromString("59.90"),
		})
		require.NoError(t, err)

		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items/"+itoa(created.ID), "")
		require.Equal(t, http.StatusOK, resp.Code)

		var item model.CatalogItem
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &item))
		assert.Equal(t, created.ID, item.ID)
	})

	t.Run("Should return not found for missing item", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items/999999", "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})

	t.Run("Should reject non numeric id", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items/abc", "")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should list items with defaults", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items", "")
		require.Equal(t, http.StatusOK, resp.Code)

		var page model.PaginatedItems
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &page))
		assert.Equal(t, 10, page.PageSize)
		assert.Equal(t, 0, page.PageIndex)
	})

	t.Run("Should reject non numeric page size", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items?pageSize=abc", "")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should reject zero page size", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/items?pageSize=0", "")
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should apply partial update", func(t *testing.T) {
		created, err := svc.CreateItem(context.Background(), service.CreateItemParams{
			Name:        "Sandals",
			Description: "Summer sandals",
			Price:       decimal.RequireFromString("20.00"),
		})
		require.NoError(t, err)

		body := `{"id":` + itoa(created.ID) + `,"price":"25.00"}`
		resp := doRequest(router, http.MethodPut, "/api/v1/catalog/items", body)
		require.Equal(t, http.StatusOK, resp.Code)

		var item model.CatalogItem
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &item))
		assert.Equal(t, "Sandals", item.Name)
		assert.True(t, item.Price.Equal(decimal.RequireFromString("25.00")))
	})

	t.Run("Should reject update without id", func(t *testing.T) {
		resp := doRequest(router, http.MethodPut, "/api/v1/catalog/items", `{"price":"25.00"}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should delete item", func(t *testing.T) {
		created, err := svc.CreateItem(context.Background(), service.CreateItemParams{
			Name:  "Slippers",
			Price: decimal.RequireFromString("5.00"),
		})
		require.NoError(t, err)

		resp := doRequest(router, http.MethodDelete, "/api/v1/catalog/items/"+itoa(created.ID), "")
		assert.Equal(t, http.StatusOK, resp.Code)

		resp = doRequest(router, http.MethodDelete, "/api/v1/catalog/items/"+itoa(created.ID), "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func TestBrandAndTypeHandlers(t *testing.T) {
	router, _ := setup()

	t.Run("Should create and list brands", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/brands", `{"brand":"Acme"}`)
		require.Equal(t, http.StatusCreated, resp.Code)

		resp = doRequest(router, http.MethodGet, "/api/v1/catalog/brands", "")
		require.Equal(t, http.StatusOK, resp.Code)

		var brands []model.CatalogBrand
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &brands))
		assert.NotEmpty(t, brands)
	})

	t.Run("Should reject brand without name", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/brands", `{}`)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
	})

	t.Run("Should create and list types", func(t *testing.T) {
		resp := doRequest(router, http.MethodPost, "/api/v1/catalog/types", `{"type":"Footwear"}`)
		require.Equal(t, http.StatusCreated, resp.Code)

		resp = doRequest(router, http.MethodGet, "/api/v1/catalog/types", "")
		require.Equal(t, http.StatusOK, resp.Code)

		var types []model.CatalogType
		require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &types))
		assert.NotEmpty(t, types)
	})

	t.Run("Should return not found for missing brand", func(t *testing.T) {
		resp := doRequest(router, http.MethodGet, "/api/v1/catalog/brands/999999", "")
		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
