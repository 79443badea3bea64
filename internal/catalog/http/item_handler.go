package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/catalog/service"
)

type catalogHandler struct {
	svc *Service
}

func newCatalogHandler(svc *Service) *catalogHandler {
	return &catalogHandler{svc: svc}
}

type createItemRequest struct {
	Name            string          `json:"name" validate:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price" validate:"required"`
	PictureFileName string          `json:"picture_file_name"`
	CatalogBrandID  int64           `json:"catalog_brand_id" validate:"required"`
	CatalogTypeID   int64           `json:"catalog_type_id" validate:"required"`
	AvailableStock  int             `json:"available_stock" validate:"gte=0"`
	OnReorder       bool            `json:"on_reorder"`
}

type updateItemRequest struct {
	ID              int64            `json:"id" validate:"required"`
	Name            *string          `json:"name"`
	Description     *string          `json:"description"`
	Price           *decimal.Decimal `json:"price"`
	PictureFileName *string          `json:"picture_file_name"`
	CatalogBrandID  *int64           `json:"catalog_brand_id"`
	CatalogTypeID   *int64           `json:"catalog_type_id"`
	AvailableStock  *int             `json:"available_stock"`
	OnReorder       *bool            `json:"on_reorder"`
}

func (h *catalogHandler) listItems(w http.ResponseWriter, r *http.Request) {
	pageSize, err := queryIntDefault(r, "pageSize", 10)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidPaginationErr.WrapParent(err))
		return
	}
	pageIndex, err := queryIntDefault(r, "pageIndex", 0)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidPaginationErr.WrapParent(err))
		return
	}

	page, err := h.svc.catalogSvc.ListItems(r.Context(), service.ListItemsParams{
		PageIndex: pageIndex,
		PageSize:  pageSize,
	})
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service list items: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, page)
}

func (h *catalogHandler) getItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	item, err := h.svc.catalogSvc.GetItem(r.Context(), id)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service get item: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, item)
}

func (h *catalogHandler) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	item, err := h.svc.catalogSvc.CreateItem(r.Context(), service.CreateItemParams{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		PictureFileName: req.PictureFileName,
		CatalogBrandID:  req.CatalogBrandID,
		CatalogTypeID:   req.CatalogTypeID,
		AvailableStock:  req.AvailableStock,
		OnReorder:       req.OnReorder,
	})
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service create item: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusCreated, item)
}

func (h *catalogHandler) updateItem(w http.ResponseWriter, r *http.Request) {
	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	item, err := h.svc.catalogSvc.UpdateItem(r.Context(), service.UpdateItemParams{
		ID:              req.ID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		PictureFileName: req.PictureFileName,
		CatalogBrandID:  req.CatalogBrandID,
		CatalogTypeID:   req.CatalogTypeID,
		AvailableStock:  req.AvailableStock,
		OnReorder:       req.OnReorder,
	})
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service update item: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, item)
}

func (h *catalogHandler) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	if err := h.svc.catalogSvc.DeleteItem(r.Context(), id); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service delete item: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func queryIntDefault(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
