package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lunamart/eshop/internal/apperr"
)

type createBrandRequest struct {
	Brand string `json:"brand" validate:"required"`
}

type updateBrandRequest struct {
	ID    int64   `json:"id" validate:"required"`
	Brand *string `json:"brand"`
}

func (h *catalogHandler) listBrands(w http.ResponseWriter, r *http.Request) {
	brands, err := h.svc.catalogSvc.ListBrands(r.Context())
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service list brands: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, brands)
}

func (h *catalogHandler) getBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	brand, err := h.svc.catalogSvc.GetBrand(r.Context(), id)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service get brand: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, brand)
}

func (h *catalogHandler) createBrand(w http.ResponseWriter, r *http.Request) {
	var req createBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	brand, err := h.svc.catalogSvc.CreateBrand(r.Context(), req.Brand)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service create brand: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusCreated, brand)
}

func (h *catalogHandler) updateBrand(w http.ResponseWriter, r *http.Request) {
	var req updateBrandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	if err := h.svc.catalogSvc.UpdateBrand(r.Context(), req.ID, req.Brand); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service update brand: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *catalogHandler) deleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	if err := h.svc.catalogSvc.DeleteBrand(r.Context(), id); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service delete brand: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
