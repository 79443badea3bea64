package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/lunamart/eshop/internal/apperr"
)

type createTypeRequest struct {
	Type string `json:"type" validate:"required"`
}

type updateTypeRequest struct {
	ID   int64   `json:"id" validate:"required"`
	Type *string `json:"type"`
}

func (h *catalogHandler) listTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.svc.catalogSvc.ListTypes(r.Context())
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service list types: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, types)
}

func (h *catalogHandler) getType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	catalogType, err := h.svc.catalogSvc.GetType(r.Context(), id)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service get type: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, catalogType)
}

func (h *catalogHandler) createType(w http.ResponseWriter, r *http.Request) {
	var req createTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	catalogType, err := h.svc.catalogSvc.CreateType(r.Context(), req.Type)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service create type: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusCreated, catalogType)
}

func (h *catalogHandler) updateType(w http.ResponseWriter, r *http.Request) {
	var req updateTypeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	if err := h.svc.catalogSvc.UpdateType(r.Context(), req.ID, req.Type); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service update type: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (h *catalogHandler) deleteType(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.svc.writeError(w, r, apperr.InvalidCatalogIDErr.WrapParent(err))
		return
	}

	if err := h.svc.catalogSvc.DeleteType(r.Context(), id); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("catalog service delete type: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
