package http

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/lunamart/eshop/internal/apperr"
	"github.com/lunamart/eshop/internal/basket/model"
	"github.com/lunamart/eshop/internal/identity"
)

type basketHandler struct {
	svc *Service
}

func newBasketHandler(svc *Service) *basketHandler {
	return &basketHandler{svc: svc}
}

type basketItemRequest struct {
	ProductID    int64           `json:"product_id" validate:"required"`
	Quantity     int             `json:"quantity" validate:"required,gte=1"`
	UnitPrice    decimal.Decimal `json:"unit_price" validate:"required"`
	OldUnitPrice decimal.Decimal `json:"old_unit_price"`
	PictureURL   string          `json:"picture_url"`
}

type updateBasketRequest struct {
	CustomerID string              `json:"customer_id" validate:"required"`
	Items      []basketItemRequest `json:"items" validate:"dive"`
}

func (h *basketHandler) listAllBaskets(w http.ResponseWriter, r *http.Request) {
	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.svc.writeError(w, r, apperr.UnauthorizedErr)
		return
	}
	if !caller.IsAdmin() {
		h.svc.writeError(w, r, apperr.ForbiddenErr)
		return
	}

	baskets, err := h.svc.basketSvc.ListAllBaskets(r.Context())
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("basket service list all baskets: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, baskets)
}

func (h *basketHandler) getBasket(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.svc.writeError(w, r, apperr.UnauthorizedErr)
		return
	}
	if !caller.MayAccessBasket(customerID) {
		h.svc.writeError(w, r, apperr.ForbiddenErr)
		return
	}

	basket, err := h.svc.basketSvc.GetBasket(r.Context(), customerID)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("basket service get basket: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, basket)
}

func (h *basketHandler) updateBasket(w http.ResponseWriter, r *http.Request) {
	var req updateBasketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.svc.writeError(w, r, apperr.ValidationErr.WrapParent(err))
		return
	}
	if err := h.svc.validator.Validate(req); err != nil {
		h.svc.writeError(w, r, err)
		return
	}

	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.svc.writeError(w, r, apperr.UnauthorizedErr)
		return
	}
	if !caller.MayAccessBasket(req.CustomerID) {
		h.svc.writeError(w, r, apperr.ForbiddenErr)
		return
	}

	basket := model.CustomerBasket{
		CustomerID: req.CustomerID,
		Items:      make([]model.BasketItem, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		basket.Items = append(basket.Items, model.BasketItem{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			UnitPrice:    item.UnitPrice,
			OldUnitPrice: item.OldUnitPrice,
			PictureURL:   item.PictureURL,
		})
	}

	stored, err := h.svc.basketSvc.UpdateBasket(r.Context(), basket)
	if err != nil {
		h.svc.writeError(w, r, fmt.Errorf("basket service update basket: %w", err))
		return
	}

	h.svc.writeJSON(w, r, http.StatusOK, stored)
}

func (h *basketHandler) deleteBasket(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerId")

	caller, ok := identity.FromContext(r.Context())
	if !ok {
		h.svc.writeError(w, r, apperr.UnauthorizedErr)
		return
	}
	if !caller.MayAccessBasket(customerID) {
		h.svc.writeError(w, r, apperr.ForbiddenErr)
		return
	}

	if err := h.svc.basketSvc.DeleteBasket(r.Context(), customerID); err != nil {
		h.svc.writeError(w, r, fmt.Errorf("basket service delete basket: %w", err))
		return
	}

	w.WriteHeader(http.StatusOK)
}
