package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/binarymart/storefront-backend/api/responses"
	"github.com/binarymart/storefront-backend/api/validators"
	ordersvc "github.com/binarymart/storefront-backend/internal/orders"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
	"github.com/binarymart/storefront-backend/pkg/logger"
)

// AdminListOrders lists orders across all buyers with filters.
func AdminListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		rows, total, err := svc.AdminList(r.Context(), ordersvc.ListFilters{
			Status:      enums.OrderStatus(query.Get("status")),
			PaymentType: enums.PaymentType(query.Get("payment_type")),
			Email:       query.Get("email"),
			Limit:       queryInt(r, "limit", 50),
			Offset:      queryInt(r, "offset", 0),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]orderResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, map[string]any{
			"orders": out,
			"total":  total,
		})
	}
}

// AdminSerialLookup resolves the order that issued a serial code.
func AdminSerialLookup(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.LookupBySerial(r.Context(), chi.URLParam(r, "code"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type updateOrderStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending paid failed cancelled"`
}

// AdminUpdateOrderStatus applies one admin status transition.
func AdminUpdateOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		var payload updateOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.UpdateStatus(r.Context(), orderID, enums.OrderStatus(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}
