package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/api/middleware"
	"github.com/binarymart/storefront-backend/api/responses"
	"github.com/binarymart/storefront-backend/api/validators"
	ordersvc "github.com/binarymart/storefront-backend/internal/orders"
	"github.com/binarymart/storefront-backend/pkg/db/models"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
	"github.com/binarymart/storefront-backend/pkg/logger"
)

type orderResponse struct {
	OrderID     uuid.UUID           `json:"order_id"`
	Status      string              `json:"status"`
	Total       decimal.Decimal     `json:"total"`
	Billing     billingResponse     `json:"billing"`
	Items       []orderItemResponse `json:"items"`
	Payment     *paymentResponse    `json:"payment,omitempty"`
	PlacedAt    time.Time           `json:"placed_at"`
	BuyerUserID *uuid.UUID          `json:"buyer_user_id,omitempty"`
}

type billingResponse struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type orderItemResponse struct {
	ProductLine   string          `json:"product_line"`
	CatalogItemID uuid.UUID       `json:"catalog_item_id"`
	Name          string          `json:"name"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Codes         []string        `json:"codes"`
}

type paymentResponse struct {
	Type      string          `json:"type"`
	Status    string          `json:"status"`
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty"`
	PaidAt    *time.Time      `json:"paid_at,omitempty"`
}

func newOrderResponse(order *models.Order) orderResponse {
	resp := orderResponse{
		OrderID: order.ID,
		Status:  string(order.Status),
		Total:   order.Total,
		Billing: billingResponse{
			FullName: order.BillingFullName,
			Email:    order.BillingEmail,
			Phone:    order.BillingPhone,
			Address:  order.BillingAddress,
		},
		Items:       make([]orderItemResponse, 0, len(order.Items)),
		PlacedAt:    order.CreatedAt,
		BuyerUserID: order.BuyerUserID,
	}
	for _, item := range order.Items {
		codes := make([]string, 0, len(item.Codes))
		for _, code := range item.Codes {
			codes = append(codes, code.Code)
		}
		resp.Items = append(resp.Items, orderItemResponse{
			ProductLine:   string(item.ProductLine),
			CatalogItemID: item.CatalogItemID,
			Name:          item.ItemName,
			UnitPrice:     item.UnitPrice,
			Quantity:      item.Quantity,
			Codes:         codes,
		})
	}
	if order.Payment != nil {
		resp.Payment = &paymentResponse{
			Type:      string(order.Payment.PaymentType),
			Status:    string(order.Payment.Status),
			Amount:    order.Payment.Amount,
			Reference: order.Payment.Reference,
			PaidAt:    order.Payment.PaidAt,
		}
	}
	return resp
}

// ListOrders returns the caller's order history.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		limit := queryInt(r, "limit", 50)
		offset := queryInt(r, "offset", 0)

		rows, err := svc.ListByUser(r.Context(), userID, limit, offset)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]orderResponse, 0, len(rows))
		for i := range rows {
			out = append(out, newOrderResponse(&rows[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// GetOrder returns one of the caller's orders with its serial codes.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r.Context())
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
			return
		}

		orderID, err := uuid.Parse(chi.URLParam(r, "orderID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid order id"))
			return
		}

		order, err := svc.GetByID(r.Context(), orderID, &userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

type guestLookupRequest struct {
	OrderID uuid.UUID `json:"order_id" validate:"required"`
	Email   string    `json:"email" validate:"required,email"`
}

// GuestOrderLookup opens a guest order by id plus billing email.
func GuestOrderLookup(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload guestLookupRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetGuestOrder(r.Context(), payload.OrderID, payload.Email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newOrderResponse(order))
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}
