package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/binarymart/storefront-backend/api/middleware"
	"github.com/binarymart/storefront-backend/api/responses"
	"github.com/binarymart/storefront-backend/api/validators"
	checkoutsvc "github.com/binarymart/storefront-backend/internal/checkout"
	"github.com/binarymart/storefront-backend/pkg/enums"
	"github.com/binarymart/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	Billing          billingRequest        `json:"billing" validate:"required"`
	PaymentType      string                `json:"payment_type" validate:"required,oneof=cod gateway manual"`
	PaymentReference *string               `json:"payment_reference,omitempty"`
	UseCart          bool                  `json:"use_cart"`
	Items            []checkoutItemRequest `json:"items,omitempty" validate:"omitempty,dive"`
}

type billingRequest struct {
	FullName string `json:"full_name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Phone    string `json:"phone" validate:"required,max=32"`
	Address  string `json:"address" validate:"required,max=500"`
}

type checkoutItemRequest struct {
	ProductLine   string    `json:"product_line" validate:"required,oneof=software cartridge"`
	CatalogItemID uuid.UUID `json:"catalog_item_id" validate:"required"`
	Quantity      int       `json:"quantity" validate:"required,gt=0"`
}

// Checkout turns the caller's cart, or an explicit item list, into a paid
// order. Authenticated callers may use either source; guests must send
// items.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var identity *checkoutsvc.Identity
		if userID, ok := middleware.UserID(r.Context()); ok {
			identity = &checkoutsvc.Identity{
				UserID: userID,
				Role:   middleware.Role(r.Context()),
			}
		}
		handleCheckout(svc, logg, identity, w, r)
	}
}

// GuestCheckout always runs the guest path: no identity, items required,
// even when the caller happens to send a token.
func GuestCheckout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handleCheckout(svc, logg, nil, w, r)
	}
}

func handleCheckout(svc checkoutsvc.Service, logg *logger.Logger, identity *checkoutsvc.Identity, w http.ResponseWriter, r *http.Request) {
	var payload checkoutRequest
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	items := make([]checkoutsvc.ItemInput, 0, len(payload.Items))
	for _, item := range payload.Items {
		items = append(items, checkoutsvc.ItemInput{
			Line:          enums.ProductLine(item.ProductLine),
			CatalogItemID: item.CatalogItemID,
			Qty:           item.Quantity,
		})
	}

	result, err := svc.Checkout(r.Context(), identity, checkoutsvc.BillingInfo{
		FullName: payload.Billing.FullName,
		Email:    payload.Billing.Email,
		Phone:    payload.Billing.Phone,
		Address:  payload.Billing.Address,
	}, checkoutsvc.Source{
		UseCart: payload.UseCart,
		Items:   items,
	}, enums.PaymentType(payload.PaymentType), payload.PaymentReference)
	if err != nil {
		responses.WriteError(r.Context(), logg, w, err)
		return
	}

	responses.WriteSuccessStatus(w, http.StatusCreated, newOrderResponse(result.Order))
}
