package checkout

import (
	"strings"

	"github.com/google/uuid"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

// Identity names the authenticated buyer. A nil Identity means a guest
// checkout: customer pricing, no cart, no order ownership.
type Identity struct {
	UserID uuid.UUID
	Role   enums.UserRole
}

// BillingInfo is the contact snapshot stamped onto the order. It is stored
// verbatim and never reconciled with a user profile afterwards.
type BillingInfo struct {
	FullName string
	Email    string
	Phone    string
	Address  string
}

const (
	maxBillingFieldLen   = 255
	maxBillingAddressLen = 500
	maxBillingPhoneLen   = 32
)

// validPhone accepts an optional leading + followed by 7..15 digits, with
// spaces, dashes and parentheses as separators.
func validPhone(phone string) bool {
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+':
			if i != 0 {
				return false
			}
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return false
		}
	}
	return digits >= 7 && digits <= 15
}

// Validate performs the shape and length checks that run before the
// transaction opens.
func (b BillingInfo) Validate() error {
	invalid := make([]string, 0, 4)
	name := strings.TrimSpace(b.FullName)
	if name == "" || len(name) > maxBillingFieldLen {
		invalid = append(invalid, "full_name")
	}
	email := strings.TrimSpace(b.Email)
	if email == "" || len(email) > maxBillingFieldLen || !strings.Contains(email, "@") {
		invalid = append(invalid, "email")
	}
	phone := strings.TrimSpace(b.Phone)
	if phone == "" || len(phone) > maxBillingPhoneLen || !validPhone(phone) {
		invalid = append(invalid, "phone")
	}
	address := strings.TrimSpace(b.Address)
	if address == "" || len(address) > maxBillingAddressLen {
		invalid = append(invalid, "address")
	}
	if len(invalid) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "billing information invalid").
			WithDetails(map[string]any{"fields": invalid})
	}
	return nil
}

func (b BillingInfo) applyTo(order *models.Order) {
	order.BillingFullName = strings.TrimSpace(b.FullName)
	order.BillingEmail = strings.ToLower(strings.TrimSpace(b.Email))
	order.BillingPhone = strings.TrimSpace(b.Phone)
	order.BillingAddress = strings.TrimSpace(b.Address)
}

// ItemInput is one requested purchase line before normalization.
type ItemInput struct {
	Line          enums.ProductLine
	CatalogItemID uuid.UUID
	Qty           int
}

// Source selects where the purchase lines come from. UseCart drains the
// buyer's active cart; otherwise Items carries an explicit list, which is
// the only option open to guests.
type Source struct {
	UseCart bool
	Items   []ItemInput
}

// Result is the committed outcome of one checkout.
type Result struct {
	Order *models.Order
}
