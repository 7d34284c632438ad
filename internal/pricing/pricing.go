package pricing

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

// UnitPrice computes the authoritative per-unit price for a catalog item at
// the given instant. The rules, in order:
//
//  1. Distributors buy at the special price when the item carries one.
//  2. Software plans with a validity window are prorated by remaining days
//     against the full window, rounded to two decimals. A plan past its
//     expiry cannot be priced at all.
//
// The function is pure; callers pass the clock so checkout can price every
// line of one order against the same instant.
func UnitPrice(snap *catalog.Snapshot, role enums.UserRole, now time.Time) (decimal.Decimal, error) {
	if snap == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeInternal, "nil catalog snapshot")
	}

	price := snap.BasePrice
	if role == enums.UserRoleDistributor && snap.SpecialPrice != nil {
		price = *snap.SpecialPrice
	}

	if snap.Line == enums.ProductLineSoftware {
		return prorate(price, snap, now)
	}
	return price, nil
}

// prorate scales the price by the unexpired share of the plan window. Plans
// without a complete window sell at full price for their whole lifetime.
func prorate(price decimal.Decimal, snap *catalog.Snapshot, now time.Time) (decimal.Decimal, error) {
	if snap.ExpiryDate == nil {
		return price, nil
	}
	if !now.Before(*snap.ExpiryDate) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("plan %s expired on %s", snap.ID, snap.ExpiryDate.Format(time.RFC3339)))
	}
	if snap.StartDate == nil || !snap.StartDate.Before(*snap.ExpiryDate) {
		return price, nil
	}
	// Before the window opens the buyer gets the full term.
	if now.Before(*snap.StartDate) {
		return price, nil
	}

	totalDays := daysBetween(*snap.StartDate, *snap.ExpiryDate)
	remainingDays := daysBetween(now, *snap.ExpiryDate)
	if remainingDays > totalDays {
		remainingDays = totalDays
	}
	if totalDays <= 0 {
		return price, nil
	}

	ratio := decimal.NewFromInt(remainingDays).Div(decimal.NewFromInt(totalDays))
	return price.Mul(ratio).Round(2), nil
}

// daysBetween counts whole days from a to b, rounding partial days up so a
// buyer is never charged for less time than they receive.
func daysBetween(a, b time.Time) int64 {
	if !a.Before(b) {
		return 0
	}
	return int64(math.Ceil(b.Sub(a).Hours() / 24))
}
