package pricing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/internal/catalog"
	"github.com/binarymart/storefront-backend/pkg/enums"
	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

func decPtr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func timePtr(t time.Time) *time.Time { return &t }

func TestUnitPriceRoleSelection(t *testing.T) {
	snap := &catalog.Snapshot{
		Line:         enums.ProductLineCartridge,
		ID:           uuid.New(),
		BasePrice:    decimal.NewFromInt(100),
		SpecialPrice: decPtr(70),
	}

	cases := []struct {
		name string
		role enums.UserRole
		want int64
	}{
		{"customer pays base", enums.UserRoleCustomer, 100},
		{"admin pays base", enums.UserRoleAdmin, 100},
		{"distributor pays special", enums.UserRoleDistributor, 70},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := UnitPrice(snap, tc.role, time.Now())
			if err != nil {
				t.Fatalf("unit price: %v", err)
			}
			if !got.Equal(decimal.NewFromInt(tc.want)) {
				t.Fatalf("got %s want %d", got, tc.want)
			}
		})
	}
}

func TestUnitPriceDistributorWithoutSpecial(t *testing.T) {
	snap := &catalog.Snapshot{
		Line:      enums.ProductLineCartridge,
		ID:        uuid.New(),
		BasePrice: decimal.NewFromInt(100),
	}
	got, err := UnitPrice(snap, enums.UserRoleDistributor, time.Now())
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("got %s want 100", got)
	}
}

func TestUnitPriceProration(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.AddDate(0, 0, 100)

	snap := &catalog.Snapshot{
		Line:       enums.ProductLineSoftware,
		ID:         uuid.New(),
		BasePrice:  decimal.NewFromInt(200),
		StartDate:  timePtr(start),
		ExpiryDate: timePtr(expiry),
	}

	// 40 of 100 days remain: 200 * 40/100 = 80.
	now := start.AddDate(0, 0, 60)
	got, err := UnitPrice(snap, enums.UserRoleCustomer, now)
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(80)) {
		t.Fatalf("got %s want 80", got)
	}

	// Partial days round up in the buyer's favor.
	now = start.AddDate(0, 0, 60).Add(-6 * time.Hour)
	got, err = UnitPrice(snap, enums.UserRoleCustomer, now)
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(82)) {
		t.Fatalf("got %s want 82", got)
	}
}

func TestUnitPriceProrationRounding(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.AddDate(0, 0, 3)

	snap := &catalog.Snapshot{
		Line:       enums.ProductLineSoftware,
		ID:         uuid.New(),
		BasePrice:  decimal.NewFromInt(100),
		StartDate:  timePtr(start),
		ExpiryDate: timePtr(expiry),
	}

	// 1 of 3 days remains: 100/3 rounds to 33.33.
	got, err := UnitPrice(snap, enums.UserRoleCustomer, start.AddDate(0, 0, 2))
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("33.33")) {
		t.Fatalf("got %s want 33.33", got)
	}
}

func TestUnitPriceExpiredPlan(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.AddDate(0, 0, 30)

	snap := &catalog.Snapshot{
		Line:       enums.ProductLineSoftware,
		ID:         uuid.New(),
		BasePrice:  decimal.NewFromInt(100),
		StartDate:  timePtr(start),
		ExpiryDate: timePtr(expiry),
	}

	_, err := UnitPrice(snap, enums.UserRoleCustomer, expiry)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestUnitPriceOpenEndedPlan(t *testing.T) {
	snap := &catalog.Snapshot{
		Line:      enums.ProductLineSoftware,
		ID:        uuid.New(),
		BasePrice: decimal.NewFromInt(150),
	}
	got, err := UnitPrice(snap, enums.UserRoleCustomer, time.Now())
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("got %s want 150", got)
	}
}

func TestUnitPriceBeforeWindowOpens(t *testing.T) {
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	expiry := start.AddDate(1, 0, 0)

	snap := &catalog.Snapshot{
		Line:       enums.ProductLineSoftware,
		ID:         uuid.New(),
		BasePrice:  decimal.NewFromInt(120),
		StartDate:  timePtr(start),
		ExpiryDate: timePtr(expiry),
	}
	got, err := UnitPrice(snap, enums.UserRoleCustomer, start.AddDate(0, 0, -10))
	if err != nil {
		t.Fatalf("unit price: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("got %s want 120", got)
	}
}
