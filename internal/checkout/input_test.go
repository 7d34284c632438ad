package checkout

import (
	"strings"
	"testing"

	pkgerrors "github.com/binarymart/storefront-backend/pkg/errors"
)

func validBilling() BillingInfo {
	return BillingInfo{
		FullName: "Dana Reyes",
		Email:    "dana@example.com",
		Phone:    "+1 (555) 010-1234",
		Address:  "12 Harbor Way",
	}
}

func TestBillingValidateAccepts(t *testing.T) {
	if err := validBilling().Validate(); err != nil {
		t.Fatalf("expected valid billing, got %v", err)
	}
}

func TestBillingValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*BillingInfo)
		field  string
	}{
		{"missing name", func(b *BillingInfo) { b.FullName = "  " }, "full_name"},
		{"overlong name", func(b *BillingInfo) { b.FullName = strings.Repeat("x", 256) }, "full_name"},
		{"missing email", func(b *BillingInfo) { b.Email = "" }, "email"},
		{"malformed email", func(b *BillingInfo) { b.Email = "not-an-email" }, "email"},
		{"overlong email", func(b *BillingInfo) { b.Email = strings.Repeat("x", 250) + "@example.com" }, "email"},
		{"missing phone", func(b *BillingInfo) { b.Phone = "" }, "phone"},
		{"phone with letters", func(b *BillingInfo) { b.Phone = "call me maybe" }, "phone"},
		{"phone too short", func(b *BillingInfo) { b.Phone = "+1 23" }, "phone"},
		{"phone too long", func(b *BillingInfo) { b.Phone = "+123456789012345678" }, "phone"},
		{"plus not leading", func(b *BillingInfo) { b.Phone = "555+0101234" }, "phone"},
		{"missing address", func(b *BillingInfo) { b.Address = "" }, "address"},
		{"overlong address", func(b *BillingInfo) { b.Address = strings.Repeat("x", 501) }, "address"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			billing := validBilling()
			tc.mutate(&billing)

			err := billing.Validate()
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]any)
			if !ok {
				t.Fatalf("expected field details, got %v", typed.Details())
			}
			fields, ok := details["fields"].([]string)
			if !ok || len(fields) != 1 || fields[0] != tc.field {
				t.Fatalf("expected %q flagged, got %v", tc.field, details["fields"])
			}
		})
	}
}
