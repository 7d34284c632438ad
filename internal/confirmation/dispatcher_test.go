package confirmation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/enums"
)

type stubMailer struct {
	to      string
	subject string
	body    string
	err     error
}

func (s *stubMailer) Send(_ context.Context, to, subject, body string) error {
	s.to, s.subject, s.body = to, subject, body
	return s.err
}

func sampleOrder() *models.Order {
	return &models.Order{
		ID:              uuid.New(),
		BillingFullName: "Dana Reyes",
		BillingEmail:    "dana@example.com",
		Status:          enums.OrderStatusPaid,
		Total:           decimal.RequireFromString("90.00"),
		Items: []models.OrderItem{{
			ItemName:  "Toner X",
			UnitPrice: decimal.NewFromInt(30),
			Quantity:  3,
			Codes: []models.OrderItemCode{
				{Code: "CT-AAAA"},
				{Code: "CT-BBBB"},
				{Code: "CT-CCCC"},
			},
		}},
	}
}

func TestOrderConfirmationRendersCodes(t *testing.T) {
	mailer := &stubMailer{}
	d := NewDispatcher(mailer, nil)

	order := sampleOrder()
	if err := d.OrderConfirmation(context.Background(), order); err != nil {
		t.Fatalf("dispatch: %v", err)
	}

	if mailer.to != "dana@example.com" {
		t.Fatalf("unexpected recipient %q", mailer.to)
	}
	if !strings.Contains(mailer.subject, order.ID.String()) {
		t.Fatalf("subject must carry the order id, got %q", mailer.subject)
	}
	for _, code := range []string{"CT-AAAA", "CT-BBBB", "CT-CCCC"} {
		if !strings.Contains(mailer.body, code) {
			t.Fatalf("body missing code %s:\n%s", code, mailer.body)
		}
	}
	if !strings.Contains(mailer.body, "Toner X x3 @ 30.00") {
		t.Fatalf("body missing line summary:\n%s", mailer.body)
	}
	if !strings.Contains(mailer.body, "Total: 90.00") {
		t.Fatalf("body missing total:\n%s", mailer.body)
	}
}

func TestOrderConfirmationPropagatesSendError(t *testing.T) {
	mailer := &stubMailer{err: errors.New("smtp down")}
	d := NewDispatcher(mailer, nil)

	err := d.OrderConfirmation(context.Background(), sampleOrder())
	if err == nil || !strings.Contains(err.Error(), "smtp down") {
		t.Fatalf("expected send error, got %v", err)
	}
}

func TestOrderConfirmationWithoutMailerIsNoop(t *testing.T) {
	d := NewDispatcher(nil, nil)
	if err := d.OrderConfirmation(context.Background(), sampleOrder()); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
