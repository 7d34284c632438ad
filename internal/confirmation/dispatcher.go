package confirmation

import (
	"context"
	"fmt"
	"strings"
	"text/template"

	"go.uber.org/multierr"

	"github.com/binarymart/storefront-backend/pkg/db/models"
	"github.com/binarymart/storefront-backend/pkg/logger"
)

var confirmationTmpl = template.Must(template.New("order_confirmation").Parse(
	`Hi {{.Order.BillingFullName}},

Thanks for your purchase. Your order {{.Order.ID}} is confirmed and paid.

{{range .Order.Items -}}
- {{.ItemName}} x{{.Quantity}} @ {{.UnitPrice.StringFixed 2}}
{{range .Codes}}    code: {{.Code}}
{{end -}}
{{end}}
Total: {{.Order.Total.StringFixed 2}}

Keep the codes above safe; each one activates a single unit.
`))

type tmplData struct {
	Order *models.Order
}

// Dispatcher sends the post-checkout confirmation email with the serial
// code sheet inlined. It never blocks a checkout: the caller treats its
// errors as log-only.
type Dispatcher struct {
	mailer Mailer
	logg   *logger.Logger
}

// NewDispatcher builds a dispatcher. The mailer may be nil, which turns
// dispatching into a logged no-op so environments without SMTP still work.
func NewDispatcher(mailer Mailer, logg *logger.Logger) *Dispatcher {
	return &Dispatcher{mailer: mailer, logg: logg}
}

// OrderConfirmation renders and sends the confirmation for one committed
// order. Render and delivery failures are aggregated so the caller's log
// line carries everything that went wrong.
func (d *Dispatcher) OrderConfirmation(ctx context.Context, order *models.Order) error {
	if order == nil {
		return fmt.Errorf("nil order")
	}
	if d.mailer == nil {
		if d.logg != nil {
			d.logg.Info(ctx, fmt.Sprintf("mail disabled, skipping confirmation for order %s", order.ID))
		}
		return nil
	}

	var errs error
	body, err := renderConfirmation(order)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("rendering confirmation: %w", err))
	} else {
		subject := fmt.Sprintf("Order %s confirmed", order.ID)
		if err := d.mailer.Send(ctx, order.BillingEmail, subject, body); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func renderConfirmation(order *models.Order) (string, error) {
	var buf strings.Builder
	if err := confirmationTmpl.Execute(&buf, tmplData{Order: order}); err != nil {
		return "", err
	}
	return buf.String(), nil
}
