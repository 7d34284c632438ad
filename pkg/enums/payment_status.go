package enums

// PaymentStatus is terminal at creation in this system: payments settle
// synchronously when the order is created.
type PaymentStatus string

const (
	PaymentStatusSettled PaymentStatus = "settled"
	PaymentStatusFailed  PaymentStatus = "failed"
)

func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusSettled, PaymentStatusFailed:
		return true
	}
	return false
}
