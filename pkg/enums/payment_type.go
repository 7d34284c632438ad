package enums

// PaymentType selects how an order is paid.
type PaymentType string

const (
	PaymentTypeCOD     PaymentType = "cod"
	PaymentTypeGateway PaymentType = "gateway"
	PaymentTypeManual  PaymentType = "manual"
)

func (t PaymentType) IsValid() bool {
	switch t {
	case PaymentTypeCOD, PaymentTypeGateway, PaymentTypeManual:
		return true
	}
	return false
}
