package enums

// CartStatus tracks the lifecycle of a shopping cart.
type CartStatus string

const (
	CartStatusActive     CartStatus = "active"
	CartStatusCheckedOut CartStatus = "checked_out"
)

func (s CartStatus) IsValid() bool {
	switch s {
	case CartStatusActive, CartStatusCheckedOut:
		return true
	}
	return false
}
