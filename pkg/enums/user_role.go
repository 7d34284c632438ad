package enums

// UserRole drives role-based pricing and admin access.
type UserRole string

const (
	UserRoleCustomer    UserRole = "customer"
	UserRoleDistributor UserRole = "distributor"
	UserRoleAdmin       UserRole = "admin"
)

func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleCustomer, UserRoleDistributor, UserRoleAdmin:
		return true
	}
	return false
}
