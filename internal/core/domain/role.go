package domain

// Role represents user role in the system
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleEmployee Role = "EMPLOYEE"
	RoleAdmin    Role = "ADMIN"
)

// IsLenderCapable reports whether a role may process (lend out) loans.
// Borrowing is open to every role.
func (r Role) IsLenderCapable() bool {
	return r == RoleEmployee || r == RoleAdmin
}

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleEmployee, RoleAdmin:
		return true
	}
	return false
}
