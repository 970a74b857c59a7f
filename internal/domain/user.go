package domain

// RoleAdmin is the sole role granting access to admin-gated operations.
const RoleAdmin = "administrador"

// RoleCustomer is the default role assigned at signup.
const RoleCustomer = "cliente"

// User is the identity resolved from a bearer token by the auth provider.
// Credential storage lives in the external identity platform.
type User struct {
	ID    string
	Email string
	Name  string
	Role  string
}

// IsAdmin reports whether the user holds the administrator capability.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// CanViewOrder reports whether the user may read the given order and its
// tracking ledger: the owner or an administrator.
func (u User) CanViewOrder(order Order) bool {
	return u.IsAdmin() || order.UserID == u.ID
}
