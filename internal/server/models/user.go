// Package models contains the persistence-facing data structures of the
// authentication service.
package models

// Role is a closed enumeration of account roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleManager:
		return true
	}
	return false
}

// User is a registered identity. Password holds the bcrypt hash, never the
// plaintext; the json tag keeps it out of every serialized response.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"-"`
	Role      Role   `json:"role"`
}
