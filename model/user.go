package model

import "time"

// Role is the RBAC role attached to a user. Permissions are derived from the
// role only; there is no per-user permission table.
type Role string

const (
	RoleUser   Role = "user"
	RoleEditor Role = "editor"
	RoleAdmin  Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleEditor || r == RoleAdmin
}

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Password  string    `json:"password,omitempty"` // bcrypt hash, stripped before responses
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}
