package domain

type Role string

const (
	RoleGuest Role = "guest"
	RoleHost  Role = "host"
)

// Valid reports whether the role is one the platform knows.
func (r Role) Valid() bool {
	return r == RoleGuest || r == RoleHost
}

type User struct {
	ID   string
	Role Role
}
