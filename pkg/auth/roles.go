package auth

// Platform roles carried in JWT claims.
const (
	RoleAdmin    = "ADMIN"
	RoleProvider = "PROVIDER"
	RoleClient   = "CLIENT"
)
