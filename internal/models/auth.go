package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles carried by admin access tokens.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleEditor     UserRole = "EDITOR"
)

// JWTClaims is the access token payload issued by the identity provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// ActorID returns the acting user id, falling back to the registered subject.
func (c *JWTClaims) ActorID() string {
	if c == nil {
		return ""
	}
	if c.UserID != "" {
		return c.UserID
	}
	return c.RegisteredClaims.Subject
}
