package models

import "github.com/golang-jwt/jwt/v5"

// Roles carried by admin API tokens
const (
	RoleAdmin   = "admin"
	RoleService = "service"
)

// APIClaims represents the JWT claims for admin API tokens. Tokens identify
// a client (an operator or an integration), not an end user.
type APIClaims struct {
	jwt.RegisteredClaims
	ClientID string `json:"client_id"`
	Role     string `json:"role"`
}
