package model

import "github.com/golang-jwt/jwt/v5"

// AppClaims are the custom JWT claims carried by both access and refresh
// tokens. Role may be empty on tokens minted before role claims existed;
// verification treats that as the lowest-privilege role.
type AppClaims struct {
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
	Role   Role   `json:"role,omitempty"`
	jwt.RegisteredClaims
}
