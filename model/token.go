// file: model/token.go

package model

import "time"

// RefreshToken is one outstanding, not-yet-used refresh credential. The row
// is keyed by the token value itself and is deleted in the same transaction
// that issues its replacement, so a value can never be redeemed twice.
type RefreshToken struct {
	Token     string    `json:"-"` // the signed token value, never exposed in responses
	UserID    int       `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// TokenPair is the access+refresh pair returned by login, register and
// refresh endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}
