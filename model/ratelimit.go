package model

import "time"

// RateLimitAttempt is one recorded attempt of a throttled action. The table
// is append-only; rows older than the cleanup horizon are reclaimable.
type RateLimitAttempt struct {
	ID         int       `json:"id"`
	Identifier string    `json:"identifier"`
	Action     string    `json:"action"`
	CreatedAt  time.Time `json:"created_at"`
}
