package domain

import "time"

// OTPRecord is a pending one-time passcode for an email address.
// Email is the lookup key, already trimmed and lower-cased.
// ExpiresAt is checked on every read; background eviction (go-cache janitor,
// Redis TTL, DynamoDB TTL) only reclaims memory and is never the authority
// on expiry.
type OTPRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}
