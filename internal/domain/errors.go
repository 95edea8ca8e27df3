package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound    = errors.New("not found")       // no record, or record expired (indistinguishable on purpose)
	ErrBadRequest  = errors.New("bad request")     // missing/invalid request fields
	ErrInvalidCode = errors.New("invalid code")    // record exists but the submitted code does not match
	ErrDelivery    = errors.New("delivery failed") // outbound email transport failure
)
