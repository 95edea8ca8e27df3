package http

import (
	otpapp "github.com/go-otp-api/internal/application/otp"
)

// Deps holds the infrastructure dependencies for the router: the credential
// store backend and the delivery transport, both selected once at startup.
type Deps struct {
	Store  otpapp.Store
	Sender otpapp.Sender
}
