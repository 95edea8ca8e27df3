package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-otp-api/internal/domain"
)

// OTPEnvelope is the response wrapper for the OTP endpoints.
// OTP is populated only in diagnostic configurations.
type OTPEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	OTP     string `json:"otp,omitempty"`
	Error   string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// httpError maps domain sentinel errors onto the response contract.
// Absent and expired records share one message on purpose.
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "OTP not found or expired"})
	case errors.Is(err, domain.ErrInvalidCode):
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Invalid OTP"})
	case errors.Is(err, domain.ErrDelivery):
		writeJSON(w, http.StatusInternalServerError, OTPEnvelope{Message: "Failed to send OTP", Error: err.Error()})
	case errors.Is(err, domain.ErrBadRequest):
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, OTPEnvelope{Message: "internal error", Error: err.Error()})
	}
}
