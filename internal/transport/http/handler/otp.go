package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	otpapp "github.com/go-otp-api/internal/application/otp"
	"github.com/go-otp-api/internal/domain"
	"github.com/go-otp-api/internal/pkg/validate"
)

// OTPHandler handles the send and verify endpoints plus the debug listing.
type OTPHandler struct {
	svc     otpapp.Service
	echoOTP bool
}

func NewOTPHandler(svc otpapp.Service, echoOTP bool) *OTPHandler {
	return &OTPHandler{svc: svc, echoOTP: echoOTP}
}

type sendOTPRequest struct {
	Email string `json:"email" validate:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required"`
}

func (h *OTPHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email is required"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email is required"})
		return
	}

	code, err := h.svc.Issue(r.Context(), req.Email)
	if err != nil {
		// Whitespace-only emails pass the required tag but fail
		// normalization inside the service.
		if errors.Is(err, domain.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email is required"})
			return
		}
		httpError(w, err)
		return
	}

	resp := OTPEnvelope{Success: true, Message: "OTP sent successfully"}
	if h.echoOTP {
		resp.OTP = code
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *OTPHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req verifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email & OTP required"})
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email & OTP required"})
		return
	}

	if err := h.svc.Verify(r.Context(), req.Email, req.OTP); err != nil {
		if errors.Is(err, domain.ErrBadRequest) {
			writeJSON(w, http.StatusBadRequest, OTPEnvelope{Message: "Email & OTP required"})
			return
		}
		httpError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, OTPEnvelope{Success: true, Message: "OTP verified successfully"})
}

type debugOTP struct {
	OTP       string `json:"otp"`
	ExpiresAt int64  `json:"expiresAt"` // Unix milliseconds
}

// DebugList exposes the pending records, email -> {otp, expiresAt}.
// Codes are shown plain only when the echo configuration is on.
func (h *OTPHandler) DebugList(w http.ResponseWriter, r *http.Request) {
	recs, err := h.svc.Pending(r.Context())
	if err != nil {
		httpError(w, err)
		return
	}
	out := make(map[string]debugOTP, len(recs))
	for _, rec := range recs {
		code := "HIDDEN"
		if h.echoOTP {
			code = rec.Code
		}
		out[rec.Email] = debugOTP{OTP: code, ExpiresAt: rec.ExpiresAt.UnixMilli()}
	}
	writeJSON(w, http.StatusOK, out)
}
