package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	otpapp "github.com/go-otp-api/internal/application/otp"
	"github.com/go-otp-api/internal/infrastructure/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSender captures outbound messages instead of delivering them.
type stubSender struct {
	lastTo   string
	lastText string
	fail     error
}

func (s *stubSender) Send(_ context.Context, to, _, textBody, _ string) error {
	s.lastTo = to
	s.lastText = textBody
	return s.fail
}

var codeInBody = regexp.MustCompile(`[1-9][0-9]{5}`)

// newTestRouter wires real service + memory store + stub sender, the same
// shape the production router builds.
func newTestRouter(sender *stubSender, echoOTP bool) http.Handler {
	svc := otpapp.NewService(memstore.New(), sender, 5*time.Minute)
	h := NewOTPHandler(svc, echoOTP)

	r := chi.NewRouter()
	r.Post("/send-otp", h.Send)
	r.Post("/verify-otp", h.Verify)
	r.Get("/__debug/otps", h.DebugList)
	return r
}

func doJSON(t *testing.T, router http.Handler, path string, body map[string]string) (*httptest.ResponseRecorder, OTPEnvelope) {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var env OTPEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	return rr, env
}

// --- /send-otp ---

func TestSendOTP_MissingEmail(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(sender, true)

	rr, env := doJSON(t, router, "/send-otp", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Email is required", env.Message)
	assert.Empty(t, sender.lastTo)
}

func TestSendOTP_WhitespaceEmail(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(sender, true)

	rr, env := doJSON(t, router, "/send-otp", map[string]string{"email": "   "})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Email is required", env.Message)
	assert.Empty(t, sender.lastTo)
}

func TestSendOTP_SuccessEchoesCode(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(sender, true)

	rr, env := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "OTP sent successfully", env.Message)
	assert.Regexp(t, `^[1-9][0-9]{5}$`, env.OTP)
	assert.Equal(t, "a@b.com", sender.lastTo)
}

func TestSendOTP_EchoDisabled(t *testing.T) {
	sender := &stubSender{}
	router := newTestRouter(sender, false)

	rr, env := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Empty(t, env.OTP)
}

func TestSendOTP_DeliveryFailureKeepsCredential(t *testing.T) {
	sender := &stubSender{fail: errors.New("connection refused")}
	router := newTestRouter(sender, true)

	rr, env := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "Failed to send OTP", env.Message)
	assert.NotEmpty(t, env.Error)

	// The record survived the failed dispatch: the code (recovered from
	// the attempted message body) still verifies within the TTL.
	code := codeInBody.FindString(sender.lastText)
	require.NotEmpty(t, code)

	rr, env = doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": code})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
}

// --- /verify-otp ---

func TestVerifyOTP_MissingFields(t *testing.T) {
	router := newTestRouter(&stubSender{}, true)

	for _, body := range []map[string]string{
		{},
		{"email": "a@b.com"},
		{"otp": "123456"},
	} {
		rr, env := doJSON(t, router, "/verify-otp", body)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Email & OTP required", env.Message)
	}
}

func TestVerifyOTP_SingleUse(t *testing.T) {
	router := newTestRouter(&stubSender{}, true)

	_, sendEnv := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})
	require.NotEmpty(t, sendEnv.OTP)

	rr, env := doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": sendEnv.OTP})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "OTP verified successfully", env.Message)

	// Replay is rejected as not-found: the record was consumed.
	rr, env = doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": sendEnv.OTP})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "OTP not found or expired", env.Message)
}

func TestVerifyOTP_NormalizationRoundTrip(t *testing.T) {
	router := newTestRouter(&stubSender{}, true)

	_, sendEnv := doJSON(t, router, "/send-otp", map[string]string{"email": "User@Example.com "})
	require.NotEmpty(t, sendEnv.OTP)

	rr, env := doJSON(t, router, "/verify-otp", map[string]string{
		"email": "user@example.com",
		"otp":   " " + sendEnv.OTP + " ",
	})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
}

func TestVerifyOTP_WrongCodeThenRight(t *testing.T) {
	router := newTestRouter(&stubSender{}, true)

	_, sendEnv := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})

	wrong := "111111"
	if wrong == sendEnv.OTP {
		wrong = "222222"
	}

	rr, env := doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": wrong})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Invalid OTP", env.Message)

	// No lockout from the failed attempt.
	rr, env = doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": sendEnv.OTP})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
}

func TestVerifyOTP_ReissueInvalidatesPriorCode(t *testing.T) {
	router := newTestRouter(&stubSender{}, true)

	_, first := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})
	_, second := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})
	require.NotEqual(t, "", second.OTP)

	if first.OTP != second.OTP {
		rr, env := doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": first.OTP})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "Invalid OTP", env.Message)
	}

	rr, env := doJSON(t, router, "/verify-otp", map[string]string{"email": "a@b.com", "otp": second.OTP})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, env.Success)
}

// --- /__debug/otps ---

func TestDebugList_MasksWhenEchoDisabled(t *testing.T) {
	for _, echo := range []bool{true, false} {
		router := newTestRouter(&stubSender{}, echo)

		_, sendEnv := doJSON(t, router, "/send-otp", map[string]string{"email": "a@b.com"})

		req := httptest.NewRequest(http.MethodGet, "/__debug/otps", nil)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		require.Equal(t, http.StatusOK, rr.Code)

		var out map[string]struct {
			OTP       string `json:"otp"`
			ExpiresAt int64  `json:"expiresAt"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
		require.Contains(t, out, "a@b.com")

		if echo {
			assert.Equal(t, sendEnv.OTP, out["a@b.com"].OTP)
		} else {
			assert.Equal(t, "HIDDEN", out["a@b.com"].OTP)
		}
		assert.Greater(t, out["a@b.com"].ExpiresAt, time.Now().UnixMilli())
	}
}
