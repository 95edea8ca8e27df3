package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-otp-api/internal/domain"
	"github.com/go-otp-api/internal/metrics"
	"github.com/go-otp-api/internal/pkg/id"
	"github.com/go-otp-api/internal/pkg/otpgen"
)

// Store is the expiring credential store. At most one live record exists per
// email; Put replaces any prior record and its pending eviction. Get and
// Consume treat an expired record as absent even if background eviction has
// not run yet. All read-modify-write sequences are serialized per key by the
// implementation.
type Store interface {
	Put(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error
	Get(ctx context.Context, email string) (*domain.OTPRecord, error)
	// Consume deletes the record iff it exists, is unexpired and the code
	// matches exactly. Returns domain.ErrNotFound or domain.ErrInvalidCode
	// otherwise, without mutating on failure.
	Consume(ctx context.Context, email, code string) error
	Delete(ctx context.Context, email string) error
	// List returns the live (unexpired) records. Debug listing only.
	List(ctx context.Context) ([]domain.OTPRecord, error)
}

// Sender delivers a message to a recipient. Exactly one implementation is
// active per process, selected by configuration at startup.
type Sender interface {
	Send(ctx context.Context, to, subject, textBody, htmlBody string) error
}

type Service interface {
	// Issue generates a code for the email, stores it with the configured
	// TTL and dispatches it. Returns the generated code.
	Issue(ctx context.Context, email string) (string, error)
	// Verify consumes the pending code for the email. Single use: a
	// successful verification deletes the record.
	Verify(ctx context.Context, email, code string) error
	// Pending returns the live records for the debug listing.
	Pending(ctx context.Context) ([]domain.OTPRecord, error)
}

type service struct {
	store  Store
	sender Sender
	ttl    time.Duration
}

func NewService(store Store, sender Sender, ttl time.Duration) Service {
	return &service{store: store, sender: sender, ttl: ttl}
}

// NormalizeEmail trims surrounding whitespace and case-folds the address so
// issue and verify agree on the lookup key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *service) Issue(ctx context.Context, email string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return "", fmt.Errorf("email is required: %w", domain.ErrBadRequest)
	}

	code, err := otpgen.New()
	if err != nil {
		return "", err
	}

	rec := &domain.OTPRecord{ID: id.New(), Email: email, Code: code}
	if err := s.store.Put(ctx, rec, s.ttl); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}
	metrics.OTPIssued.Inc()

	subject := "Your OTP Code"
	text := fmt.Sprintf("Your OTP is: %s\nThis code will expire in %d minute(s).", code, int(s.ttl.Minutes()))
	html := "<p>" + text + "</p>"

	// The record is stored before dispatch and stays valid for its TTL even
	// when sending fails: a code delivered out of band can still verify.
	if err := s.sender.Send(ctx, email, subject, text, html); err != nil {
		metrics.OTPDeliveryFailures.Inc()
		slog.Error("otp delivery failed", "otp_id", rec.ID, "email", email, "err", err)
		return "", fmt.Errorf("%w: %v", domain.ErrDelivery, err)
	}

	slog.Info("otp issued", "otp_id", rec.ID, "email", email)
	return code, nil
}

func (s *service) Verify(ctx context.Context, email, code string) error {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		return fmt.Errorf("email and otp are required: %w", domain.ErrBadRequest)
	}

	if err := s.store.Consume(ctx, email, code); err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			metrics.OTPVerifyAttempts.WithLabelValues("not_found").Inc()
		case errors.Is(err, domain.ErrInvalidCode):
			metrics.OTPVerifyAttempts.WithLabelValues("mismatch").Inc()
			slog.Info("otp mismatch", "email", email)
		}
		return err
	}

	metrics.OTPVerifyAttempts.WithLabelValues("ok").Inc()
	slog.Info("otp verified", "email", email)
	return nil
}

func (s *service) Pending(ctx context.Context) ([]domain.OTPRecord, error) {
	return s.store.List(ctx)
}
