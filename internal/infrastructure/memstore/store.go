package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-otp-api/internal/domain"
	gocache "github.com/patrickmn/go-cache"
)

// Store is the in-process OTP store, the default backend. Expiry is enforced
// lazily: every read checks ExpiresAt against the clock. go-cache's janitor
// sweeps dead entries so the map cannot grow without bound when codes are
// never verified; the sweep is reclamation only, never the authority on expiry.
//
// A single mutex serializes the read-modify-write sequences (replace-on-put,
// compare-and-delete-on-consume) so a concurrent issue and verify for the
// same email cannot interleave into an inconsistent state.
type Store struct {
	mu  sync.Mutex
	c   *gocache.Cache
	now func() time.Time
}

func New() *Store {
	return &Store{
		c:   gocache.New(gocache.NoExpiration, time.Minute),
		now: time.Now,
	}
}

func (s *Store) Put(_ context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := *rec
	r.ExpiresAt = s.now().Add(ttl)
	d := ttl
	if d <= 0 {
		// go-cache treats 0 as "use default" and negatives as "never
		// expire"; a nanosecond keeps a non-positive TTL dead on arrival.
		d = time.Nanosecond
	}
	// Set overwrites any prior record for the key, dropping its old sweep
	// deadline with it.
	s.c.Set(r.Email, &r, d)
	rec.ExpiresAt = r.ExpiresAt
	return nil
}

func (s *Store) Get(_ context.Context, email string) (*domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.get(email)
	if !ok {
		return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	r := *rec
	return &r, nil
}

func (s *Store) Consume(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.get(email)
	if !ok {
		return fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	if rec.Code != code {
		return fmt.Errorf("otp for %s: %w", email, domain.ErrInvalidCode)
	}
	s.c.Delete(email)
	return nil
}

func (s *Store) Delete(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.c.Delete(email)
	return nil
}

func (s *Store) List(_ context.Context) ([]domain.OTPRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := s.c.Items()
	out := make([]domain.OTPRecord, 0, len(items))
	now := s.now()
	for _, it := range items {
		rec, ok := it.Object.(*domain.OTPRecord)
		if !ok || !now.Before(rec.ExpiresAt) {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

// get returns the live record for email, evicting it when expired.
// Caller must hold s.mu.
func (s *Store) get(email string) (*domain.OTPRecord, bool) {
	v, ok := s.c.Get(email)
	if !ok {
		return nil, false
	}
	rec := v.(*domain.OTPRecord)
	if !s.now().Before(rec.ExpiresAt) {
		s.c.Delete(email)
		return nil, false
	}
	return rec, true
}
