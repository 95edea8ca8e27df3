package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-otp-api/internal/domain"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "otp:"

// consumeScript is an atomic compare-and-delete: the single-use invariant
// must hold even when several API instances share the store. Returns 1 on
// consume, 0 when the key is absent, -1 on code mismatch.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if not v then return 0 end
local rec = cjson.decode(v)
if rec.code == ARGV[1] then
  redis.call('DEL', KEYS[1])
  return 1
end
return -1
`)

// Store keeps OTP records in Redis, one JSON value per email with a native
// TTL. Redis enforces expiry on read, so unlike the memory backend no extra
// lazy check is needed for Consume; Get still filters on ExpiresAt so a
// record that outlived its deadline inside a non-expiring snapshot behaves
// as absent.
type Store struct {
	c *redis.Client
}

func New(addr, password string, db int) *Store {
	return &Store{c: redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})}
}

func (s *Store) Put(ctx context.Context, rec *domain.OTPRecord, ttl time.Duration) error {
	r := *rec
	r.ExpiresAt = time.Now().Add(ttl)
	b, err := json.Marshal(&r)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	if ttl <= 0 {
		ttl = time.Millisecond
	}
	// SET with EX replaces both the prior value and its TTL in one step.
	if err := s.c.Set(ctx, keyPrefix+r.Email, b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	rec.ExpiresAt = r.ExpiresAt
	return nil
}

func (s *Store) Get(ctx context.Context, email string) (*domain.OTPRecord, error) {
	b, err := s.c.Get(ctx, keyPrefix+email).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	var rec domain.OTPRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	if !time.Now().Before(rec.ExpiresAt) {
		return nil, fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
	return &rec, nil
}

func (s *Store) Consume(ctx context.Context, email, code string) error {
	n, err := consumeScript.Run(ctx, s.c, []string{keyPrefix + email}, code).Int()
	if err != nil {
		return fmt.Errorf("redis consume: %w", err)
	}
	switch n {
	case 1:
		return nil
	case -1:
		return fmt.Errorf("otp for %s: %w", email, domain.ErrInvalidCode)
	default:
		return fmt.Errorf("otp record: %w", domain.ErrNotFound)
	}
}

func (s *Store) Delete(ctx context.Context, email string) error {
	if err := s.c.Del(ctx, keyPrefix+email).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) List(ctx context.Context) ([]domain.OTPRecord, error) {
	var out []domain.OTPRecord
	iter := s.c.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		b, err := s.c.Get(ctx, iter.Val()).Bytes()
		if err != nil {
			continue // expired between SCAN and GET
		}
		var rec domain.OTPRecord
		if err := json.Unmarshal(b, &rec); err != nil {
			continue
		}
		out = append(out, rec)
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("redis scan: %w", err)
	}
	return out, nil
}
