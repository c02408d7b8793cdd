package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPMismatch covers a missing, expired or wrong code; callers must not
// learn which.
var ErrOTPMismatch = errors.New("auth: otp mismatch")

// OTPStore keeps one-time codes in Redis, expiring with the key.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore constructs an OTPStore.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(phone string) string {
	return "otp:" + phone
}

// Put stores a fresh code for the phone, replacing any pending one.
func (s *OTPStore) Put(ctx context.Context, phone, code string) error {
	if err := s.client.Set(ctx, otpKey(phone), code, s.ttl).Err(); err != nil {
		return fmt.Errorf("auth: store otp: %w", err)
	}
	return nil
}

// Consume compares the submitted code against the pending one and deletes it
// on success. A code can be consumed at most once.
func (s *OTPStore) Consume(ctx context.Context, phone, code string) error {
	stored, err := s.client.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return ErrOTPMismatch
	}
	if err != nil {
		return fmt.Errorf("auth: load otp: %w", err)
	}
	if stored != code {
		return ErrOTPMismatch
	}
	if err := s.client.Del(ctx, otpKey(phone)).Err(); err != nil {
		return fmt.Errorf("auth: consume otp: %w", err)
	}
	return nil
}

// GenerateCode produces a 6-digit numeric code.
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("auth: generate code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
