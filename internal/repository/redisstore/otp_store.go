package redisstore

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"invoicedesk/internal/domain"
	"invoicedesk/internal/port"
)

const otpKeyPrefix = "invoicedesk:otp:"

type otpStore struct {
	rdb *redis.Client
}

// NewOTPStore creates a Redis-backed OTPStore. Challenges are hashes holding
// the bcrypt code hash and the number of failed attempts.
func NewOTPStore(rdb *redis.Client) port.OTPStore {
	return &otpStore{rdb: rdb}
}

func otpKey(phone string) string {
	return otpKeyPrefix + phone
}

func (s *otpStore) Save(ctx context.Context, phone string, challenge *port.OTPChallenge, ttl time.Duration) error {
	key := otpKey(phone)
	if err := s.rdb.HSet(ctx, key, "code_hash", challenge.CodeHash, "attempts", challenge.Attempts).Err(); err != nil {
		return fmt.Errorf("otpStore.Save: %w", err)
	}
	if err := s.rdb.Expire(ctx, key, ttl).Err(); err != nil {
		return fmt.Errorf("otpStore.Save expire: %w", err)
	}
	return nil
}

func (s *otpStore) Get(ctx context.Context, phone string) (*port.OTPChallenge, error) {
	vals, err := s.rdb.HGetAll(ctx, otpKey(phone)).Result()
	if err != nil {
		return nil, fmt.Errorf("otpStore.Get: %w", err)
	}
	hash, ok := vals["code_hash"]
	if !ok {
		return nil, domain.ErrOTPExpired
	}
	attempts, _ := strconv.Atoi(vals["attempts"])
	return &port.OTPChallenge{CodeHash: hash, Attempts: attempts}, nil
}

func (s *otpStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := s.rdb.HIncrBy(ctx, otpKey(phone), "attempts", 1).Result()
	if err != nil {
		return 0, fmt.Errorf("otpStore.IncrementAttempts: %w", err)
	}
	return int(n), nil
}

func (s *otpStore) Delete(ctx context.Context, phone string) error {
	if err := s.rdb.Del(ctx, otpKey(phone)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("otpStore.Delete: %w", err)
	}
	return nil
}

// NewClient opens a Redis client and verifies the connection.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}
