package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

// RedisCodeStore keeps bcrypt hashes of verification codes in Redis with a
// TTL, so codes survive restarts and are shared between instances.
type RedisCodeStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCodeStore(client *redis.Client, ttl time.Duration) *RedisCodeStore {
	return &RedisCodeStore{client: client, ttl: ttl}
}

func codeKey(bookingID uint) string {
	return fmt.Sprintf("payment:code:%d", bookingID)
}

func (s *RedisCodeStore) Put(ctx context.Context, bookingID uint, code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash code: %w", err)
	}
	return s.client.Set(ctx, codeKey(bookingID), hash, s.ttl).Err()
}

// Consume compares under WATCH and deletes in MULTI/EXEC, so of two callers
// holding the right code only one sees the delete commit.
func (s *RedisCodeStore) Consume(ctx context.Context, bookingID uint, code string) (bool, error) {
	key := codeKey(bookingID)
	matched := false
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		hash, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil
		}
		if err != nil {
			return err
		}
		if bcrypt.CompareHashAndPassword(hash, []byte(code)) != nil {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, key)
			return nil
		})
		if err != nil {
			return err
		}
		matched = true
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		// Someone else changed or consumed the code first.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return matched, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, bookingID uint) error {
	return s.client.Del(ctx, codeKey(bookingID)).Err()
}
