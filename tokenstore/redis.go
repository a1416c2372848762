package tokenstore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix        = "dineauth:session:"
	redisWatchMaxAttempts = 4
)

// RedisStore persists records in Redis so that several terminals in one
// venue can share a session. Keys live under "dineauth:session:<profile>".
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. A zero ttl means records never
// expire server-side.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func redisKey(profileID string) string {
	return redisKeyPrefix + profileID
}

func (s *RedisStore) Load(ctx context.Context, profileID string) (*Record, error) {
	data, err := s.client.Get(ctx, redisKey(profileID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

func (s *RedisStore) Save(ctx context.Context, profileID string, rec *Record) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, redisKey(profileID), data, s.ttl).Err()
}

// SetAccessToken rotates the token fields under an optimistic WATCH
// transaction so a concurrent Save or Clear from another terminal is not
// silently overwritten.
func (s *RedisStore) SetAccessToken(ctx context.Context, profileID, accessToken, refreshToken string) error {
	key := redisKey(profileID)

	txn := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		rec, err := Decode(data)
		if err != nil {
			return err
		}

		rec.AccessToken = accessToken
		if refreshToken != "" {
			rec.RefreshToken = refreshToken
		}
		rec.UpdatedAt = time.Now().Unix()

		updated, err := Encode(rec)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, updated, s.ttl)
			return nil
		})
		return err
	}

	var err error
	for attempt := 0; attempt < redisWatchMaxAttempts; attempt++ {
		err = s.client.Watch(ctx, txn, key)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
	}
	return err
}

func (s *RedisStore) Clear(ctx context.Context, profileID string) error {
	return s.client.Del(ctx, redisKey(profileID)).Err()
}
