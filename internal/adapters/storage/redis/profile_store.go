// Package redis stores the profile blob under a single Redis key.
package redis

import (
	"context"
	"errors"

	"github.com/go-redis/redis/v8"

	"github.com/PabloGalante/lifeline-agent/internal/adapters/storage/codec"
	"github.com/PabloGalante/lifeline-agent/internal/domain"
)

type ProfileStore struct {
	client *redis.Client
	key    string
}

// NewProfileStore wraps an existing client. key is the slot key.
func NewProfileStore(client *redis.Client, key string) *ProfileStore {
	return &ProfileStore{client: client, key: key}
}

// Dial creates a client for addr and checks the connection.
func Dial(ctx context.Context, addr, password string, db int, key string) (*ProfileStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, domain.E(domain.KindStorageUnavailable, "redis dial", err)
	}
	return NewProfileStore(client, key), nil
}

func (s *ProfileStore) Load(ctx context.Context) (*domain.Profile, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.Ef(domain.KindNotFound, "redis load profile", "profile not found")
		}
		return nil, domain.E(domain.KindStorageUnavailable, "redis load profile", err)
	}
	return codec.Decode(b)
}

func (s *ProfileStore) Save(ctx context.Context, profile *domain.Profile) error {
	b, err := codec.Encode(profile)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return domain.E(domain.KindStorageUnavailable, "redis save profile", err)
	}
	return nil
}

func (s *ProfileStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return domain.E(domain.KindStorageUnavailable, "redis clear profile", err)
	}
	return nil
}

func (s *ProfileStore) Close() error {
	return s.client.Close()
}
