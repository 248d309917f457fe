package redisstore

// Package redisstore provides Redis-backed durable storage for the client
// core, for deployments where the client runs beside a Redis instance.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/ports"
)

const credentialsKey = "credentials"

// CredentialStore persists the credential pair as a single JSON value under
// one key, so token and user are always stored and removed together.
type CredentialStore struct {
	client redis.UniversalClient
	prefix string
}

// NewCredentialStore creates a Redis-backed credential store.
func NewCredentialStore(client redis.UniversalClient, prefix string) *CredentialStore {
	return &CredentialStore{client: client, prefix: prefix}
}

func (s *CredentialStore) Get(ctx context.Context) (session.Credentials, error) {
	data, err := s.client.Get(ctx, s.prefix+credentialsKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Credentials{}, ports.ErrNoCredentials
		}
		return session.Credentials{}, fmt.Errorf("redis get: %w", err)
	}

	var creds session.Credentials
	if unmarshalErr := json.Unmarshal([]byte(data), &creds); unmarshalErr != nil {
		return session.Credentials{}, fmt.Errorf("unmarshal credentials: %w", unmarshalErr)
	}
	if creds.Token == "" {
		return session.Credentials{}, ports.ErrNoCredentials
	}
	return creds, nil
}

func (s *CredentialStore) Set(ctx context.Context, creds session.Credentials) error {
	if creds.Token == "" {
		return errors.New("token cannot be empty")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	// No TTL: the credential pair lives until logout or forced expiry.
	return s.client.Set(ctx, s.prefix+credentialsKey, data, 0).Err()
}

func (s *CredentialStore) Clear(ctx context.Context) error {
	return s.client.Del(ctx, s.prefix+credentialsKey).Err()
}
