package filestore

// Package filestore provides file-backed durable storage for the client
// core: the credential pair and the offline submission queue. Writes go
// through a temp-file rename so readers never observe torn state.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vitatrack/client-core/internal/domain/session"
	"github.com/vitatrack/client-core/internal/ports"
)

const credentialsFile = "credentials.json"

// CredentialStore persists the bearer token and user snapshot as one JSON
// document, so the pair is always written and removed together.
type CredentialStore struct {
	path string
}

// NewCredentialStore creates a file-backed credential store rooted at dir.
// The directory is created if it does not exist.
func NewCredentialStore(dir string) (*CredentialStore, error) {
	if dir == "" {
		return nil, errors.New("storage dir cannot be empty")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &CredentialStore{path: filepath.Join(dir, credentialsFile)}, nil
}

func (s *CredentialStore) Get(_ context.Context) (session.Credentials, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return session.Credentials{}, ports.ErrNoCredentials
		}
		return session.Credentials{}, fmt.Errorf("read credentials: %w", err)
	}

	var creds session.Credentials
	if unmarshalErr := json.Unmarshal(data, &creds); unmarshalErr != nil {
		// A corrupt file is as good as no credentials; the caller will
		// re-authenticate and overwrite it.
		return session.Credentials{}, ports.ErrNoCredentials
	}
	if creds.Token == "" {
		return session.Credentials{}, ports.ErrNoCredentials
	}
	return creds, nil
}

func (s *CredentialStore) Set(_ context.Context, creds session.Credentials) error {
	if creds.Token == "" {
		return errors.New("token cannot be empty")
	}

	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("marshal credentials: %w", err)
	}
	return writeAtomic(s.path, data)
}

func (s *CredentialStore) Clear(_ context.Context) error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

// writeAtomic writes data to path via a temp file and rename, so a
// concurrent reader sees either the old document or the new one.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
