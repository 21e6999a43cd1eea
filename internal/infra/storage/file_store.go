// Package storage provides SessionStorage implementations the host can plug
// into the session repository.
package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"fitsync/config"
	domainerrors "fitsync/internal/domain/errors"
	"fitsync/internal/domain/entity"
	"fitsync/internal/domain/repository"
	"fitsync/internal/errors"
)

// sessionFile is the on-disk shape. entity JSON tags keep the token's expiry
// instant lossless across the round trip.
type sessionFile struct {
	Token *entity.AuthToken `json:"token,omitempty"`
	User  *entity.User      `json:"user,omitempty"`
}

// errEmptyStore marks a missing session file. Each getter translates it to
// its own not-found sentinel.
var errEmptyStore = errors.New("session file absent")

// fileStore persists the session as a single JSON file. Writes go through a
// temp file and rename so a crashed write never leaves a torn session behind.
type fileStore struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewFileStore creates a file-backed SessionStorage at cfg.Storage.Path.
func NewFileStore(cfg *config.Config, logger *slog.Logger) (repository.SessionStorage, error) {
	path := cfg.Storage.Path
	if path == "" {
		return nil, errors.New("storage path must be configured for the file store")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, errors.Wrap(err, "create session storage directory")
	}

	return &fileStore{path: path, logger: logger}, nil
}

func (s *fileStore) GetToken(ctx context.Context) (*entity.AuthToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		if errors.Is(err, errEmptyStore) {
			return nil, repository.ErrTokenNotFound
		}

		return nil, err
	}
	if contents.Token == nil {
		return nil, repository.ErrTokenNotFound
	}

	return contents.Token, nil
}

func (s *fileStore) GetUser(ctx context.Context) (*entity.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil {
		if errors.Is(err, errEmptyStore) {
			return nil, repository.ErrUserNotFound
		}

		return nil, err
	}
	if contents.User == nil {
		return nil, repository.ErrUserNotFound
	}

	return contents.User, nil
}

func (s *fileStore) StoreToken(ctx context.Context, token *entity.AuthToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil && !errors.Is(err, errEmptyStore) {
		return err
	}
	contents.Token = token

	return s.write(contents)
}

func (s *fileStore) StoreUser(ctx context.Context, user *entity.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents, err := s.read()
	if err != nil && !errors.Is(err, errEmptyStore) {
		return err
	}
	contents.User = user

	return s.write(contents)
}

func (s *fileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}
	s.logger.Debug("Session file cleared", slog.String("path", s.path))

	return nil
}

// read loads the session file. A missing file is reported as errEmptyStore
// because an empty store is the normal first-run state.
func (s *fileStore) read() (sessionFile, error) {
	var contents sessionFile

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return contents, errEmptyStore
		}

		return contents, errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}

	if err := json.Unmarshal(raw, &contents); err != nil {
		return sessionFile{}, errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}

	return contents, nil
}

func (s *fileStore) write(contents sessionFile) error {
	raw, err := json.MarshalIndent(contents, "", "  ")
	if err != nil {
		return errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(domainerrors.ErrStorageFailure, err.Error())
	}

	return nil
}
