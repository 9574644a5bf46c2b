package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/garyjia/billed/internal/domain/entity"
)

var errNotLoggedIn = errors.New("not logged in, run `billed login` first")

// sessionFile persists the connected user between invocations
type sessionFile struct {
	path string
}

func (f sessionFile) Load() (entity.Session, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Session{}, errNotLoggedIn
	}
	if err != nil {
		return entity.Session{}, fmt.Errorf("read session: %w", err)
	}

	var session entity.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return entity.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if session.Token == "" {
		return entity.Session{}, errNotLoggedIn
	}
	return session, nil
}

func (f sessionFile) Save(session entity.Session) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session directory: %w", err)
	}
	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return os.WriteFile(f.path, data, 0o600)
}

func (f sessionFile) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session: %w", err)
	}
	return nil
}
