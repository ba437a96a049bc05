package jsonstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/nexo/internal/session"
)

// JSON-backed storage. Single file, human-readable, owner-only permissions.
// No locking; one CLI process per profile.

// File is a single JSON document on disk.
type File struct {
	path string
}

func New(path string) *File { return &File{path: path} }

func (f *File) Path() string { return f.path }

// Load decodes the file into v. A missing file reports found=false.
func (f *File) Load(v any) (bool, error) {
	b, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read file: %w", err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("json unmarshal: %w", err)
	}
	return true, nil
}

func (f *File) Save(v any) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if err := os.WriteFile(f.path, b, 0o600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}

func (f *File) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove file: %w", err)
	}
	return nil
}

// Sessions persists a session.Session to <home>/session.json (session-<profile>.json for named profiles).
type Sessions struct {
	file *File
}

func NewSessions(home, profile string) *Sessions {
	name := "session.json"
	if profile != "" && profile != "default" {
		name = "session-" + profile + ".json"
	}
	return &Sessions{file: New(filepath.Join(home, name))}
}

func (s *Sessions) Path() string { return s.file.Path() }

func (s *Sessions) Load(_ context.Context) (*session.Session, error) {
	var sess session.Session
	ok, err := s.file.Load(&sess)
	if err != nil || !ok {
		return nil, err
	}
	sess.Source = "file"
	return &sess, nil
}

func (s *Sessions) Save(_ context.Context, sess session.Session) error {
	sess.Source = "file"
	return s.file.Save(sess)
}

func (s *Sessions) Delete(_ context.Context) error { return s.file.Delete() }
