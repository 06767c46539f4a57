package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// Theme is the day/night preference.
type Theme string

const (
	ThemeFollowSystem Theme = "follow_system"
	ThemeDay          Theme = "day"
	ThemeNight        Theme = "night"
)

// ParseTheme accepts the three theme names.
func ParseTheme(s string) (Theme, error) {
	switch t := Theme(s); t {
	case ThemeFollowSystem, ThemeDay, ThemeNight:
		return t, nil
	}
	return "", fmt.Errorf("settings: unknown theme %q (want %s, %s or %s)", s, ThemeFollowSystem, ThemeDay, ThemeNight)
}

type file struct {
	Theme Theme `toml:"theme"`
}

// Store persists settings to a TOML file. A missing file reads as defaults.
type Store struct {
	mu   sync.Mutex
	path string
}

// Open returns a Store backed by path. The file is created on first write.
func Open(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file.
func (s *Store) Path() string {
	return s.path
}

// Theme returns the stored theme, or ThemeFollowSystem.
func (s *Store) Theme() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return "", err
	}
	return f.Theme, nil
}

// SetTheme stores theme.
func (s *Store) SetTheme(theme Theme) error {
	if _, err := ParseTheme(string(theme)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return err
	}
	f.Theme = theme
	return s.save(f)
}

// ToggleTheme flips night to day and anything else to night, and returns the
// new theme.
func (s *Store) ToggleTheme() (Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := s.load()
	if err != nil {
		return "", err
	}
	if f.Theme == ThemeNight {
		f.Theme = ThemeDay
	} else {
		f.Theme = ThemeNight
	}
	if err := s.save(f); err != nil {
		return "", err
	}
	return f.Theme, nil
}

func (s *Store) load() (file, error) {
	f := file{Theme: ThemeFollowSystem}
	if _, err := toml.DecodeFile(s.path, &f); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file{Theme: ThemeFollowSystem}, nil
		}
		return file{}, fmt.Errorf("settings: reading %s: %w", s.path, err)
	}
	if _, err := ParseTheme(string(f.Theme)); err != nil {
		return file{}, err
	}
	return f, nil
}

// save writes through a temp file so a crash never leaves a torn file.
func (s *Store) save(f file) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(f); err != nil {
		return fmt.Errorf("settings: encoding: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("settings: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("settings: writing %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("settings: %w", err)
	}
	return nil
}
