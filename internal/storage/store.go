package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store is the flat upload directory holding raw uploads, their normalized
// .wav derivatives and the allocator's counter file.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Path resolves a stored filename to its absolute location. Names with path
// separators are rejected to prevent traversal out of the flat directory.
func (s *Store) Path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid filename: %q", name)
	}
	return filepath.Join(s.dir, name), nil
}

// SaveUpload writes the raw upload bytes under the given name. On a failed
// write the partial file is removed before returning the error.
func (s *Store) SaveUpload(name string, r io.Reader) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close %s: %w", name, err)
	}
	return path, nil
}

// Remove deletes a stored file, ignoring errors. Cleanup must never fail a
// request that already succeeded.
func (s *Store) Remove(name string) {
	if path, err := s.Path(name); err == nil {
		os.Remove(path)
	}
}

// Resolve returns the absolute path of an existing stored file, or
// os.ErrNotExist when it is absent.
func (s *Store) Resolve(name string) (string, error) {
	path, err := s.Path(name)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(path); err != nil {
		return "", err
	}
	return path, nil
}

// ListWAVs returns the names of all stored .wav files, sorted.
func (s *Store) ListWAVs() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// LatestWAV returns the name of the most recently modified .wav file, or
// os.ErrNotExist when the store holds none.
func (s *Store) LatestWAV() (string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", err
	}

	var latest string
	var latestMod int64
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if latest == "" || info.ModTime().UnixNano() > latestMod {
			latest = entry.Name()
			latestMod = info.ModTime().UnixNano()
		}
	}
	if latest == "" {
		return "", os.ErrNotExist
	}
	return latest, nil
}
