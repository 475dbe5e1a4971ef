// Package store persists raw records as one JSON array on disk.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/vacancy"
)

var (
	ErrNotFound = errors.New("store file not found")
	ErrParse    = errors.New("store file is not a JSON array of records")
)

// Error ties a store failure to the file it happened on.
type Error struct {
	Kind error
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Path, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

type AppendStats struct {
	Existing int
	Incoming int
	Added    int
	Total    int
}

type Store struct {
	path string
}

func New(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("store path is required")
	}
	return &Store{path: path}, nil
}

func (s *Store) Path() string {
	return s.path
}

// Load reads every stored record. An empty file holds no records.
func (s *Store) Load() ([]models.RawRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &Error{Kind: ErrNotFound, Path: s.path}
		}
		return nil, err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []models.RawRecord{}, nil
	}

	var records []models.RawRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &Error{Kind: ErrParse, Path: s.path, Err: err}
	}
	if records == nil {
		return []models.RawRecord{}, nil
	}
	return records, nil
}

// loadAllowMissing treats a missing file as an empty store.
func (s *Store) loadAllowMissing() ([]models.RawRecord, error) {
	records, err := s.Load()
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return []models.RawRecord{}, nil
		}
		return nil, err
	}
	return records, nil
}

// Write replaces the file with records. The new content is written to a
// temporary file in the same directory and renamed over the old one.
func (s *Store) Write(records []models.RawRecord) error {
	if records == nil {
		records = []models.RawRecord{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}

// Append merges records into the stored set, skipping any record already
// stored by value.
func (s *Store) Append(records []models.RawRecord) (AppendStats, error) {
	existing, err := s.loadAllowMissing()
	if err != nil {
		return AppendStats{}, err
	}
	stats := AppendStats{Existing: len(existing), Incoming: len(records)}
	merged, added := models.AppendUnique(existing, records)
	if err := s.Write(merged); err != nil {
		return AppendStats{}, err
	}
	stats.Added = added
	stats.Total = len(merged)
	return stats, nil
}

// LoadFiltered normalizes stored records whose provider has a predicate
// and whose predicate accepts them. Records of providers without a
// predicate, and records of no known provider, are dropped.
func (s *Store) LoadFiltered(predicates map[models.Provider]vacancy.Predicate) ([]vacancy.Vacancy, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	out := make([]vacancy.Vacancy, 0, len(records))
	for _, raw := range records {
		provider, ok := vacancy.Classify(raw)
		if !ok {
			continue
		}
		accept, ok := predicates[provider]
		if !ok || accept == nil || !accept(raw) {
			continue
		}
		v, err := vacancy.FromRaw(raw)
		if err != nil {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// LoadAll normalizes every classifiable stored record.
func (s *Store) LoadAll() ([]vacancy.Vacancy, error) {
	records, err := s.Load()
	if err != nil {
		return nil, err
	}
	all, _ := vacancy.FromRawAll(records)
	return all, nil
}

// Clear empties the store.
func (s *Store) Clear() error {
	return s.Write(nil)
}
