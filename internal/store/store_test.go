package store

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/vacancy"
)

const recordsJSON = `[
  {"id": "1", "name": "Go developer", "url": "https://api.hh.ru/vacancies/1", "alternate_url": "https://hh.ru/vacancy/1",
   "salary": {"from": 150000, "to": null, "currency": "RUR"}, "area": {"name": "Москва"}},
  {"id": 2, "profession": "Backend-разработчик", "link": "https://www.superjob.ru/vakansii/2.html",
   "payment_from": 90000, "payment_to": 0, "currency": "rub", "town": {"title": "Казань"}},
  {"id": 3, "title": "unclassifiable"}
]`

func sampleRecords(t *testing.T) []models.RawRecord {
	t.Helper()
	var records []models.RawRecord
	if err := json.Unmarshal([]byte(recordsJSON), &records); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	return records
}

func newStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "nested", "vacancies.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return s
}

func TestWriteLoadRoundTrip(t *testing.T) {
	s := newStore(t)
	records := sampleRecords(t)

	if err := s.Write(records); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := s.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !reflect.DeepEqual(got, records) {
		t.Fatalf("Load() = %v, want %v", got, records)
	}

	entries, err := os.ReadDir(filepath.Dir(s.Path()))
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("temporary files left behind: %d entries", len(entries))
	}
}

func TestLoadErrors(t *testing.T) {
	s := newStore(t)
	if _, err := s.Load(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Load() error = %v, want ErrNotFound", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.Path()), 0o755); err != nil {
		t.Fatalf("MkdirAll() error = %v", err)
	}
	if err := os.WriteFile(s.Path(), []byte(`{"not":"a list"}`), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	_, err := s.Load()
	if !errors.Is(err, ErrParse) {
		t.Fatalf("Load() error = %v, want ErrParse", err)
	}
	var storeErr *Error
	if !errors.As(err, &storeErr) || storeErr.Path != s.Path() {
		t.Fatalf("Load() error = %#v, want *Error with path", err)
	}

	if err := os.WriteFile(s.Path(), []byte("  \n"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	got, err := s.Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() on empty file = %v, %v", got, err)
	}
}

func TestAppendIsIdempotent(t *testing.T) {
	s := newStore(t)
	records := sampleRecords(t)

	stats, err := s.Append(records[:2])
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if stats.Existing != 0 || stats.Added != 2 || stats.Total != 2 {
		t.Fatalf("first Append() stats = %+v", stats)
	}

	stats, err = s.Append(records)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if stats.Added != 1 || stats.Total != 3 {
		t.Fatalf("second Append() stats = %+v", stats)
	}

	stats, err = s.Append(records)
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if stats.Added != 0 || stats.Total != 3 {
		t.Fatalf("third Append() stats = %+v", stats)
	}
}

func TestLoadFiltered(t *testing.T) {
	s := newStore(t)
	if err := s.Write(sampleRecords(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	only := map[models.Provider]vacancy.Predicate{
		models.ProviderSuperJob: vacancy.Criteria{}.Predicate(models.ProviderSuperJob),
	}
	got, err := s.LoadFiltered(only)
	if err != nil {
		t.Fatalf("LoadFiltered() error = %v", err)
	}
	if len(got) != 1 || got[0].Provider() != models.ProviderSuperJob {
		t.Fatalf("LoadFiltered() = %d records, want the superjob one", len(got))
	}

	both := map[models.Provider]vacancy.Predicate{
		models.ProviderHeadHunter: vacancy.Criteria{MinSalary: 100000}.Predicate(models.ProviderHeadHunter),
		models.ProviderSuperJob:   vacancy.Criteria{MinSalary: 100000}.Predicate(models.ProviderSuperJob),
	}
	got, err = s.LoadFiltered(both)
	if err != nil {
		t.Fatalf("LoadFiltered() error = %v", err)
	}
	if len(got) != 1 || got[0].Title() != "Go developer" {
		t.Fatalf("LoadFiltered() min salary = %d records", len(got))
	}

	all, err := s.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("LoadAll() = %d, want 2", len(all))
	}
}

func TestClear(t *testing.T) {
	s := newStore(t)
	if err := s.Write(sampleRecords(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	got, err := s.Load()
	if err != nil || len(got) != 0 {
		t.Fatalf("Load() after Clear() = %v, %v", got, err)
	}
}
