// Package session accumulates raw records across pagination rounds,
// dropping structural duplicates.
package session

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jimezsa/vacli/internal/models"
	"github.com/jimezsa/vacli/internal/params"
	"github.com/rs/zerolog"
)

// Collector runs one pagination round for a provider.
type Collector interface {
	Name() models.Provider
	Collect(ctx context.Context, set *params.Set, quantity int) ([]models.RawRecord, error)
}

type IngestStats struct {
	Incoming   int
	Added      int
	Duplicates int
	Total      int
}

// Session is owned by a single flow; it is not safe for concurrent use.
type Session struct {
	id      string
	records []models.RawRecord
	logger  zerolog.Logger
}

func New(logger zerolog.Logger) *Session {
	id := uuid.NewString()
	return &Session{
		id:     id,
		logger: logger.With().Str("session", id).Logger(),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Ingest appends every incoming record that is not already held.
func (s *Session) Ingest(records []models.RawRecord) IngestStats {
	var added int
	s.records, added = models.AppendUnique(s.records, records)
	stats := IngestStats{
		Incoming:   len(records),
		Added:      added,
		Duplicates: len(records) - added,
		Total:      len(s.records),
	}
	s.logger.Debug().Int("incoming", stats.Incoming).Int("added", stats.Added).Int("total", stats.Total).Msg("ingested records")
	return stats
}

// Collect runs one round against c and ingests its result. Nothing is
// ingested when the round fails.
func (s *Session) Collect(ctx context.Context, c Collector, set *params.Set, quantity int) (IngestStats, error) {
	records, err := c.Collect(ctx, set, quantity)
	if err != nil {
		return IngestStats{}, fmt.Errorf("%s: %w", c.Name(), err)
	}
	stats := s.Ingest(records)
	s.logger.Info().Str("provider", string(c.Name())).Int("added", stats.Added).Int("total", stats.Total).Msg("round complete")
	return stats, nil
}

func (s *Session) Reset() {
	s.records = nil
	s.logger.Debug().Msg("session reset")
}

// Snapshot returns the accumulated records. Appending to the result never
// writes into the session.
func (s *Session) Snapshot() []models.RawRecord {
	return s.records[:len(s.records):len(s.records)]
}

func (s *Session) Len() int {
	return len(s.records)
}
