package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/renameio/v2"

	"github.com/tubelet/tubelet/internal/log"
	"github.com/tubelet/tubelet/internal/metrics"
)

// ErrNotFound is returned when a video id is absent from the store.
var ErrNotFound = errors.New("video not found")

// MetadataFilename is the durable document inside the data directory.
const MetadataFilename = "metadata.json"

// Store is the canonical owner of the video record set. All mutation goes
// through a single mutex guarding the read-modify-persist sequence, so
// concurrent view increments for the same id never lose updates.
type Store struct {
	path string

	mu   sync.Mutex
	recs map[string]VideoRecord
}

// New creates a store persisting to <dataDir>/metadata.json.
func New(dataDir string) *Store {
	return &Store{
		path: filepath.Join(dataDir, MetadataFilename),
		recs: make(map[string]VideoRecord),
	}
}

// Init loads the persisted document, seeding and persisting a fixed sample
// set when none exists yet. It must be called once before serving requests.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	logger := log.WithComponentFromContext(ctx, "store")

	data, err := os.ReadFile(s.path)
	switch {
	case err == nil:
		recs := make(map[string]VideoRecord)
		if err := json.Unmarshal(data, &recs); err != nil {
			return fmt.Errorf("decode %s: %w", s.path, err)
		}
		s.recs = recs
		logger.Info().
			Str("event", "store.loaded").
			Str("path", s.path).
			Int("records", len(recs)).
			Msg("loaded metadata store")
		return nil
	case os.IsNotExist(err):
		s.recs = seedRecords()
		if err := s.persistLocked(); err != nil {
			return fmt.Errorf("seed metadata store: %w", err)
		}
		logger.Info().
			Str("event", "store.seeded").
			Str("path", s.path).
			Int("records", len(s.recs)).
			Msg("seeded metadata store")
		return nil
	default:
		return fmt.Errorf("read %s: %w", s.path, err)
	}
}

// LoadAll returns a snapshot of the current record set. The returned map and
// records are deep copies owned by the caller.
func (s *Store) LoadAll(ctx context.Context) (map[string]VideoRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]VideoRecord, len(s.recs))
	for id, rec := range s.recs {
		out[id] = rec.Clone()
	}
	return out, nil
}

// List returns all records sorted by id.
func (s *Store) List(ctx context.Context) ([]VideoRecord, error) {
	recs, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]VideoRecord, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetByID returns a copy of one record, or ErrNotFound.
func (s *Store) GetByID(ctx context.Context, id string) (VideoRecord, error) {
	if err := ctx.Err(); err != nil {
		return VideoRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return VideoRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return rec.Clone(), nil
}

// RecordView atomically increments the view counter for id and persists the
// store before returning the updated record. A failed persist rolls the
// in-memory counter back so memory and disk never diverge.
func (s *Store) RecordView(ctx context.Context, id string) (VideoRecord, error) {
	if err := ctx.Err(); err != nil {
		return VideoRecord{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.recs[id]
	if !ok {
		return VideoRecord{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	rec.Views++
	s.recs[id] = rec

	if err := s.persistLocked(); err != nil {
		rec.Views--
		s.recs[id] = rec
		return VideoRecord{}, fmt.Errorf("persist view for %s: %w", id, err)
	}

	metrics.IncViewRecorded()
	return rec.Clone(), nil
}

// persistLocked writes the full record set via write-new-then-swap. The
// caller must hold s.mu.
func (s *Store) persistLocked() error {
	start := time.Now()

	pending, err := renameio.NewPendingFile(s.path)
	if err != nil {
		return fmt.Errorf("create pending metadata file: %w", err)
	}
	defer func() {
		// Removes the temp file when the replace below did not happen.
		if err := pending.Cleanup(); err != nil {
			l := log.Base()
			l.Debug().Err(err).Msg("cleanup pending metadata file")
		}
	}()

	enc := json.NewEncoder(pending)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.recs); err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	if err := pending.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace metadata file: %w", err)
	}

	metrics.ObservePersistDuration(time.Since(start))
	return nil
}
