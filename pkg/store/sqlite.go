package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"snapsort/pkg/db"
	"snapsort/pkg/model"
)

// Store defines the catalog repository interface.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	RunStore
	EventStore
	MediaStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Runs ---

func (s *SQLiteStore) BeginRun(ctx context.Context, source, destination string) (*model.Run, error) {
	run := &model.Run{
		ID:          uuid.NewString(),
		Source:      source,
		Destination: destination,
		StartedAt:   time.Now().UTC(),
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, source, destination, started_at) VALUES (?, ?, ?, ?)`,
		run.ID, run.Source, run.Destination, run.StartedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, fileCount, eventCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, file_count = ?, event_count = ? WHERE id = ?`,
		time.Now().UTC(), fileCount, eventCount, runID)
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, source, destination, started_at, finished_at, file_count, event_count
		 FROM runs WHERE id = ?`, runID)

	var r model.Run
	var finishedAt sql.NullTime
	err := row.Scan(&r.ID, &r.Source, &r.Destination, &r.StartedAt, &finishedAt, &r.FileCount, &r.EventCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}
	if finishedAt.Valid {
		r.FinishedAt = finishedAt.Time
	}
	return &r, nil
}

// --- Events ---

func (s *SQLiteStore) SaveEvent(ctx context.Context, e *model.Event) error {
	// Keys repeat across runs and for no-GPS clusters sharing a day; first
	// write wins.
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO events (key, date, location_key, name) VALUES (?, ?, ?, ?)`,
		e.Key, e.Date.Format("2006-01-02"), e.LocationKey, e.Name)
	return err
}

func (s *SQLiteStore) GetEvent(ctx context.Context, key string) (*model.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT key, date, location_key, name FROM events WHERE key = ?`, key)

	var e model.Event
	var date string
	err := row.Scan(&e.Key, &date, &e.LocationKey, &e.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, err
	}

	e.Date, err = time.ParseInLocation("2006-01-02", date, time.UTC)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *SQLiteStore) CountEvents(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM events`).Scan(&n)
	return n, err
}

// --- Media ---

func (s *SQLiteStore) SaveMedia(ctx context.Context, runID string, r *model.MediaRecord, destPath string) error {
	var lat, lon sql.NullFloat64
	if r.Location != nil {
		lat = sql.NullFloat64{Float64: r.Location.Lat(), Valid: true}
		lon = sql.NullFloat64{Float64: r.Location.Lon(), Valid: true}
	}

	var eventKey string
	if r.Event != nil {
		eventKey = r.Event.Key
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO media
		 (path, run_id, filename, extension, size, created_at, lat, lon, location_key, event_key, dest_path)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Path, runID, r.Filename, r.Extension, r.Size, r.CreatedAt,
		lat, lon, r.LocationKey, eventKey, destPath)
	return err
}

func (s *SQLiteStore) CountMediaByEvent(ctx context.Context, eventKey string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM media WHERE event_key = ?`, eventKey).Scan(&n)
	return n, err
}
