// Package calendar persists calendar events created and modified by the agent
// workflows. Events live in a single SQLite table; two drivers are supported:
// "sqlite" (modernc.org/sqlite, pure Go) and "sqlite3" (mattn/go-sqlite3, cgo).
package calendar

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fileagent/internal/logging"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// Supported database drivers.
const (
	DriverPure = "sqlite"
	DriverCgo  = "sqlite3"
)

// LinkScheme prefixes event links.
const LinkScheme = "calendar://events/"

// ErrEventNotFound is returned when no stored event matches.
var ErrEventNotFound = errors.New("calendar event not found")

// Store manages persistence for calendar events.
type Store struct {
	db     *sql.DB
	path   string
	driver string
	mu     sync.Mutex
}

// Open opens or creates the event database at path.
func Open(driver, path string) (*Store, error) {
	if driver == "" {
		driver = DriverPure
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create calendar directory: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn(driver, path))
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar database: %w", err)
	}
	// Single writer keeps :memory: databases on one connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, path: path, driver: driver}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Calendar store opened: %s (driver=%s)", path, driver)
	return s, nil
}

func dsn(driver, path string) string {
	if path == ":memory:" {
		return path
	}
	switch driver {
	case DriverCgo:
		return path + "?_journal_mode=WAL&_busy_timeout=5000"
	default:
		return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}
}

func (s *Store) initSchema() error {
	timer := logging.StartTimer(logging.CategoryStore, "calendar.initSchema")
	defer timer.Stop()

	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		date TEXT NOT NULL DEFAULT '',
		duration_minutes REAL NOT NULL DEFAULT 0,
		participants_json TEXT NOT NULL DEFAULT '[]',
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_events_updated ON events(updated_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize calendar schema: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database path.
func (s *Store) Path() string {
	return s.path
}

// Driver returns the database driver name.
func (s *Store) Driver() string {
	return s.driver
}

// Create stores a new event and returns it with its id and timestamps set.
func (s *Store) Create(ctx context.Context, ev Event) (*Event, error) {
	timer := logging.StartTimer(logging.CategoryStore, "calendar.Create")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	ev.ID = uuid.New().String()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if ev.Participants == nil {
		ev.Participants = []string{}
	}

	participants, err := json.Marshal(ev.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, date, duration_minutes, participants_json, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ev.ID, ev.Name, ev.Date, ev.DurationMinutes, string(participants), ev.Description, ev.CreatedAt, ev.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert event: %w", err)
	}

	logging.Store("Created event %s (%q on %s)", ev.ID, ev.Name, ev.Date)
	return &ev, nil
}

// Get returns the event with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, date, duration_minutes, participants_json, description, created_at, updated_at
		FROM events WHERE id = ?`, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, id)
	}
	return ev, err
}

// List returns all events, most recently updated first.
func (s *Store) List(ctx context.Context) ([]*Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, date, duration_minutes, participants_json, description, created_at, updated_at
		FROM events ORDER BY updated_at DESC, rowid DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	return events, rows.Err()
}

// Apply updates an event in place and returns the stored result.
func (s *Store) Apply(ctx context.Context, id string, ch Change) (*Event, error) {
	timer := logging.StartTimer(logging.CategoryStore, "calendar.Apply")
	defer timer.Stop()

	s.mu.Lock()
	defer s.mu.Unlock()

	ev, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ch.applyTo(ev)
	ev.UpdatedAt = time.Now().UTC()

	participants, err := json.Marshal(ev.Participants)
	if err != nil {
		return nil, fmt.Errorf("failed to encode participants: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		UPDATE events SET date = ?, participants_json = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		ev.Date, string(participants), ev.Description, ev.UpdatedAt, ev.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	logging.Store("Updated event %s (date=%s, participants=%v)", ev.ID, ev.Date, ev.Participants)
	return ev, nil
}

// ApplyChange finds the stored event that best matches the change and
// updates it.
func (s *Store) ApplyChange(ctx context.Context, ch Change) (*Event, error) {
	events, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	target := BestMatch(events, ch)
	if target == nil {
		return nil, ErrEventNotFound
	}
	logging.StoreDebug("Change %q matched event %s (%q)", ch.Description, target.ID, target.Name)
	return s.Apply(ctx, target.ID, ch)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvent(row scanner) (*Event, error) {
	var (
		ev           Event
		participants string
	)
	err := row.Scan(&ev.ID, &ev.Name, &ev.Date, &ev.DurationMinutes, &participants, &ev.Description, &ev.CreatedAt, &ev.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(participants), &ev.Participants); err != nil {
		return nil, fmt.Errorf("corrupt participants for event %s: %w", ev.ID, err)
	}
	return &ev, nil
}
