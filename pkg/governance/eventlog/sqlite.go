package eventlog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"
)

// SQLite driver names accepted by SQLiteConfig.Driver.
const (
	// DriverCGO is github.com/mattn/go-sqlite3.
	DriverCGO = "sqlite3"
	// DriverPure is modernc.org/sqlite, usable in CGO_ENABLED=0 builds.
	DriverPure = "sqlite"
)

// SQLiteConfig configures the SQLite event store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the database/sql driver: DriverCGO or DriverPure.
	// Default: DriverPure
	Driver string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait on a locked database.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/governance-events.db",
		Driver:       DriverPure,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteSink stores governance events in a SQLite database.
type SQLiteSink struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
}

// NewSQLiteSink opens the database and applies the schema.
func NewSQLiteSink(config *SQLiteConfig) (*SQLiteSink, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = DriverPure
	}
	if config.Driver != DriverCGO && config.Driver != DriverPure {
		return nil, NewSinkError("sqlite", "open", fmt.Errorf("unknown driver %q", config.Driver))
	}
	if config.MaxOpenConns <= 0 {
		config.MaxOpenConns = 4
	}

	logger := slog.Default().With("component", "eventlog.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, NewSinkError("sqlite", "open", err)
	}
	db.SetMaxOpenConns(config.MaxOpenConns)

	s := &SQLiteSink{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite event store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
	)
	return s, nil
}

func (s *SQLiteSink) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return NewSinkError("sqlite", "enable_wal", err)
		}
	}

	if s.config.BusyTimeout > 0 {
		pragma := fmt.Sprintf("PRAGMA busy_timeout=%d;", s.config.BusyTimeout.Milliseconds())
		if _, err := s.db.Exec(pragma); err != nil {
			return NewSinkError("sqlite", "set_busy_timeout", err)
		}
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return NewSinkError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion, time.Now().Unix()); err != nil {
		return NewSinkError("sqlite", "insert_schema_version", err)
	}
	return nil
}

// Append inserts e. Events without an ID get a random UUID and events
// without a timestamp are stamped with the current time.
func (s *SQLiteSink) Append(ctx context.Context, e Event) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return ErrClosed
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	_, err := s.db.ExecContext(ctx, insertEvent,
		e.ID, e.Timestamp.UnixNano(), e.SessionID, e.Cycle, string(e.Type), e.Description, e.DriftScore)
	if err != nil {
		return NewSinkError("sqlite", "append", err)
	}
	return nil
}

// Query returns events matching f ordered by time of insertion.
func (s *SQLiteSink) Query(ctx context.Context, f Filter) ([]Event, error) {
	where, args := buildWhere(f)
	query := "SELECT id, timestamp_ns, session_id, cycle, type, description, drift_score FROM governance_events" +
		where + " ORDER BY timestamp_ns ASC, seq ASC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, NewSinkError("sqlite", "query", err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			e      Event
			ns     int64
			evType string
		)
		if err := rows.Scan(&e.ID, &ns, &e.SessionID, &e.Cycle, &evType, &e.Description, &e.DriftScore); err != nil {
			return nil, NewSinkError("sqlite", "scan", err)
		}
		e.Timestamp = time.Unix(0, ns).UTC()
		e.Type = Type(evType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, NewSinkError("sqlite", "query", err)
	}
	return events, nil
}

// Count returns the number of events matching f.
func (s *SQLiteSink) Count(ctx context.Context, f Filter) (int64, error) {
	where, args := buildWhere(f)
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM governance_events"+where, args...).Scan(&n)
	if err != nil {
		return 0, NewSinkError("sqlite", "count", err)
	}
	return n, nil
}

// DeleteBefore removes events older than cutoff.
func (s *SQLiteSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM governance_events WHERE timestamp_ns < ?", cutoff.UnixNano())
	if err != nil {
		return 0, NewSinkError("sqlite", "delete", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, NewSinkError("sqlite", "delete", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func buildWhere(f Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)
	if f.SessionID != "" {
		clauses = append(clauses, "session_id = ?")
		args = append(args, f.SessionID)
	}
	if f.Type != "" {
		clauses = append(clauses, "type = ?")
		args = append(args, string(f.Type))
	}
	if !f.Since.IsZero() {
		clauses = append(clauses, "timestamp_ns >= ?")
		args = append(args, f.Since.UnixNano())
	}
	if !f.Until.IsZero() {
		clauses = append(clauses, "timestamp_ns < ?")
		args = append(args, f.Until.UnixNano())
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}
