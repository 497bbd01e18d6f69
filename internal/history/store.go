// Package history persists recognition call outcomes for the server and
// batch binaries. The recognition service itself stays stateless; history is
// opt-in via a DSN.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	_ "modernc.org/sqlite"             // registers the "sqlite" driver

	"github.com/okellolabs/textsight/internal/common"
)

// Record is one recognition call outcome.
type Record struct {
	ID           uuid.UUID
	Path         string
	Engine       string
	Text         string
	Confidence   float64
	ErrorMessage string
	Duration     time.Duration
	CreatedAt    time.Time
}

// Store writes and reads recognition records through database/sql.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS recognitions (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	engine        TEXT NOT NULL,
	text          TEXT NOT NULL,
	confidence    REAL NOT NULL,
	error_message TEXT NOT NULL,
	duration_ms   BIGINT NOT NULL,
	created_at    TIMESTAMP NOT NULL
)`

// Open connects to the store behind dsn and bootstraps the schema. Postgres
// DSNs go through pgx; everything else is treated as a sqlite path.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	driver := driverForDSN(dsn)
	logger.Info("opening history store", "driver", driver)

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, common.WrapError(err, "open history store")
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "ping history store")
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, common.WrapError(err, "migrate history store")
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	s.logger.Info("closing history store")
	return s.db.Close()
}

// Insert stores one record. A zero ID gets a fresh UUID; a zero CreatedAt
// gets the current time in UTC.
func (s *Store) Insert(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recognitions
			(id, path, engine, text, confidence, error_message, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.ID.String(), rec.Path, rec.Engine, rec.Text, rec.Confidence,
		rec.ErrorMessage, rec.Duration.Milliseconds(), rec.CreatedAt,
	)
	if err != nil {
		s.logger.Error("history insert failed", "path", rec.Path, "error", err)
		return Record{}, common.WrapError(err, "insert recognition record")
	}
	return rec, nil
}

// ListRecent returns up to limit records, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, engine, text, confidence, error_message, duration_ms, created_at
		 FROM recognitions ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, common.WrapError(err, "query recognition records")
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			id         string
			durationMs int64
		)
		if err := rows.Scan(&id, &rec.Path, &rec.Engine, &rec.Text, &rec.Confidence,
			&rec.ErrorMessage, &durationMs, &rec.CreatedAt); err != nil {
			return nil, common.WrapError(err, "scan recognition record")
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, common.WrapError(err, "parse record id")
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		out = append(out, rec)
	}
	return out, rows.Err()
}

func driverForDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}
