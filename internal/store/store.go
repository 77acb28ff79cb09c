// Package store persists user accounts and computed analyses. Two
// database/sql backends are provided: sqlite (default, embedded) and
// postgres. The analysis engine never sees this package; handlers hand it
// finished records.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"salescope/internal/config"
	"salescope/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id string) (*models.User, error)
}

type AnalysisStore interface {
	// SaveAnalysis assigns the record an identifier and creation timestamp
	// and persists it.
	SaveAnalysis(ctx context.Context, a *models.Analysis) error
	// AnalysisByID returns the analysis only when it belongs to userID.
	AnalysisByID(ctx context.Context, id, userID string) (*models.Analysis, error)
	// AnalysesByUser lists a user's analyses newest first.
	AnalysesByUser(ctx context.Context, userID string, limit int) ([]*models.Analysis, error)
}

type Store interface {
	UserStore
	AnalysisStore
	Ping(ctx context.Context) error
	Close() error
}

// Open connects to the configured backend and runs migrations.
func Open(ctx context.Context, cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite":
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite: %w", err)
		}
		// modernc sqlite serializes writes; a single connection avoids
		// SQLITE_BUSY under concurrent handlers.
		db.SetMaxOpenConns(1)
		return NewSQLiteStore(ctx, db)
	case "postgres":
		db, err := sql.Open("postgres", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		return NewPostgresStore(ctx, db)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
