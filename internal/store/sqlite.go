package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"salescope/internal/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS analyses (
	id                     TEXT PRIMARY KEY,
	user_id                TEXT NOT NULL REFERENCES users(id),
	filename               TEXT NOT NULL,
	date_column            TEXT,
	item_column            TEXT,
	qty_column             TEXT,
	rate_column            TEXT,
	amount_column          TEXT,
	total_sales            REAL NOT NULL,
	last_7_days_sales      REAL NOT NULL,
	last_30_days_sales     REAL NOT NULL,
	avg_sales_per_day_week  REAL NOT NULL,
	avg_sales_per_day_month REAL NOT NULL,
	growth_rate_week       REAL NOT NULL,
	growth_rate_month      REAL NOT NULL,
	avg_transaction_value  REAL NOT NULL,
	total_quantity         REAL,
	total_records          INTEGER NOT NULL,
	peak_day               TEXT NOT NULL,
	top_items              TEXT NOT NULL,
	monthly_sales          TEXT NOT NULL,
	daily_sales            TEXT NOT NULL,
	day_of_week_sales      TEXT NOT NULL,
	created_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_user_created
	ON analyses(user_id, created_at DESC);
`

// SQLiteStore persists users and analyses in a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore runs the schema migration and returns a ready store.
func NewSQLiteStore(ctx context.Context, db *sql.DB) (*SQLiteStore, error) {
	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("migrate sqlite schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = ?`, email)
	return scanUser(row)
}

func (s *SQLiteStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = ?`, id)
	return scanUser(row)
}

func (s *SQLiteStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	topItems, monthly, daily, weekday, err := prepareAnalysis(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (`+analysisColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Filename,
		nullString(a.Columns.Date), nullString(a.Columns.Item),
		nullString(a.Columns.Qty), nullString(a.Columns.Rate), nullString(a.Columns.Amount),
		a.Metrics.TotalSales, a.Metrics.Last7DaysSales, a.Metrics.Last30DaysSales,
		a.Metrics.AvgSalesPerDayWeek, a.Metrics.AvgSalesPerDayMonth,
		a.Metrics.GrowthRateWeek, a.Metrics.GrowthRateMonth, a.Metrics.AvgTransactionValue,
		nullFloat(a.Metrics.TotalQuantity), a.Metrics.TotalRecords, a.Metrics.PeakDay,
		string(topItems), string(monthly), string(daily), string(weekday),
		a.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *SQLiteStore) AnalysisByID(ctx context.Context, id, userID string) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = ? AND user_id = ?`, id, userID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	return a, nil
}

func (s *SQLiteStore) AnalysesByUser(ctx context.Context, userID string, limit int) ([]*models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses
		 WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("query analyses: %w", err)
	}
	defer rows.Close()

	var out []*models.Analysis
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analyses: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u         models.User
		createdAt string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	ts, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	u.CreatedAt = ts.UTC()
	return &u, nil
}
