package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"salescope/internal/models"
)

const postgresSchema = `
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
	total_sales            DOUBLE PRECISION NOT NULL,
	last_7_days_sales      DOUBLE PRECISION NOT NULL,
	last_30_days_sales     DOUBLE PRECISION NOT NULL,
	avg_sales_per_day_week  DOUBLE PRECISION NOT NULL,
	avg_sales_per_day_month DOUBLE PRECISION NOT NULL,
	growth_rate_week       DOUBLE PRECISION NOT NULL,
	growth_rate_month      DOUBLE PRECISION NOT NULL,
	avg_transaction_value  DOUBLE PRECISION NOT NULL,
	total_quantity         DOUBLE PRECISION,
	total_records          BIGINT NOT NULL,
	peak_day               TEXT NOT NULL,
	top_items              JSONB NOT NULL,
	monthly_sales          JSONB NOT NULL,
	daily_sales            JSONB NOT NULL,
	day_of_week_sales      JSONB NOT NULL,
	created_at             TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_user_created
	ON analyses(user_id, created_at DESC);
`

// PostgresStore persists users and analyses in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore runs the schema migration and returns a ready store.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("migrate postgres schema: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

func (s *PostgresStore) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresStore) UserByID(ctx context.Context, id string) (*models.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) SaveAnalysis(ctx context.Context, a *models.Analysis) error {
	topItems, monthly, daily, weekday, err := prepareAnalysis(a)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (`+analysisColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
		         $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24)`,
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

func (s *PostgresStore) AnalysisByID(ctx context.Context, id, userID string) (*models.Analysis, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses WHERE id = $1 AND user_id = $2`, id, userID)
	a, err := scanAnalysis(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}
	return a, nil
}

func (s *PostgresStore) AnalysesByUser(ctx context.Context, userID string, limit int) ([]*models.Analysis, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+analysisColumns+` FROM analyses
		 WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limit)
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
