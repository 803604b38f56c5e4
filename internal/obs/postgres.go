package obs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
)

// PostgresRecorder persists run observations to Postgres.
type PostgresRecorder struct {
	db *sql.DB
}

func NewPostgres(connStr string) (*PostgresRecorder, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	p := &PostgresRecorder{db: db}
	if err := p.migrate(context.Background()); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *PostgresRecorder) Close() error {
	return p.db.Close()
}

func (p *PostgresRecorder) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id UUID PRIMARY KEY,
			seed BIGINT NOT NULL,
			horizon BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS transactions (
			run_id UUID NOT NULL REFERENCES runs(id),
			market_id INT NOT NULL,
			price BIGINT NOT NULL,
			quantity INT NOT NULL,
			exec_time BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS series (
			run_id UUID NOT NULL REFERENCES runs(id),
			market_id INT NOT NULL,
			name TEXT NOT NULL,
			time BIGINT NOT NULL,
			value DOUBLE PRECISION NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS stats (
			run_id UUID NOT NULL REFERENCES runs(id),
			name TEXT NOT NULL,
			value DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, name)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// executeWithTransaction runs fn inside a transaction, rolling back on error.
func (p *PostgresRecorder) executeWithTransaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if fnErr := fn(tx); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("transaction rollback failed: %w (original error: %v)", rbErr, fnErr)
		}
		return fnErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("transaction commit failed: %w", commitErr)
	}

	return nil
}

func (p *PostgresRecorder) SaveRun(ctx context.Context, run Run) error {
	return p.executeWithTransaction(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO runs (id, seed, horizon, created_at) VALUES ($1,$2,$3,$4)`,
			run.ID, run.Seed, run.Horizon, run.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to save run %s: %w", run.ID, err)
		}
		return nil
	})
}

func (p *PostgresRecorder) SaveTransactions(ctx context.Context, runID uuid.UUID, rows []TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	return p.executeWithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions (run_id, market_id, price, quantity, exec_time)
			VALUES ($1,$2,$3,$4,$5)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer stmt.Close()

		for i, r := range rows {
			if _, err := stmt.ExecContext(ctx, runID, r.MarketID, r.Price, r.Quantity, r.ExecTime); err != nil {
				return fmt.Errorf("failed to save transaction at index %d: %w", i, err)
			}
		}
		return nil
	})
}

func (p *PostgresRecorder) SaveSeries(ctx context.Context, runID uuid.UUID, points []SeriesPoint) error {
	if len(points) == 0 {
		return nil
	}

	return p.executeWithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO series (run_id, market_id, name, time, value)
			VALUES ($1,$2,$3,$4,$5)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer stmt.Close()

		for i, pt := range points {
			if _, err := stmt.ExecContext(ctx, runID, pt.MarketID, pt.Name, pt.Time, pt.Value); err != nil {
				return fmt.Errorf("failed to save series point at index %d: %w", i, err)
			}
		}
		return nil
	})
}

func (p *PostgresRecorder) SaveStats(ctx context.Context, runID uuid.UUID, stats map[string]float64) error {
	if len(stats) == 0 {
		return nil
	}

	return p.executeWithTransaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO stats (run_id, name, value) VALUES ($1,$2,$3)
			ON CONFLICT (run_id, name) DO UPDATE SET value=EXCLUDED.value`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer stmt.Close()

		for name, value := range stats {
			if _, err := stmt.ExecContext(ctx, runID, name, value); err != nil {
				return fmt.Errorf("failed to save stat %s: %w", name, err)
			}
		}
		return nil
	})
}
