package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mortgages/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database connection is healthy.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateMortgage inserts a mortgage and returns it with ID and timestamps set.
func (r *SQLiteRepository) CreateMortgage(ctx context.Context, m core.Mortgage) (core.Mortgage, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO mortgages (name, principal, annual_rate, term_years)
		VALUES (?, ?, ?, ?)
		RETURNING id, created_at`,
		m.Name, m.Principal, core.FormatRate(m.AnnualRate), m.TermYears)

	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return core.Mortgage{}, fmt.Errorf("create mortgage: %w", err)
	}

	slog.InfoContext(ctx, "Mortgage saved to SQLite",
		"id", m.ID,
		"name", m.Name,
		"principal", m.Principal,
		"term_years", m.TermYears)

	return m, nil
}

// GetMortgage retrieves a single mortgage by ID.
func (r *SQLiteRepository) GetMortgage(ctx context.Context, id int64) (core.Mortgage, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, principal, annual_rate, term_years, created_at
		FROM mortgages WHERE id = ?`, id)

	m, err := scanMortgage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Mortgage{}, fmt.Errorf("get mortgage %d: %w", id, ErrNotFound)
		}
		return core.Mortgage{}, fmt.Errorf("get mortgage %d: %w", id, err)
	}
	return m, nil
}

// ListMortgages returns all mortgages, newest first.
func (r *SQLiteRepository) ListMortgages(ctx context.Context) ([]core.Mortgage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, principal, annual_rate, term_years, created_at
		FROM mortgages ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list mortgages: %w", err)
	}
	defer rows.Close()

	var mortgages []core.Mortgage
	for rows.Next() {
		m, err := scanMortgage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan mortgage: %w", err)
		}
		mortgages = append(mortgages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list mortgages: %w", err)
	}

	return mortgages, nil
}

// UpdateMortgage replaces the mutable fields of a mortgage and returns the
// new row version. The sync flags are reset so the worker re-exports it.
func (r *SQLiteRepository) UpdateMortgage(ctx context.Context, m core.Mortgage) (int64, error) {
	row := r.db.QueryRowContext(ctx, `
		UPDATE mortgages
		SET name = ?, principal = ?, annual_rate = ?, term_years = ?,
		    version = version + 1, synced = 0, sync_error = 0,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
		RETURNING version`,
		m.Name, m.Principal, core.FormatRate(m.AnnualRate), m.TermYears, m.ID)

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("update mortgage %d: %w", m.ID, ErrNotFound)
		}
		return 0, fmt.Errorf("update mortgage %d: %w", m.ID, err)
	}

	return version, nil
}

// DeleteMortgage removes a mortgage and, via the FK cascade, its scenarios.
func (r *SQLiteRepository) DeleteMortgage(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mortgages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete mortgage %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete mortgage %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete mortgage %d: %w", id, ErrNotFound)
	}

	return nil
}

// CreateScenario inserts a payment scenario for a mortgage.
func (r *SQLiteRepository) CreateScenario(ctx context.Context, s core.Scenario) (core.Scenario, error) {
	row := r.db.QueryRowContext(ctx, `
		INSERT INTO scenarios (mortgage_id, name, strategy, extra_monthly, lump_sum, annual_lump_sum)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id, created_at`,
		s.MortgageID, s.Name, s.Strategy.String(), s.ExtraMonthly, s.LumpSum, s.AnnualLumpSum)

	if err := row.Scan(&s.ID, &s.CreatedAt); err != nil {
		return core.Scenario{}, fmt.Errorf("create scenario: %w", err)
	}

	slog.InfoContext(ctx, "Scenario saved to SQLite",
		"id", s.ID,
		"mortgage_id", s.MortgageID,
		"strategy", s.Strategy.String())

	return s, nil
}

// GetScenario retrieves a single scenario by ID.
func (r *SQLiteRepository) GetScenario(ctx context.Context, id int64) (core.Scenario, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, mortgage_id, name, strategy, extra_monthly, lump_sum, annual_lump_sum, created_at
		FROM scenarios WHERE id = ?`, id)

	s, err := scanScenario(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Scenario{}, fmt.Errorf("get scenario %d: %w", id, ErrNotFound)
		}
		return core.Scenario{}, fmt.Errorf("get scenario %d: %w", id, err)
	}
	return s, nil
}

// ListScenarios returns all scenarios belonging to a mortgage.
func (r *SQLiteRepository) ListScenarios(ctx context.Context, mortgageID int64) ([]core.Scenario, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, mortgage_id, name, strategy, extra_monthly, lump_sum, annual_lump_sum, created_at
		FROM scenarios WHERE mortgage_id = ? ORDER BY id`, mortgageID)
	if err != nil {
		return nil, fmt.Errorf("list scenarios for mortgage %d: %w", mortgageID, err)
	}
	defer rows.Close()

	var scenarios []core.Scenario
	for rows.Next() {
		s, err := scanScenario(rows)
		if err != nil {
			return nil, fmt.Errorf("scan scenario: %w", err)
		}
		scenarios = append(scenarios, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list scenarios for mortgage %d: %w", mortgageID, err)
	}

	return scenarios, nil
}

// UpdateScenario replaces the mutable fields of a scenario.
func (r *SQLiteRepository) UpdateScenario(ctx context.Context, s core.Scenario) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE scenarios
		SET name = ?, strategy = ?, extra_monthly = ?, lump_sum = ?, annual_lump_sum = ?
		WHERE id = ?`,
		s.Name, s.Strategy.String(), s.ExtraMonthly, s.LumpSum, s.AnnualLumpSum, s.ID)
	if err != nil {
		return fmt.Errorf("update scenario %d: %w", s.ID, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update scenario %d: %w", s.ID, err)
	}
	if affected == 0 {
		return fmt.Errorf("update scenario %d: %w", s.ID, ErrNotFound)
	}

	return nil
}

// DeleteScenario removes a scenario.
func (r *SQLiteRepository) DeleteScenario(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scenarios WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete scenario %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete scenario %d: %w", id, err)
	}
	if affected == 0 {
		return fmt.Errorf("delete scenario %d: %w", id, ErrNotFound)
	}

	return nil
}

// PendingSyncMortgage is the minimal data needed for sync queue messages.
type PendingSyncMortgage struct {
	ID        int64
	Version   int64
	CreatedAt time.Time
}

// GetPendingSyncMortgages returns mortgages not yet exported to the backup sheet.
func (r *SQLiteRepository) GetPendingSyncMortgages(ctx context.Context, limit int) ([]PendingSyncMortgage, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, version, created_at
		FROM mortgages
		WHERE synced = 0 AND sync_error = 0
		ORDER BY created_at
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync mortgages: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncMortgage
	for rows.Next() {
		var p PendingSyncMortgage
		if err := rows.Scan(&p.ID, &p.Version, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan pending sync mortgage: %w", err)
		}
		pending = append(pending, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get pending sync mortgages: %w", err)
	}

	return pending, nil
}

// MarkSynced marks a mortgage as successfully exported.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE mortgages SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mortgage synced: %w", err)
	}

	slog.InfoContext(ctx, "Mortgage marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a mortgage whose export failed so the sweep skips it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `
		UPDATE mortgages SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark mortgage sync error: %w", err)
	}

	slog.WarnContext(ctx, "Mortgage marked with sync error", "id", id)
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanMortgage(row scanner) (core.Mortgage, error) {
	var (
		m       core.Mortgage
		rateStr string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Principal, &rateStr, &m.TermYears, &m.CreatedAt); err != nil {
		return core.Mortgage{}, err
	}

	rate, err := core.ParseRate(rateStr)
	if err != nil {
		return core.Mortgage{}, fmt.Errorf("parse stored rate %q: %w", rateStr, err)
	}
	m.AnnualRate = rate

	return m, nil
}

func scanScenario(row scanner) (core.Scenario, error) {
	var (
		s        core.Scenario
		strategy string
	)
	if err := row.Scan(&s.ID, &s.MortgageID, &s.Name, &strategy, &s.ExtraMonthly, &s.LumpSum, &s.AnnualLumpSum, &s.CreatedAt); err != nil {
		return core.Scenario{}, err
	}
	s.Strategy = core.Strategy(strategy)

	return s, nil
}
