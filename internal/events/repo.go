package events

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/starford/flowstate/internal/models"
)

// Source provides the grouped event tables the correlator consumes.
// Consumers should depend on this interface rather than the concrete *DB.
type Source interface {
	Consumption(ctx context.Context) ([]models.ConsumptionEvent, error)
	Commits(ctx context.Context) ([]models.CommitEvent, error)
}

// Verify *DB satisfies Source at compile time.
var _ Source = (*DB)(nil)

// ReplaceConsumption swaps the whole consumption table for rows in one transaction.
func (db *DB) ReplaceConsumption(ctx context.Context, rows []models.ConsumptionEvent) error {
	return db.replace(ctx, "consumption_events",
		`INSERT INTO consumption_events (date, category, count) VALUES (?, ?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, rows[i].Date, rows[i].Category, rows[i].Count)
			return err
		})
}

// ReplaceCommits swaps the whole commit table for rows in one transaction.
func (db *DB) ReplaceCommits(ctx context.Context, rows []models.CommitEvent) error {
	return db.replace(ctx, "commit_events",
		`INSERT INTO commit_events (date, count) VALUES (?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			_, err := stmt.ExecContext(ctx, rows[i].Date, rows[i].Count)
			return err
		})
}

func (db *DB) replace(ctx context.Context, table, insert string, n int, exec func(*sql.Stmt, int) error) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("events: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
		return fmt.Errorf("events: clear %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("events: prepare %s insert: %w", table, err)
	}
	defer stmt.Close()
	for i := 0; i < n; i++ {
		if err := exec(stmt, i); err != nil {
			return fmt.Errorf("events: insert %s row %d: %w", table, i, err)
		}
	}
	return tx.Commit()
}

// Consumption returns consumption counts summed per date and category,
// ordered by date.
func (db *DB) Consumption(ctx context.Context) ([]models.ConsumptionEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, category, SUM(count)
		FROM consumption_events
		GROUP BY date, category
		ORDER BY date, category`)
	if err != nil {
		return nil, fmt.Errorf("events: consumption: %w", err)
	}
	defer rows.Close()

	var out []models.ConsumptionEvent
	for rows.Next() {
		var e models.ConsumptionEvent
		if err := rows.Scan(&e.Date, &e.Category, &e.Count); err != nil {
			return nil, fmt.Errorf("events: scan consumption: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Commits returns commit counts summed per date, ordered by date.
func (db *DB) Commits(ctx context.Context) ([]models.CommitEvent, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT date, SUM(count)
		FROM commit_events
		GROUP BY date
		ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("events: commits: %w", err)
	}
	defer rows.Close()

	var out []models.CommitEvent
	for rows.Next() {
		var e models.CommitEvent
		if err := rows.Scan(&e.Date, &e.Count); err != nil {
			return nil, fmt.Errorf("events: scan commits: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
