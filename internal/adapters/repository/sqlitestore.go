package repository

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mjelle/shotgroup/internal/domain/model"
	"github.com/mjelle/shotgroup/pkg/metrics"

	_ "modernc.org/sqlite" // SQLite driver.
)

// SQLiteStore is the durable Store implementation. It satisfies the same
// contract as MemStore; database/sql serializes access, so read-your-writes
// holds per caller.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens or creates the history database and applies migrations.
func OpenSQLite(path string) (*SQLiteStore, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS target_patterns (
			id TEXT PRIMARY KEY,
			recorded_at_ns INTEGER NOT NULL,
			session_name TEXT NOT NULL,
			pressure_level INTEGER NOT NULL,
			mpi_u REAL NOT NULL,
			mpi_v REAL NOT NULL,
			group_radius REAL NOT NULL,
			outlier_count INTEGER NOT NULL,
			shot_count INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS pattern_shots (
			pattern_id TEXT NOT NULL,
			idx INTEGER NOT NULL,
			u REAL NOT NULL,
			v REAL NOT NULL,
			PRIMARY KEY (pattern_id, idx)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_target_patterns_recorded_at
			ON target_patterns(recorded_at_ns);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate history db: %w", err)
		}
	}
	return nil
}

// Append inserts a pattern and its shots in one transaction.
func (s *SQLiteStore) Append(ctx context.Context, pattern model.StoredTargetPattern) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM target_patterns WHERE id = ?`, pattern.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check pattern id: %w", err)
	}
	if exists > 0 {
		return ErrDuplicateID
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO target_patterns
			(id, recorded_at_ns, session_name, pressure_level, mpi_u, mpi_v, group_radius, outlier_count, shot_count)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pattern.ID,
		pattern.Timestamp.UnixNano(),
		pattern.Session.Name,
		int(pattern.Session.Pressure),
		pattern.MPI.U,
		pattern.MPI.V,
		pattern.GroupRadius,
		pattern.OutlierCount,
		pattern.ShotCount,
	)
	if err != nil {
		return fmt.Errorf("insert pattern: %w", err)
	}

	if len(pattern.Shots) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO pattern_shots (pattern_id, idx, u, v) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare shot insert: %w", err)
		}
		defer func() {
			_ = stmt.Close()
		}()
		for i, shot := range pattern.Shots {
			if _, err := stmt.ExecContext(ctx, pattern.ID, i, shot.U, shot.V); err != nil {
				return fmt.Errorf("insert shot %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit append: %w", err)
	}
	metrics.UpdateHistorySize(s.Count(ctx))
	return nil
}

// Query returns the filtered view, most recent first.
func (s *SQLiteStore) Query(ctx context.Context, filter model.DateFilter, sessions []model.SessionType) ([]model.StoredTargetPattern, error) {
	var (
		clauses []string
		args    []any
	)
	if cutoff, bounded := filter.Cutoff(nowFunc()); bounded {
		clauses = append(clauses, "recorded_at_ns >= ?")
		args = append(args, cutoff.UnixNano())
	}
	if names := sessionNameSet(sessions); names != nil {
		placeholders := make([]string, 0, len(names))
		for name := range names {
			placeholders = append(placeholders, "?")
			args = append(args, name)
		}
		clauses = append(clauses, "session_name IN ("+strings.Join(placeholders, ", ")+")")
	}

	query := `SELECT id, recorded_at_ns, session_name, pressure_level, mpi_u, mpi_v, group_radius, outlier_count, shot_count
		FROM target_patterns`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY recorded_at_ns DESC"
	if filter == model.FilterLastTarget {
		query += " LIMIT 1"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query patterns: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := make([]model.StoredTargetPattern, 0)
	for rows.Next() {
		var (
			p        model.StoredTargetPattern
			ns       int64
			pressure int
		)
		if err := rows.Scan(&p.ID, &ns, &p.Session.Name, &pressure,
			&p.MPI.U, &p.MPI.V, &p.GroupRadius, &p.OutlierCount, &p.ShotCount); err != nil {
			return nil, fmt.Errorf("scan pattern: %w", err)
		}
		p.Timestamp = time.Unix(0, ns)
		p.Session.Pressure = model.PressureLevel(pressure)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate patterns: %w", err)
	}

	for i := range out {
		shots, err := s.loadShots(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Shots = shots
	}
	return out, nil
}

func (s *SQLiteStore) loadShots(ctx context.Context, patternID string) ([]model.NormalizedShot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT u, v FROM pattern_shots WHERE pattern_id = ? ORDER BY idx`, patternID)
	if err != nil {
		return nil, fmt.Errorf("query shots: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var shots []model.NormalizedShot
	for rows.Next() {
		var shot model.NormalizedShot
		if err := rows.Scan(&shot.U, &shot.V); err != nil {
			return nil, fmt.Errorf("scan shot: %w", err)
		}
		shots = append(shots, shot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shots: %w", err)
	}
	return shots, nil
}

// Delete removes one pattern and its shots; absent ids are a no-op.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM pattern_shots WHERE pattern_id = ?`, id); err != nil {
		return fmt.Errorf("delete shots: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM target_patterns WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete pattern: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	metrics.UpdateHistorySize(s.Count(ctx))
	return nil
}

// Count returns the number of stored patterns.
func (s *SQLiteStore) Count(ctx context.Context) int {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM target_patterns`).Scan(&n); err != nil {
		return 0
	}
	return n
}
