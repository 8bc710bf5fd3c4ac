package profile

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	core "github.com/kinjo-energy/kinjo/core/profile"
)

// SQLiteStore persists tariff profiles in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS tariff_profiles (
        id TEXT PRIMARY KEY,
        prm TEXT NOT NULL,
        plan TEXT NOT NULL,
        created_at INTEGER NOT NULL,
        record TEXT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS tariff_profiles_prm ON tariff_profiles(prm, created_at);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Save inserts or replaces the profile.
func (s *SQLiteStore) Save(ctx context.Context, p core.Profile) error {
	b, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO tariff_profiles (id, prm, plan, created_at, record) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.PRM, string(p.Subscription.Plan), p.CreatedAt.UnixNano(), string(b))
	return err
}

// Get loads a profile by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (core.Profile, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT record FROM tariff_profiles WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Profile{}, core.ErrNotFound
	}
	if err != nil {
		return core.Profile{}, err
	}
	return decode(data)
}

// List returns profiles matching q, newest first.
func (s *SQLiteStore) List(ctx context.Context, q core.Query) ([]core.Profile, error) {
	var args []any
	query := `SELECT record FROM tariff_profiles WHERE 1=1`
	if q.PRM != "" {
		query += ` AND prm = ?`
		args = append(args, q.PRM)
	}
	if !q.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, q.Since.UnixNano())
	}
	query += ` ORDER BY created_at DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Profile
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		p, err := decode(data)
		if err != nil {
			return nil, err
		}
		res = append(res, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func decode(data string) (core.Profile, error) {
	var p core.Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return core.Profile{}, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
