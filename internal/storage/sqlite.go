package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/lems/statuspanel/internal/health"
)

type sqliteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (Storage, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteStorage{db: db}, nil
}

// checked_at хранится в наносекундах Unix, чтобы сравнение не зависело от часового пояса
func createTables(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS status_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			backend TEXT NOT NULL,
			database_status TEXT NOT NULL,
			email TEXT NOT NULL,
			checked_at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_status_history_checked_at
			ON status_history(checked_at);
	`)
	if err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Save(snap health.Snapshot) error {
	if !snap.Completed() {
		return nil
	}

	_, err := s.db.Exec(
		`INSERT INTO status_history (backend, database_status, email, checked_at) VALUES (?, ?, ?, ?)`,
		string(snap.Backend), string(snap.Database), string(snap.Email), snap.LastUpdated.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert: %w", err)
	}

	return nil
}

func (s *sqliteStorage) GetHistory(from, to time.Time) ([]health.Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT backend, database_status, email, checked_at FROM status_history
		 WHERE checked_at >= ? AND checked_at <= ?
		 ORDER BY checked_at ASC, id ASC`,
		from.UnixNano(), to.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func (s *sqliteStorage) GetLatest(count int) ([]health.Snapshot, error) {
	if count <= 0 {
		return nil, nil
	}

	rows, err := s.db.Query(
		`SELECT backend, database_status, email, checked_at FROM (
			SELECT id, backend, database_status, email, checked_at FROM status_history
			ORDER BY checked_at DESC, id DESC
			LIMIT ?
		) ORDER BY checked_at ASC, id ASC`,
		count,
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

func scanSnapshots(rows *sql.Rows) ([]health.Snapshot, error) {
	var snaps []health.Snapshot
	for rows.Next() {
		var backend, database, email string
		var checkedAt int64
		if err := rows.Scan(&backend, &database, &email, &checkedAt); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		ts := time.Unix(0, checkedAt)
		snaps = append(snaps, health.Snapshot{
			Backend:     health.Status(backend),
			Database:    health.Status(database),
			Email:       health.Status(email),
			LastUpdated: &ts,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return snaps, nil
}

func (s *sqliteStorage) Cleanup(olderThan time.Time) error {
	_, err := s.db.Exec(`DELETE FROM status_history WHERE checked_at < ?`, olderThan.UnixNano())
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	return nil
}

func (s *sqliteStorage) Close() error {
	return s.db.Close()
}
