package repositories

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/wtx/internal/models"
)

// ErrNoSnapshot is returned when no watched list has been saved yet.
var ErrNoSnapshot = errors.New("no watched list snapshot saved")

// SnapshotRepository keeps the last bulk-loaded watched list for offline export.
type SnapshotRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSnapshotRepository creates a new [SnapshotRepository] with the given database connection.
func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db, now: time.Now}
}

// Save replaces the stored snapshot with list.
func (r *SnapshotRepository) Save(list []models.Entry) error {
	body, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entry_snapshots"); err != nil {
		return fmt.Errorf("failed to clear snapshots: %w", err)
	}
	if _, err := tx.Exec("INSERT INTO entry_snapshots (body, taken_at) VALUES (?, ?)", string(body), r.now().UTC()); err != nil {
		return fmt.Errorf("failed to insert snapshot: %w", err)
	}
	return tx.Commit()
}

// Latest returns the stored snapshot and when it was taken.
func (r *SnapshotRepository) Latest() ([]models.Entry, time.Time, error) {
	var (
		body    string
		takenAt time.Time
	)
	err := r.db.QueryRow("SELECT body, taken_at FROM entry_snapshots ORDER BY id DESC LIMIT 1").Scan(&body, &takenAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, ErrNoSnapshot
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to query snapshot: %w", err)
	}

	var list []models.Entry
	if err := json.Unmarshal([]byte(body), &list); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return list, takenAt, nil
}
