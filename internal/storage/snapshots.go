package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tovenaar/spirit-tracker/internal/stats"
)

// sqliteTimeLayout is ISO 8601 without a timezone suffix; values are
// always stored in UTC.
const sqliteTimeLayout = "2006-01-02 15:04:05.999999"

// SharedSeat marks the shared slot in snapshot rows.
const SharedSeat = -1

// Snapshot is one stat value for one slot, frozen at a moment in
// time. Rows for the same Record call share a TakenAt.
type Snapshot struct {
	ID         int64
	TakenAt    time.Time
	SaveName   string
	StatID     string
	StatTitle  string
	Seat       int
	PlayerName string
	Value      float64
	Display    string
}

// SnapshotRepository handles database operations for stat snapshots.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a snapshot repository over db.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Record inserts a batch of snapshots in one transaction.
func (r *SnapshotRepository) Record(ctx context.Context, snapshots []*Snapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	return r.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		query := `
			INSERT INTO stat_snapshots (
				taken_at, save_name, stat_id, stat_title, seat, player_name, value, display
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare snapshot insert: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, s := range snapshots {
			takenAt := s.TakenAt.UTC().Format(sqliteTimeLayout)
			result, err := stmt.ExecContext(ctx,
				takenAt, s.SaveName, s.StatID, s.StatTitle,
				s.Seat, s.PlayerName, s.Value, s.Display,
			)
			if err != nil {
				return fmt.Errorf("failed to insert snapshot: %w", err)
			}
			if id, err := result.LastInsertId(); err == nil {
				s.ID = id
			}
		}
		return nil
	})
}

// BySave returns the most recent snapshots for a save, newest first.
// A non-positive limit returns everything.
func (r *SnapshotRepository) BySave(ctx context.Context, saveName string, limit int) ([]*Snapshot, error) {
	query := `
		SELECT id, taken_at, save_name, stat_id, stat_title, seat, player_name, value, display
		FROM stat_snapshots
		WHERE save_name = ?
		ORDER BY taken_at DESC, id DESC
	`
	args := []any{saveName}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanSnapshots(rows)
}

// Series returns the time-ordered value series for one stat slot,
// optionally restricted to a window. A zero window means everything.
func (r *SnapshotRepository) Series(ctx context.Context, saveName, statID string, seat int, window stats.TimeRange) ([]stats.SeriesPoint, error) {
	query := `
		SELECT taken_at, value
		FROM stat_snapshots
		WHERE save_name = ? AND stat_id = ? AND seat = ?
	`
	args := []any{saveName, statID, seat}
	if !window.Start.IsZero() || !window.End.IsZero() {
		query += " AND taken_at >= ? AND taken_at < ?"
		args = append(args,
			window.Start.UTC().Format(sqliteTimeLayout),
			window.End.UTC().Format(sqliteTimeLayout),
		)
	}
	query += " ORDER BY taken_at ASC, id ASC"

	rows, err := r.db.Conn().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot series: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var points []stats.SeriesPoint
	for rows.Next() {
		var takenAt string
		var value float64
		if err := rows.Scan(&takenAt, &value); err != nil {
			return nil, fmt.Errorf("failed to scan series point: %w", err)
		}
		at, err := time.Parse(sqliteTimeLayout, takenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot time %q: %w", takenAt, err)
		}
		points = append(points, stats.SeriesPoint{At: at, Value: value})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshot series: %w", err)
	}
	return points, nil
}

// SaveNames lists the saves that have snapshots, alphabetically.
func (r *SnapshotRepository) SaveNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Conn().QueryContext(ctx, `
		SELECT DISTINCT save_name FROM stat_snapshots ORDER BY save_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query save names: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan save name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read save names: %w", err)
	}
	return names, nil
}

// PruneOlderThan deletes snapshots taken before cutoff and reports
// how many rows went away.
func (r *SnapshotRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.Conn().ExecContext(ctx,
		`DELETE FROM stat_snapshots WHERE taken_at < ?`,
		cutoff.UTC().Format(sqliteTimeLayout),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned snapshots: %w", err)
	}
	return deleted, nil
}

func scanSnapshots(rows *sql.Rows) ([]*Snapshot, error) {
	var snapshots []*Snapshot
	for rows.Next() {
		var s Snapshot
		var takenAt string
		if err := rows.Scan(&s.ID, &takenAt, &s.SaveName, &s.StatID, &s.StatTitle,
			&s.Seat, &s.PlayerName, &s.Value, &s.Display); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		at, err := time.Parse(sqliteTimeLayout, takenAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse snapshot time %q: %w", takenAt, err)
		}
		s.TakenAt = at
		snapshots = append(snapshots, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read snapshots: %w", err)
	}
	return snapshots, nil
}

// SnapshotsFromResults flattens tally results into snapshot rows, one
// per slot, all stamped with takenAt.
func SnapshotsFromResults(saveName string, takenAt time.Time, results []*stats.Result) []*Snapshot {
	var snapshots []*Snapshot
	for _, result := range results {
		for _, slot := range result.Slots {
			seat := SharedSeat
			if !slot.Slot.IsShared() {
				seat = slot.Slot.SeatIndex()
			}
			snapshots = append(snapshots, &Snapshot{
				TakenAt:    takenAt,
				SaveName:   saveName,
				StatID:     result.ID,
				StatTitle:  result.Title,
				Seat:       seat,
				PlayerName: slot.PlayerName,
				Value:      slot.Value,
				Display:    slot.Display,
			})
		}
	}
	return snapshots
}
