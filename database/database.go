// Package database exports the results of a duplicate search to SQLite so
// they can be inspected or post-processed after the run.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"dupefinder/types"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		dir TEXT NOT NULL,
		strategy TEXT NOT NULL,
		threshold REAL NOT NULL,
		hash_distance INTEGER NOT NULL,
		size INTEGER NOT NULL,
		tolerance INTEGER NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		cancelled INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS images (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		path TEXT NOT NULL,
		fingerprint TEXT,
		error TEXT,
		UNIQUE(run_id, path)
	);
	CREATE INDEX IF NOT EXISTS idx_images_fingerprint ON images(fingerprint);
	CREATE TABLE IF NOT EXISTS duplicate_groups (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		reference TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS group_members (
		group_id INTEGER NOT NULL REFERENCES duplicate_groups(id),
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		similarity REAL NOT NULL,
		PRIMARY KEY(group_id, position)
	);`

// ErrRunNotFound is returned when a run ID has no stored report
var ErrRunNotFound = errors.New("run not found")

// InitDatabase opens the report database, creating the schema when needed
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open report database %s: %w", dbPath, err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create report schema: %w", err)
	}
	return db, nil
}

// ReportParams records the search settings of a run
type ReportParams struct {
	Strategy     string
	Threshold    float64
	HashDistance int
	Size         int
	Tolerance    int
}

// SkippedImage is a file that could not be decoded
type SkippedImage struct {
	Path  string
	Error string
}

// Report is everything one run produced
type Report struct {
	RunID      string // generated when empty
	Dir        string
	Params     ReportParams
	StartedAt  time.Time
	FinishedAt time.Time
	Cancelled  bool
	Records    []types.ImageRecord
	Skipped    []SkippedImage
	Groups     []types.DuplicateGroup
}

// StoreReport writes a report in one transaction and returns its run ID
func StoreReport(db *sql.DB, report Report) (string, error) {
	runID := report.RunID
	if runID == "" {
		runID = uuid.NewString()
	}

	tx, err := db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin report transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.Exec(`
		INSERT INTO runs (id, dir, strategy, threshold, hash_distance, size, tolerance, started_at, finished_at, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, report.Dir, report.Params.Strategy, report.Params.Threshold, report.Params.HashDistance,
		report.Params.Size, report.Params.Tolerance,
		report.StartedAt.UTC().Format(time.RFC3339), report.FinishedAt.UTC().Format(time.RFC3339),
		report.Cancelled,
	)
	if err != nil {
		return "", fmt.Errorf("insert run %s: %w", runID, err)
	}

	imageStmt, err := tx.Prepare(`INSERT INTO images (run_id, path, fingerprint, error) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare image insert: %w", err)
	}
	defer imageStmt.Close()

	for _, record := range report.Records {
		if _, err := imageStmt.Exec(runID, record.Path, record.Fingerprint.String(), nil); err != nil {
			return "", fmt.Errorf("insert image %s: %w", record.Path, err)
		}
	}
	for _, skipped := range report.Skipped {
		if _, err := imageStmt.Exec(runID, skipped.Path, nil, skipped.Error); err != nil {
			return "", fmt.Errorf("insert skipped image %s: %w", skipped.Path, err)
		}
	}

	memberStmt, err := tx.Prepare(`INSERT INTO group_members (group_id, position, path, similarity) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare member insert: %w", err)
	}
	defer memberStmt.Close()

	for i, group := range report.Groups {
		res, err := tx.Exec(`INSERT INTO duplicate_groups (run_id, position, reference) VALUES (?, ?, ?)`,
			runID, i, group.Reference().Path)
		if err != nil {
			return "", fmt.Errorf("insert group %d: %w", i, err)
		}
		groupID, err := res.LastInsertId()
		if err != nil {
			return "", fmt.Errorf("group %d id: %w", i, err)
		}
		for j, entry := range group {
			if _, err := memberStmt.Exec(groupID, j, entry.Path, entry.Similarity); err != nil {
				return "", fmt.Errorf("insert group member %s: %w", entry.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit report: %w", err)
	}
	return runID, nil
}

// ReportStats summarises a stored run
type ReportStats struct {
	RunID      string
	Dir        string
	Strategy   string
	Cancelled  bool
	Images     int
	Skipped    int
	Groups     int
	Duplicates int // group members other than the references
}

// GetReportStats summarises a run. An empty runID selects the latest run.
func GetReportStats(db *sql.DB, runID string) (*ReportStats, error) {
	var stats ReportStats

	query := `SELECT id, dir, strategy, cancelled FROM runs WHERE id = ?`
	args := []any{runID}
	if runID == "" {
		query = `SELECT id, dir, strategy, cancelled FROM runs ORDER BY finished_at DESC, rowid DESC LIMIT 1`
		args = nil
	}
	err := db.QueryRow(query, args...).Scan(&stats.RunID, &stats.Dir, &stats.Strategy, &stats.Cancelled)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%q: %w", runID, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read run: %w", err)
	}

	err = db.QueryRow(`
		SELECT COUNT(*) FILTER (WHERE error IS NULL), COUNT(*) FILTER (WHERE error IS NOT NULL)
		FROM images WHERE run_id = ?`, stats.RunID).Scan(&stats.Images, &stats.Skipped)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	err = db.QueryRow(`SELECT COUNT(*) FROM duplicate_groups WHERE run_id = ?`, stats.RunID).Scan(&stats.Groups)
	if err != nil {
		return nil, fmt.Errorf("count groups: %w", err)
	}

	err = db.QueryRow(`
		SELECT COUNT(*) FROM group_members m
		JOIN duplicate_groups g ON g.id = m.group_id
		WHERE g.run_id = ? AND m.position > 0`, stats.RunID).Scan(&stats.Duplicates)
	if err != nil {
		return nil, fmt.Errorf("count duplicates: %w", err)
	}

	return &stats, nil
}

// LoadGroups reads the groups of a run back in their original order
func LoadGroups(db *sql.DB, runID string) ([]types.DuplicateGroup, error) {
	rows, err := db.Query(`
		SELECT g.position, m.path, m.similarity
		FROM duplicate_groups g
		JOIN group_members m ON m.group_id = g.id
		WHERE g.run_id = ?
		ORDER BY g.position, m.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("query groups: %w", err)
	}
	defer rows.Close()

	var groups []types.DuplicateGroup
	current := -1
	for rows.Next() {
		var position int
		var entry types.DuplicateEntry
		if err := rows.Scan(&position, &entry.Path, &entry.Similarity); err != nil {
			return nil, fmt.Errorf("scan group member: %w", err)
		}
		if position != current {
			groups = append(groups, nil)
			current = position
		}
		groups[len(groups)-1] = append(groups[len(groups)-1], entry)
	}
	return groups, rows.Err()
}
