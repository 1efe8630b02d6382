package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docdup-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docdup-cli/internal/core/domain"
	"github.com/custodia-labs/docdup-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ReportStore = (*Store)(nil)

// Store persists analysis runs in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite report store at the specified data directory.
// If dataDir is empty, defaults to ~/.docdup/data/reports.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docdup", "data")
	}

	// Ensure directory exists
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "reports.db")

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	// Run migrations
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	// Ensure schema_migrations table exists
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	// Find all up migrations
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	// Sort and run migrations
	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		// Read and execute migration
		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

// SaveRun stores a completed analysis run.
func (s *Store) SaveRun(ctx context.Context, run *domain.AnalysisRun) error {
	if run == nil || run.ID == "" {
		return fmt.Errorf("save run: missing run ID: %w", domain.ErrInvalidInput)
	}

	resultsJSON, err := json.Marshal(run.Results)
	if err != nil {
		return fmt.Errorf("marshalling results: %w", err)
	}
	clustersJSON, err := json.Marshal(run.Clusters)
	if err != nil {
		return fmt.Errorf("marshalling clusters: %w", err)
	}
	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshalling stats: %w", err)
	}

	createdAt := run.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, technique, threshold, documents, results, clusters, stats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			created_at = excluded.created_at,
			technique = excluded.technique,
			threshold = excluded.threshold,
			documents = excluded.documents,
			results = excluded.results,
			clusters = excluded.clusters,
			stats = excluded.stats
	`, run.ID, createdAt, string(run.Technique), run.Threshold, run.Documents,
		string(resultsJSON), string(clustersJSON), string(statsJSON))
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(ctx context.Context, id string) (*domain.AnalysisRun, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, created_at, technique, threshold, documents, results, clusters, stats
		FROM runs WHERE id = ?
	`, id)

	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying run: %w", err)
	}
	return run, nil
}

// ListRuns returns run summaries, newest first. Results and clusters are
// omitted; use GetRun for the full record.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]domain.AnalysisRun, error) {
	query := `
		SELECT id, created_at, technique, threshold, documents, stats
		FROM runs ORDER BY created_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.AnalysisRun
	for rows.Next() {
		var (
			run       domain.AnalysisRun
			technique string
			statsJSON string
		)
		if err := rows.Scan(&run.ID, &run.CreatedAt, &technique, &run.Threshold, &run.Documents, &statsJSON); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.Technique = domain.Technique(technique)
		if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
			return nil, fmt.Errorf("unmarshalling stats: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanRun reads a full run row.
func scanRun(row *sql.Row) (*domain.AnalysisRun, error) {
	var (
		run          domain.AnalysisRun
		technique    string
		resultsJSON  string
		clustersJSON string
		statsJSON    string
	)
	err := row.Scan(&run.ID, &run.CreatedAt, &technique, &run.Threshold, &run.Documents,
		&resultsJSON, &clustersJSON, &statsJSON)
	if err != nil {
		return nil, err
	}

	run.Technique = domain.Technique(technique)
	if err := json.Unmarshal([]byte(resultsJSON), &run.Results); err != nil {
		return nil, fmt.Errorf("unmarshalling results: %w", err)
	}
	if err := json.Unmarshal([]byte(clustersJSON), &run.Clusters); err != nil {
		return nil, fmt.Errorf("unmarshalling clusters: %w", err)
	}
	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshalling stats: %w", err)
	}
	return &run, nil
}
