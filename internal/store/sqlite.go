package store

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/dkoval/jobscout/internal/ranking"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Store wraps a SQLite database persisting saved matches and applications.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) a SQLite database in dataDir and runs pending
// migrations. Pass ":memory:" as dataDir for an in-memory database (used by
// tests).
func Open(dataDir string) (*Store, error) {
	var dsn string
	if dataDir == ":memory:" {
		dsn = ":memory:"
	} else {
		if err := os.MkdirAll(dataDir, 0o755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
		dsn = filepath.Join(dataDir, "jobscout.db")
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	// Limit to single connection to avoid "database is locked" errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`); err != nil {
		return fmt.Errorf("creating schema_version table: %w", err)
	}

	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, err := parseMigrationVersion(entry.Name())
		if err != nil {
			return err
		}

		var exists int
		if err := s.db.QueryRow("SELECT COUNT(*) FROM schema_version WHERE version = ?", version).Scan(&exists); err != nil {
			return fmt.Errorf("checking migration %d: %w", version, err)
		}
		if exists > 0 {
			continue
		}

		content, err := migrationsFS.ReadFile("migrations/" + entry.Name())
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", entry.Name(), err)
		}

		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("beginning migration %d: %w", version, err)
		}
		if _, err := tx.Exec(string(content)); err != nil {
			tx.Rollback()
			return fmt.Errorf("applying migration %d: %w", version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", version); err != nil {
			tx.Rollback()
			return fmt.Errorf("recording migration %d: %w", version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("committing migration %d: %w", version, err)
		}
	}

	return nil
}

func parseMigrationVersion(name string) (int, error) {
	idx := strings.Index(name, "_")
	if idx <= 0 {
		return 0, fmt.Errorf("migration %q has no numeric prefix", name)
	}
	version, err := strconv.Atoi(name[:idx])
	if err != nil {
		return 0, fmt.Errorf("migration %q has no numeric prefix: %w", name, err)
	}
	return version, nil
}

// SaveMatches persists a ranked result set. Each match is stored with its
// full score payload as JSON.
func (s *Store) SaveMatches(matches []*ranking.Match) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	for _, m := range matches {
		payload, err := json.Marshal(m)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("marshaling match %s: %w", m.Job.ID, err)
		}

		overall := 0.0
		if m.Score != nil {
			overall = m.Score.Overall
		}

		if _, err := tx.Exec(
			`INSERT INTO matches (job_id, title, company, source, url, overall_score, payload)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.Job.ID, m.Job.Title, m.Job.Company, m.Job.Source, m.Job.URL, overall, string(payload),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting match %s: %w", m.Job.ID, err)
		}
	}

	return tx.Commit()
}

// ListMatches returns the most recently saved matches, best score first.
func (s *Store) ListMatches(limit int) ([]*SavedMatch, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.Query(
		`SELECT id, job_id, title, company, source, url, overall_score, payload, created_at
		 FROM matches ORDER BY created_at DESC, overall_score DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying matches: %w", err)
	}
	defer rows.Close()

	var out []*SavedMatch
	for rows.Next() {
		var m SavedMatch
		if err := rows.Scan(&m.ID, &m.JobID, &m.Title, &m.Company, &m.Source, &m.URL, &m.OverallScore, &m.Payload, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning match row: %w", err)
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}

// CreateApplication records a new application in the pending state.
func (s *Store) CreateApplication(userID, jobID, jobTitle, company, notes string) (*Application, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("job id is required")
	}

	now := time.Now().UTC()
	app := &Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		JobID:     jobID,
		JobTitle:  jobTitle,
		Company:   company,
		Status:    StatusPending,
		Notes:     notes,
		AppliedAt: now,
		UpdatedAt: now,
	}

	if _, err := s.db.Exec(
		`INSERT INTO applications (id, user_id, job_id, job_title, company, status, notes, applied_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.JobID, app.JobTitle, app.Company, string(app.Status), app.Notes, app.AppliedAt, app.UpdatedAt,
	); err != nil {
		return nil, fmt.Errorf("inserting application: %w", err)
	}

	return app, nil
}

// UpdateApplicationStatus replaces the status of an application.
func (s *Store) UpdateApplicationStatus(id string, status ApplicationStatus, notes string) (*Application, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	res, err := s.db.Exec(
		`UPDATE applications SET status = ?, notes = CASE WHEN ? != '' THEN ? ELSE notes END, updated_at = ?
		 WHERE id = ?`,
		string(status), notes, notes, now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating application %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("application %s not found", id)
	}

	return s.GetApplication(id)
}

// GetApplication returns one application by id.
func (s *Store) GetApplication(id string) (*Application, error) {
	row := s.db.QueryRow(
		`SELECT id, user_id, job_id, job_title, company, status, notes, applied_at, updated_at
		 FROM applications WHERE id = ?`, id)

	var app Application
	var status string
	if err := row.Scan(&app.ID, &app.UserID, &app.JobID, &app.JobTitle, &app.Company, &status, &app.Notes, &app.AppliedAt, &app.UpdatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("application %s not found", id)
		}
		return nil, fmt.Errorf("querying application %s: %w", id, err)
	}
	app.Status = ApplicationStatus(status)
	return &app, nil
}

// ListApplications returns all applications for a user, newest first.
func (s *Store) ListApplications(userID string) ([]*Application, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, job_id, job_title, company, status, notes, applied_at, updated_at
		 FROM applications WHERE user_id = ? ORDER BY applied_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying applications: %w", err)
	}
	defer rows.Close()

	var out []*Application
	for rows.Next() {
		var app Application
		var status string
		if err := rows.Scan(&app.ID, &app.UserID, &app.JobID, &app.JobTitle, &app.Company, &status, &app.Notes, &app.AppliedAt, &app.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning application row: %w", err)
		}
		app.Status = ApplicationStatus(status)
		out = append(out, &app)
	}
	return out, rows.Err()
}
