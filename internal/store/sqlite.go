// Package store persists run history and final prospect lists in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/prospector/internal/model"
)

// Run is one recorded pipeline execution.
type Run struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"` // "refined" or "comprehensive"
	Status     string    `json:"status"`
	Discovered int       `json:"discovered"`
	Exported   int       `json:"exported"`
	OutputFile string    `json:"output_file,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store defines persistence operations for run history.
type Store interface {
	Migrate(ctx context.Context) error
	SaveRun(ctx context.Context, run Run, prospects []*model.BusinessRecord) (string, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	GetProspects(ctx context.Context, runID string) ([]*model.BusinessRecord, error)
	Close() error
}

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	mode        TEXT NOT NULL,
	status      TEXT NOT NULL DEFAULT 'completed',
	discovered  INTEGER NOT NULL DEFAULT 0,
	exported    INTEGER NOT NULL DEFAULT 0,
	output_file TEXT,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS prospects (
	run_id                TEXT NOT NULL REFERENCES runs(id),
	place_id              TEXT NOT NULL,
	name                  TEXT NOT NULL,
	address               TEXT,
	city                  TEXT,
	state                 TEXT,
	keyword_used          TEXT,
	types                 TEXT,
	rating                REAL,
	website               TEXT,
	phone                 TEXT,
	ai_fit_category       TEXT,
	ai_reasoning          TEXT,
	ai_people_assessment  TEXT,
	ai_revenue_assessment TEXT,
	icp_score             REAL,
	fit_category          TEXT,
	PRIMARY KEY (run_id, place_id)
);

CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
CREATE INDEX IF NOT EXISTS idx_prospects_run_id ON prospects(run_id);
`

// Migrate creates the schema.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveRun inserts a run row and its final prospects in one transaction and
// returns the run ID.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, prospects []*model.BusinessRecord) (string, error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, status, discovered, exported, output_file, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Mode, run.Status, run.Discovered, run.Exported, run.OutputFile, run.CreatedAt,
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert run")
	}

	for _, p := range prospects {
		var rating any
		if p.Rating != nil {
			rating = *p.Rating
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO prospects (
				run_id, place_id, name, address, city, state, keyword_used, types,
				rating, website, phone, ai_fit_category, ai_reasoning,
				ai_people_assessment, ai_revenue_assessment, icp_score, fit_category
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, p.PlaceID, p.Name, p.Address, p.City, p.State, p.KeywordUsed, p.CategoryTags,
			rating, p.Website, p.Phone, string(p.AIFitCategory), p.AIReasoning,
			p.AIPeopleAssessment, p.AIRevenueAssessment, p.ICPScore, string(p.FitCategory),
		)
		if err != nil {
			return "", eris.Wrapf(err, "sqlite: insert prospect %s", p.PlaceID)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", eris.Wrap(err, "sqlite: commit")
	}
	return run.ID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, status, discovered, exported, COALESCE(output_file, ''), created_at
		 FROM runs ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Mode, &r.Status, &r.Discovered, &r.Exported, &r.OutputFile, &r.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

// GetProspects returns the saved prospects for a run, in insertion order.
func (s *SQLiteStore) GetProspects(ctx context.Context, runID string) ([]*model.BusinessRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT place_id, name, COALESCE(address, ''), COALESCE(city, ''), COALESCE(state, ''),
			COALESCE(keyword_used, ''), COALESCE(types, ''), rating, COALESCE(website, ''),
			COALESCE(phone, ''), COALESCE(ai_fit_category, ''), COALESCE(ai_reasoning, ''),
			COALESCE(ai_people_assessment, ''), COALESCE(ai_revenue_assessment, ''),
			COALESCE(icp_score, 0), COALESCE(fit_category, '')
		 FROM prospects WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get prospects")
	}
	defer rows.Close() //nolint:errcheck

	var prospects []*model.BusinessRecord
	for rows.Next() {
		var p model.BusinessRecord
		var rating sql.NullFloat64
		var fitCat, aiFit string
		if err := rows.Scan(&p.PlaceID, &p.Name, &p.Address, &p.City, &p.State,
			&p.KeywordUsed, &p.CategoryTags, &rating, &p.Website, &p.Phone,
			&aiFit, &p.AIReasoning, &p.AIPeopleAssessment, &p.AIRevenueAssessment,
			&p.ICPScore, &fitCat); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan prospect")
		}
		if rating.Valid {
			v := rating.Float64
			p.Rating = &v
		}
		p.AIFitCategory = model.AIFitCategory(aiFit)
		p.FitCategory = model.FitCategory(fitCat)
		prospects = append(prospects, &p)
	}
	return prospects, eris.Wrap(rows.Err(), "sqlite: iterate prospects")
}
