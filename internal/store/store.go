// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the documentation corpus: data modules,
// illustrations, publication modules, rule sets, domain configs, settings,
// and the append-only audit log. Backed by a single SQLite file with an
// FTS5 index over module text.
// See docs/ARCHITECTURE § Document Store.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

const defaultDBPath = "data/techpub.db"

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the engine's SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.Path and creates the schema
// if it does not exist. Writes use WAL so readers are never blocked.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	path := cfg.Path
	if path == "" {
		path = defaultDBPath
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS data_modules (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			dmc TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			type TEXT NOT NULL,
			info_variant TEXT NOT NULL,
			content TEXT NOT NULL,
			xml_content TEXT NOT NULL DEFAULT '',
			html_content TEXT NOT NULL DEFAULT '',
			security_level TEXT NOT NULL DEFAULT 'UNCLASSIFIED',
			status TEXT NOT NULL DEFAULT '',
			errors TEXT NOT NULL DEFAULT '[]',
			rule_valid INTEGER NOT NULL DEFAULT 0,
			schema_valid INTEGER NOT NULL DEFAULT 0,
			readability_score REAL NOT NULL DEFAULT 0,
			module_refs TEXT NOT NULL DEFAULT '[]',
			illustration_refs TEXT NOT NULL DEFAULT '[]',
			source_document_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_type ON data_modules(type)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_status ON data_modules(status)`,
		`CREATE INDEX IF NOT EXISTS idx_modules_source ON data_modules(source_document_id)`,
		`CREATE TABLE IF NOT EXISTS icns (
			icn_id TEXT PRIMARY KEY,
			lcn TEXT NOT NULL DEFAULT '',
			caption TEXT NOT NULL DEFAULT '',
			objects TEXT NOT NULL DEFAULT '[]',
			hotspots TEXT NOT NULL DEFAULT '[]',
			width INTEGER NOT NULL DEFAULT 0,
			height INTEGER NOT NULL DEFAULT 0,
			security_level TEXT NOT NULL DEFAULT 'UNCLASSIFIED',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS publication_modules (
			pm_code TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			dm_list TEXT NOT NULL DEFAULT '[]',
			formats TEXT NOT NULL DEFAULT '[]',
			variants TEXT NOT NULL DEFAULT '[]',
			status TEXT NOT NULL DEFAULT 'draft',
			security_level TEXT NOT NULL DEFAULT 'UNCLASSIFIED',
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rulesets (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			yaml TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS domain_configs (
			id TEXT PRIMARY KEY,
			yaml TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settings (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			active_ruleset_id TEXT NOT NULL DEFAULT 'default',
			active_domain_config_id TEXT NOT NULL DEFAULT 'default',
			text_provider TEXT NOT NULL DEFAULT 'local',
			text_model TEXT NOT NULL DEFAULT '',
			vision_provider TEXT NOT NULL DEFAULT 'local',
			vision_model TEXT NOT NULL DEFAULT '',
			default_language TEXT NOT NULL DEFAULT 'en-US'
		)`,
		`INSERT OR IGNORE INTO settings (id) VALUES (1)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			subject TEXT NOT NULL,
			action TEXT NOT NULL,
			actor TEXT NOT NULL DEFAULT '',
			detail TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_subject ON audit_log(subject)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}

	// FTS5 virtual table with triggers for sync.
	var ftsExists int
	if err := s.db.QueryRow(
		`SELECT count(*) FROM sqlite_master WHERE type='table' AND name='modules_fts'`,
	).Scan(&ftsExists); err != nil {
		return fmt.Errorf("checking FTS table: %w", err)
	}

	if ftsExists == 0 {
		ftsStatements := []string{
			`CREATE VIRTUAL TABLE modules_fts USING fts5(dmc, title, content, content=data_modules, content_rowid=rowid)`,
			`CREATE TRIGGER modules_ai AFTER INSERT ON data_modules BEGIN
				INSERT INTO modules_fts(rowid, dmc, title, content) VALUES (new.rowid, new.dmc, new.title, new.content);
			END`,
			`CREATE TRIGGER modules_ad AFTER DELETE ON data_modules BEGIN
				INSERT INTO modules_fts(modules_fts, rowid, dmc, title, content) VALUES('delete', old.rowid, old.dmc, old.title, old.content);
			END`,
			`CREATE TRIGGER modules_au AFTER UPDATE ON data_modules BEGIN
				INSERT INTO modules_fts(modules_fts, rowid, dmc, title, content) VALUES('delete', old.rowid, old.dmc, old.title, old.content);
				INSERT INTO modules_fts(rowid, dmc, title, content) VALUES (new.rowid, new.dmc, new.title, new.content);
			END`,
		}
		for _, stmt := range ftsStatements {
			if _, err := s.db.Exec(stmt); err != nil {
				return fmt.Errorf("creating FTS infrastructure: %w", err)
			}
		}
	}

	return nil
}
