// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// AuditRecord pairs an audit entry with the entity it belongs to.
type AuditRecord struct {
	Subject string
	Entry   types.AuditEntry
}

const moduleColumns = `dmc, title, type, info_variant, content, xml_content,
	html_content, security_level, status, errors, rule_valid, schema_valid,
	readability_score, module_refs, illustration_refs, source_document_id,
	created_at, updated_at`

// InsertModule upserts one module. An existing module with the same code is
// replaced, keeping its created_at (last write wins).
func (s *Store) InsertModule(ctx context.Context, m types.DataModule) error {
	return insertModule(ctx, s.db, m)
}

// InsertModules writes mods and their audit records in one transaction so a
// partially ingested document never becomes visible.
func (s *Store) InsertModules(ctx context.Context, mods []types.DataModule, audits []AuditRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, m := range mods {
		if err := insertModule(ctx, tx, m); err != nil {
			return err
		}
	}
	for _, a := range audits {
		if err := appendAudit(ctx, tx, a.Subject, a.Entry); err != nil {
			return err
		}
	}

	return tx.Commit()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertModule(ctx context.Context, db execer, m types.DataModule) error {
	now := time.Now().UTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}

	errorsJSON, _ := json.Marshal(m.Errors)
	moduleRefsJSON, _ := json.Marshal(m.ModuleRefs)
	illusRefsJSON, _ := json.Marshal(m.IllustrationRefs)

	_, err := db.ExecContext(ctx,
		`INSERT INTO data_modules (dmc, title, type, info_variant, content,
			xml_content, html_content, security_level, status, errors,
			rule_valid, schema_valid, readability_score, module_refs,
			illustration_refs, source_document_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(dmc) DO UPDATE SET
			title=excluded.title, type=excluded.type,
			info_variant=excluded.info_variant, content=excluded.content,
			xml_content=excluded.xml_content, html_content=excluded.html_content,
			security_level=excluded.security_level, status=excluded.status,
			errors=excluded.errors, rule_valid=excluded.rule_valid,
			schema_valid=excluded.schema_valid,
			readability_score=excluded.readability_score,
			module_refs=excluded.module_refs,
			illustration_refs=excluded.illustration_refs,
			source_document_id=excluded.source_document_id,
			updated_at=excluded.updated_at`,
		m.DMC, m.Title, string(m.Type), m.InfoVariant, m.Content,
		m.XMLContent, m.HTMLContent, string(m.SecurityLevel), string(m.Status),
		string(errorsJSON), m.RuleValid, m.SchemaValid, m.ReadabilityScore,
		string(moduleRefsJSON), string(illusRefsJSON), m.SourceDocumentID,
		m.CreatedAt, m.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting module %s: %w", m.DMC, err)
	}
	return nil
}

// Module returns the module identified by dmc.
func (s *Store) Module(ctx context.Context, dmc string) (types.DataModule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+moduleColumns+` FROM data_modules WHERE dmc = ?`, dmc)

	m, err := scanModule(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DataModule{}, fmt.Errorf("module %s: %w", dmc, ErrNotFound)
		}
		return types.DataModule{}, fmt.Errorf("loading module %s: %w", dmc, err)
	}
	return m, nil
}

// ModulesByDMCs returns the modules for the given codes in the order the
// codes were supplied. Codes with no matching module are skipped; callers
// that care compare lengths.
func (s *Store) ModulesByDMCs(ctx context.Context, dmcs []string) ([]types.DataModule, error) {
	if len(dmcs) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(dmcs)), ",")
	args := make([]any, len(dmcs))
	for i, d := range dmcs {
		args[i] = d
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+moduleColumns+` FROM data_modules WHERE dmc IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, fmt.Errorf("querying modules: %w", err)
	}
	defer rows.Close()

	byDMC := make(map[string]types.DataModule, len(dmcs))
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning module row: %w", err)
		}
		byDMC[m.DMC] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result := make([]types.DataModule, 0, len(byDMC))
	for _, d := range dmcs {
		if m, ok := byDMC[d]; ok {
			result = append(result, m)
		}
	}
	return result, nil
}

// ListOptions filters module listings.
type ListOptions struct {
	// Type filters by module type.
	Type types.DMType

	// Status filters by validation status.
	Status types.ValidationStatus

	// Variant filters by info variant code.
	Variant string

	// SourceDocumentID filters by the ingested source document.
	SourceDocumentID string

	// Limit caps the result count. Zero means no cap.
	Limit int
}

// Modules lists modules matching opts, ordered by code.
func (s *Store) Modules(ctx context.Context, opts ListOptions) ([]types.DataModule, error) {
	var (
		qb   strings.Builder
		args []any
	)
	qb.WriteString(`SELECT ` + moduleColumns + ` FROM data_modules WHERE 1=1`)

	if opts.Type != "" {
		qb.WriteString(` AND type = ?`)
		args = append(args, string(opts.Type))
	}
	if opts.Status != "" {
		qb.WriteString(` AND status = ?`)
		args = append(args, string(opts.Status))
	}
	if opts.Variant != "" {
		qb.WriteString(` AND info_variant = ?`)
		args = append(args, opts.Variant)
	}
	if opts.SourceDocumentID != "" {
		qb.WriteString(` AND source_document_id = ?`)
		args = append(args, opts.SourceDocumentID)
	}

	qb.WriteString(` ORDER BY dmc`)

	if opts.Limit > 0 {
		qb.WriteString(` LIMIT ?`)
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("listing modules: %w", err)
	}
	defer rows.Close()

	var mods []types.DataModule
	for rows.Next() {
		m, err := scanModule(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning module row: %w", err)
		}
		mods = append(mods, m)
	}
	return mods, rows.Err()
}

// UpdateVerdict persists a validation verdict on the module. Concurrent
// validations of the same module race; the later write wins.
func (s *Store) UpdateVerdict(ctx context.Context, dmc string, v types.Verdict) error {
	errorsJSON, _ := json.Marshal(v.Errors)
	return s.updateModule(ctx, dmc,
		`UPDATE data_modules SET status=?, errors=?, rule_valid=?, schema_valid=?, updated_at=? WHERE dmc=?`,
		string(v.Status), string(errorsJSON), v.RuleValid, v.SchemaValid, time.Now().UTC(), dmc)
}

// UpdateRefs persists recomputed reference sets on the module.
func (s *Store) UpdateRefs(ctx context.Context, dmc string, moduleRefs, illustrationRefs []string) error {
	moduleRefsJSON, _ := json.Marshal(moduleRefs)
	illusRefsJSON, _ := json.Marshal(illustrationRefs)
	return s.updateModule(ctx, dmc,
		`UPDATE data_modules SET module_refs=?, illustration_refs=?, updated_at=? WHERE dmc=?`,
		string(moduleRefsJSON), string(illusRefsJSON), time.Now().UTC(), dmc)
}

// UpdateContent replaces the module body and its cached rendered forms.
func (s *Store) UpdateContent(ctx context.Context, dmc, content, xmlContent, htmlContent string) error {
	return s.updateModule(ctx, dmc,
		`UPDATE data_modules SET content=?, xml_content=?, html_content=?, updated_at=? WHERE dmc=?`,
		content, xmlContent, htmlContent, time.Now().UTC(), dmc)
}

// TouchModule advances the module's updated_at without changing content.
// Used when a referenced illustration changes underneath it.
func (s *Store) TouchModule(ctx context.Context, dmc string) error {
	return s.updateModule(ctx, dmc,
		`UPDATE data_modules SET updated_at=? WHERE dmc=?`, time.Now().UTC(), dmc)
}

// DeleteModule removes the module and its search index entry.
func (s *Store) DeleteModule(ctx context.Context, dmc string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM data_modules WHERE dmc=?`, dmc)
	if err != nil {
		return fmt.Errorf("deleting module %s: %w", dmc, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("module %s: %w", dmc, ErrNotFound)
	}
	return nil
}

func (s *Store) updateModule(ctx context.Context, dmc, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating module %s: %w", dmc, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("module %s: %w", dmc, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanModule(row rowScanner) (types.DataModule, error) {
	var (
		m          types.DataModule
		modType    string
		security   string
		status     string
		errorsJSON string
		modRefs    string
		illusRefs  string
	)

	err := row.Scan(
		&m.DMC, &m.Title, &modType, &m.InfoVariant, &m.Content,
		&m.XMLContent, &m.HTMLContent, &security, &status, &errorsJSON,
		&m.RuleValid, &m.SchemaValid, &m.ReadabilityScore,
		&modRefs, &illusRefs, &m.SourceDocumentID,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return types.DataModule{}, err
	}

	m.Type = types.DMType(modType)
	m.SecurityLevel = types.SecurityLevel(security)
	m.Status = types.ValidationStatus(status)
	json.Unmarshal([]byte(errorsJSON), &m.Errors)
	json.Unmarshal([]byte(modRefs), &m.ModuleRefs)
	json.Unmarshal([]byte(illusRefs), &m.IllustrationRefs)

	return m, nil
}

// SearchHit is one full-text search result.
type SearchHit struct {
	DMC     string
	Title   string
	Snippet string
}

const defaultSearchLimit = 20

// SearchModules runs an FTS5 query over module codes, titles, and content,
// ranked by relevance.
func (s *Store) SearchModules(ctx context.Context, query string, limit int) ([]SearchHit, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT m.dmc, m.title, snippet(modules_fts, 2, '[', ']', '...', 12)
		 FROM modules_fts
		 JOIN data_modules m ON m.rowid = modules_fts.rowid
		 WHERE modules_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching modules: %w", err)
	}
	defer rows.Close()

	var hits []SearchHit
	for rows.Next() {
		var h SearchHit
		if err := rows.Scan(&h.DMC, &h.Title, &h.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search row: %w", err)
		}
		hits = append(hits, h)
	}
	return hits, rows.Err()
}
