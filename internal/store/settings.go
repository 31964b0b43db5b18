// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// SaveRuleset upserts a rule set as its YAML document.
func (s *Store) SaveRuleset(ctx context.Context, rs types.Ruleset) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshaling ruleset %s: %w", rs.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rulesets (id, name, yaml) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name=excluded.name, yaml=excluded.yaml`,
		rs.ID, rs.Name, string(data))
	if err != nil {
		return fmt.Errorf("saving ruleset %s: %w", rs.ID, err)
	}
	return nil
}

// Ruleset returns the stored rule set identified by id.
func (s *Store) Ruleset(ctx context.Context, id string) (types.Ruleset, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT yaml FROM rulesets WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Ruleset{}, fmt.Errorf("ruleset %s: %w", id, ErrNotFound)
		}
		return types.Ruleset{}, fmt.Errorf("loading ruleset %s: %w", id, err)
	}

	var rs types.Ruleset
	if err := yaml.Unmarshal([]byte(data), &rs); err != nil {
		return types.Ruleset{}, fmt.Errorf("parsing stored ruleset %s: %w", id, err)
	}
	return rs, nil
}

// Rulesets lists the identifiers and names of all stored rule sets.
func (s *Store) Rulesets(ctx context.Context) (map[string]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM rulesets ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing rulesets: %w", err)
	}
	defer rows.Close()

	sets := make(map[string]string)
	for rows.Next() {
		var id, name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, fmt.Errorf("scanning ruleset row: %w", err)
		}
		sets[id] = name
	}
	return sets, rows.Err()
}

// SaveDomainConfig upserts a domain configuration as its YAML document.
func (s *Store) SaveDomainConfig(ctx context.Context, cfg types.DomainConfig) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling domain config %s: %w", cfg.ID, err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO domain_configs (id, yaml) VALUES (?, ?)
		 ON CONFLICT(id) DO UPDATE SET yaml=excluded.yaml`,
		cfg.ID, string(data))
	if err != nil {
		return fmt.Errorf("saving domain config %s: %w", cfg.ID, err)
	}
	return nil
}

// DomainConfig returns the stored domain configuration identified by id.
func (s *Store) DomainConfig(ctx context.Context, id string) (types.DomainConfig, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT yaml FROM domain_configs WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.DomainConfig{}, fmt.Errorf("domain config %s: %w", id, ErrNotFound)
		}
		return types.DomainConfig{}, fmt.Errorf("loading domain config %s: %w", id, err)
	}

	var cfg types.DomainConfig
	if err := yaml.Unmarshal([]byte(data), &cfg); err != nil {
		return types.DomainConfig{}, fmt.Errorf("parsing stored domain config %s: %w", id, err)
	}
	return cfg, nil
}

// EnsureDefaults seeds the default rule set and domain configuration if no
// record with their identifiers exists yet. Existing records are never
// overwritten.
func (s *Store) EnsureDefaults(ctx context.Context, rs types.Ruleset, cfg types.DomainConfig) error {
	rsData, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshaling default ruleset: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO rulesets (id, name, yaml) VALUES (?, ?, ?)`,
		rs.ID, rs.Name, string(rsData)); err != nil {
		return fmt.Errorf("seeding default ruleset: %w", err)
	}

	cfgData, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling default domain config: %w", err)
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO domain_configs (id, yaml) VALUES (?, ?)`,
		cfg.ID, string(cfgData)); err != nil {
		return fmt.Errorf("seeding default domain config: %w", err)
	}

	return nil
}

// Settings returns the engine settings row.
func (s *Store) Settings(ctx context.Context) (types.Settings, error) {
	var st types.Settings
	err := s.db.QueryRowContext(ctx,
		`SELECT active_ruleset_id, active_domain_config_id, text_provider,
			text_model, vision_provider, vision_model, default_language
		 FROM settings WHERE id = 1`).Scan(
		&st.ActiveRulesetID, &st.ActiveDomainConfigID, &st.TextProvider,
		&st.TextModel, &st.VisionProvider, &st.VisionModel, &st.DefaultLanguage,
	)
	if err != nil {
		return types.Settings{}, fmt.Errorf("loading settings: %w", err)
	}
	return st, nil
}

// UpdateSettings replaces the engine settings row.
func (s *Store) UpdateSettings(ctx context.Context, st types.Settings) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE settings SET active_ruleset_id=?, active_domain_config_id=?,
			text_provider=?, text_model=?, vision_provider=?, vision_model=?,
			default_language=?
		 WHERE id = 1`,
		st.ActiveRulesetID, st.ActiveDomainConfigID, st.TextProvider,
		st.TextModel, st.VisionProvider, st.VisionModel, st.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("updating settings: %w", err)
	}
	return nil
}

// AppendAudit adds one entry to the subject's audit trail. The trail is
// append-only; nothing ever updates or deletes rows.
func (s *Store) AppendAudit(ctx context.Context, subject string, e types.AuditEntry) error {
	return appendAudit(ctx, s.db, subject, e)
}

func appendAudit(ctx context.Context, db execer, subject string, e types.AuditEntry) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO audit_log (subject, action, actor, detail, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		subject, e.Action, e.Actor, e.Detail, e.Timestamp)
	if err != nil {
		return fmt.Errorf("appending audit entry for %s: %w", subject, err)
	}
	return nil
}

// AuditTrail returns the subject's audit entries in insertion order.
func (s *Store) AuditTrail(ctx context.Context, subject string) ([]types.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT action, actor, detail, created_at FROM audit_log
		 WHERE subject = ? ORDER BY id`, subject)
	if err != nil {
		return nil, fmt.Errorf("loading audit trail for %s: %w", subject, err)
	}
	defer rows.Close()

	var entries []types.AuditEntry
	for rows.Next() {
		var e types.AuditEntry
		if err := rows.Scan(&e.Action, &e.Actor, &e.Detail, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
