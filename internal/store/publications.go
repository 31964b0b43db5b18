// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

const pmColumns = `pm_code, title, dm_list, formats, variants, status,
	security_level, created_at, updated_at`

// InsertPublication upserts a publication module definition.
func (s *Store) InsertPublication(ctx context.Context, pm types.PublicationModule) error {
	now := time.Now().UTC()
	if pm.CreatedAt.IsZero() {
		pm.CreatedAt = now
	}
	if pm.UpdatedAt.IsZero() {
		pm.UpdatedAt = now
	}
	if pm.Status == "" {
		pm.Status = types.PublicationDraft
	}

	dmListJSON, _ := json.Marshal(pm.DMList)
	formatsJSON, _ := json.Marshal(pm.Formats)
	variantsJSON, _ := json.Marshal(pm.Variants)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publication_modules (pm_code, title, dm_list, formats,
			variants, status, security_level, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(pm_code) DO UPDATE SET
			title=excluded.title, dm_list=excluded.dm_list,
			formats=excluded.formats, variants=excluded.variants,
			status=excluded.status, security_level=excluded.security_level,
			updated_at=excluded.updated_at`,
		pm.PMCode, pm.Title, string(dmListJSON), string(formatsJSON),
		string(variantsJSON), string(pm.Status), string(pm.SecurityLevel),
		pm.CreatedAt, pm.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting publication %s: %w", pm.PMCode, err)
	}
	return nil
}

// Publication returns the publication module identified by code.
func (s *Store) Publication(ctx context.Context, code string) (types.PublicationModule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+pmColumns+` FROM publication_modules WHERE pm_code = ?`, code)

	pm, err := scanPublication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.PublicationModule{}, fmt.Errorf("publication %s: %w", code, ErrNotFound)
		}
		return types.PublicationModule{}, fmt.Errorf("loading publication %s: %w", code, err)
	}
	return pm, nil
}

// Publications lists all publication modules ordered by code.
func (s *Store) Publications(ctx context.Context) ([]types.PublicationModule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+pmColumns+` FROM publication_modules ORDER BY pm_code`)
	if err != nil {
		return nil, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	var pms []types.PublicationModule
	for rows.Next() {
		pm, err := scanPublication(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning publication row: %w", err)
		}
		pms = append(pms, pm)
	}
	return pms, rows.Err()
}

// UpdatePublicationStatus moves a publication between draft and published.
func (s *Store) UpdatePublicationStatus(ctx context.Context, code string, status types.PublicationStatus) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE publication_modules SET status=?, updated_at=? WHERE pm_code=?`,
		string(status), time.Now().UTC(), code)
	if err != nil {
		return fmt.Errorf("updating publication %s: %w", code, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("publication %s: %w", code, ErrNotFound)
	}
	return nil
}

func scanPublication(row rowScanner) (types.PublicationModule, error) {
	var (
		pm           types.PublicationModule
		dmListJSON   string
		formatsJSON  string
		variantsJSON string
		status       string
		security     string
	)

	err := row.Scan(
		&pm.PMCode, &pm.Title, &dmListJSON, &formatsJSON, &variantsJSON,
		&status, &security, &pm.CreatedAt, &pm.UpdatedAt,
	)
	if err != nil {
		return types.PublicationModule{}, err
	}

	pm.Status = types.PublicationStatus(status)
	pm.SecurityLevel = types.SecurityLevel(security)
	json.Unmarshal([]byte(dmListJSON), &pm.DMList)
	json.Unmarshal([]byte(formatsJSON), &pm.Formats)
	json.Unmarshal([]byte(variantsJSON), &pm.Variants)

	return pm, nil
}
