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

const icnColumns = `icn_id, lcn, caption, objects, hotspots, width, height,
	security_level, created_at, updated_at`

// InsertICN registers an illustration.
func (s *Store) InsertICN(ctx context.Context, ic types.ICN) error {
	now := time.Now().UTC()
	if ic.CreatedAt.IsZero() {
		ic.CreatedAt = now
	}
	if ic.UpdatedAt.IsZero() {
		ic.UpdatedAt = now
	}

	objectsJSON, _ := json.Marshal(ic.Objects)
	hotspotsJSON, _ := json.Marshal(ic.Hotspots)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO icns (icn_id, lcn, caption, objects, hotspots, width,
			height, security_level, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ic.ICNID, ic.LCN, ic.Caption, string(objectsJSON), string(hotspotsJSON),
		ic.Width, ic.Height, string(ic.SecurityLevel), ic.CreatedAt, ic.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting illustration %s: %w", ic.ICNID, err)
	}
	return nil
}

// ICN returns the illustration matching id by ICN id or LCN.
func (s *Store) ICN(ctx context.Context, id string) (types.ICN, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+icnColumns+` FROM icns WHERE icn_id = ? OR lcn = ?`, id, id)

	ic, err := scanICN(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.ICN{}, fmt.Errorf("illustration %s: %w", id, ErrNotFound)
		}
		return types.ICN{}, fmt.Errorf("loading illustration %s: %w", id, err)
	}
	return ic, nil
}

// ICNs lists all illustrations ordered by id.
func (s *Store) ICNs(ctx context.Context) ([]types.ICN, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+icnColumns+` FROM icns ORDER BY icn_id`)
	if err != nil {
		return nil, fmt.Errorf("listing illustrations: %w", err)
	}
	defer rows.Close()

	var icns []types.ICN
	for rows.Next() {
		ic, err := scanICN(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning illustration row: %w", err)
		}
		icns = append(icns, ic)
	}
	return icns, rows.Err()
}

// UpdateICNAnnotation replaces the illustration's caption, detected objects,
// and hotspots. Callers run the reference touch pass afterwards.
func (s *Store) UpdateICNAnnotation(ctx context.Context, id, caption string, objects []string, hotspots []types.Hotspot) error {
	objectsJSON, _ := json.Marshal(objects)
	hotspotsJSON, _ := json.Marshal(hotspots)

	res, err := s.db.ExecContext(ctx,
		`UPDATE icns SET caption=?, objects=?, hotspots=?, updated_at=?
		 WHERE icn_id = ? OR lcn = ?`,
		caption, string(objectsJSON), string(hotspotsJSON), time.Now().UTC(), id, id)
	if err != nil {
		return fmt.Errorf("updating illustration %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("illustration %s: %w", id, ErrNotFound)
	}
	return nil
}

func scanICN(row rowScanner) (types.ICN, error) {
	var (
		ic           types.ICN
		objectsJSON  string
		hotspotsJSON string
		security     string
	)

	err := row.Scan(
		&ic.ICNID, &ic.LCN, &ic.Caption, &objectsJSON, &hotspotsJSON,
		&ic.Width, &ic.Height, &security, &ic.CreatedAt, &ic.UpdatedAt,
	)
	if err != nil {
		return types.ICN{}, err
	}

	ic.SecurityLevel = types.SecurityLevel(security)
	json.Unmarshal([]byte(objectsJSON), &ic.Objects)
	json.Unmarshal([]byte(hotspotsJSON), &ic.Hotspots)

	return ic, nil
}
