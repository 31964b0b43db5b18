// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// ExportModules writes the module corpus to w as YAML or JSON for
// downstream tooling. An empty format means YAML.
func (s *Store) ExportModules(ctx context.Context, w io.Writer, format string) error {
	mods, err := s.Modules(ctx, ListOptions{})
	if err != nil {
		return fmt.Errorf("querying for export: %w", err)
	}

	switch format {
	case "yaml", "":
		data, err := yaml.Marshal(mods)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	case "json":
		data, err := json.MarshalIndent(mods, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
		_, err = w.Write(data)
		return err
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
