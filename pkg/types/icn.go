// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Hotspot is a rectangular callout region on an illustration.
type Hotspot struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	// Description labels what the region shows.
	Description string `json:"description" yaml:"description"`
}

// ICN is an illustration control record. Modules reference illustrations
// by LCN (or ICNID) in their content; edits to caption or hotspots must
// advance the UpdatedAt marker of every referencing module so downstream
// consumers detect illustration churn without re-scanning images.
type ICN struct {
	// ICNID is the generated identifier, "ICN-" plus eight uppercase hex
	// characters.
	ICNID string `json:"icn_id" yaml:"icn_id"`

	// LCN is the human-assignable reference code used in module content.
	LCN string `json:"lcn" yaml:"lcn"`

	// Caption is the illustration caption, typically AI-generated.
	Caption string `json:"caption" yaml:"caption"`

	// Objects lists the items detected in the illustration.
	Objects []string `json:"objects" yaml:"objects"`

	// Hotspots are the annotated callout regions.
	Hotspots []Hotspot `json:"hotspots" yaml:"hotspots"`

	// Width and Height are the source image dimensions in pixels.
	Width  int `json:"width" yaml:"width"`
	Height int `json:"height" yaml:"height"`

	SecurityLevel SecurityLevel `json:"security_level" yaml:"security_level"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
