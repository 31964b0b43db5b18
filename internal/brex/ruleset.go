// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brex

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// Default returns the built-in rule set applied when no other set is
// active: identification fields present and well formed, content within
// length bounds, readability floors at 0.5/0.85, security classification
// limited to SECRET and below, plus the two baseline path rules.
func Default() types.Ruleset {
	return types.Ruleset{
		ID:   "default",
		Name: "Default business rules",
		AllowedTypes: []string{
			"PROC", "DESC", "IPD", "CIR", "SNS", "WIR", "GEN",
		},
		FieldRules: []types.FieldRule{
			{ID: "FLD-TITLE-REQ", Field: types.FieldTitle, Constraint: types.ConstraintRequired},
			{ID: "FLD-TITLE-MAX", Field: types.FieldTitle, Constraint: types.ConstraintMaxLength, Value: 200},
			{ID: "FLD-DMC-REQ", Field: types.FieldDMC, Constraint: types.ConstraintRequired},
			{ID: "FLD-DMC-PAT", Field: types.FieldDMC, Constraint: types.ConstraintPattern, Pattern: `DMC-[A-Z0-9]{1,4}(-[A-Z0-9]+)+`},
			{ID: "FLD-CONTENT-REQ", Field: types.FieldContent, Constraint: types.ConstraintRequired},
			{ID: "FLD-CONTENT-MIN", Field: types.FieldContent, Constraint: types.ConstraintMinLength, Value: 20},
			{ID: "FLD-CONTENT-MAX", Field: types.FieldContent, Constraint: types.ConstraintMaxLength, Value: 100000},
			{ID: "FLD-READABILITY", Field: types.FieldReadability, Constraint: types.ConstraintThreshold, FailBelow: 0.5, WarnBelow: 0.85},
			{ID: "FLD-SECURITY", Field: types.FieldSecurity, Constraint: types.ConstraintAllowedSet, Allowed: []string{"UNCLASSIFIED", "CONFIDENTIAL", "SECRET"}},
		},
		PathRules: []types.PathRule{
			{ID: "BREX-DMC-001", XPath: "//dmc[not(starts-with(text(),'DMC-'))]", Message: "DMC must start with DMC-"},
			{ID: "BREX-TITLE-001", XPath: "//title[normalize-space(.)='']", Message: "Title must not be empty"},
		},
	}
}

// Load reads a rule set from a YAML file.
func Load(path string) (types.Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return types.Ruleset{}, fmt.Errorf("reading ruleset %s: %w", path, err)
	}
	rs, err := Parse(data)
	if err != nil {
		return types.Ruleset{}, fmt.Errorf("loading ruleset %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and structurally validates a YAML rule set. Structural
// problems (missing ids, unknown fields or constraints) are configuration
// errors and fail the load; a malformed pattern or path expression inside a
// well-formed rule is an evaluation-time concern and is not checked here.
func Parse(data []byte) (types.Ruleset, error) {
	var rs types.Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return types.Ruleset{}, fmt.Errorf("parsing ruleset: %w", err)
	}
	if err := validateRuleset(rs); err != nil {
		return types.Ruleset{}, err
	}
	return rs, nil
}

func validateRuleset(rs types.Ruleset) error {
	if rs.ID == "" {
		return fmt.Errorf("ruleset id is required")
	}

	for i, r := range rs.FieldRules {
		if r.ID == "" {
			return fmt.Errorf("ruleset %s: field rule %d: id is required", rs.ID, i)
		}
		if _, ok := fieldValue(types.DataModule{}, r.Field); !ok && r.Field != types.FieldReadability {
			return fmt.Errorf("ruleset %s: field rule %s: unknown field %q", rs.ID, r.ID, r.Field)
		}
		switch r.Constraint {
		case types.ConstraintRequired, types.ConstraintMinLength,
			types.ConstraintMaxLength, types.ConstraintAllowedSet:
		case types.ConstraintPattern:
			if r.Pattern == "" {
				return fmt.Errorf("ruleset %s: field rule %s: pattern constraint without pattern", rs.ID, r.ID)
			}
		case types.ConstraintThreshold:
			if r.FailBelow == 0 && r.WarnBelow == 0 {
				return fmt.Errorf("ruleset %s: field rule %s: threshold constraint without floors", rs.ID, r.ID)
			}
		default:
			return fmt.Errorf("ruleset %s: field rule %s: unknown constraint %q", rs.ID, r.ID, r.Constraint)
		}
	}

	for i, r := range rs.PathRules {
		if r.ID == "" {
			return fmt.Errorf("ruleset %s: path rule %d: id is required", rs.ID, i)
		}
		if r.XPath == "" {
			return fmt.Errorf("ruleset %s: path rule %s: xpath is required", rs.ID, r.ID)
		}
	}

	return nil
}
