// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package brex

import (
	"strings"
	"testing"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

func validModule() types.DataModule {
	return types.DataModule{
		DMC:              "DMC-TPUB-A-00-00-00-00A-030A-A-00",
		Title:            "Hydraulic pump removal",
		Type:             types.TypeProcedure,
		InfoVariant:      types.VariantVerbatim,
		Content:          "Shut off hydraulic power before starting work on the pump assembly.",
		SecurityLevel:    types.SecurityUnclassified,
		ReadabilityScore: 0.9,
	}
}

func hasError(v types.Verdict, want string) bool {
	for _, e := range v.Errors {
		if e == want {
			return true
		}
	}
	return false
}

func TestEvaluateValidModulePasses(t *testing.T) {
	v := NewEvaluator(nil).Evaluate(validModule(), Default())

	if v.Status != types.StatusPass {
		t.Errorf("Status = %q, want pass (errors: %v)", v.Status, v.Errors)
	}
	if !v.RuleValid || !v.SchemaValid {
		t.Errorf("RuleValid = %v, SchemaValid = %v, want both true", v.RuleValid, v.SchemaValid)
	}
	if len(v.Errors) != 0 {
		t.Errorf("Errors = %v, want none", v.Errors)
	}
}

func TestEvaluateEmptyRulesetPassesAnyModule(t *testing.T) {
	m := types.DataModule{Content: "x"}

	v := NewEvaluator(nil).Evaluate(m, types.Ruleset{ID: "empty"})

	if v.Status != types.StatusPass || !v.RuleValid || !v.SchemaValid {
		t.Errorf("empty ruleset verdict = %+v, want clean pass", v)
	}
	if len(v.Errors) != 0 {
		t.Errorf("Errors = %v, want none", v.Errors)
	}
}

func TestEvaluateMissingTitleAndShortContent(t *testing.T) {
	m := validModule()
	m.Title = ""
	m.Content = "Short text"

	v := NewEvaluator(nil).Evaluate(m, Default())

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if v.RuleValid {
		t.Error("RuleValid = true, want false")
	}
	for _, want := range []string{"Title is required", "Content below minimum length"} {
		if !hasError(v, want) {
			t.Errorf("Errors = %v, missing %q", v.Errors, want)
		}
	}
}

func TestEvaluateLengthBoundaries(t *testing.T) {
	eval := NewEvaluator(nil)

	tests := []struct {
		name    string
		mutate  func(*types.DataModule)
		status  types.ValidationStatus
		message string
	}{
		{"content at minimum", func(m *types.DataModule) { m.Content = strings.Repeat("a", 20) }, types.StatusPass, ""},
		{"content under minimum", func(m *types.DataModule) { m.Content = strings.Repeat("a", 19) }, types.StatusFail, "Content below minimum length"},
		{"title at maximum", func(m *types.DataModule) { m.Title = strings.Repeat("t", 200) }, types.StatusPass, ""},
		{"title over maximum", func(m *types.DataModule) { m.Title = strings.Repeat("t", 201) }, types.StatusFail, "Title exceeds maximum length"},
		{"content over maximum", func(m *types.DataModule) { m.Content = strings.Repeat("c", 100001) }, types.StatusFail, "Content exceeds maximum length"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModule()
			tt.mutate(&m)
			v := eval.Evaluate(m, Default())
			if v.Status != tt.status {
				t.Errorf("Status = %q, want %q (errors: %v)", v.Status, tt.status, v.Errors)
			}
			if tt.message != "" && !hasError(v, tt.message) {
				t.Errorf("Errors = %v, missing %q", v.Errors, tt.message)
			}
		})
	}
}

func TestEvaluateReadabilityFloors(t *testing.T) {
	eval := NewEvaluator(nil)

	tests := []struct {
		name   string
		score  float64
		status types.ValidationStatus
		valid  bool
	}{
		{"unscored module sits under the fail floor", 0, types.StatusFail, false},
		{"score above warn floor", 0.9, types.StatusPass, true},
		{"score between floors warns", 0.7, types.StatusWarn, true},
		{"score under fail floor fails", 0.4, types.StatusFail, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validModule()
			m.ReadabilityScore = tt.score
			v := eval.Evaluate(m, Default())
			if v.Status != tt.status {
				t.Errorf("Status = %q, want %q", v.Status, tt.status)
			}
			if v.RuleValid != tt.valid {
				t.Errorf("RuleValid = %v, want %v", v.RuleValid, tt.valid)
			}
			// Readability floors change status without adding messages.
			if len(v.Errors) != 0 {
				t.Errorf("Errors = %v, want none", v.Errors)
			}
		})
	}
}

func TestEvaluateSecurityOutsideAllowedSet(t *testing.T) {
	m := validModule()
	m.SecurityLevel = types.SecurityTopSecret

	v := NewEvaluator(nil).Evaluate(m, Default())

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if !hasError(v, "Security classification not allowed") {
		t.Errorf("Errors = %v, missing security violation", v.Errors)
	}
}

func TestEvaluateDMCPattern(t *testing.T) {
	m := validModule()
	m.DMC = "XYZ-123"

	v := NewEvaluator(nil).Evaluate(m, Default())

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if !hasError(v, "DMC does not match pattern") {
		t.Errorf("Errors = %v, missing pattern violation", v.Errors)
	}
	if !hasError(v, "BREX-DMC-001: DMC must start with DMC-") {
		t.Errorf("Errors = %v, missing path rule violation", v.Errors)
	}
}

func TestEvaluatePathRuleViolationFormat(t *testing.T) {
	rs := types.Ruleset{
		ID: "custom",
		PathRules: []types.PathRule{
			{ID: "CHK-001", XPath: "//para[contains(text(),'lorem')]", Message: "placeholder text forbidden"},
		},
	}
	m := validModule()
	m.Content = "This paragraph still contains lorem ipsum filler."

	v := NewEvaluator(nil).Evaluate(m, rs)

	if !hasError(v, "CHK-001: placeholder text forbidden") {
		t.Errorf("Errors = %v, want prefixed path violation", v.Errors)
	}
	if v.RuleValid {
		t.Error("RuleValid = true, want false")
	}
}

func TestEvaluateSkipsMalformedRules(t *testing.T) {
	rs := types.Ruleset{
		ID: "broken",
		FieldRules: []types.FieldRule{
			{ID: "BAD-PAT", Field: types.FieldTitle, Constraint: types.ConstraintPattern, Pattern: "([unclosed"},
		},
		PathRules: []types.PathRule{
			{ID: "BAD-XP", XPath: "///[[[", Message: "never fires"},
			{ID: "OK-XP", XPath: "//title[normalize-space(.)='']", Message: "Title must not be empty"},
		},
	}

	v := NewEvaluator(nil).Evaluate(validModule(), rs)

	if v.Status != types.StatusPass {
		t.Errorf("Status = %q, want pass (malformed rules skipped), errors: %v", v.Status, v.Errors)
	}
	if len(v.Errors) != 0 {
		t.Errorf("Errors = %v, want none", v.Errors)
	}
}

func TestEvaluateUnparseableCachedMarkup(t *testing.T) {
	m := validModule()
	m.XMLContent = "<dmodule><identAndStatusSection>"

	v := NewEvaluator(nil).Evaluate(m, Default())

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if !hasError(v, "Invalid XML provided") {
		t.Errorf("Errors = %v, missing invalid markup violation", v.Errors)
	}
	if v.RuleValid || v.SchemaValid {
		t.Errorf("RuleValid = %v, SchemaValid = %v, want both false", v.RuleValid, v.SchemaValid)
	}
}

func TestEvaluateSchemaCheckWithoutPathRules(t *testing.T) {
	rs := types.Ruleset{
		ID: "fields-only",
		FieldRules: []types.FieldRule{
			{ID: "T-REQ", Field: types.FieldTitle, Constraint: types.ConstraintRequired},
		},
	}
	m := validModule()
	m.Content = "   "

	v := NewEvaluator(nil).Evaluate(m, rs)

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if v.SchemaValid {
		t.Error("SchemaValid = true, want false")
	}
	if !hasError(v, "Schema validation failed") {
		t.Errorf("Errors = %v, missing schema violation", v.Errors)
	}
}

func TestEvaluateSchemaFailure(t *testing.T) {
	m := validModule()
	m.Content = "   "

	v := NewEvaluator(nil).Evaluate(m, Default())

	if v.Status != types.StatusFail {
		t.Errorf("Status = %q, want fail", v.Status)
	}
	if v.SchemaValid {
		t.Error("SchemaValid = true, want false")
	}
	if !hasError(v, "Schema validation failed") {
		t.Errorf("Errors = %v, missing schema violation", v.Errors)
	}
}

func TestEvaluateMessageOverride(t *testing.T) {
	rs := types.Ruleset{
		ID: "custom",
		FieldRules: []types.FieldRule{
			{ID: "T-REQ", Field: types.FieldTitle, Constraint: types.ConstraintRequired, Message: "every module needs a title"},
		},
	}
	m := validModule()
	m.Title = ""

	v := NewEvaluator(nil).Evaluate(m, rs)

	if !hasError(v, "every module needs a title") {
		t.Errorf("Errors = %v, want overridden message", v.Errors)
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	m := validModule()
	m.Title = ""
	m.Content = "Short text"
	eval := NewEvaluator(nil)

	first := eval.Evaluate(m, Default())
	second := eval.Evaluate(m, Default())

	if first.Status != second.Status || len(first.Errors) != len(second.Errors) {
		t.Fatalf("verdicts differ: %+v vs %+v", first, second)
	}
	for i := range first.Errors {
		if first.Errors[i] != second.Errors[i] {
			t.Errorf("error %d differs: %q vs %q", i, first.Errors[i], second.Errors[i])
		}
	}
}
