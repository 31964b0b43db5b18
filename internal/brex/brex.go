// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package brex evaluates business rule sets against data modules. Rules are
// configuration data loaded from YAML or the store, never code: the
// evaluator interprets field rules over module fields and path-query rules
// over the module's rendered markup. See docs/ARCHITECTURE § Rule Evaluation.
package brex

import (
	"io"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/antchfx/xpath"

	"github.com/pdiddy/techpub-engine/internal/render"
	"github.com/pdiddy/techpub-engine/pkg/types"
)

// Evaluator applies rule sets to modules. It holds no mutable state and is
// safe for concurrent use.
type Evaluator struct {
	log *slog.Logger
}

// NewEvaluator returns an evaluator logging diagnostics to log. A nil log
// discards them.
func NewEvaluator(log *slog.Logger) *Evaluator {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Evaluator{log: log}
}

// Evaluate checks m against rs and returns the verdict. Field rules run
// first, then path-query rules over the rendered markup. Evaluate has no
// side effects; callers persist the verdict. An empty rule set passes any
// module.
func (e *Evaluator) Evaluate(m types.DataModule, rs types.Ruleset) types.Verdict {
	v := types.Verdict{
		Status:      types.StatusPass,
		RuleValid:   true,
		SchemaValid: true,
	}

	for _, r := range rs.FieldRules {
		e.applyFieldRule(&v, m, r)
	}

	if len(rs.FieldRules) > 0 || len(rs.PathRules) > 0 {
		e.applyStructural(&v, m, rs.PathRules)
	}

	return v
}

func (e *Evaluator) applyFieldRule(v *types.Verdict, m types.DataModule, r types.FieldRule) {
	if r.Constraint == types.ConstraintThreshold {
		e.applyThreshold(v, m, r)
		return
	}

	value, ok := fieldValue(m, r.Field)
	if !ok {
		e.log.Warn("skipping rule for unknown field", "rule", r.ID, "field", string(r.Field))
		return
	}

	switch r.Constraint {
	case types.ConstraintRequired:
		if value == "" {
			violateRule(v, ruleMessage(r))
		}
	case types.ConstraintMinLength:
		// Length and value checks apply to present values only; emptiness
		// is the required constraint's concern.
		if value != "" && len(value) < r.Value {
			violateRule(v, ruleMessage(r))
		}
	case types.ConstraintMaxLength:
		if value != "" && len(value) > r.Value {
			violateRule(v, ruleMessage(r))
		}
	case types.ConstraintPattern:
		if value == "" {
			return
		}
		re, err := regexp.Compile("^(?:" + r.Pattern + ")$")
		if err != nil {
			e.log.Warn("skipping rule with malformed pattern", "rule", r.ID, "error", err)
			return
		}
		if !re.MatchString(value) {
			violateRule(v, ruleMessage(r))
		}
	case types.ConstraintAllowedSet:
		if value == "" || len(r.Allowed) == 0 {
			return
		}
		if !slices.Contains(r.Allowed, value) {
			violateRule(v, ruleMessage(r))
		}
	default:
		e.log.Warn("skipping rule with unknown constraint", "rule", r.ID, "constraint", string(r.Constraint))
	}
}

// applyThreshold handles readability floors. An unscored module carries a
// zero score, which sits under any configured floor like any other low
// score. Scores under the fail floor fail the module without a message,
// matching the status semantics readers of the corpus expect.
func (e *Evaluator) applyThreshold(v *types.Verdict, m types.DataModule, r types.FieldRule) {
	if r.Field != types.FieldReadability {
		e.log.Warn("skipping threshold rule on non-numeric field", "rule", r.ID, "field", string(r.Field))
		return
	}

	score := m.ReadabilityScore
	if r.FailBelow > 0 && score < r.FailBelow {
		v.Status = types.StatusFail
		v.RuleValid = false
		return
	}
	if r.WarnBelow > 0 && score < r.WarnBelow && v.Status == types.StatusPass {
		v.Status = types.StatusWarn
	}
}

// applyStructural renders and parses the module markup, schema-checks it,
// then evaluates each path rule. Expressions select VIOLATING nodes. Only
// an empty rule set skips the pass entirely.
func (e *Evaluator) applyStructural(v *types.Verdict, m types.DataModule, rules []types.PathRule) {
	markup := m.XMLContent
	if markup == "" {
		out, err := render.XML(m)
		if err != nil {
			markupInvalid(v)
			return
		}
		markup = out
	}

	doc, err := xmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		markupInvalid(v)
		return
	}

	if !render.SchemaValid(markup) {
		v.Errors = append(v.Errors, "Schema validation failed")
		v.Status = types.StatusFail
		v.SchemaValid = false
	}

	for _, r := range rules {
		expr, err := xpath.Compile(r.XPath)
		if err != nil {
			e.log.Warn("skipping malformed path rule", "rule", r.ID, "error", err)
			continue
		}
		if nodes := xmlquery.QuerySelectorAll(doc, expr); len(nodes) > 0 {
			violateRule(v, r.ID+": "+r.Message)
		}
	}
}

// violateRule records a hard rule violation.
func violateRule(v *types.Verdict, msg string) {
	v.Errors = append(v.Errors, msg)
	v.Status = types.StatusFail
	v.RuleValid = false
}

// markupInvalid records markup that could not be parsed at all. Neither the
// schema check nor path rules could run, so both flags drop.
func markupInvalid(v *types.Verdict) {
	v.Errors = append(v.Errors, "Invalid XML provided")
	v.Status = types.StatusFail
	v.RuleValid = false
	v.SchemaValid = false
}

func fieldValue(m types.DataModule, f types.RuleField) (string, bool) {
	switch f {
	case types.FieldTitle:
		return m.Title, true
	case types.FieldDMC:
		return m.DMC, true
	case types.FieldContent:
		return m.Content, true
	case types.FieldSecurity:
		return string(m.SecurityLevel), true
	}
	return "", false
}

// ruleMessage returns the rule's message, deriving one from the field and
// constraint when the rule does not override it.
func ruleMessage(r types.FieldRule) string {
	if r.Message != "" {
		return r.Message
	}

	label := fieldLabel(r.Field)
	switch r.Constraint {
	case types.ConstraintRequired:
		return label + " is required"
	case types.ConstraintMinLength:
		return label + " below minimum length"
	case types.ConstraintMaxLength:
		return label + " exceeds maximum length"
	case types.ConstraintPattern:
		return label + " does not match pattern"
	case types.ConstraintAllowedSet:
		return label + " not allowed"
	}
	return label + " violates rule " + r.ID
}

func fieldLabel(f types.RuleField) string {
	switch f {
	case types.FieldTitle:
		return "Title"
	case types.FieldDMC:
		return "DMC"
	case types.FieldContent:
		return "Content"
	case types.FieldReadability:
		return "Readability"
	case types.FieldSecurity:
		return "Security classification"
	}
	return string(f)
}
