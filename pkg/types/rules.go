// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// RuleField names the module field a field rule inspects.
type RuleField string

const (
	FieldTitle       RuleField = "title"
	FieldDMC         RuleField = "dmc"
	FieldContent     RuleField = "content"
	FieldReadability RuleField = "readability"
	FieldSecurity    RuleField = "security"
)

// ConstraintKind enumerates the checks a field rule can express.
type ConstraintKind string

const (
	ConstraintRequired   ConstraintKind = "required"
	ConstraintMinLength  ConstraintKind = "min-length"
	ConstraintMaxLength  ConstraintKind = "max-length"
	ConstraintPattern    ConstraintKind = "pattern"
	ConstraintAllowedSet ConstraintKind = "allowed-set"
	ConstraintThreshold  ConstraintKind = "numeric-threshold"
)

// FieldRule is a declarative check against a single module field. Rules are
// configuration data, not code: the evaluator interprets them at runtime and
// rule sets are swappable without a rebuild.
type FieldRule struct {
	// ID identifies the rule within its set.
	ID string `json:"id" yaml:"id"`

	// Field selects the module field: title, dmc, content, readability,
	// or security.
	Field RuleField `json:"field" yaml:"field"`

	// Constraint selects the check applied to the field value.
	Constraint ConstraintKind `json:"constraint" yaml:"constraint"`

	// Value is the length bound for min-length and max-length constraints.
	Value int `json:"value,omitempty" yaml:"value,omitempty"`

	// Pattern is the regular expression for pattern constraints. The whole
	// field value must match.
	Pattern string `json:"pattern,omitempty" yaml:"pattern,omitempty"`

	// Allowed is the permitted value set for allowed-set constraints.
	Allowed []string `json:"allowed,omitempty" yaml:"allowed,omitempty"`

	// FailBelow and WarnBelow are the numeric-threshold floors: a score
	// under FailBelow fails the module, a score under WarnBelow only
	// downgrades a passing verdict to warn.
	FailBelow float64 `json:"fail_below,omitempty" yaml:"fail_below,omitempty"`
	WarnBelow float64 `json:"warn_below,omitempty" yaml:"warn_below,omitempty"`

	// Message is the violation text. When empty the evaluator derives a
	// default from the field and constraint.
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

// PathRule is a declarative query over the module's rendered markup. The
// expression selects VIOLATING nodes: any non-empty selection is a
// violation reported as "{id}: {message}".
type PathRule struct {
	ID      string `json:"id" yaml:"id"`
	XPath   string `json:"xpath" yaml:"xpath"`
	Message string `json:"message" yaml:"message"`
}

// RefPolicy controls how reference-integrity findings affect the verdict.
type RefPolicy struct {
	// AllowBrokenRefs keeps unresolved references from downgrading the
	// verdict to fail. They are still reported as errors.
	AllowBrokenRefs bool `json:"allow_broken_refs" yaml:"allow_broken_refs"`
}

// Ruleset is a named, persisted collection of rules. The active set is
// selected by identifier in Settings and is hot-swappable at runtime.
type Ruleset struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`

	// AllowedTypes restricts module types during code generation; types
	// outside the list fall back to GEN. Empty means all types allowed.
	AllowedTypes []string `json:"allowed_types,omitempty" yaml:"allowed_types,omitempty"`

	FieldRules []FieldRule `json:"field_rules" yaml:"field_rules"`
	PathRules  []PathRule  `json:"path_rules" yaml:"path_rules"`

	RefPolicy RefPolicy `json:"ref_policy" yaml:"ref_policy"`
}

// AllowsType reports whether t may keep its own info code during code
// generation under this rule set.
func (rs Ruleset) AllowsType(t DMType) bool {
	if len(rs.AllowedTypes) == 0 {
		return true
	}
	for _, a := range rs.AllowedTypes {
		if DMType(a) == t {
			return true
		}
	}
	return false
}
