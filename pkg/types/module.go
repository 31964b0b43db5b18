// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// DMType categorizes a data module by its information kind.
// See docs/ARCHITECTURE § Data Model.
type DMType string

const (
	TypeProcedure     DMType = "PROC"
	TypeDescription   DMType = "DESC"
	TypePartsData     DMType = "IPD"
	TypeCircuit       DMType = "CIR"
	TypeServiceNotice DMType = "SNS"
	TypeWiring        DMType = "WIR"
	TypeGeneral       DMType = "GEN"
)

// KnownDMType reports whether t is one of the recognized module types.
func KnownDMType(t DMType) bool {
	switch t {
	case TypeProcedure, TypeDescription, TypePartsData, TypeCircuit,
		TypeServiceNotice, TypeWiring, TypeGeneral:
		return true
	}
	return false
}

// Info variant codes carried in the trailing fragment of a DMC. Verbatim
// modules preserve the source text; simplified modules carry the
// plain-language rewrite.
const (
	VariantVerbatim   = "00"
	VariantSimplified = "01"
)

// VariantCode normalizes a variant name or code to its DMC fragment.
// Unrecognized values are returned unchanged so callers can report them.
func VariantCode(v string) string {
	switch v {
	case "verbatim", VariantVerbatim:
		return VariantVerbatim
	case "simplified", "ste", VariantSimplified:
		return VariantSimplified
	}
	return v
}

// ValidationStatus is the tri-state verdict attached to a data module.
type ValidationStatus string

const (
	StatusPass ValidationStatus = "pass"
	StatusWarn ValidationStatus = "warn"
	StatusFail ValidationStatus = "fail"
)

// SecurityLevel is the classification of a module or illustration.
type SecurityLevel string

const (
	SecurityUnclassified SecurityLevel = "UNCLASSIFIED"
	SecurityConfidential SecurityLevel = "CONFIDENTIAL"
	SecuritySecret       SecurityLevel = "SECRET"
	SecurityTopSecret    SecurityLevel = "TOP_SECRET"
)

// DataModule is the central entity: a unit of technical content identified
// by a deterministically generated DMC, carrying validation state and
// forward references into the rest of the corpus.
type DataModule struct {
	// DMC is the structured module identifier (see internal/dmc).
	DMC string `json:"dmc" yaml:"dmc"`

	// Title is the human-readable module title.
	Title string `json:"title" yaml:"title"`

	// Type categorizes the module: PROC, DESC, IPD, CIR, SNS, WIR, or GEN.
	Type DMType `json:"type" yaml:"type"`

	// InfoVariant is "00" for verbatim content, "01" for the simplified
	// rewrite. It matches the trailing fragment of the DMC.
	InfoVariant string `json:"info_variant" yaml:"info_variant"`

	// Content is the module body as plain structured text, one paragraph
	// per line.
	Content string `json:"content" yaml:"content"`

	// XMLContent caches the rendered structured markup. Derived; refreshed
	// whenever the module is rendered for export.
	XMLContent string `json:"xml_content,omitempty" yaml:"xml_content,omitempty"`

	// HTMLContent caches the rendered hypertext form. Derived.
	HTMLContent string `json:"html_content,omitempty" yaml:"html_content,omitempty"`

	// SecurityLevel is the module classification.
	SecurityLevel SecurityLevel `json:"security_level" yaml:"security_level"`

	// Status is the latest validation verdict: pass, warn, or fail.
	Status ValidationStatus `json:"status" yaml:"status"`

	// Errors lists the validation messages from the latest verdict, in
	// the order they were produced.
	Errors []string `json:"errors" yaml:"errors"`

	// RuleValid is false when any hard field rule or path-query rule was
	// violated in the latest validation.
	RuleValid bool `json:"rule_valid" yaml:"rule_valid"`

	// SchemaValid is false when the rendered markup failed the schema check.
	SchemaValid bool `json:"schema_valid" yaml:"schema_valid"`

	// ReadabilityScore is the simplified-language score in [0,1]. Zero for
	// modules that were never rewritten.
	ReadabilityScore float64 `json:"readability_score" yaml:"readability_score"`

	// ModuleRefs is the set of other module DMCs referenced from Content,
	// stored sorted.
	ModuleRefs []string `json:"module_refs" yaml:"module_refs"`

	// IllustrationRefs is the set of illustration codes referenced from
	// Content, stored sorted.
	IllustrationRefs []string `json:"illustration_refs" yaml:"illustration_refs"`

	// SourceDocumentID links back to the ingested source document.
	SourceDocumentID string `json:"source_document_id" yaml:"source_document_id"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// Verdict is the result tuple of a validation run. Callers persist it on
// the module; the evaluator itself has no side effects.
type Verdict struct {
	Status      ValidationStatus `json:"status" yaml:"status"`
	Errors      []string         `json:"errors" yaml:"errors"`
	RuleValid   bool             `json:"rule_valid" yaml:"rule_valid"`
	SchemaValid bool             `json:"schema_valid" yaml:"schema_valid"`
}

// AuditEntry is one append-only record in an entity's audit trail. Entries
// are never mutated or reordered.
type AuditEntry struct {
	// Action names the operation: ingest, validate, publish, icn-update,
	// or delete.
	Action string `json:"action" yaml:"action"`

	// Actor identifies who or what performed the action.
	Actor string `json:"actor" yaml:"actor"`

	// Timestamp is when the action occurred, UTC.
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`

	// Detail carries free-text context for the entry.
	Detail string `json:"detail,omitempty" yaml:"detail,omitempty"`
}
