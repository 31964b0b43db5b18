// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OperationalDomain selects the structural-code defaults used during code
// generation.
type OperationalDomain string

const (
	DomainAir   OperationalDomain = "air"
	DomainWater OperationalDomain = "water"
	DomainLand  OperationalDomain = "land"
	DomainOther OperationalDomain = "other"
)

// StructuralCodes are the domain-dependent fragments of a DMC.
type StructuralCodes struct {
	SystemDiff       string `json:"system_diff" yaml:"system_diff"`
	SystemCode       string `json:"system_code" yaml:"system_code"`
	SubSystemCode    string `json:"sub_system_code" yaml:"sub_system_code"`
	SubSubSystemCode string `json:"sub_sub_system_code" yaml:"sub_sub_system_code"`
}

// FragmentDefaults are the per-deployment static fragments of a DMC.
type FragmentDefaults struct {
	AssyCode           string `json:"assy_code" yaml:"assy_code"`
	DisassyCode        string `json:"disassy_code" yaml:"disassy_code"`
	DisassyCodeVariant string `json:"disassy_code_variant" yaml:"disassy_code_variant"`
	InfoCodeVariant    string `json:"info_code_variant" yaml:"info_code_variant"`
	ItemLocationCode   string `json:"item_location_code" yaml:"item_location_code"`
	LearnCode          string `json:"learn_code" yaml:"learn_code"`
	LearnEventCode     string `json:"learn_event_code" yaml:"learn_event_code"`
}

// DomainConfig holds the deployment's code-generation tables: the model
// identifier, the operational-domain structural codes, the type→info-code
// table, and the static fragment defaults. Persisted as a document and
// hot-swappable at runtime.
type DomainConfig struct {
	ID string `json:"id" yaml:"id"`

	// ModelIdent is the model identification fragment. Truncated to four
	// characters and uppercased during generation.
	ModelIdent string `json:"model_ident" yaml:"model_ident"`

	// Domain selects which entry of Domains supplies structural codes.
	Domain OperationalDomain `json:"domain" yaml:"domain"`

	// Domains maps each operational domain to its structural codes.
	Domains map[OperationalDomain]StructuralCodes `json:"domains" yaml:"domains"`

	// InfoCodes maps module types to their info-code fragment. Types
	// absent from the table fall back to the GEN entry.
	InfoCodes map[DMType]string `json:"info_codes" yaml:"info_codes"`

	Defaults FragmentDefaults `json:"defaults" yaml:"defaults"`
}

// Settings is the persisted engine state selecting the active configuration
// documents and AI providers. Read at operation start and threaded into
// component calls as explicit values.
type Settings struct {
	ActiveRulesetID      string `json:"active_ruleset_id" yaml:"active_ruleset_id"`
	ActiveDomainConfigID string `json:"active_domain_config_id" yaml:"active_domain_config_id"`

	TextProvider   string `json:"text_provider" yaml:"text_provider"`
	TextModel      string `json:"text_model" yaml:"text_model"`
	VisionProvider string `json:"vision_provider" yaml:"vision_provider"`
	VisionModel    string `json:"vision_model" yaml:"vision_model"`

	DefaultLanguage string `json:"default_language" yaml:"default_language"`
}
