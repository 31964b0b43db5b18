// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Classification is the AI text service's answer to "what kind of module is
// this text". Only Type and Title are guaranteed; the code overrides are
// optional domain metadata that take precedence over DomainConfig defaults
// during code generation.
type Classification struct {
	Type       DMType  `json:"type" yaml:"type"`
	Title      string  `json:"title" yaml:"title"`
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// ModelIdent optionally overrides the configured model identifier.
	ModelIdent string `json:"model_ident,omitempty" yaml:"model_ident,omitempty"`

	// Codes optionally override individual DMC fragments.
	Codes CodeOverrides `json:"codes,omitempty" yaml:"codes,omitempty"`

	// Metadata carries free-form classifier annotations (language,
	// technical domain, complexity).
	Metadata map[string]string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// CodeOverrides are optional per-classification DMC fragment values. Empty
// fields defer to the DomainConfig.
type CodeOverrides struct {
	SystemDiff         string `json:"system_diff,omitempty" yaml:"system_diff,omitempty"`
	SystemCode         string `json:"system_code,omitempty" yaml:"system_code,omitempty"`
	SubSystemCode      string `json:"sub_system_code,omitempty" yaml:"sub_system_code,omitempty"`
	SubSubSystemCode   string `json:"sub_sub_system_code,omitempty" yaml:"sub_sub_system_code,omitempty"`
	AssyCode           string `json:"assy_code,omitempty" yaml:"assy_code,omitempty"`
	DisassyCode        string `json:"disassy_code,omitempty" yaml:"disassy_code,omitempty"`
	DisassyCodeVariant string `json:"disassy_code_variant,omitempty" yaml:"disassy_code_variant,omitempty"`
	InfoCodeVariant    string `json:"info_code_variant,omitempty" yaml:"info_code_variant,omitempty"`
	ItemLocationCode   string `json:"item_location_code,omitempty" yaml:"item_location_code,omitempty"`
	LearnCode          string `json:"learn_code,omitempty" yaml:"learn_code,omitempty"`
	LearnEventCode     string `json:"learn_event_code,omitempty" yaml:"learn_event_code,omitempty"`
}

// Section is one structural unit of an extraction result.
type Section struct {
	Type    string `json:"type" yaml:"type"`
	Title   string `json:"title" yaml:"title"`
	Content string `json:"content" yaml:"content"`
	Level   int    `json:"level" yaml:"level"`
}

// Reference is a cross-reference the extractor found in the source text.
type Reference struct {
	// Type is "dmc" or "icn".
	Type string `json:"type" yaml:"type"`

	// Reference is the referenced identifier as written in the text.
	Reference string `json:"reference" yaml:"reference"`

	// Title is the referenced item's title when the extractor can tell.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
}

// Extraction is the AI text service's structured breakdown of source text.
type Extraction struct {
	Sections   []Section   `json:"sections" yaml:"sections"`
	References []Reference `json:"references" yaml:"references"`
	Warnings   []string    `json:"warnings" yaml:"warnings"`
	Cautions   []string    `json:"cautions" yaml:"cautions"`
	Notes      []string    `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Rewrite is the simplified-language rendering of module text with its
// readability score.
type Rewrite struct {
	Text         string   `json:"text" yaml:"text"`
	Score        float64  `json:"score" yaml:"score"`
	Improvements []string `json:"improvements,omitempty" yaml:"improvements,omitempty"`
	Warnings     []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Review is the semantic-review result. Issues are advisory: they downgrade
// a passing verdict to warn, never to fail.
type Review struct {
	Issues        []string `json:"issues" yaml:"issues"`
	SuggestedText string   `json:"suggested_text,omitempty" yaml:"suggested_text,omitempty"`
}
