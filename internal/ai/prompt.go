// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
)

// classifyPromptTmpl asks the model to classify source text into one of the
// seven data module types and to supply the code fragments needed to build
// the module's DMC. Fragment overrides are optional; missing ones fall back
// to the domain configuration.
var classifyPromptTmpl = template.Must(template.New("classify").Parse(`You are a technical documentation classification system. Analyze the following source text and determine the appropriate data module type.

Module types:
- PROC: a maintenance or operating procedure
- DESC: a description of a system or component
- IPD: illustrated parts data
- CIR: circuit or schematic information
- SNS: a service notice or bulletin
- WIR: wiring information
- GEN: general content fitting none of the above

Respond with a JSON object and no text outside it:
{"type": "PROC|DESC|IPD|CIR|SNS|WIR|GEN", "title": "extracted title", "confidence": 0.95, "model_ident": "TPUB", "codes": {"system_code": "000", "sub_system_code": "00", "sub_sub_system_code": "00", "assy_code": "00", "disassy_code": "00", "disassy_code_variant": "00", "info_code_variant": "A", "item_location_code": "A", "learn_code": "00", "learn_event_code": "00"}, "metadata": {"language": "en-US", "technical_domain": "aviation|electronics|mechanical|general", "complexity": "basic|intermediate|advanced"}}

Source text:
{{.Text}}
`))

// extractPromptTmpl asks the model for a structured breakdown of source text:
// sections, cross-references, and safety notices.
var extractPromptTmpl = template.Must(template.New("extract").Parse(`You are a technical documentation extraction system. Break the following source text into structured parts for data module creation.

Respond with a JSON object and no text outside it:
{"sections": [{"type": "paragraph|list|table|figure", "title": "section title", "content": "extracted content", "level": 1}], "references": [{"type": "dmc|icn", "reference": "the identifier as written", "title": "reference title"}], "warnings": ["safety warning"], "cautions": ["caution"], "notes": ["note"]}

Source text:
{{.Text}}
`))

// rewritePromptTmpl asks the model for a simplified-language rendition of
// module text, scored 0.0 to 1.0.
var rewritePromptTmpl = template.Must(template.New("rewrite").Parse(`Rewrite this technical text in simplified technical language.

Requirements:
- Use plain, commonly understood vocabulary
- Maximum sentence length: 20 words
- Use active voice
- Use simple present tense
- Keep all technical identifiers (part numbers, module codes) exactly as written

Respond with a JSON object and no text outside it:
{"text": "simplified text", "score": 0.92, "improvements": ["improvement made"], "warnings": ["warning if any"]}

Original text:
{{.Text}}
`))

// reviewPromptTmpl asks the model for an advisory review of module content.
var reviewPromptTmpl = template.Must(template.New("review").Parse(`Review the following data module content for grammar, clarity, and consistency. Report each problem as a short, standalone issue.

Respond with a JSON object and no text outside it:
{"issues": ["issue"], "suggested_text": "corrected text"}

Content:
{{.Text}}
`))

// classifyInputLimit bounds how much source text the classification prompt
// carries. Classification only needs the opening of the document.
const classifyInputLimit = 2000

// renderPrompt executes a prompt template with the given text.
func renderPrompt(tmpl *template.Template, text string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Text string }{Text: text}); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}

// truncate caps s at max bytes without splitting a UTF-8 sequence.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return strings.ToValidUTF8(s[:max], "")
}
