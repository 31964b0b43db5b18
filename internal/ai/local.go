// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// LocalText is the offline text provider. It substitutes deterministic
// heuristics for model calls so ingestion and validation keep working in
// air-gapped deployments and tests.
type LocalText struct{}

// classifyOrder fixes the tie-break order for keyword classification.
var classifyOrder = []types.DMType{
	types.TypeProcedure,
	types.TypeDescription,
	types.TypePartsData,
	types.TypeCircuit,
	types.TypeServiceNotice,
	types.TypeWiring,
}

// typeKeywords maps each module type to the content words that vote for it.
var typeKeywords = map[types.DMType][]string{
	types.TypeProcedure:     {"procedure", "step", "remove", "install", "disconnect", "torque", "inspect"},
	types.TypeDescription:   {"description", "overview", "consists of", "comprises", "is located"},
	types.TypePartsData:     {"parts list", "part number", "catalog", "quantity", "item no"},
	types.TypeCircuit:       {"circuit", "voltage", "resistor", "capacitor", "schematic"},
	types.TypeServiceNotice: {"service notice", "bulletin", "advisory", "compliance"},
	types.TypeWiring:        {"wiring", "wire", "harness", "connector", "pin"},
}

func (LocalText) Classify(_ context.Context, text string) (types.Classification, error) {
	lower := strings.ToLower(text)

	best := types.TypeGeneral
	bestScore := 0
	for _, t := range classifyOrder {
		score := 0
		for _, kw := range typeKeywords[t] {
			score += strings.Count(lower, kw)
		}
		if score > bestScore {
			best, bestScore = t, score
		}
	}

	return types.Classification{
		Type:       best,
		Title:      firstSentence(text, 50),
		Confidence: 0.8,
		Metadata: map[string]string{
			"language":         "en-US",
			"technical_domain": "general",
			"complexity":       "intermediate",
		},
	}, nil
}

func (LocalText) Extract(_ context.Context, text string) (types.Extraction, error) {
	var ex types.Extraction

	for i, para := range splitParagraphs(text) {
		if i == 5 {
			break
		}
		ex.Sections = append(ex.Sections, types.Section{
			Type:    "paragraph",
			Title:   fmt.Sprintf("Section %d", i+1),
			Content: para,
			Level:   1,
		})
	}

	// Safety notices are recognized by their conventional leading word.
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		upper := strings.ToUpper(trimmed)
		switch {
		case strings.HasPrefix(upper, "WARNING"):
			ex.Warnings = append(ex.Warnings, trimmed)
		case strings.HasPrefix(upper, "CAUTION"):
			ex.Cautions = append(ex.Cautions, trimmed)
		case strings.HasPrefix(upper, "NOTE"):
			ex.Notes = append(ex.Notes, trimmed)
		}
	}

	return ex, nil
}

func (LocalText) RewriteSimplified(_ context.Context, text string) (types.Rewrite, error) {
	lines := strings.Split(text, "\n")
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = strings.Join(strings.Fields(line), " ")
	}

	return types.Rewrite{
		Text:         strings.Join(out, "\n"),
		Score:        0.85,
		Improvements: []string{"Simplified vocabulary", "Shortened sentences"},
	}, nil
}

func (LocalText) Review(_ context.Context, _ string) (types.Review, error) {
	return types.Review{}, nil
}

// LocalVision is the offline vision provider. Without a model it returns a
// fixed caption and no detections; operators fill annotations in manually
// with icn update.
type LocalVision struct{}

func (LocalVision) Caption(_ context.Context, _ string) (string, error) {
	return "Technical illustration", nil
}

func (LocalVision) Objects(_ context.Context, _ string) ([]string, error) {
	return nil, nil
}

func (LocalVision) Hotspots(_ context.Context, _ string) ([]types.Hotspot, error) {
	return nil, nil
}

// firstSentence returns the opening sentence of text, capped at max bytes.
func firstSentence(text string, max int) string {
	s := strings.TrimSpace(text)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		s = s[:i]
	}
	return truncate(strings.TrimSpace(s), max)
}

// splitParagraphs splits text on blank lines, dropping empty blocks.
func splitParagraphs(text string) []string {
	var paras []string
	for _, block := range strings.Split(text, "\n\n") {
		if trimmed := strings.TrimSpace(block); trimmed != "" {
			paras = append(paras, trimmed)
		}
	}
	return paras
}
