// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dmc

import (
	"strings"
	"testing"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

func TestGenerateDeterminism(t *testing.T) {
	cfg := DefaultDomainConfig()
	c := types.Classification{Type: types.TypeProcedure, Title: "Brake inspection"}

	first := Generate(c, cfg, types.VariantVerbatim)
	second := Generate(c, cfg, types.VariantVerbatim)

	if first != second {
		t.Errorf("Generate not deterministic: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "DMC-") {
		t.Errorf("identifier missing prefix: %q", first)
	}
}

func TestGenerateVariantIsolation(t *testing.T) {
	cfg := DefaultDomainConfig()
	c := types.Classification{Type: types.TypeDescription, Title: "Hydraulic system overview"}

	verbatim := Generate(c, cfg, types.VariantVerbatim)
	simplified := Generate(c, cfg, types.VariantSimplified)

	vParts := strings.Split(verbatim, "-")
	sParts := strings.Split(simplified, "-")

	if len(vParts) != len(sParts) {
		t.Fatalf("fragment count differs: %d vs %d", len(vParts), len(sParts))
	}
	for i := 0; i < len(vParts)-1; i++ {
		if vParts[i] != sParts[i] {
			t.Errorf("fragment %d differs between variants: %q vs %q", i, vParts[i], sParts[i])
		}
	}
	if vParts[len(vParts)-1] != types.VariantVerbatim {
		t.Errorf("verbatim trailing fragment = %q, want %q", vParts[len(vParts)-1], types.VariantVerbatim)
	}
	if sParts[len(sParts)-1] != types.VariantSimplified {
		t.Errorf("simplified trailing fragment = %q, want %q", sParts[len(sParts)-1], types.VariantSimplified)
	}
}

func TestGenerateFragmentCount(t *testing.T) {
	cfg := DefaultDomainConfig()
	id := Generate(types.Classification{Type: types.TypeGeneral}, cfg, types.VariantVerbatim)

	// Literal prefix plus the fourteen-fragment sequence.
	parts := strings.Split(id, "-")
	if len(parts) != 15 {
		t.Fatalf("got %d parts, want 15: %q", len(parts), id)
	}
	if parts[0] != "DMC" {
		t.Errorf("parts[0] = %q, want DMC", parts[0])
	}
}

func TestGenerateInfoCodes(t *testing.T) {
	cfg := DefaultDomainConfig()

	tests := []struct {
		name string
		typ  types.DMType
		want string
	}{
		{"procedure", types.TypeProcedure, "030"},
		{"description", types.TypeDescription, "020"},
		{"parts data", types.TypePartsData, "200"},
		{"circuit", types.TypeCircuit, "120"},
		{"service notice", types.TypeServiceNotice, "120"},
		{"wiring", types.TypeWiring, "190"},
		{"general", types.TypeGeneral, "000"},
		{"unknown type falls back", types.DMType("BOGUS"), "000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id := Generate(types.Classification{Type: tt.typ}, cfg, types.VariantVerbatim)
			parts := strings.Split(id, "-")
			if parts[9] != tt.want {
				t.Errorf("info code = %q, want %q (id %q)", parts[9], tt.want, id)
			}
		})
	}
}

func TestGenerateDomainLookup(t *testing.T) {
	cfg := DefaultDomainConfig()
	c := types.Classification{Type: types.TypeProcedure}

	cfg.Domain = types.DomainAir
	air := Generate(c, cfg, types.VariantVerbatim)
	cfg.Domain = types.DomainWater
	water := Generate(c, cfg, types.VariantVerbatim)

	airParts := strings.Split(air, "-")
	waterParts := strings.Split(water, "-")

	if airParts[2] == waterParts[2] {
		t.Errorf("system-diff fragment should differ across domains: %q vs %q", air, water)
	}
	for i, p := range airParts {
		if i == 2 {
			continue
		}
		if p != waterParts[i] {
			t.Errorf("fragment %d should not vary by domain: %q vs %q", i, p, waterParts[i])
		}
	}
}

func TestGenerateUnknownDomainUsesFallback(t *testing.T) {
	cfg := DefaultDomainConfig()
	cfg.Domain = types.OperationalDomain("orbital")

	id := Generate(types.Classification{Type: types.TypeGeneral}, cfg, types.VariantVerbatim)
	parts := strings.Split(id, "-")
	if parts[2] != "00" || parts[3] != "000" {
		t.Errorf("fallback structural codes not applied: %q", id)
	}
}

func TestGenerateClassificationOverrides(t *testing.T) {
	cfg := DefaultDomainConfig()
	c := types.Classification{
		Type:       types.TypeWiring,
		ModelIdent: "experimental",
		Codes: types.CodeOverrides{
			SystemCode:       "241",
			ItemLocationCode: "B",
		},
	}

	id := Generate(c, cfg, types.VariantVerbatim)
	parts := strings.Split(id, "-")

	if parts[1] != "EXPE" {
		t.Errorf("model ident = %q, want EXPE (truncated, uppercased)", parts[1])
	}
	if parts[3] != "241" {
		t.Errorf("system code override not applied: %q", parts[3])
	}
	if parts[11] != "B" {
		t.Errorf("item location override not applied: %q", parts[11])
	}
	if parts[12] != "00" {
		t.Errorf("unset override should keep default learn code: %q", parts[12])
	}
}
