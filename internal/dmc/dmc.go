// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dmc generates structured data module codes from classification
// metadata and domain configuration.
// See docs/ARCHITECTURE § Code Generation.
package dmc

import (
	"strings"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

const (
	prefix    = "DMC"
	delimiter = "-"

	// fallbackInfoCode is used when neither the module type nor GEN has an
	// info-code entry in the domain configuration.
	fallbackInfoCode = "000"
)

// fallbackStructural supplies structural codes when the configured
// operational domain has no table entry.
var fallbackStructural = types.StructuralCodes{
	SystemDiff:       "00",
	SystemCode:       "000",
	SubSystemCode:    "00",
	SubSubSystemCode: "00",
}

// Generate assembles the module identifier for a classification under the
// given domain configuration and variant tag ("00" verbatim, "01"
// simplified). The identifier is a fixed-arity fragment sequence joined by
// "-" with the literal "DMC" prefix.
//
// Generation is deterministic: identical inputs always produce an identical
// identifier, and two identifiers for the same classification differing only
// in variant differ in exactly the trailing fragment. Unknown module types
// fall back to the general info code; there are no error conditions.
func Generate(c types.Classification, cfg types.DomainConfig, variant string) string {
	model := c.ModelIdent
	if model == "" {
		model = cfg.ModelIdent
	}
	if len(model) > 4 {
		model = model[:4]
	}
	model = strings.ToUpper(model)

	sc, ok := cfg.Domains[cfg.Domain]
	if !ok {
		sc = fallbackStructural
	}

	infoCode, ok := cfg.InfoCodes[c.Type]
	if !ok {
		infoCode = cfg.InfoCodes[types.TypeGeneral]
		if infoCode == "" {
			infoCode = fallbackInfoCode
		}
	}

	d := cfg.Defaults
	fragments := []string{
		model,
		pick(c.Codes.SystemDiff, sc.SystemDiff),
		pick(c.Codes.SystemCode, sc.SystemCode),
		pick(c.Codes.SubSystemCode, sc.SubSystemCode),
		pick(c.Codes.SubSubSystemCode, sc.SubSubSystemCode),
		pick(c.Codes.AssyCode, d.AssyCode),
		pick(c.Codes.DisassyCode, d.DisassyCode),
		pick(c.Codes.DisassyCodeVariant, d.DisassyCodeVariant),
		infoCode,
		pick(c.Codes.InfoCodeVariant, d.InfoCodeVariant),
		pick(c.Codes.ItemLocationCode, d.ItemLocationCode),
		pick(c.Codes.LearnCode, d.LearnCode),
		pick(c.Codes.LearnEventCode, d.LearnEventCode),
		variant,
	}

	return prefix + delimiter + strings.Join(fragments, delimiter)
}

// pick returns the classification override when non-empty, the configured
// default otherwise.
func pick(override, def string) string {
	if override != "" {
		return override
	}
	return def
}

// DefaultDomainConfig returns the built-in code-generation tables. The
// domains share system codes and differ in the system-diff fragment;
// deployments override the table via a domain-config document.
func DefaultDomainConfig() types.DomainConfig {
	return types.DomainConfig{
		ID:         "default",
		ModelIdent: "TPUB",
		Domain:     types.DomainAir,
		Domains: map[types.OperationalDomain]types.StructuralCodes{
			types.DomainAir:   {SystemDiff: "00", SystemCode: "000", SubSystemCode: "00", SubSubSystemCode: "00"},
			types.DomainWater: {SystemDiff: "01", SystemCode: "000", SubSystemCode: "00", SubSubSystemCode: "00"},
			types.DomainLand:  {SystemDiff: "02", SystemCode: "000", SubSystemCode: "00", SubSubSystemCode: "00"},
			types.DomainOther: {SystemDiff: "03", SystemCode: "000", SubSystemCode: "00", SubSubSystemCode: "00"},
		},
		InfoCodes: map[types.DMType]string{
			types.TypeProcedure:     "030",
			types.TypeDescription:   "020",
			types.TypePartsData:     "200",
			types.TypeCircuit:       "120",
			types.TypeServiceNotice: "120",
			types.TypeWiring:        "190",
			types.TypeGeneral:       "000",
		},
		Defaults: types.FragmentDefaults{
			AssyCode:           "00",
			DisassyCode:        "00",
			DisassyCodeVariant: "00",
			InfoCodeVariant:    "A",
			ItemLocationCode:   "A",
			LearnCode:          "00",
			LearnEventCode:     "00",
		},
	}
}
