// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package xref maintains the reference sets linking data modules to each
// other and to illustrations. The resolver works on corpus snapshots and
// never judges whether a reference is valid; that is the validation
// orchestrator's call. See docs/ARCHITECTURE § Reference Resolution.
package xref

import (
	"regexp"
	"slices"
	"strings"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

var (
	dmcPattern = regexp.MustCompile(`DMC-[A-Z0-9-]+`)
	icnPattern = regexp.MustCompile(`ICN-[A-Z0-9]+`)
)

// Update carries the merged reference sets for one module. Sets are sorted
// and deduplicated.
type Update struct {
	DMC              string
	ModuleRefs       []string
	IllustrationRefs []string
}

// Refresh scans every module's content for occurrences of other modules'
// identifiers and of illustration codes (LCN or ICN id) and unions the hits
// into the module's stored reference sets. A set only ever grows: stored
// entries stay, dangling ones included, and the validation integrity check
// reports those. Only identifiers that exist in the snapshot are added, and
// a module's own identifier never is. Modules whose sets grew come back
// with the merged sets. Running Refresh twice over the same snapshot yields
// no updates the second time.
func Refresh(mods []types.DataModule, icns []types.ICN) []Update {
	known := make(map[string]bool, len(mods))
	for _, m := range mods {
		if m.DMC != "" {
			known[m.DMC] = true
		}
	}

	var illusIDs []string
	for _, ic := range icns {
		if ic.LCN != "" {
			illusIDs = append(illusIDs, ic.LCN)
		}
		if ic.ICNID != "" {
			illusIDs = append(illusIDs, ic.ICNID)
		}
	}

	var updates []Update
	for _, m := range mods {
		modRefs := toSet(m.ModuleRefs)
		icnRefs := toSet(m.IllustrationRefs)
		grew := false

		for dmc := range known {
			if dmc != m.DMC && !modRefs[dmc] && strings.Contains(m.Content, dmc) {
				modRefs[dmc] = true
				grew = true
			}
		}
		for _, id := range illusIDs {
			if !icnRefs[id] && strings.Contains(m.Content, id) {
				icnRefs[id] = true
				grew = true
			}
		}

		if !grew {
			continue
		}
		updates = append(updates, Update{
			DMC:              m.DMC,
			ModuleRefs:       sortedKeys(modRefs),
			IllustrationRefs: sortedKeys(icnRefs),
		})
	}

	return updates
}

// MissingTargets reports the identifiers in m's reference sets that have no
// existing target in the snapshot, module references first.
func MissingTargets(m types.DataModule, mods []types.DataModule, icns []types.ICN) []string {
	known := make(map[string]bool, len(mods)+2*len(icns))
	for _, other := range mods {
		known[other.DMC] = true
	}
	for _, ic := range icns {
		known[ic.LCN] = true
		known[ic.ICNID] = true
	}

	var missing []string
	for _, ref := range m.ModuleRefs {
		if !known[ref] {
			missing = append(missing, ref)
		}
	}
	for _, ref := range m.IllustrationRefs {
		if !known[ref] {
			missing = append(missing, ref)
		}
	}
	return missing
}

// TouchIllustration returns the DMCs of modules referencing icn by LCN or
// ICN id, sorted. Callers advance those modules' UpdatedAt after caption or
// hotspot churn even though the reference sets themselves are unchanged.
func TouchIllustration(icn types.ICN, mods []types.DataModule) []string {
	var dmcs []string
	for _, m := range mods {
		if refersTo(m.IllustrationRefs, icn.LCN) || refersTo(m.IllustrationRefs, icn.ICNID) {
			dmcs = append(dmcs, m.DMC)
		}
	}
	slices.Sort(dmcs)
	return dmcs
}

// ScanModuleRefs returns the deduplicated, sorted DMC-shaped tokens in
// content. Hits are raw pattern matches: they may name modules that do not
// exist yet. Ingest stores them as-is and leaves dangling ones for the
// validation integrity check to report.
func ScanModuleRefs(content string) []string {
	return dedupeMatches(dmcPattern.FindAllString(content, -1))
}

// ScanIllustrationRefs returns the deduplicated, sorted ICN-shaped tokens
// in content.
func ScanIllustrationRefs(content string) []string {
	return dedupeMatches(icnPattern.FindAllString(content, -1))
}

func dedupeMatches(hits []string) []string {
	if len(hits) == 0 {
		return nil
	}
	set := make(map[string]bool, len(hits))
	for _, h := range hits {
		set[h] = true
	}
	return sortedKeys(set)
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func toSet(vals []string) map[string]bool {
	set := make(map[string]bool, len(vals))
	for _, v := range vals {
		set[v] = true
	}
	return set
}

func refersTo(refs []string, id string) bool {
	return id != "" && slices.Contains(refs, id)
}
