// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package render produces the output forms of a data module: structured
// markup, hypertext, and paginated documents, plus the schema check applied
// to rendered markup.
// See docs/ARCHITECTURE § Rendering.
package render

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// xmlModule is the structured-markup document shape. The ident section and
// content are always present; illustration and module reference sections
// appear only when the module carries references.
type xmlModule struct {
	XMLName       xml.Name          `xml:"dmodule"`
	Ident         xmlIdent          `xml:"identAndStatusSection"`
	Content       xmlContent        `xml:"content"`
	Illustrations *xmlIllustrations `xml:"illustrations"`
	DMRefs        *xmlDMRefs        `xml:"dmRefs"`
}

type xmlIdent struct {
	DMC         string `xml:"dmc"`
	Title       string `xml:"title"`
	InfoVariant string `xml:"infoVariant"`
}

type xmlContent struct {
	Paras []string `xml:"para"`
}

type xmlIllustrations struct {
	Refs []xmlICNRef `xml:"icnRef"`
}

type xmlICNRef struct {
	ICNID string `xml:"icnID,attr"`
}

type xmlDMRefs struct {
	Refs []xmlDMRef `xml:"dmRef"`
}

type xmlDMRef struct {
	DMC string `xml:"dmc,attr"`
}

// XML renders m to its structured-markup form. The document is built fresh
// on every call; nothing is shared or mutated. Output is schema-conformant
// whenever the module's required fields are populated.
func XML(m types.DataModule) (string, error) {
	doc := xmlModule{
		Ident: xmlIdent{
			DMC:         m.DMC,
			Title:       m.Title,
			InfoVariant: m.InfoVariant,
		},
		Content: xmlContent{Paras: paragraphs(m.Content)},
	}

	if len(m.IllustrationRefs) > 0 {
		illus := &xmlIllustrations{}
		for _, ref := range m.IllustrationRefs {
			illus.Refs = append(illus.Refs, xmlICNRef{ICNID: ref})
		}
		doc.Illustrations = illus
	}

	if len(m.ModuleRefs) > 0 {
		refs := &xmlDMRefs{}
		for _, ref := range m.ModuleRefs {
			refs.Refs = append(refs.Refs, xmlDMRef{DMC: ref})
		}
		doc.DMRefs = refs
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", fmt.Errorf("rendering markup for %s: %w", m.DMC, err)
	}

	return xml.Header + string(out) + "\n", nil
}

// paragraphs splits module content into non-empty trimmed lines, one
// paragraph per line.
func paragraphs(content string) []string {
	var paras []string
	for _, line := range strings.Split(content, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			paras = append(paras, s)
		}
	}
	return paras
}
