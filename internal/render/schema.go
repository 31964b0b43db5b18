// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"strings"

	"github.com/antchfx/xmlquery"
)

// requiredPaths name the identification elements a conformant module
// document must populate.
var requiredPaths = []string{
	"/dmodule/identAndStatusSection/dmc",
	"/dmodule/identAndStatusSection/title",
	"/dmodule/identAndStatusSection/infoVariant",
}

// SchemaValid reports whether markup conforms to the module document schema:
// a dmodule root whose identification elements are present and non-empty,
// with at least one content paragraph. Markup that does not parse is not
// conformant.
func SchemaValid(markup string) bool {
	doc, err := xmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return false
	}

	for _, path := range requiredPaths {
		node, err := xmlquery.Query(doc, path)
		if err != nil || node == nil {
			return false
		}
		if strings.TrimSpace(node.InnerText()) == "" {
			return false
		}
	}

	paras, err := xmlquery.QueryAll(doc, "/dmodule/content/para")
	if err != nil || len(paras) == 0 {
		return false
	}

	return true
}
