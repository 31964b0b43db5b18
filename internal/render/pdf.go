// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/pdiddy/techpub-engine/pkg/types"
)

// PDF renders m to its paginated form: A4 portrait, title and code header
// followed by one block per content paragraph.
func PDF(m types.DataModule) ([]byte, error) {
	doc := fpdf.New("P", "mm", "A4", "")
	doc.SetTitle(m.Title, true)
	doc.AddPage()

	doc.SetFont("Helvetica", "B", 16)
	doc.MultiCell(0, 8, m.Title, "", "L", false)

	doc.SetFont("Helvetica", "", 10)
	doc.SetTextColor(90, 90, 90)
	doc.MultiCell(0, 5, m.DMC, "", "L", false)
	doc.Ln(4)

	doc.SetTextColor(0, 0, 0)
	doc.SetFont("Helvetica", "", 11)
	for _, para := range paragraphs(m.Content) {
		doc.MultiCell(0, 6, para, "", "L", false)
		doc.Ln(2)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("rendering paginated document for %s: %w", m.DMC, err)
	}
	return buf.Bytes(), nil
}
