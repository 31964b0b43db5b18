// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Format selects a publication output format.
type Format string

const (
	FormatXML  Format = "xml"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

// KnownFormat reports whether f is a supported output format.
func KnownFormat(f Format) bool {
	switch f {
	case FormatXML, FormatHTML, FormatPDF:
		return true
	}
	return false
}

// PublicationStatus tracks a publication module's lifecycle.
type PublicationStatus string

const (
	PublicationDraft     PublicationStatus = "draft"
	PublicationPublished PublicationStatus = "published"
)

// PublicationModule names an ordered collection of data modules to be
// compiled into a delivery archive.
type PublicationModule struct {
	// PMCode is the publication identifier, unique across the corpus.
	PMCode string `json:"pm_code" yaml:"pm_code"`

	// Title is the publication title.
	Title string `json:"title" yaml:"title"`

	// DMList is the ordered list of module DMCs included in the
	// publication. Order is preserved through packaging.
	DMList []string `json:"dm_list" yaml:"dm_list"`

	// Formats are the output formats to render, a subset of xml/html/pdf.
	Formats []Format `json:"formats" yaml:"formats"`

	// Variants selects which module variants to include: "verbatim",
	// "simplified", or both. Variant codes "00"/"01" are accepted as
	// synonyms on input.
	Variants []string `json:"variants" yaml:"variants"`

	// Status is draft until the first successful publish.
	Status PublicationStatus `json:"status" yaml:"status"`

	SecurityLevel SecurityLevel `json:"security_level" yaml:"security_level"`

	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}
