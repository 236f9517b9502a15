// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// YearUnknown is the sentinel used when no publication year can be
// determined (APA "no date").
const YearUnknown = "n.d."

// Creator is one author of a bibliographic record.
type Creator struct {
	// LastName is the author surname.
	LastName string `json:"last_name" yaml:"last_name"`

	// FirstName is the given name, possibly empty.
	FirstName string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
}

// Paper holds the metadata of one bibliographic record for a single
// pipeline pass. It is built from one metadata-source record and is
// read-only afterwards.
type Paper struct {
	// Title is the paper title.
	Title string `json:"title" yaml:"title"`

	// Abstract is the raw abstract, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// DOI is the external identifier used to look up full text, if any.
	DOI string `json:"doi,omitempty" yaml:"doi,omitempty"`

	// Year is the 4-digit publication year, or YearUnknown.
	Year string `json:"year" yaml:"year"`

	// Creators lists the authors in source order.
	Creators []Creator `json:"creators,omitempty" yaml:"creators,omitempty"`

	// MethodText is the methodology excerpt extracted from the PDF,
	// empty when extraction found nothing.
	MethodText string `json:"-" yaml:"-"`
}

// KeywordCount pairs a keyword with an occurrence count. Slices of
// KeywordCount carry an explicit order (descending count, first-seen
// tiebreak) that plain maps cannot.
type KeywordCount struct {
	Keyword string `json:"keyword" yaml:"keyword"`
	Count   int    `json:"count" yaml:"count"`
}
