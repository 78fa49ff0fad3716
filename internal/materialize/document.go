// Package materialize turns raw model output into a renderable UI document.
//
// Model output is untrusted text. Materialize never panics and never returns
// an error: anything that does not decode into the document shape yields nil,
// and callers fall back to showing the raw text.
package materialize

import (
	"encoding/json"
)

// SectionCards is the only section type with a body rendering.
const SectionCards = "cards"

// Document is the structured section list decoded from model output.
type Document struct {
	Sections []Section `json:"sections"`
}

// Section is one titled block of the document. Type is read as-is; callers
// render unrecognized types as title only.
type Section struct {
	Type  string `json:"type"`
	Title string `json:"title,omitempty"`
	Items []Item `json:"items"`
}

// Item is a single card. A missing rating decodes as 0.
type Item struct {
	Avatar  string  `json:"avatar"`
	Name    string  `json:"name"`
	Rating  float64 `json:"rating"`
	Comment string  `json:"comment"`
}

// IsCards reports whether the section has the cards body rendering.
func (s Section) IsCards() bool {
	return s.Type == SectionCards
}

// Materialize strips code fences from raw and decodes it into a Document.
// It returns nil for malformed JSON, a wrong shape (a string where an array
// or number belongs, a non-object item), or a missing or null sections field.
func Materialize(raw string) *Document {
	cleaned := StripFences(raw)
	if cleaned == "" {
		return nil
	}

	var doc Document
	if err := json.Unmarshal([]byte(cleaned), &doc); err != nil {
		return nil
	}
	if doc.Sections == nil {
		return nil
	}

	for i := range doc.Sections {
		if doc.Sections[i].Items == nil {
			doc.Sections[i].Items = []Item{}
		}
	}
	return &doc
}
