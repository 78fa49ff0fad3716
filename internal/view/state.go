// Package view holds the per-tab session state and the transition function
// that drives it.
//
// Reduce is pure. Deck values are treated as immutable: every transition
// copies the maps it touches, so a Deck handed to a subscriber never changes
// underneath it.
package view

import (
	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/prompts"
)

// Tab is one selectable view. Each tab maps to one prompt template.
type Tab = prompts.TemplateID

// Fixed user-facing strings.
const (
	GenerationFailedMessage = "⚠️ Something went wrong while generating. Please try again."
	MaterializationWarning  = "⚠️ Could not render the response as UI. Showing the raw output instead."
	NotConfiguredNotice     = "No Gemini API key is set. Add one with /key before generating."
)

// PanelKind tags what a tab's result slot holds.
type PanelKind int

const (
	PanelEmpty PanelKind = iota
	PanelText
	PanelDocument
	PanelRaw
	PanelError
)

// Panel is a tab's result slot.
type Panel struct {
	Kind     PanelKind
	Text     string
	Document *materialize.Document
	Warning  string
}

// TabState is everything one tab owns.
type TabState struct {
	Fields    map[string]string
	Loading   bool
	RequestID string
	Panel     Panel
}

// Deck is the state of every tab plus the session-wide notice.
type Deck struct {
	Active Tab
	Tabs   map[Tab]TabState
	Notice string
}

// NewDeck returns a deck with every tab pre-filled with its field defaults.
func NewDeck() Deck {
	d := Deck{Active: prompts.Plan, Tabs: make(map[Tab]TabState)}
	for _, id := range prompts.All() {
		d.Tabs[id] = TabState{Fields: prompts.Defaults(id)}
	}
	return d
}

// Tab returns the state of t.
func (d Deck) Tab(t Tab) TabState {
	return d.Tabs[t]
}

// Current returns the state of the active tab.
func (d Deck) Current() TabState {
	return d.Tabs[d.Active]
}

// PanelFor converts a generation result into the panel shown for it.
func PanelFor(r materialize.Result) Panel {
	switch r.Kind {
	case materialize.KindDocument:
		return Panel{Kind: PanelDocument, Text: r.Raw, Document: r.Document}
	case materialize.KindMaterializationFailed:
		return Panel{Kind: PanelRaw, Text: r.Raw, Warning: MaterializationWarning}
	default:
		return Panel{Kind: PanelText, Text: r.Raw}
	}
}
