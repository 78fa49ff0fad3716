// Package prompts turns form values into the prompts sent for generation.
//
// Rendering is pure: values are interpolated verbatim, without validation.
// Empty or nonsensical values pass through unchanged.
package prompts

import (
	"errors"
	"fmt"
	"strings"
)

// TemplateID names one of the fixed generation use cases.
type TemplateID string

const (
	Plan      TemplateID = "plan"
	Marketing TemplateID = "marketing"
	UI        TemplateID = "ui"
)

// ErrUnknownTemplate is returned by Render for an id outside the fixed set.
var ErrUnknownTemplate = errors.New("unknown prompt template")

// All returns the template ids in display order.
func All() []TemplateID {
	return []TemplateID{Plan, Marketing, UI}
}

// Parse resolves a user-typed name to a TemplateID.
func Parse(name string) (TemplateID, bool) {
	for _, id := range All() {
		if string(id) == name {
			return id, true
		}
	}
	return "", false
}

// Title returns a human label for the template.
func (id TemplateID) Title() string {
	switch id {
	case Plan:
		return "Fitness plan"
	case Marketing:
		return "Marketing copy"
	case UI:
		return "UI sections"
	default:
		return string(id)
	}
}

// Structured reports whether output for this template is decoded as a UI document.
func (id TemplateID) Structured() bool {
	return id == UI
}

// Role tags a message part.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
)

// Message is one ordered, role-tagged part of a prompt.
type Message struct {
	Role Role
	Text string
}

// Prompt is the rendered request for one template.
type Prompt struct {
	Template TemplateID
	Messages []Message
}

// System returns the concatenated system-role text, or "".
func (p Prompt) System() string {
	return p.joined(RoleSystem)
}

// User returns the concatenated user-role text.
func (p Prompt) User() string {
	return p.joined(RoleUser)
}

func (p Prompt) joined(role Role) string {
	var parts []string
	for _, m := range p.Messages {
		if m.Role == role {
			parts = append(parts, m.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}

// Render interpolates values into the template identified by id.
// Missing keys render as empty strings.
func Render(id TemplateID, values map[string]string) (Prompt, error) {
	v := func(name string) string { return values[name] }

	switch id {
	case Plan:
		text := fmt.Sprintf(planTemplate,
			v(FieldAge), v(FieldGender), v(FieldWeight), v(FieldHeight),
			v(FieldGoal), v(FieldLevel), v(FieldDays))
		return Prompt{Template: id, Messages: []Message{{Role: RoleUser, Text: text}}}, nil

	case Marketing:
		text := fmt.Sprintf(marketingTemplate,
			v(FieldProduct), v(FieldAudience), v(FieldTone), v(FieldPlatform), v(FieldKeywords))
		return Prompt{Template: id, Messages: []Message{{Role: RoleUser, Text: text}}}, nil

	case UI:
		return Prompt{Template: id, Messages: []Message{
			{Role: RoleSystem, Text: uiSystemInstruction},
			{Role: RoleUser, Text: v(FieldInstruction)},
		}}, nil
	}

	return Prompt{}, fmt.Errorf("%w: %q", ErrUnknownTemplate, string(id))
}
