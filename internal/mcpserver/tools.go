package mcpserver

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/service"
	"github.com/moasq/nanogen/internal/view"
)

type handlers struct {
	svc *service.Service
}

// planInput is the input for the generate_plan tool.
type planInput struct {
	Age    string `json:"age,omitempty" jsonschema:"Age in years"`
	Gender string `json:"gender,omitempty" jsonschema:"Gender e.g. female or male"`
	Weight string `json:"weight,omitempty" jsonschema:"Weight in kg"`
	Height string `json:"height,omitempty" jsonschema:"Height in cm"`
	Goal   string `json:"goal,omitempty" jsonschema:"Training goal e.g. build strength"`
	Level  string `json:"level,omitempty" jsonschema:"Fitness level: beginner intermediate or advanced"`
	Days   string `json:"days,omitempty" jsonschema:"Training days per week"`
}

// marketingInput is the input for the generate_marketing tool.
type marketingInput struct {
	Product  string `json:"product,omitempty" jsonschema:"Product name and a short description"`
	Audience string `json:"audience,omitempty" jsonschema:"Target audience"`
	Tone     string `json:"tone,omitempty" jsonschema:"Tone of voice e.g. playful or professional"`
	Platform string `json:"platform,omitempty" jsonschema:"Where the copy runs e.g. Instagram or landing page"`
	Keywords string `json:"keywords,omitempty" jsonschema:"Comma separated keywords to include"`
}

// uiInput is the input for the generate_ui tool.
type uiInput struct {
	Instruction string `json:"instruction" jsonschema:"What UI section to generate e.g. three customer review cards for a coffee shop"`
}

type generateOutput struct {
	RequestID string                `json:"request_id"`
	Kind      string                `json:"kind"`
	Text      string                `json:"text,omitempty"`
	Document  *materialize.Document `json:"document,omitempty"`
	Warning   string                `json:"warning,omitempty"`
}

func (h *handlers) generatePlan(ctx context.Context, req *mcp.CallToolRequest, input planInput) (*mcp.CallToolResult, generateOutput, error) {
	return h.run(ctx, prompts.Plan, map[string]string{
		prompts.FieldAge:    input.Age,
		prompts.FieldGender: input.Gender,
		prompts.FieldWeight: input.Weight,
		prompts.FieldHeight: input.Height,
		prompts.FieldGoal:   input.Goal,
		prompts.FieldLevel:  input.Level,
		prompts.FieldDays:   input.Days,
	})
}

func (h *handlers) generateMarketing(ctx context.Context, req *mcp.CallToolRequest, input marketingInput) (*mcp.CallToolResult, generateOutput, error) {
	return h.run(ctx, prompts.Marketing, map[string]string{
		prompts.FieldProduct:  input.Product,
		prompts.FieldAudience: input.Audience,
		prompts.FieldTone:     input.Tone,
		prompts.FieldPlatform: input.Platform,
		prompts.FieldKeywords: input.Keywords,
	})
}

func (h *handlers) generateUI(ctx context.Context, req *mcp.CallToolRequest, input uiInput) (*mcp.CallToolResult, generateOutput, error) {
	if input.Instruction == "" {
		return nil, generateOutput{}, errors.New("instruction is required")
	}
	return h.run(ctx, prompts.UI, map[string]string{prompts.FieldInstruction: input.Instruction})
}

// run rebuilds the tab form from the template defaults plus the non-empty
// values of this call, then generates. Nothing carries over between calls.
func (h *handlers) run(ctx context.Context, tab view.Tab, values map[string]string) (*mcp.CallToolResult, generateOutput, error) {
	for _, f := range prompts.Fields(tab) {
		v := values[f.Name]
		if v == "" {
			v = f.Default
		}
		if err := h.svc.SetField(tab, f.Name, v); err != nil {
			return nil, generateOutput{}, err
		}
	}

	ts, err := h.svc.Generate(ctx, tab)
	switch {
	case errors.Is(err, gemini.ErrNotConfigured):
		return nil, generateOutput{}, errors.New("no Gemini API key configured; run `nanogen key set` first")
	case errors.Is(err, gemini.ErrGenerationFailed):
		return nil, generateOutput{}, fmt.Errorf("%s: %w", view.GenerationFailedMessage, err)
	case err != nil:
		return nil, generateOutput{}, err
	}
	return nil, outputFor(ts), nil
}

func outputFor(ts view.TabState) generateOutput {
	out := generateOutput{RequestID: ts.RequestID, Text: ts.Panel.Text, Warning: ts.Panel.Warning}
	switch ts.Panel.Kind {
	case view.PanelDocument:
		out.Kind = materialize.KindDocument.String()
		out.Document = ts.Panel.Document
		out.Text = ""
	case view.PanelRaw:
		out.Kind = materialize.KindMaterializationFailed.String()
	default:
		out.Kind = materialize.KindPlainText.String()
	}
	return out
}
