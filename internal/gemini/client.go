// Package gemini sends rendered prompts to the Gemini API.
//
// Each Generate call makes exactly one GenerateContent request with a client
// built for the credential passed in. There is no retry, caching or
// deduplication; failures are reported and the user retries by hand.
package gemini

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"github.com/moasq/nanogen/internal/prompts"
)

// DefaultModel is used when the client is built without a model.
const DefaultModel = "gemini-2.5-flash"

// ErrNotConfigured is returned when no credential is available. It is
// raised before any client is constructed.
var ErrNotConfigured = errors.New("gemini API key is not configured")

// ErrGenerationFailed matches every failure of the outbound call.
var ErrGenerationFailed = errors.New("generation failed")

var errEmptyResponse = errors.New("response has no candidates")

// GenerationError wraps the underlying SDK failure. It satisfies
// errors.Is(err, ErrGenerationFailed) and unwraps to the cause.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	return "generation failed (" + e.Model + "): " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error { return e.Err }

func (e *GenerationError) Is(target error) bool { return target == ErrGenerationFailed }

// Backend is the part of the genai SDK the client calls.
type Backend interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Dialer builds a Backend bound to one API key.
type Dialer func(ctx context.Context, apiKey string) (Backend, error)

// Usage holds token counts reported for one call.
type Usage struct {
	PromptTokens int
	OutputTokens int
	TotalTokens  int
}

// Response is the text returned for one prompt.
type Response struct {
	Text  string
	Model string
	Usage Usage
}

// Client wraps the genai SDK for single-shot generation.
type Client struct {
	model string
	dial  Dialer
}

// Option configures a Client.
type Option func(*Client)

// WithDialer replaces the SDK constructor. Tests use it to avoid the network.
func WithDialer(d Dialer) Option {
	return func(c *Client) { c.dial = d }
}

// NewClient creates a client for model (DefaultModel when empty).
func NewClient(model string, opts ...Option) *Client {
	if model == "" {
		model = DefaultModel
	}
	c := &Client{model: model, dial: dialSDK}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithModel returns a copy of the client using a different model.
func (c *Client) WithModel(model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{model: model, dial: c.dial}
}

// Model returns the model identifier requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// Generate sends p to the API using credential and returns the generated text.
func (c *Client) Generate(ctx context.Context, credential string, p prompts.Prompt) (*Response, error) {
	if strings.TrimSpace(credential) == "" {
		return nil, ErrNotConfigured
	}

	backend, err := c.dial(ctx, credential)
	if err != nil {
		return nil, &GenerationError{Model: c.model, Err: err}
	}

	contents, config := buildRequest(p)
	resp, err := backend.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return nil, &GenerationError{Model: c.model, Err: err}
	}

	text, ok := responseText(resp)
	if !ok {
		return nil, &GenerationError{Model: c.model, Err: errEmptyResponse}
	}

	out := &Response{Text: text, Model: c.model}
	if resp.ModelVersion != "" {
		out.Model = resp.ModelVersion
	}
	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens: int(u.PromptTokenCount),
			OutputTokens: int(u.CandidatesTokenCount),
			TotalTokens:  int(u.TotalTokenCount),
		}
	}
	return out, nil
}

func dialSDK(ctx context.Context, apiKey string) (Backend, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// buildRequest maps prompt parts onto SDK contents. System parts become the
// system instruction; user parts keep their order.
func buildRequest(p prompts.Prompt) ([]*genai.Content, *genai.GenerateContentConfig) {
	var contents []*genai.Content
	for _, m := range p.Messages {
		if m.Role == prompts.RoleUser {
			contents = append(contents, genai.NewContentFromText(m.Text, genai.RoleUser))
		}
	}
	if len(contents) == 0 {
		contents = []*genai.Content{genai.NewContentFromText("", genai.RoleUser)}
	}

	config := &genai.GenerateContentConfig{}
	if sys := p.System(); sys != "" {
		config.SystemInstruction = genai.NewContentFromText(sys, genai.RoleUser)
	}
	return contents, config
}

func responseText(resp *genai.GenerateContentResponse) (string, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", false
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		sb.WriteString(part.Text)
	}
	return sb.String(), true
}
