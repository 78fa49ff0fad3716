package gemini

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/moasq/nanogen/internal/prompts"
)

type fakeBackend struct {
	calls    *atomic.Int32
	resp     *genai.GenerateContentResponse
	err      error
	model    string
	contents []*genai.Content
	config   *genai.GenerateContentConfig
}

func (f *fakeBackend) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.calls.Add(1)
	f.model = model
	f.contents = contents
	f.config = config
	return f.resp, f.err
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: string(genai.RoleModel)}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     12,
			CandidatesTokenCount: 30,
			TotalTokenCount:      42,
		},
	}
}

func newTestClient(t *testing.T, fb *fakeBackend) (*Client, *atomic.Int32, *[]string) {
	t.Helper()
	dials := &atomic.Int32{}
	var keys []string
	if fb.calls == nil {
		fb.calls = &atomic.Int32{}
	}
	c := NewClient("", WithDialer(func(_ context.Context, apiKey string) (Backend, error) {
		dials.Add(1)
		keys = append(keys, apiKey)
		return fb, nil
	}))
	return c, dials, &keys
}

func mustRender(t *testing.T, id prompts.TemplateID, values map[string]string) prompts.Prompt {
	t.Helper()
	p, err := prompts.Render(id, values)
	require.NoError(t, err)
	return p
}

func TestGenerate_NotConfiguredMakesNoCalls(t *testing.T) {
	fb := &fakeBackend{resp: textResponse("unused")}
	c, dials, _ := newTestClient(t, fb)

	for _, cred := range []string{"", "   "} {
		for _, id := range prompts.All() {
			_, err := c.Generate(context.Background(), cred, mustRender(t, id, prompts.Defaults(id)))
			assert.ErrorIs(t, err, ErrNotConfigured)
		}
	}
	assert.Zero(t, dials.Load())
	assert.Zero(t, fb.calls.Load())
}

func TestGenerate_PlainPrompt(t *testing.T) {
	fb := &fakeBackend{resp: textResponse("# Day 1\n", "Squats")}
	c, dials, keys := newTestClient(t, fb)

	resp, err := c.Generate(context.Background(), "key-1", mustRender(t, prompts.Plan, prompts.Defaults(prompts.Plan)))
	require.NoError(t, err)

	assert.Equal(t, "# Day 1\nSquats", resp.Text)
	assert.Equal(t, DefaultModel, resp.Model)
	assert.Equal(t, Usage{PromptTokens: 12, OutputTokens: 30, TotalTokens: 42}, resp.Usage)

	assert.EqualValues(t, 1, dials.Load())
	assert.EqualValues(t, 1, fb.calls.Load())
	assert.Equal(t, []string{"key-1"}, *keys)
	assert.Equal(t, DefaultModel, fb.model)
	require.Len(t, fb.contents, 1)
	assert.Equal(t, "user", fb.contents[0].Role)
	assert.Nil(t, fb.config.SystemInstruction)
}

func TestGenerate_UIPromptSendsSystemInstruction(t *testing.T) {
	fb := &fakeBackend{resp: textResponse(`{"sections":[]}`)}
	c, _, _ := newTestClient(t, fb)

	p := mustRender(t, prompts.UI, map[string]string{prompts.FieldInstruction: "two reviews"})
	_, err := c.Generate(context.Background(), "key", p)
	require.NoError(t, err)

	require.NotNil(t, fb.config.SystemInstruction)
	require.Len(t, fb.config.SystemInstruction.Parts, 1)
	assert.Equal(t, p.System(), fb.config.SystemInstruction.Parts[0].Text)
	require.Len(t, fb.contents, 1)
	assert.Equal(t, "two reviews", fb.contents[0].Parts[0].Text)
}

func TestGenerate_SkipsThoughtParts(t *testing.T) {
	resp := textResponse("visible")
	resp.Candidates[0].Content.Parts = append([]*genai.Part{{Text: "thinking...", Thought: true}}, resp.Candidates[0].Content.Parts...)
	c, _, _ := newTestClient(t, &fakeBackend{resp: resp})

	out, err := c.Generate(context.Background(), "key", mustRender(t, prompts.Marketing, nil))
	require.NoError(t, err)
	assert.Equal(t, "visible", out.Text)
}

func TestGenerate_FailuresWrapGenerationFailed(t *testing.T) {
	cause := errors.New("429 quota exceeded")

	tests := []struct {
		name    string
		backend *fakeBackend
		dialErr error
		cause   error
	}{
		{name: "sdk error", backend: &fakeBackend{err: cause}, cause: cause},
		{name: "dial error", dialErr: cause, cause: cause},
		{name: "no candidates", backend: &fakeBackend{resp: &genai.GenerateContentResponse{}}, cause: errEmptyResponse},
		{name: "nil response", backend: &fakeBackend{}, cause: errEmptyResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.backend != nil && tt.backend.calls == nil {
				tt.backend.calls = &atomic.Int32{}
			}
			c := NewClient("gemini-test", WithDialer(func(context.Context, string) (Backend, error) {
				if tt.dialErr != nil {
					return nil, tt.dialErr
				}
				return tt.backend, nil
			}))

			_, err := c.Generate(context.Background(), "key", mustRender(t, prompts.Plan, nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrGenerationFailed)
			assert.Equal(t, tt.cause, errors.Unwrap(err))

			var ge *GenerationError
			require.ErrorAs(t, err, &ge)
			assert.Equal(t, "gemini-test", ge.Model)
		})
	}
}

func TestGenerate_NoRetry(t *testing.T) {
	fb := &fakeBackend{err: errors.New("boom")}
	c, dials, _ := newTestClient(t, fb)

	_, err := c.Generate(context.Background(), "key", mustRender(t, prompts.Plan, nil))
	require.Error(t, err)
	assert.EqualValues(t, 1, dials.Load())
	assert.EqualValues(t, 1, fb.calls.Load())
}

func TestWithModel(t *testing.T) {
	fb := &fakeBackend{resp: textResponse("ok")}
	base, _, _ := newTestClient(t, fb)

	pro := base.WithModel("gemini-2.5-pro")
	assert.Equal(t, DefaultModel, base.Model())
	assert.Equal(t, "gemini-2.5-pro", pro.Model())
	assert.Equal(t, DefaultModel, base.WithModel("").Model())

	_, err := pro.Generate(context.Background(), "key", mustRender(t, prompts.Plan, nil))
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", fb.model)
}
