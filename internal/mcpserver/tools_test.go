package mcpserver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/moasq/nanogen/internal/gemini"
	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/secrets"
	"github.com/moasq/nanogen/internal/service"
	"github.com/moasq/nanogen/internal/storage"
)

type stubBackend struct {
	text     string
	err      error
	lastUser string
}

func (b *stubBackend) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		b.lastUser = contents[0].Parts[0].Text
	}
	if b.err != nil {
		return nil, b.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: b.text}}}}},
	}, nil
}

func newHandlers(t *testing.T, key string, backend *stubBackend) *handlers {
	t.Helper()
	dir := t.TempDir()
	client := gemini.NewClient("", gemini.WithDialer(func(context.Context, string) (gemini.Backend, error) {
		return backend, nil
	}))
	svc, err := service.New(service.Options{
		Client:             client,
		Credentials:        secrets.NewCredentialStore(secrets.New(dir, secrets.BackendFile)),
		Usage:              storage.NewUsageStore(dir),
		CredentialOverride: key,
	})
	require.NoError(t, err)
	return &handlers{svc: svc}
}

func TestGeneratePlan_FillsFormAndReturnsText(t *testing.T) {
	b := &stubBackend{text: "Monday: squats"}
	h := newHandlers(t, "key", b)

	_, out, err := h.generatePlan(context.Background(), nil, planInput{Age: "41", Goal: "run a marathon"})
	require.NoError(t, err)

	assert.Equal(t, "text", out.Kind)
	assert.Equal(t, "Monday: squats", out.Text)
	assert.NotEmpty(t, out.RequestID)
	assert.Contains(t, b.lastUser, "41")
	assert.Contains(t, b.lastUser, "run a marathon")
	// Omitted fields keep their defaults.
	assert.Equal(t, "female", h.svc.Store().Snapshot().Tab(prompts.Plan).Fields[prompts.FieldGender])
}

func TestGenerateMarketing_CallsDoNotShareFields(t *testing.T) {
	b := &stubBackend{text: "copy"}
	h := newHandlers(t, "key", b)
	ctx := context.Background()

	_, _, err := h.generateMarketing(ctx, nil, marketingInput{Product: "SecretWidget", Keywords: "alpha", Tone: "grim"})
	require.NoError(t, err)
	assert.Contains(t, b.lastUser, "SecretWidget")

	_, _, err = h.generateMarketing(ctx, nil, marketingInput{Product: "Tea"})
	require.NoError(t, err)

	assert.Contains(t, b.lastUser, "Tea")
	assert.NotContains(t, b.lastUser, "SecretWidget")
	assert.NotContains(t, b.lastUser, "alpha")
	assert.NotContains(t, b.lastUser, "grim")
	assert.Contains(t, b.lastUser, "friendly", "omitted fields fall back to the template default")
}

func TestGenerateUI_Document(t *testing.T) {
	b := &stubBackend{text: "```json\n{\"sections\":[{\"type\":\"cards\",\"title\":\"Reviews\",\"items\":[{\"name\":\"A\",\"rating\":4.5}]}]}\n```"}
	h := newHandlers(t, "key", b)

	_, out, err := h.generateUI(context.Background(), nil, uiInput{Instruction: "reviews"})
	require.NoError(t, err)

	assert.Equal(t, materialize.KindDocument.String(), out.Kind)
	require.NotNil(t, out.Document)
	require.Len(t, out.Document.Sections, 1)
	assert.Equal(t, "Reviews", out.Document.Sections[0].Title)
	assert.InDelta(t, 4.5, out.Document.Sections[0].Items[0].Rating, 0.0001)
	assert.Empty(t, out.Text)
}

func TestGenerateUI_RawTextWithWarning(t *testing.T) {
	h := newHandlers(t, "key", &stubBackend{text: "Not JSON at all"})

	_, out, err := h.generateUI(context.Background(), nil, uiInput{Instruction: "reviews"})
	require.NoError(t, err)

	assert.Equal(t, materialize.KindMaterializationFailed.String(), out.Kind)
	assert.Equal(t, "Not JSON at all", out.Text)
	assert.NotEmpty(t, out.Warning)
}

func TestGenerateUI_RequiresInstruction(t *testing.T) {
	h := newHandlers(t, "key", &stubBackend{text: "x"})
	_, _, err := h.generateUI(context.Background(), nil, uiInput{})
	assert.Error(t, err)
}

func TestGenerate_NotConfigured(t *testing.T) {
	h := newHandlers(t, "", &stubBackend{text: "x"})
	_, _, err := h.generateMarketing(context.Background(), nil, marketingInput{Product: "tea"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "key set"))
}

func TestGenerate_FailureWrapsGenerationFailed(t *testing.T) {
	h := newHandlers(t, "key", &stubBackend{err: errors.New("quota exceeded")})
	_, _, err := h.generateMarketing(context.Background(), nil, marketingInput{})
	require.Error(t, err)
	assert.ErrorIs(t, err, gemini.ErrGenerationFailed)
}

func TestNewServer(t *testing.T) {
	h := newHandlers(t, "key", &stubBackend{text: "x"})
	assert.NotNil(t, NewServer(h.svc, "1.0.0"))
}
