package commands

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/moasq/nanogen/internal/prompts"
	"github.com/moasq/nanogen/internal/view"
)

// gatedBackend blocks each call until release is closed and records
// whether the call's context was cancelled while it waited.
type gatedBackend struct {
	entered   chan struct{}
	release   chan struct{}
	cancelled bool
}

func (b *gatedBackend) GenerateContent(ctx context.Context, _ string, _ []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	close(b.entered)
	<-b.release
	b.cancelled = ctx.Err() != nil
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "Tuesday: intervals"}}}}},
	}, nil
}

func TestInterruptDuringGenerationDoesNotCancel(t *testing.T) {
	gb := &gatedBackend{entered: make(chan struct{}), release: make(chan struct{})}
	a := newTestApp(t, "k", gb)

	var out bytes.Buffer
	s := newSession(a, &out, false)

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.generate(context.Background(), prompts.Plan)
	}()
	<-gb.entered

	assert.False(t, s.interrupt(), "Ctrl+C must not end the session while a call is in flight")
	assert.True(t, a.svc.Store().Snapshot().Tab(prompts.Plan).Loading)

	close(gb.release)
	<-done

	assert.False(t, gb.cancelled)
	ts := a.svc.Store().Snapshot().Tab(prompts.Plan)
	require.False(t, ts.Loading)
	assert.Equal(t, view.PanelText, ts.Panel.Kind)
	assert.Contains(t, out.String(), "intervals")
}

func TestInterruptWhenIdleEndsSession(t *testing.T) {
	a := newTestApp(t, "k", &scriptedBackend{text: "ok"})
	s := newSession(a, &bytes.Buffer{}, false)

	assert.True(t, s.interrupt())

	s.generate(context.Background(), prompts.Plan)
	assert.True(t, s.interrupt(), "the in-flight flag is released after the call")
}
