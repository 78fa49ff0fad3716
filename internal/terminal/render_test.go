package terminal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/view"
)

func renderPanel(p view.Panel) string {
	var buf bytes.Buffer
	NewRenderer(&buf, 80, false).RenderPanel(p)
	return buf.String()
}

func TestRenderDocumentCards(t *testing.T) {
	raw := "```json\n{\"sections\":[{\"type\":\"cards\",\"title\":\"Reviews\",\"items\":[{\"avatar\":\"http://x/a.png\",\"name\":\"A\",\"rating\":4.5,\"comment\":\"ok\"}]}]}\n```"
	doc := materialize.Materialize(raw)
	if doc == nil {
		t.Fatal("expected a document")
	}

	out := renderPanel(view.Panel{Kind: view.PanelDocument, Document: doc})
	for _, want := range []string{"Reviews", "http://x/a.png", "A", "4.5", "ok", "★★★★★"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMissingRatingShowsZero(t *testing.T) {
	doc := materialize.Materialize(`{"sections":[{"type":"cards","items":[{"name":"B"}]}]}`)
	out := renderPanel(view.Panel{Kind: view.PanelDocument, Document: doc})
	if !strings.Contains(out, "0.0") {
		t.Errorf("expected rating 0.0:\n%s", out)
	}
	if !strings.Contains(out, "☆☆☆☆☆") {
		t.Errorf("expected empty stars:\n%s", out)
	}
}

func TestRenderUnknownSectionShowsTitleOnly(t *testing.T) {
	doc := materialize.Materialize(`{"sections":[
		{"type":"carousel","title":"Hidden body","items":[{"name":"Skipped"}]},
		{"type":"cards","title":"Shown","items":[{"name":"Kept"}]}
	]}`)
	out := renderPanel(view.Panel{Kind: view.PanelDocument, Document: doc})

	if !strings.Contains(out, "Hidden body") {
		t.Errorf("unknown section title missing:\n%s", out)
	}
	if strings.Contains(out, "Skipped") {
		t.Errorf("unknown section body rendered:\n%s", out)
	}
	if !strings.Contains(out, "Kept") {
		t.Errorf("later section not rendered:\n%s", out)
	}
}

func TestRenderRawPanelAppendsWarning(t *testing.T) {
	out := renderPanel(view.PanelFor(materialize.Structured("Not JSON at all")))
	if !strings.Contains(out, "Not JSON at all") {
		t.Errorf("raw text missing:\n%s", out)
	}
	if strings.Index(out, view.MaterializationWarning) < strings.Index(out, "Not JSON at all") {
		t.Errorf("warning should follow the raw text:\n%s", out)
	}
}

func TestRenderErrorPanel(t *testing.T) {
	out := renderPanel(view.Panel{Kind: view.PanelError, Text: view.GenerationFailedMessage})
	if !strings.Contains(out, view.GenerationFailedMessage) {
		t.Errorf("expected fixed warning, got:\n%s", out)
	}
}

func TestRenderTextPanel(t *testing.T) {
	out := renderPanel(view.Panel{Kind: view.PanelText, Text: "Day one: squats"})
	if !strings.Contains(out, "squats") {
		t.Errorf("text missing:\n%s", out)
	}
}

func TestRenderTabLoading(t *testing.T) {
	var buf bytes.Buffer
	NewRenderer(&buf, 80, false).RenderTab(view.TabState{Loading: true, Panel: view.Panel{Kind: view.PanelText, Text: "old"}})
	if !strings.Contains(buf.String(), "Generating") || strings.Contains(buf.String(), "old") {
		t.Errorf("unexpected loading output: %q", buf.String())
	}
}

func TestStars(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "☆☆☆☆☆"},
		{-2, "☆☆☆☆☆"},
		{2.4, "★★☆☆☆"},
		{4.5, "★★★★★"},
		{9, "★★★★★"},
	}
	for _, tt := range tests {
		if got := Stars(tt.rating); got != tt.want {
			t.Errorf("Stars(%v) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestFormatRating(t *testing.T) {
	if got := FormatRating(4.5); got != "4.5" {
		t.Errorf("FormatRating(4.5) = %q", got)
	}
	if got := FormatRating(0); got != "0.0" {
		t.Errorf("FormatRating(0) = %q", got)
	}
}
