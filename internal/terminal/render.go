package terminal

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/moasq/nanogen/internal/materialize"
	"github.com/moasq/nanogen/internal/view"
)

// Renderer writes tab result panels to a writer.
type Renderer struct {
	out      io.Writer
	width    int
	markdown *glamour.TermRenderer
	styles   cardStyles
}

type cardStyles struct {
	section lipgloss.Style
	card    lipgloss.Style
	name    lipgloss.Style
	stars   lipgloss.Style
	muted   lipgloss.Style
	warning lipgloss.Style
}

func newCardStyles(width int) cardStyles {
	return cardStyles{
		section: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")).MarginTop(1),
		card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#6B7280")).
			Padding(0, 1).
			Width(width),
		name:    lipgloss.NewStyle().Bold(true),
		stars:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#9CA3AF")),
		warning: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F59E0B")),
	}
}

// NewRenderer creates a renderer wrapping at width columns. styled selects
// the auto-detected markdown theme; otherwise plain ASCII output is used.
func NewRenderer(out io.Writer, width int, styled bool) *Renderer {
	if width <= 20 {
		width = 80
	}
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	md, _ := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	return &Renderer{out: out, width: width, markdown: md, styles: newCardStyles(width - 2)}
}

// RenderTab writes the result panel of one tab.
func (r *Renderer) RenderTab(ts view.TabState) {
	if ts.Loading {
		fmt.Fprintln(r.out, r.styles.muted.Render("Generating..."))
		return
	}
	r.RenderPanel(ts.Panel)
}

// RenderPanel writes a result panel.
func (r *Renderer) RenderPanel(p view.Panel) {
	switch p.Kind {
	case view.PanelEmpty:
		fmt.Fprintln(r.out, r.styles.muted.Render("No result yet. Fill in the form and run /generate."))
	case view.PanelText:
		r.RenderMarkdown(p.Text)
	case view.PanelDocument:
		r.RenderDocument(p.Document)
	case view.PanelRaw:
		fmt.Fprintln(r.out, SanitizeANSI(p.Text))
		fmt.Fprintln(r.out, r.styles.warning.Render(p.Warning))
	case view.PanelError:
		fmt.Fprintln(r.out, r.styles.warning.Render(p.Text))
	}
}

// RenderMarkdown renders model text as markdown, falling back to the
// sanitized text when rendering fails.
func (r *Renderer) RenderMarkdown(text string) {
	text = SanitizeANSI(text)
	if r.markdown != nil {
		if out, err := r.markdown.Render(text); err == nil {
			fmt.Fprint(r.out, out)
			return
		}
	}
	fmt.Fprintln(r.out, text)
}

// RenderDocument writes every section of doc. Sections other than cards
// show their title only.
func (r *Renderer) RenderDocument(doc *materialize.Document) {
	if doc == nil {
		return
	}
	if len(doc.Sections) == 0 {
		fmt.Fprintln(r.out, r.styles.muted.Render("The document has no sections."))
		return
	}
	for _, sec := range doc.Sections {
		if sec.Title != "" {
			fmt.Fprintln(r.out, r.styles.section.Render(SanitizeANSI(sec.Title)))
		}
		if !sec.IsCards() {
			continue
		}
		if len(sec.Items) == 0 {
			fmt.Fprintln(r.out, r.styles.muted.Render("(no items)"))
			continue
		}
		for _, item := range sec.Items {
			fmt.Fprintln(r.out, r.renderCard(item))
		}
	}
}

func (r *Renderer) renderCard(item materialize.Item) string {
	var lines []string
	name := SanitizeANSI(item.Name)
	if name == "" {
		name = "Anonymous"
	}
	lines = append(lines, r.styles.name.Render(name)+"  "+r.styles.stars.Render(Stars(item.Rating))+" "+FormatRating(item.Rating))
	if item.Avatar != "" {
		lines = append(lines, r.styles.muted.Render(SanitizeANSI(item.Avatar)))
	}
	if item.Comment != "" {
		lines = append(lines, SanitizeANSI(item.Comment))
	}
	return r.styles.card.Render(strings.Join(lines, "\n"))
}

// Stars draws a five-star bar for a rating, clamped to [0, 5].
func Stars(rating float64) string {
	n := int(math.Round(clampRating(rating)))
	return strings.Repeat("★", n) + strings.Repeat("☆", 5-n)
}

// FormatRating prints a rating with one decimal, e.g. 4.5 or 0.0.
func FormatRating(rating float64) string {
	return fmt.Sprintf("%.1f", rating)
}

func clampRating(r float64) float64 {
	switch {
	case math.IsNaN(r) || r < 0:
		return 0
	case r > 5:
		return 5
	default:
		return r
	}
}
