package materialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reviewsDoc = `{"sections":[{"type":"cards","title":"Reviews","items":[{"avatar":"http://x/a.png","name":"A","rating":4.5,"comment":"ok"}]}]}`

func TestStripFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "no fences", input: `{"a":1}`, want: `{"a":1}`},
		{name: "json tagged fence", input: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "upper case tag", input: "```JSON\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "untagged fence", input: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "leading fence only", input: "```json\n{\"a\":1}", want: `{"a":1}`},
		{name: "trailing fence only", input: "{\"a\":1}\n```", want: `{"a":1}`},
		{name: "surrounding whitespace", input: "  \n```json\n{\"a\":1}\n```\n\n", want: `{"a":1}`},
		{name: "empty fence", input: "```json\n```", want: ""},
		{name: "plain text", input: "  Not JSON at all  ", want: "Not JSON at all"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.input))
		})
	}
}

func TestStripFencesIdempotent(t *testing.T) {
	inputs := []string{
		"",
		"hello",
		reviewsDoc,
		"```json\n" + reviewsDoc + "\n```",
		"```\n" + reviewsDoc,
		reviewsDoc + "\n```",
	}
	for _, in := range inputs {
		once := StripFences(in)
		assert.Equal(t, once, StripFences(once), "input %q", in)
	}
}

func TestMaterializeFencedEqualsUnwrapped(t *testing.T) {
	inners := []string{
		reviewsDoc,
		`{"sections":[]}`,
		`{"sections":[{"type":"hero","title":"Top"}]}`,
		"Not JSON at all",
		`{"sections":"nope"}`,
		`{}`,
	}
	wrappers := []func(string) string{
		func(s string) string { return "```json\n" + s + "\n```" },
		func(s string) string { return "```Json\n" + s + "\n```" },
		func(s string) string { return "```\n" + s + "\n```" },
		func(s string) string { return "```json\n" + s },
		func(s string) string { return s + "\n```" },
		func(s string) string { return "\n\n  " + s + "  \n" },
	}
	for _, inner := range inners {
		want := Materialize(inner)
		for i, wrap := range wrappers {
			assert.Equal(t, want, Materialize(wrap(inner)), "wrapper %d, inner %q", i, inner)
		}
	}
}

func TestMaterializeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "whitespace", input: "   \n\t"},
		{name: "plain text", input: "Not JSON at all"},
		{name: "truncated", input: `{"sections":[{"type":"cards"`},
		{name: "json null", input: "null"},
		{name: "top level array", input: `[{"type":"cards"}]`},
		{name: "top level number", input: "42"},
		{name: "top level string", input: `"sections"`},
		{name: "missing sections", input: `{"title":"x"}`},
		{name: "null sections", input: `{"sections":null}`},
		{name: "sections not array", input: `{"sections":"cards"}`},
		{name: "section not object", input: `{"sections":[1,2]}`},
		{name: "items not array", input: `{"sections":[{"type":"cards","items":"none"}]}`},
		{name: "item not object", input: `{"sections":[{"type":"cards","items":["A"]}]}`},
		{name: "rating as string", input: `{"sections":[{"type":"cards","items":[{"name":"A","rating":"4.5"}]}]}`},
		{name: "name as number", input: `{"sections":[{"type":"cards","items":[{"name":7}]}]}`},
		{name: "only fences", input: "```json\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.Nil(t, Materialize(tt.input))
			})
		})
	}
}

func TestMaterializeDefaults(t *testing.T) {
	doc := Materialize(`{"sections":[{"type":"cards","items":[{"name":"B"}]},{"type":"cards","title":"Empty"}]}`)
	require.NotNil(t, doc)
	require.Len(t, doc.Sections, 2)

	item := doc.Sections[0].Items[0]
	assert.Equal(t, "B", item.Name)
	assert.Equal(t, 0.0, item.Rating)
	assert.Empty(t, item.Avatar)
	assert.Empty(t, item.Comment)
	assert.Empty(t, doc.Sections[0].Title)

	assert.NotNil(t, doc.Sections[1].Items)
	assert.Empty(t, doc.Sections[1].Items)
}

func TestMaterializeEmptySections(t *testing.T) {
	doc := Materialize(`{"sections":[]}`)
	require.NotNil(t, doc)
	assert.Empty(t, doc.Sections)
}

func TestMaterializeReviewsEndToEnd(t *testing.T) {
	doc := Materialize("```json\n" + reviewsDoc + "\n```")
	require.NotNil(t, doc)
	require.Len(t, doc.Sections, 1)

	sec := doc.Sections[0]
	assert.Equal(t, "Reviews", sec.Title)
	assert.True(t, sec.IsCards())
	require.Len(t, sec.Items, 1)
	assert.Equal(t, Item{Avatar: "http://x/a.png", Name: "A", Rating: 4.5, Comment: "ok"}, sec.Items[0])
}

func TestMaterializeKeepsUnknownSectionTypes(t *testing.T) {
	doc := Materialize(`{"sections":[{"type":"carousel","title":"Gallery","items":[]},{"type":"cards","title":"Reviews","items":[]}]}`)
	require.NotNil(t, doc)
	require.Len(t, doc.Sections, 2)
	assert.False(t, doc.Sections[0].IsCards())
	assert.Equal(t, "Gallery", doc.Sections[0].Title)
	assert.True(t, doc.Sections[1].IsCards())
}
