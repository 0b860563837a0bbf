package markdown

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()

	assert.Contains(t, mimeTypes, "text/markdown")
	assert.Contains(t, mimeTypes, "text/x-markdown")
	assert.Len(t, mimeTypes, 2)
}

func TestPriority(t *testing.T) {
	assert.Equal(t, 50, New().Priority())
}

func TestNormalise_Success(t *testing.T) {
	raw := &domain.RawDocument{
		URI:      "/path/to/document.md",
		MIMEType: "text/markdown",
		Content:  []byte("# Hello World\r\n\r\nThis is a test."),
	}

	doc, err := New().Normalise(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, "Hello World", doc.Title)
	assert.Equal(t, "document.md", doc.Filename)
	assert.Equal(t, "Hello World\n\nThis is a test.", doc.Content)
}

func TestNormalise_NilDocument(t *testing.T) {
	doc, err := New().Normalise(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Nil(t, doc)
}

func TestNormalise_TitleExtraction(t *testing.T) {
	tests := []struct {
		name          string
		content       string
		uri           string
		expectedTitle string
	}{
		{"H1 heading", "# My Document\n\nContent here.", "/doc.md", "My Document"},
		{"H1 with extra spaces", "#   Spaced Title   \n\nContent", "/doc.md", "Spaced Title"},
		{"H1 with emphasis", "# The **Real** Title", "/doc.md", "The Real Title"},
		{"no heading falls back to filename", "Just some content.", "/my_document.md", "my document"},
		{"H2 first falls back to filename", "## Second Level\n\nNo H1.", "/read-me.md", "read me"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			raw := &domain.RawDocument{URI: tc.uri, Content: []byte(tc.content)}
			doc, err := New().Normalise(context.Background(), raw)
			require.NoError(t, err)
			assert.Equal(t, tc.expectedTitle, doc.Title)
		})
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"headings removed", "# Title\n## Subtitle\n### Third", "Title\nSubtitle\nThird"},
		{"bold and italic removed", "This is **bold** and *italic* text", "This is bold and italic text"},
		{"underscore emphasis removed", "_emph_ but snake_case stays", "emph but snake_case stays"},
		{"links converted", "Click [here](https://example.com)", "Click here"},
		{"images removed", "See ![alt text](image.png) here", "See  here"},
		{"code blocks removed", "Before\n```go\ncode here\n```\nAfter", "Before\n\nAfter"},
		{"inline code keeps text", "Use `make test` here", "Use make test here"},
		{"blockquotes cleaned", "> This is a quote", "This is a quote"},
		{"list markers removed", "- Item 1\n* Item 2\n+ Item 3", "Item 1\nItem 2\nItem 3"},
		{"numbered list markers removed", "1. First\n2. Second", "First\nSecond"},
		{"horizontal rule removed", "Above\n\n---\n\nBelow", "Above\n\nBelow"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, stripMarkdown(tc.input))
		})
	}
}

func TestNormalise_Sections(t *testing.T) {
	source := "# Intro\n\nHello.\n\n## Setup **now**\n\nRun it.\n\n```\n# not a heading\n```\n\n#hashtag\n\n## Usage\n\nUse it."
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "guide.md", Content: []byte(source)})
	require.NoError(t, err)

	require.Len(t, doc.Sections, 3)
	assert.Equal(t, []string{"Intro", "Setup now", "Usage"},
		[]string{doc.Sections[0].Heading, doc.Sections[1].Heading, doc.Sections[2].Heading})

	prev := -1
	for _, s := range doc.Sections {
		assert.Greater(t, s.Offset, prev)
		assert.True(t, strings.HasPrefix(doc.Content[s.Offset:], s.Heading), s.Heading)
		prev = s.Offset
	}
	assert.Equal(t, 0, doc.Sections[0].Offset)
	assert.NotContains(t, doc.Content, "not a heading")
}

func TestNormalise_RepeatedHeadingText(t *testing.T) {
	source := "## Notes\n\nNotes about notes.\n\n## Notes\n\nMore."
	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "n.md", Content: []byte(source)})
	require.NoError(t, err)

	require.Len(t, doc.Sections, 2)
	assert.Equal(t, 0, doc.Sections[0].Offset)
	assert.Equal(t, strings.LastIndex(doc.Content, "Notes\n\nMore."), doc.Sections[1].Offset)
}

func TestNormalise_ComplexMarkdown(t *testing.T) {
	complexMarkdown := "# Main Title\n\n## Section 1\n\nThis is a paragraph with **bold** text.\n\n" +
		"- List item 1\n- List item 2\n\n```go\nfunc main() {}\n```\n\n[Link](https://example.com)\n\n![Image](image.png)\n"

	doc, err := New().Normalise(context.Background(), &domain.RawDocument{URI: "/path/complex.md", Content: []byte(complexMarkdown)})
	require.NoError(t, err)

	assert.Equal(t, "Main Title", doc.Title)
	assert.NotContains(t, doc.Content, "**bold**")
	assert.Contains(t, doc.Content, "bold")
	assert.NotContains(t, doc.Content, "[Link]")
	assert.Contains(t, doc.Content, "Link")
	assert.NotContains(t, doc.Content, "```")
	assert.NotContains(t, doc.Content, "\n\n\n")
}
