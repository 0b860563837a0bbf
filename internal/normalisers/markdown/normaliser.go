// Package markdown normalises Markdown documents to plain text.
package markdown

import (
	"context"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

var (
	codeBlock    = regexp.MustCompile("(?s)```[^`]*```")
	inlineCode   = regexp.MustCompile("`([^`]+)`")
	images       = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	links        = regexp.MustCompile(`\[([^\]]+)\]\([^)]+\)`)
	headings     = regexp.MustCompile(`(?m)^#{1,6}\s+`)
	blockquote   = regexp.MustCompile(`(?m)^>\s*`)
	hr           = regexp.MustCompile(`(?m)^[-*_]{3,}\s*$`)
	listMarkers  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedList = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	emphasis     = regexp.MustCompile(`(\*\*|__|\*|\b_|_\b)`)
	multiNewline = regexp.MustCompile(`\n{3,}`)
)

// Normaliser handles Markdown documents.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/markdown", "text/x-markdown"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips Markdown syntax and records the position of every
// heading in the resulting text.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.NormalisedDocument, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	source := strings.ReplaceAll(string(raw.Content), "\r\n", "\n")
	content := stripMarkdown(source)

	return &domain.NormalisedDocument{
		Title:    extractMarkdownTitle(source, raw.URI),
		Filename: filepath.Base(raw.URI),
		Content:  content,
		Sections: locateSections(collectHeadings(source), content),
	}, nil
}

// collectHeadings returns ATX heading texts in document order, skipping
// fenced code.
func collectHeadings(content string) []string {
	var out []string
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			inFence = !inFence
			continue
		}
		if inFence || !strings.HasPrefix(trimmed, "#") {
			continue
		}
		text := strings.TrimSpace(strings.TrimLeft(trimmed, "#"))
		level := len(trimmed) - len(strings.TrimLeft(trimmed, "#"))
		if level > 6 || text == "" || !strings.HasPrefix(trimmed[level:], " ") {
			continue
		}
		out = append(out, stripInline(text))
	}
	return out
}

// locateSections finds each heading, in order, as a whole line of the
// stripped text.
func locateSections(titles []string, content string) []domain.Section {
	var sections []domain.Section
	offset := 0
	for _, title := range titles {
		idx := indexLine(content[offset:], title)
		if idx < 0 {
			continue
		}
		sections = append(sections, domain.Section{Heading: title, Offset: offset + idx})
		offset += idx + len(title)
	}
	return sections
}

// indexLine returns the offset of the first line of s equal to line, or -1.
func indexLine(s, line string) int {
	start := 0
	for {
		i := strings.Index(s[start:], line)
		if i < 0 {
			return -1
		}
		pos := start + i
		end := pos + len(line)
		if (pos == 0 || s[pos-1] == '\n') && (end == len(s) || s[end] == '\n') {
			return pos
		}
		start = pos + 1
	}
}

// extractMarkdownTitle returns the first H1 heading or falls back to the
// filename.
func extractMarkdownTitle(content, uri string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return stripInline(strings.TrimSpace(strings.TrimPrefix(line, "#")))
		}
	}

	filename := filepath.Base(uri)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}

// stripInline removes span-level syntax from one line.
func stripInline(s string) string {
	s = images.ReplaceAllString(s, "")
	s = links.ReplaceAllString(s, "$1")
	s = inlineCode.ReplaceAllString(s, "$1")
	s = emphasis.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// stripMarkdown removes common Markdown formatting. Fenced code is dropped;
// inline code keeps its text.
func stripMarkdown(content string) string {
	content = codeBlock.ReplaceAllString(content, "")
	content = images.ReplaceAllString(content, "")
	content = links.ReplaceAllString(content, "$1")
	content = inlineCode.ReplaceAllString(content, "$1")
	content = headings.ReplaceAllString(content, "")
	content = hr.ReplaceAllString(content, "")
	content = blockquote.ReplaceAllString(content, "")
	content = listMarkers.ReplaceAllString(content, "")
	content = numberedList.ReplaceAllString(content, "")
	content = emphasis.ReplaceAllString(content, "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	content = multiNewline.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
	return strings.TrimSpace(content)
}
