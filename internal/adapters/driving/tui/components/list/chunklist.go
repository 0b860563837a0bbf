// Package list renders windows of the chunk collection.
package list

import (
	"strings"

	"github.com/custodia-labs/contentbuilder/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

// ChunkList renders chunks as fixed-height rows so the virtual scroll
// geometry holds: chunk i always starts at row i*ItemHeight.
type ChunkList struct {
	styles     *styles.Styles
	width      int
	itemHeight int
}

// NewChunkList creates a renderer. Item heights below 1 become 1.
func NewChunkList(s *styles.Styles, itemHeight int) *ChunkList {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &ChunkList{
		styles:     s,
		width:      80,
		itemHeight: max(itemHeight, 1),
	}
}

// SetWidth sets the render width.
func (l *ChunkList) SetWidth(width int) {
	l.width = max(width, 10)
}

// ItemHeight returns the number of rows per chunk.
func (l *ChunkList) ItemHeight() int {
	return l.itemHeight
}

// Render draws chunks (whose first element has index first) and returns
// rows lines starting skip rows into the first chunk.
func (l *ChunkList) Render(chunks []domain.ContentChunk, first, selected, skip, rows int) string {
	lines := make([]string, 0, len(chunks)*l.itemHeight)
	for i := range chunks {
		lines = append(lines, l.RenderItem(&chunks[i], first+i == selected)...)
	}

	skip = min(max(skip, 0), len(lines))
	lines = lines[skip:]
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

// RenderItem returns exactly ItemHeight lines for c.
func (l *ChunkList) RenderItem(c *domain.ContentChunk, selected bool) []string {
	indicator := "  "
	if selected {
		indicator = "> "
	}

	source := c.Source
	if source == "" {
		source = "(manual)"
	}
	header := indicator + l.styles.Source.Render(truncate(source, l.width/2))
	if len(c.Tags) > 0 {
		header += "  " + l.styles.Tag.Render(truncate("#"+strings.Join(c.Tags, " #"), l.width/2-4))
	}

	lines := []string{header}
	for _, p := range previewLines(c.Content, l.width-4, l.itemHeight-1) {
		lines = append(lines, "    "+l.styles.Preview.Render(p))
	}

	if selected {
		for i := range lines {
			lines[i] = l.styles.Selected.Render(lines[i])
		}
	}
	return lines
}

// previewLines wraps text with whitespace collapsed into exactly n lines of
// at most width runes. Overflow is marked with an ellipsis.
func previewLines(text string, width, n int) []string {
	if n <= 0 {
		return nil
	}
	width = max(width, 1)
	runes := []rune(strings.Join(strings.Fields(text), " "))

	out := make([]string, 0, n)
	for len(runes) > 0 && len(out) < n {
		if len(runes) <= width {
			out = append(out, string(runes))
			runes = nil
			break
		}
		if len(out) == n-1 {
			out = append(out, string(runes[:width-1])+"…")
			runes = nil
			break
		}
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	for len(out) < n {
		out = append(out, "")
	}
	return out
}

// truncate shortens s to maxLen runes with an ellipsis.
func truncate(s string, maxLen int) string {
	maxLen = max(maxLen, 2)
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-1]) + "…"
}
