// Package chunker splits normalised documents into content chunks.
package chunker

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driven"
)

// Ensure Splitter implements the interface.
var _ driven.ChunkSplitter = (*Splitter)(nil)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 200

// Splitter divides document content into chunks of at most chunkSize
// characters. In sentence and paragraph mode whole units are packed
// together, and a unit longer than chunkSize is split by characters.
type Splitter struct {
	chunkSize int
	overlap   int
	mode      domain.ChunkingMode
}

// Option configures the splitter.
type Option func(*Splitter)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(s *Splitter) {
		if size > 0 {
			s.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(s *Splitter) {
		if overlap >= 0 {
			s.overlap = overlap
		}
	}
}

// WithMode sets the unit chunks are built from. Unknown modes are ignored.
func WithMode(mode domain.ChunkingMode) Option {
	return func(s *Splitter) {
		if mode.IsValid() {
			s.mode = mode
		}
	}
}

// FromSettings returns the options matching the chunking settings.
func FromSettings(settings domain.ChunkingSettings) []Option {
	return []Option{
		WithChunkSize(settings.Size),
		WithOverlap(settings.Overlap),
		WithMode(settings.Mode),
	}
}

// New creates a splitter with the given options.
func New(opts ...Option) *Splitter {
	s := &Splitter{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
		mode:      domain.ChunkingModeCharacters,
	}

	for _, opt := range opts {
		opt(s)
	}

	// Ensure overlap doesn't exceed chunk size
	if s.overlap >= s.chunkSize {
		s.overlap = s.chunkSize / 4
	}

	return s
}

// Name returns the splitter name.
func (s *Splitter) Name() string {
	return "chunker/" + s.mode.String()
}

// span is a piece of the document content with its byte offset.
type span struct {
	text   string
	offset int
}

// Split divides the document into chunks. Chunks carry their position,
// the enclosing section heading and the document title.
func (s *Splitter) Split(ctx context.Context, doc *domain.NormalisedDocument) ([]domain.ContentChunk, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(doc.Content) == "" {
		// Empty content produces no chunks
		return nil, nil
	}

	var pieces []span
	switch s.mode {
	case domain.ChunkingModeSentences:
		pieces = s.pack(splitUnits(doc.Content, sentenceEnd), " ")
	case domain.ChunkingModeParagraphs:
		pieces = s.pack(splitUnits(doc.Content, paragraphBreak), "\n\n")
	default:
		pieces = s.window(span{text: doc.Content})
	}

	chunks := make([]domain.ContentChunk, 0, len(pieces))
	for _, p := range pieces {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		text := strings.TrimSpace(p.text)
		if text == "" {
			continue
		}
		position := len(chunks)
		chunk := domain.ContentChunk{
			Source: doc.Filename,
			Tags:   []string{},
			Metadata: domain.ChunkMetadata{
				Type:     domain.ChunkOriginDocument,
				Position: &position,
				Section:  sectionAt(doc.Sections, p.offset),
				Title:    doc.Title,
			},
		}
		chunk.SetContent(text)
		chunks = append(chunks, chunk)
	}
	return chunks, nil
}

// window cuts sp into fixed-size character windows that advance by
// chunkSize minus overlap. Cuts always fall on rune boundaries.
func (s *Splitter) window(sp span) []span {
	bounds := runeBounds(sp.text)
	runes := len(bounds) - 1
	step := s.chunkSize - s.overlap

	estimated := runes/step + 1
	out := make([]span, 0, estimated)
	for start := 0; start < runes; start += step {
		end := start + s.chunkSize
		if end > runes {
			end = runes
		}
		out = append(out, span{
			text:   sp.text[bounds[start]:bounds[end]],
			offset: sp.offset + bounds[start],
		})
		if end == runes {
			break
		}
	}
	return out
}

// pack joins consecutive units while they fit in chunkSize. Each new chunk
// repeats trailing units of the previous one up to the overlap budget.
func (s *Splitter) pack(units []span, sep string) []span {
	var out []span
	var current []span
	size := 0
	sepLen := utf8.RuneCountInString(sep)

	flush := func() {
		if len(current) == 0 {
			return
		}
		texts := make([]string, len(current))
		for i, u := range current {
			texts[i] = u.text
		}
		out = append(out, span{text: strings.Join(texts, sep), offset: current[0].offset})
	}

	for _, unit := range units {
		n := utf8.RuneCountInString(unit.text)
		if n > s.chunkSize {
			flush()
			current, size = nil, 0
			out = append(out, s.window(unit)...)
			continue
		}
		if len(current) > 0 && size+sepLen+n > s.chunkSize {
			flush()
			current, size = s.carry(current, sepLen, n)
		}
		if len(current) > 0 {
			size += sepLen
		}
		current = append(current, unit)
		size += n
	}
	flush()
	return out
}

// carry returns the trailing units of prev that fit in the overlap budget
// and still leave room for a unit of next characters.
func (s *Splitter) carry(prev []span, sepLen, next int) ([]span, int) {
	if s.overlap == 0 {
		return nil, 0
	}
	size := 0
	i := len(prev)
	for i > 0 {
		n := utf8.RuneCountInString(prev[i-1].text)
		add := n
		if size > 0 {
			add += sepLen
		}
		if size+add > s.overlap || size+add+sepLen+next > s.chunkSize {
			break
		}
		size += add
		i--
	}
	if i == len(prev) {
		return nil, 0
	}
	return append([]span(nil), prev[i:]...), size
}

var (
	sentenceEnd    = regexp.MustCompile(`[.!?]+["')\]]*\s+`)
	paragraphBreak = regexp.MustCompile(`\n[ \t]*\n\s*`)
)

// splitUnits cuts content after each separator match, trimming every unit
// and dropping empty ones. Offsets point at the first non-space byte.
func splitUnits(content string, sep *regexp.Regexp) []span {
	var units []span
	add := func(start, end int) {
		raw := content[start:end]
		trimmed := strings.TrimLeft(raw, " \t\r\n")
		lead := len(raw) - len(trimmed)
		trimmed = strings.TrimRight(trimmed, " \t\r\n")
		if trimmed != "" {
			units = append(units, span{text: trimmed, offset: start + lead})
		}
	}

	start := 0
	for _, m := range sep.FindAllStringIndex(content, -1) {
		add(start, m[1])
		start = m[1]
	}
	add(start, len(content))
	return units
}

// runeBounds returns the byte offset of every rune plus len(text).
func runeBounds(text string) []int {
	bounds := make([]int, 0, len(text)+1)
	for i := range text {
		bounds = append(bounds, i)
	}
	return append(bounds, len(text))
}

// sectionAt returns the heading of the last section starting at or before
// offset.
func sectionAt(sections []domain.Section, offset int) string {
	heading := ""
	for _, s := range sections {
		if s.Offset > offset {
			break
		}
		heading = s.Heading
	}
	return heading
}
