package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
)

func contents(chunks []domain.ContentChunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.Content
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		s := New()
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, s.overlap)
		assert.Equal(t, domain.ChunkingModeCharacters, s.mode)
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		s := New(WithChunkSize(100), WithOverlap(150))
		assert.Equal(t, 25, s.overlap)
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		s := New(WithChunkSize(0), WithOverlap(-1), WithMode("words"))
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
		assert.Equal(t, DefaultChunkOverlap, s.overlap)
		assert.Equal(t, domain.ChunkingModeCharacters, s.mode)
	})

	t.Run("from settings", func(t *testing.T) {
		s := New(FromSettings(domain.ChunkingSettings{Size: 300, Overlap: 30, Mode: domain.ChunkingModeSentences})...)
		assert.Equal(t, 300, s.chunkSize)
		assert.Equal(t, 30, s.overlap)
		assert.Equal(t, "chunker/sentences", s.Name())
	})
}

func TestSplit_Characters(t *testing.T) {
	s := New(WithChunkSize(4), WithOverlap(1))

	chunks, err := s.Split(context.Background(), &domain.NormalisedDocument{
		Title:    "Letters",
		Filename: "letters.txt",
		Content:  "abcdefghij",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"abcd", "defg", "ghij"}, contents(chunks))
	for i, c := range chunks {
		require.NotNil(t, c.Metadata.Position)
		assert.Equal(t, i, *c.Metadata.Position)
		assert.Equal(t, "letters.txt", c.Source)
		assert.Equal(t, "Letters", c.Metadata.Title)
		assert.Equal(t, domain.ChunkOriginDocument, c.Metadata.Type)
		assert.Empty(t, c.ID)
		assert.Equal(t, 4, c.Stats.Characters)
	}
}

func TestSplit_Characters_RuneSafe(t *testing.T) {
	s := New(WithChunkSize(2), WithOverlap(0))

	chunks, err := s.Split(context.Background(), &domain.NormalisedDocument{Content: "ééééé"})

	require.NoError(t, err)
	assert.Equal(t, []string{"éé", "éé", "é"}, contents(chunks))
}

func TestSplit_Sentences(t *testing.T) {
	doc := &domain.NormalisedDocument{Content: "One two. Three four. Five six."}

	chunks, err := New(WithChunkSize(20), WithOverlap(0), WithMode(domain.ChunkingModeSentences)).
		Split(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"One two. Three four.", "Five six."}, contents(chunks))

	chunks, err = New(WithChunkSize(25), WithOverlap(11), WithMode(domain.ChunkingModeSentences)).
		Split(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, []string{"One two. Three four.", "Three four. Five six."}, contents(chunks))
}

func TestSplit_Paragraphs(t *testing.T) {
	s := New(WithChunkSize(25), WithOverlap(0), WithMode(domain.ChunkingModeParagraphs))

	chunks, err := s.Split(context.Background(), &domain.NormalisedDocument{
		Content: "Para one.\n\nPara two.\n\n\nPara three is longer.",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"Para one.\n\nPara two.", "Para three is longer."}, contents(chunks))
}

func TestSplit_OversizedUnitFallsBackToCharacters(t *testing.T) {
	s := New(WithChunkSize(10), WithOverlap(0), WithMode(domain.ChunkingModeParagraphs))

	chunks, err := s.Split(context.Background(), &domain.NormalisedDocument{
		Content: "short\n\nabcdefghijklmno",
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"short", "abcdefghij", "klmno"}, contents(chunks))
	assert.Equal(t, 2, *chunks[2].Metadata.Position)
}

func TestSplit_Sections(t *testing.T) {
	content := "Intro\n\nHello there.\n\nUsage\n\nRun it."
	doc := &domain.NormalisedDocument{
		Content: content,
		Sections: []domain.Section{
			{Heading: "Intro", Offset: 0},
			{Heading: "Usage", Offset: strings.Index(content, "Usage")},
		},
	}

	chunks, err := New(WithChunkSize(15), WithOverlap(0), WithMode(domain.ChunkingModeParagraphs)).
		Split(context.Background(), doc)

	require.NoError(t, err)
	assert.Equal(t, []string{"Intro", "Hello there.", "Usage\n\nRun it."}, contents(chunks))
	assert.Equal(t, "Intro", chunks[0].Metadata.Section)
	assert.Equal(t, "Intro", chunks[1].Metadata.Section)
	assert.Equal(t, "Usage", chunks[2].Metadata.Section)
}

func TestSplit_EmptyAndErrors(t *testing.T) {
	s := New()

	chunks, err := s.Split(context.Background(), &domain.NormalisedDocument{Content: "  \n\n "})
	assert.NoError(t, err)
	assert.Nil(t, chunks)

	_, err = s.Split(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Split(ctx, &domain.NormalisedDocument{Content: "text"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSplitUnits(t *testing.T) {
	units := splitUnits("  First.  Second!\nThird", sentenceEnd)

	require.Len(t, units, 3)
	assert.Equal(t, span{text: "First.", offset: 2}, units[0])
	assert.Equal(t, span{text: "Second!", offset: 10}, units[1])
	assert.Equal(t, span{text: "Third", offset: 18}, units[2])
}

func TestSectionAt(t *testing.T) {
	sections := []domain.Section{{Heading: "A", Offset: 5}, {Heading: "B", Offset: 20}}

	assert.Equal(t, "", sectionAt(sections, 0))
	assert.Equal(t, "A", sectionAt(sections, 5))
	assert.Equal(t, "A", sectionAt(sections, 19))
	assert.Equal(t, "B", sectionAt(sections, 100))
	assert.Equal(t, "", sectionAt(nil, 3))
}

func BenchmarkSplit(b *testing.B) {
	doc := &domain.NormalisedDocument{Content: strings.Repeat("A sentence of text. ", 2000)}
	s := New(WithMode(domain.ChunkingModeSentences))
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Split(ctx, doc)
	}
}
