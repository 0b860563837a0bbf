package domain

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// ChunkOrigin records how a chunk came into existence.
type ChunkOrigin string

// Available chunk origins.
const (
	// ChunkOriginManual is a chunk authored directly by the user.
	ChunkOriginManual ChunkOrigin = "manual"

	// ChunkOriginDocument is a chunk produced by splitting an imported document.
	ChunkOriginDocument ChunkOrigin = "document"
)

// IsValid returns true if the origin is recognised.
func (o ChunkOrigin) IsValid() bool {
	return o == ChunkOriginManual || o == ChunkOriginDocument
}

// ContentChunk is the atomic unit of the knowledge base.
type ContentChunk struct {
	// ID is the unique identifier within a collection.
	ID string `json:"id"`

	// LegacyID is an identifier carried over from older exports.
	LegacyID string `json:"legacyId,omitempty"`

	// Content is the chunk text.
	Content string `json:"content"`

	// Source is the originating file or source name.
	Source string `json:"source"`

	// Tags is the ordered, de-duplicated tag list.
	Tags []string `json:"tags"`

	// TagsInput is the comma-joined tag string used for editing.
	TagsInput string `json:"tagsInput"`

	// LastModified is the epoch-millisecond time of the last mutation.
	LastModified int64 `json:"lastModified"`

	// Stats are derived text statistics.
	Stats ChunkStats `json:"stats"`

	// Metadata describes the chunk's origin.
	Metadata ChunkMetadata `json:"metadata"`
}

// ChunkStats are counts derived from the chunk content.
type ChunkStats struct {
	Words      int `json:"words"`
	Characters int `json:"characters"`
	Sentences  int `json:"sentences"`
}

// ChunkMetadata describes where a chunk came from.
type ChunkMetadata struct {
	WordCount int         `json:"wordCount"`
	CreatedAt int64       `json:"createdAt"`
	Type      ChunkOrigin `json:"type"`
	Position  *int        `json:"position,omitempty"`
	Section   string      `json:"section,omitempty"`
	Title     string      `json:"title,omitempty"`
}

// Clone returns a structurally independent copy of the chunk.
func (c *ContentChunk) Clone() ContentChunk {
	out := *c
	if c.Tags != nil {
		out.Tags = append([]string(nil), c.Tags...)
	}
	if c.Metadata.Position != nil {
		pos := *c.Metadata.Position
		out.Metadata.Position = &pos
	}
	return out
}

// SetTags sanitises tags and refreshes the denormalised edit string.
func (c *ContentChunk) SetTags(tags []string) {
	c.Tags = SanitizeTags(tags)
	c.TagsInput = strings.Join(c.Tags, ", ")
}

// SetContent replaces the content and recomputes the derived statistics.
func (c *ContentChunk) SetContent(content string) {
	c.Content = content
	c.Stats = ComputeStats(content)
	c.Metadata.WordCount = c.Stats.Words
}

// HasTag reports whether the chunk carries the exact tag.
func (c *ContentChunk) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SanitizeTags trims tags, drops empty entries and removes duplicates while
// preserving first-seen order.
func SanitizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseTags splits a comma-separated tag string and sanitises the result.
func ParseTags(input string) []string {
	return SanitizeTags(strings.Split(input, ","))
}

// ComputeStats counts words, characters and sentences in text.
// A sentence is a run of text terminated by '.', '!' or '?', or by the end
// of non-blank text.
func ComputeStats(text string) ChunkStats {
	stats := ChunkStats{
		Words:      len(strings.Fields(text)),
		Characters: utf8.RuneCountInString(text),
	}

	inSentence := false
	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			if inSentence {
				stats.Sentences++
				inSentence = false
			}
		case !unicode.IsSpace(r):
			inSentence = true
		}
	}
	if inSentence {
		stats.Sentences++
	}
	return stats
}
