package services

import (
	"fmt"
	"strings"

	ahocorasick "github.com/petar-dambovaliev/aho-corasick"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
	"github.com/custodia-labs/contentbuilder/internal/logger"
)

// Ensure AutoTagService implements the interface.
var _ driving.AutoTagService = (*AutoTagService)(nil)

// TagRule maps a keyword found in chunk content to a tag.
type TagRule struct {
	Keyword string
	Tag     string
}

// ParseTagRules parses "keyword=tag" strings. Keywords are matched case
// insensitively, so they are lowercased here.
func ParseTagRules(rules []string) ([]TagRule, error) {
	out := make([]TagRule, 0, len(rules))
	for _, rule := range rules {
		keyword, tag, ok := strings.Cut(rule, "=")
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		tag = strings.TrimSpace(tag)
		if !ok || keyword == "" || tag == "" {
			return nil, fmt.Errorf("%w: tagging rule %q must look like keyword=tag", domain.ErrInvalidInput, rule)
		}
		out = append(out, TagRule{Keyword: keyword, Tag: tag})
	}
	return out, nil
}

// AutoTagService scans chunk content with a single automaton built from
// every rule keyword.
type AutoTagService struct {
	chunks *ChunkStore

	ac ahocorasick.AhoCorasick
	// patternTags holds the tags of each distinct keyword, by pattern index.
	patternTags [][]string
	empty       bool
}

// NewAutoTagService compiles rules into an automaton.
func NewAutoTagService(chunks *ChunkStore, rules []TagRule) *AutoTagService {
	s := &AutoTagService{chunks: chunks, empty: len(rules) == 0}

	patterns := make([]string, 0, len(rules))
	index := make(map[string]int, len(rules))
	for _, r := range rules {
		idx, ok := index[r.Keyword]
		if !ok {
			idx = len(patterns)
			index[r.Keyword] = idx
			patterns = append(patterns, r.Keyword)
			s.patternTags = append(s.patternTags, nil)
		}
		s.patternTags[idx] = append(s.patternTags[idx], r.Tag)
	}

	if !s.empty {
		builder := ahocorasick.NewAhoCorasickBuilder(ahocorasick.Opts{
			AsciiCaseInsensitive: true,
			MatchOnlyWholeWords:  true,
			MatchKind:            ahocorasick.LeftMostLongestMatch,
		})
		s.ac = builder.Build(patterns)
	}
	return s
}

// tagsFor returns the tags c would gain, in order of first match.
func (s *AutoTagService) tagsFor(c *domain.ContentChunk) []string {
	if s.empty || c.Content == "" {
		return nil
	}

	var gained []string
	seen := make(map[string]struct{})
	for _, m := range s.ac.FindAll(c.Content) {
		for _, tag := range s.patternTags[m.Pattern()] {
			if _, dup := seen[tag]; dup || c.HasTag(tag) {
				continue
			}
			seen[tag] = struct{}{}
			gained = append(gained, tag)
		}
	}
	return gained
}

// Propose lists the tags each chunk would gain.
func (s *AutoTagService) Propose() []domain.TagProposal {
	var out []domain.TagProposal
	for _, c := range s.chunks.Chunks() {
		if tags := s.tagsFor(&c); len(tags) > 0 {
			out = append(out, domain.TagProposal{ChunkID: c.ID, Tags: tags})
		}
	}
	return out
}

// Apply adds every proposed tag through one bulk update.
func (s *AutoTagService) Apply() int {
	var updates []domain.ChunkUpdate
	for _, c := range s.chunks.Chunks() {
		tags := s.tagsFor(&c)
		if len(tags) == 0 {
			continue
		}
		merged := append(append([]string(nil), c.Tags...), tags...)
		updates = append(updates, domain.ChunkUpdate{
			ID:    c.ID,
			Patch: domain.ChunkPatch{Tags: merged},
		})
	}
	if len(updates) == 0 {
		return 0
	}

	changed := s.chunks.BulkUpdateChunks(updates)
	logger.Info("auto-tagged %d chunks", changed)
	return changed
}
