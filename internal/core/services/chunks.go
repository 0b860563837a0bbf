package services

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
)

// Ensure ChunkStore implements the interface.
var _ driving.ChunkService = (*ChunkStore)(nil)

// ChunkStore holds the live chunk collection and its filtered view.
// Both views point at the same items, so a mutation is visible in both.
type ChunkStore struct {
	*Signal

	mu        sync.RWMutex
	all       []*domain.ContentChunk
	byID      map[string]*domain.ContentChunk
	filtered  []*domain.ContentChunk
	query     string
	needle    string
	lastStamp int64
	now       func() time.Time
}

// NewChunkStore creates an empty chunk store.
func NewChunkStore() *ChunkStore {
	return &ChunkStore{
		Signal: NewSignal(),
		byID:   make(map[string]*domain.ContentChunk),
		now:    time.Now,
	}
}

// stamp returns a modification time strictly greater than the previous one.
func (s *ChunkStore) stamp() int64 {
	ms := s.now().UnixMilli()
	if ms <= s.lastStamp {
		ms = s.lastStamp + 1
	}
	s.lastStamp = ms
	return ms
}

func newID() string {
	return uuid.Must(uuid.NewV7()).String()
}

// prepare normalises a chunk before insertion.
func (s *ChunkStore) prepare(in domain.ContentChunk) *domain.ContentChunk {
	c := in.Clone()
	if c.ID == "" || s.byID[c.ID] != nil {
		c.ID = newID()
	}
	if len(c.Tags) == 0 && c.TagsInput != "" {
		c.Tags = domain.ParseTags(c.TagsInput)
	}
	c.SetTags(c.Tags)
	c.SetContent(c.Content)
	if !c.Metadata.Type.IsValid() {
		c.Metadata.Type = domain.ChunkOriginManual
	}
	c.LastModified = s.stamp()
	if c.Metadata.CreatedAt == 0 {
		c.Metadata.CreatedAt = c.LastModified
	}
	return &c
}

// insertLocked appends a prepared chunk to the full view.
func (s *ChunkStore) insertLocked(c *domain.ContentChunk) {
	s.all = append(s.all, c)
	s.byID[c.ID] = c
}

// refilterLocked rebuilds the filtered view from the full view.
func (s *ChunkStore) refilterLocked() {
	if s.needle == "" {
		s.filtered = s.all
		return
	}
	filtered := make([]*domain.ContentChunk, 0, len(s.filtered))
	for _, c := range s.all {
		if chunkMatches(c, s.needle) {
			filtered = append(filtered, c)
		}
	}
	s.filtered = filtered
}

func chunkMatches(c *domain.ContentChunk, needle string) bool {
	if strings.Contains(strings.ToLower(c.Content), needle) ||
		strings.Contains(strings.ToLower(c.Source), needle) {
		return true
	}
	for _, tag := range c.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

// AddChunk inserts a chunk and returns the stored copy.
// A missing or duplicate ID is replaced with a fresh one.
func (s *ChunkStore) AddChunk(chunk domain.ContentChunk) domain.ContentChunk {
	s.mu.Lock()
	c := s.prepare(chunk)
	s.insertLocked(c)
	s.refilterLocked()
	out := c.Clone()
	s.mu.Unlock()

	s.Notify()
	return out
}

// AddChunks inserts many chunks with a single notification.
func (s *ChunkStore) AddChunks(chunks []domain.ContentChunk) []domain.ContentChunk {
	if len(chunks) == 0 {
		return nil
	}

	s.mu.Lock()
	out := make([]domain.ContentChunk, len(chunks))
	for i := range chunks {
		c := s.prepare(chunks[i])
		s.insertLocked(c)
		out[i] = c.Clone()
	}
	s.refilterLocked()
	s.mu.Unlock()

	s.Notify()
	return out
}

// applyPatch mutates c in place and stamps it.
func (s *ChunkStore) applyPatch(c *domain.ContentChunk, patch domain.ChunkPatch) {
	if patch.Metadata != nil {
		createdAt := c.Metadata.CreatedAt
		c.Metadata = *patch.Metadata
		if patch.Metadata.Position != nil {
			pos := *patch.Metadata.Position
			c.Metadata.Position = &pos
		}
		if c.Metadata.CreatedAt == 0 {
			c.Metadata.CreatedAt = createdAt
		}
		if !c.Metadata.Type.IsValid() {
			c.Metadata.Type = domain.ChunkOriginManual
		}
	}
	if patch.Content != nil {
		c.SetContent(*patch.Content)
	}
	c.Metadata.WordCount = c.Stats.Words
	if patch.Source != nil {
		c.Source = *patch.Source
	}
	if patch.Tags != nil {
		c.SetTags(patch.Tags)
	}
	c.LastModified = s.stamp()
}

// UpdateChunk applies a partial update and returns the new state.
func (s *ChunkStore) UpdateChunk(id string, patch domain.ChunkPatch) (*domain.ContentChunk, error) {
	s.mu.Lock()
	c, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	s.applyPatch(c, patch)
	s.refilterLocked()
	out := c.Clone()
	s.mu.Unlock()

	s.Notify()
	return &out, nil
}

// UpdateChunkTags replaces the tags of a chunk.
func (s *ChunkStore) UpdateChunkTags(id string, tags []string) (*domain.ContentChunk, error) {
	if tags == nil {
		tags = []string{}
	}
	return s.UpdateChunk(id, domain.ChunkPatch{Tags: tags})
}

// AddTagToChunks adds tag to every listed chunk lacking it and returns
// how many changed.
func (s *ChunkStore) AddTagToChunks(ids []string, tag string) int {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return 0
	}
	return s.mutateEach(ids, func(c *domain.ContentChunk) bool {
		if c.HasTag(tag) {
			return false
		}
		c.SetTags(append(append([]string(nil), c.Tags...), tag))
		return true
	})
}

// RemoveTagFromChunks removes tag from every listed chunk carrying it.
func (s *ChunkStore) RemoveTagFromChunks(ids []string, tag string) int {
	tag = strings.TrimSpace(tag)
	return s.mutateEach(ids, func(c *domain.ContentChunk) bool {
		if !c.HasTag(tag) {
			return false
		}
		kept := make([]string, 0, len(c.Tags)-1)
		for _, t := range c.Tags {
			if t != tag {
				kept = append(kept, t)
			}
		}
		c.SetTags(kept)
		return true
	})
}

// mutateEach runs fn on each listed chunk, stamps the ones it changed and
// notifies once if any did.
func (s *ChunkStore) mutateEach(ids []string, fn func(c *domain.ContentChunk) bool) int {
	s.mu.Lock()
	changed := 0
	for _, id := range ids {
		c, ok := s.byID[id]
		if !ok || !fn(c) {
			continue
		}
		c.LastModified = s.stamp()
		changed++
	}
	if changed > 0 {
		s.refilterLocked()
	}
	s.mu.Unlock()

	if changed > 0 {
		s.Notify()
	}
	return changed
}

// DeleteChunk removes a chunk and reports whether it existed.
func (s *ChunkStore) DeleteChunk(id string) bool {
	return s.BulkDeleteChunks([]string{id}) == 1
}

// BulkDeleteChunks removes every listed chunk with one notification.
func (s *ChunkStore) BulkDeleteChunks(ids []string) int {
	s.mu.Lock()
	doomed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := s.byID[id]; ok {
			doomed[id] = struct{}{}
			delete(s.byID, id)
		}
	}
	if len(doomed) > 0 {
		kept := make([]*domain.ContentChunk, 0, len(s.all)-len(doomed))
		for _, c := range s.all {
			if _, gone := doomed[c.ID]; !gone {
				kept = append(kept, c)
			}
		}
		s.all = kept
		s.refilterLocked()
	}
	s.mu.Unlock()

	if len(doomed) > 0 {
		s.Notify()
	}
	return len(doomed)
}

// BulkUpdateChunks applies every patch in one pass with one notification.
// Unknown IDs are skipped.
func (s *ChunkStore) BulkUpdateChunks(updates []domain.ChunkUpdate) int {
	s.mu.Lock()
	changed := 0
	for _, u := range updates {
		c, ok := s.byID[u.ID]
		if !ok {
			continue
		}
		s.applyPatch(c, u.Patch)
		changed++
	}
	if changed > 0 {
		s.refilterLocked()
	}
	s.mu.Unlock()

	if changed > 0 {
		s.Notify()
	}
	return changed
}

// FilterChunks sets the active query and rebuilds the filtered view.
func (s *ChunkStore) FilterChunks(query string) {
	s.mu.Lock()
	s.query = query
	s.needle = strings.ToLower(strings.TrimSpace(query))
	s.refilterLocked()
	s.mu.Unlock()

	s.Notify()
}

// Query returns the active filter query.
func (s *ChunkStore) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Get returns a copy of the chunk with the given ID.
func (s *ChunkStore) Get(id string) (*domain.ContentChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	out := c.Clone()
	return &out, nil
}

func cloneChunkPtrs(in []*domain.ContentChunk) []domain.ContentChunk {
	out := make([]domain.ContentChunk, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Chunks returns copies of every chunk in insertion order.
func (s *ChunkStore) Chunks() []domain.ContentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneChunkPtrs(s.all)
}

// FilteredChunks returns copies of the chunks matching the active query.
func (s *ChunkStore) FilteredChunks() []domain.ContentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneChunkPtrs(s.filtered)
}

// FilteredLen returns the size of the filtered view.
func (s *ChunkStore) FilteredLen() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.filtered)
}

// FilteredRange returns copies of filtered chunks in [start, end).
func (s *ChunkStore) FilteredRange(start, end int) []domain.ContentChunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start = max(0, start)
	end = min(len(s.filtered), end)
	if start >= end {
		return nil
	}
	return cloneChunkPtrs(s.filtered[start:end])
}

// SetChunks replaces the collection, as on restore. Stored timestamps are
// kept; derived fields are recomputed.
func (s *ChunkStore) SetChunks(chunks []domain.ContentChunk) {
	s.mu.Lock()
	s.all = make([]*domain.ContentChunk, 0, len(chunks))
	s.byID = make(map[string]*domain.ContentChunk, len(chunks))
	for i := range chunks {
		c := chunks[i].Clone()
		if c.ID == "" || s.byID[c.ID] != nil {
			c.ID = newID()
		}
		c.SetTags(c.Tags)
		c.SetContent(c.Content)
		if !c.Metadata.Type.IsValid() {
			c.Metadata.Type = domain.ChunkOriginManual
		}
		if c.LastModified > s.lastStamp {
			s.lastStamp = c.LastModified
		}
		s.insertLocked(&c)
	}
	s.refilterLocked()
	s.mu.Unlock()

	s.Notify()
}

// Clear removes every chunk. The query is kept.
func (s *ChunkStore) Clear() {
	s.SetChunks(nil)
}

// Sources returns the distinct chunk sources, sorted.
func (s *ChunkStore) Sources() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, c := range s.all {
		seen[c.Source] = struct{}{}
	}
	return sortedSet(seen)
}

// Tags returns the distinct tags across all chunks, sorted.
func (s *ChunkStore) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	for _, c := range s.all {
		for _, t := range c.Tags {
			seen[t] = struct{}{}
		}
	}
	return sortedSet(seen)
}

// Stats summarises the collection. The average size of an empty
// collection is 0.
func (s *ChunkStore) Stats() domain.ChunkCollectionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sources := make(map[string]struct{})
	tags := make(map[string]struct{})
	stats := domain.ChunkCollectionStats{
		TotalChunks:    len(s.all),
		FilteredChunks: len(s.filtered),
	}
	for _, c := range s.all {
		sources[c.Source] = struct{}{}
		for _, t := range c.Tags {
			tags[t] = struct{}{}
		}
		stats.TotalWords += c.Stats.Words
		stats.TotalCharacters += c.Stats.Characters
	}
	stats.Sources = len(sources)
	stats.Tags = len(tags)
	if len(s.all) > 0 {
		stats.AverageChunkSize = float64(stats.TotalCharacters) / float64(len(s.all))
	}
	return stats
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
