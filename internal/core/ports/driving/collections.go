package driving

import "github.com/custodia-labs/contentbuilder/internal/core/domain"

// ChangeSignal lets adapters observe collection changes.
type ChangeSignal interface {
	// Subscribe registers fn to run after every notified change.
	// The returned function removes the subscription.
	Subscribe(fn func(version uint64)) func()

	// Version returns the number of notified changes so far.
	Version() uint64
}

// ChunkService is the store of content chunks.
// Reads return copies; mutating the result does not affect the store.
type ChunkService interface {
	ChangeSignal

	AddChunk(chunk domain.ContentChunk) domain.ContentChunk
	AddChunks(chunks []domain.ContentChunk) []domain.ContentChunk
	UpdateChunk(id string, patch domain.ChunkPatch) (*domain.ContentChunk, error)
	UpdateChunkTags(id string, tags []string) (*domain.ContentChunk, error)
	AddTagToChunks(ids []string, tag string) int
	RemoveTagFromChunks(ids []string, tag string) int
	DeleteChunk(id string) bool
	BulkDeleteChunks(ids []string) int
	BulkUpdateChunks(updates []domain.ChunkUpdate) int

	// FilterChunks sets the active query. An empty query shows everything.
	FilterChunks(query string)
	Query() string

	Get(id string) (*domain.ContentChunk, error)
	Chunks() []domain.ContentChunk
	FilteredChunks() []domain.ContentChunk
	FilteredLen() int

	// FilteredRange returns copies of filtered items in [start, end), clamped.
	FilteredRange(start, end int) []domain.ContentChunk

	SetChunks(chunks []domain.ContentChunk)
	Clear()
	Sources() []string
	Tags() []string
	Stats() domain.ChunkCollectionStats

	// Batch runs fn with notifications suppressed and emits one at the end.
	Batch(fn func())
}

// CategoryService is the store of legacy categories and questions.
type CategoryService interface {
	ChangeSignal

	AddCategory(name string) domain.Category
	RenameCategory(id, name string) error
	DeleteCategory(id string) bool
	AddQuestion(categoryID, question, answer string) (*domain.Question, error)
	UpdateQuestion(categoryID, questionID, question, answer string) error
	DeleteQuestion(categoryID, questionID string) bool

	FilterCategories(query string)
	Query() string

	Get(id string) (*domain.Category, error)
	Categories() []domain.Category
	FilteredCategories() []domain.Category
	SetCategories(categories []domain.Category)
	Clear()
	Stats() domain.CategoryCollectionStats

	Batch(fn func())
}
