package domain

// ChunkPatch is a partial chunk update. Nil fields are left unchanged.
type ChunkPatch struct {
	Content  *string
	Source   *string
	Tags     []string
	Metadata *ChunkMetadata
}

// ChunkUpdate pairs a chunk ID with a patch for bulk updates.
type ChunkUpdate struct {
	ID    string
	Patch ChunkPatch
}

// ChunkCollectionStats summarises a chunk collection.
type ChunkCollectionStats struct {
	TotalChunks      int     `json:"totalChunks"`
	FilteredChunks   int     `json:"filteredChunks"`
	Sources          int     `json:"sources"`
	Tags             int     `json:"tags"`
	TotalWords       int     `json:"totalWords"`
	TotalCharacters  int     `json:"totalCharacters"`
	AverageChunkSize float64 `json:"averageChunkSize"`
}

// CategoryCollectionStats summarises a category collection.
type CategoryCollectionStats struct {
	TotalCategories    int `json:"totalCategories"`
	TotalQuestions     int `json:"totalQuestions"`
	FilteredCategories int `json:"filteredCategories"`
	FilteredQuestions  int `json:"filteredQuestions"`
}

// TagProposal is a set of tags suggested for one chunk.
type TagProposal struct {
	ChunkID string   `json:"chunkId"`
	Tags    []string `json:"tags"`
}
