package domain

// Category groups question/answer pairs under a name.
// It is the legacy content model kept alongside chunks.
type Category struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Questions []Question `json:"questions"`
}

// Question is a single question/answer pair inside a category.
type Question struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Clone returns a structurally independent copy of the category.
func (c *Category) Clone() Category {
	out := *c
	if c.Questions != nil {
		out.Questions = append([]Question(nil), c.Questions...)
	}
	return out
}

// QuestionIndex returns the position of the question with the given ID, or -1.
func (c *Category) QuestionIndex(id string) int {
	for i := range c.Questions {
		if c.Questions[i].ID == id {
			return i
		}
	}
	return -1
}

// CloneCategories deep-copies a category slice. A nil input stays nil.
func CloneCategories(in []Category) []Category {
	if in == nil {
		return nil
	}
	out := make([]Category, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CloneChunks deep-copies a chunk slice. A nil input stays nil.
func CloneChunks(in []ContentChunk) []ContentChunk {
	if in == nil {
		return nil
	}
	out := make([]ContentChunk, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CountQuestions returns the total number of questions across categories.
func CountQuestions(categories []Category) int {
	total := 0
	for i := range categories {
		total += len(categories[i].Questions)
	}
	return total
}

// CountSources returns the number of distinct chunk sources.
func CountSources(chunks []ContentChunk) int {
	seen := make(map[string]struct{})
	for i := range chunks {
		seen[chunks[i].Source] = struct{}{}
	}
	return len(seen)
}
