package services

import (
	"fmt"
	"strings"
	"sync"

	"github.com/custodia-labs/contentbuilder/internal/core/domain"
	"github.com/custodia-labs/contentbuilder/internal/core/ports/driving"
)

// Ensure CategoryStore implements the interface.
var _ driving.CategoryService = (*CategoryStore)(nil)

// CategoryStore holds the legacy category collection and its filtered view.
// With an empty query the filtered view is the full collection; otherwise
// it holds copies whose question lists are filtered too.
type CategoryStore struct {
	*Signal

	mu       sync.RWMutex
	all      []*domain.Category
	filtered []*domain.Category
	query    string
	needle   string
}

// NewCategoryStore creates an empty category store.
func NewCategoryStore() *CategoryStore {
	return &CategoryStore{Signal: NewSignal()}
}

func (s *CategoryStore) indexLocked(id string) int {
	for i, c := range s.all {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// refilterLocked rebuilds the filtered view. A category whose name matches
// is kept whole; otherwise it survives with its matching questions only.
func (s *CategoryStore) refilterLocked() {
	if s.needle == "" {
		s.filtered = s.all
		return
	}
	filtered := make([]*domain.Category, 0)
	for _, c := range s.all {
		if strings.Contains(strings.ToLower(c.Name), s.needle) {
			cp := c.Clone()
			filtered = append(filtered, &cp)
			continue
		}
		var questions []domain.Question
		for _, q := range c.Questions {
			if strings.Contains(strings.ToLower(q.Question), s.needle) ||
				strings.Contains(strings.ToLower(q.Answer), s.needle) {
				questions = append(questions, q)
			}
		}
		if len(questions) > 0 {
			filtered = append(filtered, &domain.Category{ID: c.ID, Name: c.Name, Questions: questions})
		}
	}
	s.filtered = filtered
}

// commit rebuilds the filtered view, releases the lock and notifies.
func (s *CategoryStore) commit() {
	s.refilterLocked()
	s.mu.Unlock()
	s.Notify()
}

// AddCategory creates a category with no questions.
func (s *CategoryStore) AddCategory(name string) domain.Category {
	s.mu.Lock()
	c := &domain.Category{ID: newID(), Name: strings.TrimSpace(name), Questions: []domain.Question{}}
	s.all = append(s.all, c)
	out := c.Clone()
	s.commit()
	return out
}

// RenameCategory changes a category name.
func (s *CategoryStore) RenameCategory(id, name string) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	s.all[i].Name = strings.TrimSpace(name)
	s.commit()
	return nil
}

// DeleteCategory removes a category and reports whether it existed.
func (s *CategoryStore) DeleteCategory(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.all = append(s.all[:i:i], s.all[i+1:]...)
	s.commit()
	return true
}

// AddQuestion appends a question to a category.
func (s *CategoryStore) AddQuestion(categoryID, question, answer string) (*domain.Question, error) {
	s.mu.Lock()
	i := s.indexLocked(categoryID)
	if i < 0 {
		s.mu.Unlock()
		return nil, fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
	}
	q := domain.Question{ID: newID(), Question: question, Answer: answer}
	s.all[i].Questions = append(s.all[i].Questions, q)
	s.commit()
	return &q, nil
}

// UpdateQuestion replaces the text of a question.
func (s *CategoryStore) UpdateQuestion(categoryID, questionID, question, answer string) error {
	s.mu.Lock()
	i := s.indexLocked(categoryID)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("category %s: %w", categoryID, domain.ErrNotFound)
	}
	j := s.all[i].QuestionIndex(questionID)
	if j < 0 {
		s.mu.Unlock()
		return fmt.Errorf("question %s: %w", questionID, domain.ErrNotFound)
	}
	s.all[i].Questions[j].Question = question
	s.all[i].Questions[j].Answer = answer
	s.commit()
	return nil
}

// DeleteQuestion removes a question and reports whether it existed.
func (s *CategoryStore) DeleteQuestion(categoryID, questionID string) bool {
	s.mu.Lock()
	i := s.indexLocked(categoryID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	j := s.all[i].QuestionIndex(questionID)
	if j < 0 {
		s.mu.Unlock()
		return false
	}
	qs := s.all[i].Questions
	s.all[i].Questions = append(qs[:j:j], qs[j+1:]...)
	s.commit()
	return true
}

// FilterCategories sets the active query and rebuilds the filtered view.
func (s *CategoryStore) FilterCategories(query string) {
	s.mu.Lock()
	s.query = query
	s.needle = strings.ToLower(strings.TrimSpace(query))
	s.commit()
}

// Query returns the active filter query.
func (s *CategoryStore) Query() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// Get returns a copy of a category.
func (s *CategoryStore) Get(id string) (*domain.Category, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.indexLocked(id)
	if i < 0 {
		return nil, fmt.Errorf("category %s: %w", id, domain.ErrNotFound)
	}
	out := s.all[i].Clone()
	return &out, nil
}

func cloneCategoryPtrs(in []*domain.Category) []domain.Category {
	out := make([]domain.Category, len(in))
	for i, c := range in {
		out[i] = c.Clone()
	}
	return out
}

// Categories returns copies of every category.
func (s *CategoryStore) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategoryPtrs(s.all)
}

// FilteredCategories returns copies of the filtered view.
func (s *CategoryStore) FilteredCategories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneCategoryPtrs(s.filtered)
}

// SetCategories replaces the collection. Missing or duplicate IDs are
// regenerated, for categories and for questions within a category.
func (s *CategoryStore) SetCategories(categories []domain.Category) {
	s.mu.Lock()
	s.all = make([]*domain.Category, 0, len(categories))
	seen := make(map[string]struct{}, len(categories))
	for i := range categories {
		c := categories[i].Clone()
		if _, dup := seen[c.ID]; c.ID == "" || dup {
			c.ID = newID()
		}
		seen[c.ID] = struct{}{}

		qseen := make(map[string]struct{}, len(c.Questions))
		for j := range c.Questions {
			if _, dup := qseen[c.Questions[j].ID]; c.Questions[j].ID == "" || dup {
				c.Questions[j].ID = newID()
			}
			qseen[c.Questions[j].ID] = struct{}{}
		}
		if c.Questions == nil {
			c.Questions = []domain.Question{}
		}
		s.all = append(s.all, &c)
	}
	s.commit()
}

// Clear removes every category.
func (s *CategoryStore) Clear() {
	s.SetCategories(nil)
}

// Stats summarises both views.
func (s *CategoryStore) Stats() domain.CategoryCollectionStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := domain.CategoryCollectionStats{
		TotalCategories:    len(s.all),
		FilteredCategories: len(s.filtered),
	}
	for _, c := range s.all {
		stats.TotalQuestions += len(c.Questions)
	}
	for _, c := range s.filtered {
		stats.FilteredQuestions += len(c.Questions)
	}
	return stats
}
