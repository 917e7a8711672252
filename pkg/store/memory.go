package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"wiki-api/pkg/models"
)

// MemoryStore keeps articles in insertion order in process memory.
type MemoryStore struct {
	mu       sync.Mutex
	articles []models.Article
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Find(ctx context.Context) ([]models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.Article, len(s.articles))
	copy(out, s.articles)
	return out, nil
}

func (s *MemoryStore) FindOne(ctx context.Context, title string) (*models.Article, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(title)
	if i < 0 {
		return nil, ErrNotFound
	}
	found := s.articles[i]
	return &found, nil
}

func (s *MemoryStore) Insert(ctx context.Context, article models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article.ID = uuid.NewString()
	s.articles = append(s.articles, article)
	return nil
}

func (s *MemoryStore) Replace(ctx context.Context, title string, article models.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(title); i >= 0 {
		article.ID = s.articles[i].ID
		s.articles[i] = article
	}
	return nil
}

func (s *MemoryStore) Update(ctx context.Context, title string, patch models.ArticlePatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(title); i >= 0 {
		s.articles[i] = patch.Apply(s.articles[i])
	}
	return nil
}

func (s *MemoryStore) DeleteOne(ctx context.Context, title string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := s.indexOf(title); i >= 0 {
		s.articles = append(s.articles[:i], s.articles[i+1:]...)
	}
	return nil
}

func (s *MemoryStore) DeleteAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.articles = nil
	return nil
}

func (s *MemoryStore) Ping(ctx context.Context) error  { return nil }
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// indexOf must be called with mu held.
func (s *MemoryStore) indexOf(title string) int {
	for i, a := range s.articles {
		if a.Title == title {
			return i
		}
	}
	return -1
}
