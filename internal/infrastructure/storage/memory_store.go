package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

// MemoryStore keeps articles in memory. It backs local development without a
// database and the test suites that exercise the state machine end to end.
type MemoryStore struct {
	mu       sync.RWMutex
	articles map[string]domain.Article
	now      func() time.Time
}

var _ ports.ArticleStore = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		articles: make(map[string]domain.Article),
		now:      time.Now,
	}
}

// Get loads one article by primary key.
func (s *MemoryStore) Get(_ context.Context, articleID string) (domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[articleID]
	if !ok {
		return domain.Article{}, ports.ErrNotFound
	}
	return article, nil
}

// Put upserts the full record, stamping created_at/updated_at when absent.
func (s *MemoryStore) Put(_ context.Context, article domain.Article) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}

	s.articles[article.ArticleID] = article
	return nil
}

// Update applies a partial field mutation and always stamps updated_at.
func (s *MemoryStore) Update(_ context.Context, articleID string, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[articleID]
	if !ok {
		return ports.ErrNotFound
	}

	for column, value := range fields {
		if err := applyField(&article, column, value); err != nil {
			return err
		}
	}
	article.UpdatedAt = s.now().UTC()

	s.articles[articleID] = article
	return nil
}

// ListByStatus returns every article in the given lifecycle state, oldest
// first.
func (s *MemoryStore) ListByStatus(_ context.Context, status domain.Status) ([]domain.Article, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Article
	for _, article := range s.articles {
		if article.Status == status {
			out = append(out, article)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func applyField(article *domain.Article, column string, value any) error {
	switch column {
	case "title":
		article.Title = asString(value)
	case "approved_title":
		article.ApprovedTitle = asString(value)
	case "subtitle":
		article.Subtitle = asString(value)
	case "short_description":
		article.ShortDescription = asString(value)
	case "article_html":
		article.ArticleHTML = asString(value)
	case "image_url":
		article.ImageURL = asString(value)
	case "meta_description":
		article.MetaDescription = asString(value)
	case "slug":
		article.Slug = asString(value)
	case "cms_id":
		article.CMSID = asString(value)
	case "status":
		article.Status = domain.Status(asString(value))
	case "needs_regen":
		flag, _ := value.(bool)
		article.NeedsRegen = flag
	case "proposed_titles":
		titles, _ := value.([]string)
		article.ProposedTitles = titles
	case "published_at":
		if t, ok := value.(time.Time); ok {
			article.PublishedAt = t
		}
	default:
		return fmt.Errorf("column %s is not updatable", column)
	}
	return nil
}

func asString(value any) string {
	s, _ := value.(string)
	return s
}
