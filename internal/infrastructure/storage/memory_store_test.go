package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

func TestMemoryStorePutGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	article := domain.Article{
		ArticleID:    "art_1",
		Title:        "Headline",
		Status:       domain.StatusAwaitingApproval,
		CanonicalURL: "https://example.com/x",
	}
	if err := store.Put(ctx, article); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := store.Get(ctx, "art_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "Headline" {
		t.Fatalf("article = %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not stamped: %+v", got)
	}

	if _, err := store.Get(ctx, "art_missing"); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing article error = %v", err)
	}
}

func TestMemoryStoreUpdate(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	created := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return created }
	if err := store.Put(ctx, domain.Article{ArticleID: "art_1", Title: "Old"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	later := created.Add(time.Hour)
	store.now = func() time.Time { return later }
	err := store.Update(ctx, "art_1", map[string]any{
		"title":          "New",
		"approved_title": "New",
		"status":         string(domain.StatusApproved),
		"needs_regen":    true,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	got, err := store.Get(ctx, "art_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Title != "New" || got.ApprovedTitle != "New" {
		t.Fatalf("article = %+v", got)
	}
	if got.Status != domain.StatusApproved || !got.NeedsRegen {
		t.Fatalf("article = %+v", got)
	}
	if !got.UpdatedAt.Equal(later) {
		t.Fatalf("updated_at = %v, want %v", got.UpdatedAt, later)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("created_at changed: %v", got.CreatedAt)
	}
}

func TestMemoryStoreUpdateErrors(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Update(ctx, "art_missing", map[string]any{"title": "x"}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("missing article error = %v", err)
	}

	if err := store.Put(ctx, domain.Article{ArticleID: "art_1"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Update(ctx, "art_1", map[string]any{"article_id": "art_2"}); err == nil {
		t.Fatal("immutable column update accepted")
	}
}

func TestMemoryStoreListByStatus(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	put := func(id string, status domain.Status, offset time.Duration) {
		store.now = func() time.Time { return base.Add(offset) }
		if err := store.Put(ctx, domain.Article{ArticleID: id, Status: status}); err != nil {
			t.Fatalf("Put %s: %v", id, err)
		}
	}

	put("art_c", domain.StatusAwaitingApproval, 2*time.Hour)
	put("art_a", domain.StatusAwaitingApproval, 0)
	put("art_b", domain.StatusApproved, time.Hour)

	got, err := store.ListByStatus(ctx, domain.StatusAwaitingApproval)
	if err != nil {
		t.Fatalf("ListByStatus: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("articles = %d", len(got))
	}
	if got[0].ArticleID != "art_a" || got[1].ArticleID != "art_c" {
		t.Fatalf("order = %s, %s", got[0].ArticleID, got[1].ArticleID)
	}
}
