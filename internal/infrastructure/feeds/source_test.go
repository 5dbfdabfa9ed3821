package feeds

import (
	"context"
	"errors"
	"testing"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/provider"
)

type stubProvider struct {
	name  string
	items []domain.Candidate
	err   error
}

func (p *stubProvider) Name() string { return p.name }

func (p *stubProvider) Fetch(context.Context) ([]domain.Candidate, error) {
	return p.items, p.err
}

func testLimits() config.LimitsConfig {
	return config.LimitsConfig{
		MaxItemsPerDay: 6,
		FreshnessHours: 72,
		MinTitleLength: 10,
	}
}

func TestFetchTopDedupesAcrossProviders(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	shared := domain.Candidate{
		Title:       "OpenAI launches new model family",
		URL:         "https://openai.com/blog/new-model",
		PublishedAt: now.Add(-time.Hour),
	}

	reg := provider.NewRegistry()
	reg.Register(&stubProvider{name: "rss", items: []domain.Candidate{shared}})
	reg.Register(&stubProvider{name: "newsapi", items: []domain.Candidate{shared}})

	source := NewSource(reg, testLimits(), nil)
	got, err := source.FetchTop(context.Background(), now)
	if err != nil {
		t.Fatalf("FetchTop: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
}

func TestFetchTopFiltersAndRanks(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	items := []domain.Candidate{
		{Title: "tiny", URL: "https://example.com/1", PublishedAt: now},
		{Title: "Old story about something else entirely", URL: "https://example.com/2", PublishedAt: now.Add(-100 * time.Hour)},
		{Title: "Trade press covers the industry broadly", URL: "https://techcrunch.com/3", PublishedAt: now.Add(-time.Hour)},
		{Title: "OpenAI launches new model family", URL: "https://openai.com/blog/4", PublishedAt: now.Add(-2 * time.Hour)},
		{Title: "Undated wire item about robotics", URL: "https://example.com/5"},
	}

	reg := provider.NewRegistry()
	reg.Register(&stubProvider{name: "rss", items: items})

	source := NewSource(reg, testLimits(), nil)
	got, err := source.FetchTop(context.Background(), now)
	if err != nil {
		t.Fatalf("FetchTop: %v", err)
	}

	// Too-short title and stale item are dropped; the undated one survives.
	if len(got) != 3 {
		t.Fatalf("candidates = %v", got)
	}
	// Core-domain launch outranks trade press, which outranks the unscored item.
	if got[0].URL != "https://openai.com/blog/4" {
		t.Fatalf("top candidate = %q", got[0].URL)
	}
	if got[1].URL != "https://techcrunch.com/3" {
		t.Fatalf("second candidate = %q", got[1].URL)
	}
}

func TestFetchTopSkipsFailingProvider(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	reg := provider.NewRegistry()
	reg.Register(&stubProvider{name: "broken", err: errors.New("upstream down")})
	reg.Register(&stubProvider{name: "rss", items: []domain.Candidate{
		{Title: "Healthy provider still contributes", URL: "https://example.com/ok", PublishedAt: now},
	}})

	source := NewSource(reg, testLimits(), nil)
	got, err := source.FetchTop(context.Background(), now)
	if err != nil {
		t.Fatalf("FetchTop: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("candidates = %d, want 1", len(got))
	}
}

func TestFetchTopWithoutRegistry(t *testing.T) {
	t.Parallel()

	source := NewSource(nil, testLimits(), nil)
	if _, err := source.FetchTop(context.Background(), time.Now()); err == nil {
		t.Fatal("expected error without a registry")
	}
}
