package feeds

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/provider"
)

// Search-API backfills supplement RSS discovery. Each provider owns its
// endpoint, auth scheme, and response mapping; aggregation and error
// tolerance live in the Source.

// NewsAPIProvider queries the newsapi.org everything endpoint.
type NewsAPIProvider struct {
	cfg      config.NewsAPIConfig
	endpoint string
	client   *http.Client
}

var _ provider.Provider = (*NewsAPIProvider)(nil)

// NewNewsAPIProvider builds the newsapi backfill.
func NewNewsAPIProvider(cfg config.NewsAPIConfig) *NewsAPIProvider {
	return &NewsAPIProvider{
		cfg:      cfg,
		endpoint: "https://newsapi.org/v2/everything",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name identifies the strategy inside the registry.
func (p *NewsAPIProvider) Name() string { return "newsapi" }

// Fetch runs the configured query and maps articles to candidates.
func (p *NewsAPIProvider) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	if !p.cfg.Enabled || p.cfg.APIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", p.cfg.Query)
	params.Set("language", p.cfg.Language)
	params.Set("pageSize", strconv.Itoa(p.cfg.PageSize))
	params.Set("sortBy", "publishedAt")
	if len(p.cfg.Domains) > 0 {
		params.Set("domains", strings.Join(p.cfg.Domains, ","))
	}

	var resp struct {
		Articles []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"publishedAt"`
			URLToImage  string `json:"urlToImage"`
			Author      string `json:"author"`
			Source      struct {
				Name string `json:"name"`
			} `json:"source"`
		} `json:"articles"`
	}
	headers := map[string]string{"X-Api-Key": p.cfg.APIKey}
	if err := getJSON(ctx, p.client, p.endpoint, params, headers, &resp); err != nil {
		return nil, fmt.Errorf("newsapi: %w", err)
	}

	out := make([]domain.Candidate, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.Source.Name
		if source == "" {
			source = "NewsAPI"
		}
		out = append(out, domain.Candidate{
			Title:       strings.TrimSpace(a.Title),
			URL:         CanonicalURL(a.URL),
			Source:      source,
			ImageURL:    a.URLToImage,
			Author:      a.Author,
			PublishedAt: parseTimestamp(a.PublishedAt),
		})
	}
	return out, nil
}

// NewscatcherProvider queries the Newscatcher v3 search endpoint.
type NewscatcherProvider struct {
	cfg      config.NewscatcherConfig
	endpoint string
	client   *http.Client
}

var _ provider.Provider = (*NewscatcherProvider)(nil)

// NewNewscatcherProvider builds the Newscatcher backfill.
func NewNewscatcherProvider(cfg config.NewscatcherConfig) *NewscatcherProvider {
	return &NewscatcherProvider{
		cfg:      cfg,
		endpoint: "https://v3-api.newscatcherapi.com/api/search",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name identifies the strategy inside the registry.
func (p *NewscatcherProvider) Name() string { return "newscatcher" }

// Fetch runs the configured query and maps articles to candidates.
func (p *NewscatcherProvider) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	if !p.cfg.Enabled || p.cfg.APIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("q", p.cfg.Query)
	params.Set("lang", p.cfg.Lang)
	params.Set("sort_by", "date")
	params.Set("page_size", "50")

	var resp struct {
		Articles []struct {
			Title         string `json:"title"`
			Link          string `json:"link"`
			PublishedDate string `json:"published_date"`
			CleanURL      string `json:"clean_url"`
			Media         string `json:"media"`
			Author        string `json:"author"`
		} `json:"articles"`
	}
	headers := map[string]string{"x-api-token": p.cfg.APIKey}
	if err := getJSON(ctx, p.client, p.endpoint, params, headers, &resp); err != nil {
		return nil, fmt.Errorf("newscatcher: %w", err)
	}

	out := make([]domain.Candidate, 0, len(resp.Articles))
	for _, a := range resp.Articles {
		source := a.CleanURL
		if source == "" {
			source = "Newscatcher"
		}
		out = append(out, domain.Candidate{
			Title:       strings.TrimSpace(a.Title),
			URL:         CanonicalURL(a.Link),
			Source:      source,
			ImageURL:    a.Media,
			Author:      a.Author,
			PublishedAt: parseTimestamp(a.PublishedDate),
		})
	}
	return out, nil
}

// MediastackProvider queries the mediastack news endpoint.
type MediastackProvider struct {
	cfg      config.MediastackConfig
	endpoint string
	client   *http.Client
}

var _ provider.Provider = (*MediastackProvider)(nil)

// NewMediastackProvider builds the mediastack backfill.
func NewMediastackProvider(cfg config.MediastackConfig) *MediastackProvider {
	return &MediastackProvider{
		cfg:      cfg,
		endpoint: "http://api.mediastack.com/v1/news",
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

// Name identifies the strategy inside the registry.
func (p *MediastackProvider) Name() string { return "mediastack" }

// Fetch runs the configured query and maps articles to candidates.
func (p *MediastackProvider) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	if !p.cfg.Enabled || p.cfg.APIKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("access_key", p.cfg.APIKey)
	params.Set("keywords", p.cfg.Keywords)
	params.Set("languages", p.cfg.Languages)
	params.Set("categories", p.cfg.Categories)
	params.Set("limit", "50")

	var resp struct {
		Data []struct {
			Title       string `json:"title"`
			URL         string `json:"url"`
			PublishedAt string `json:"published_at"`
			Image       string `json:"image"`
			Source      string `json:"source"`
			Author      string `json:"author"`
		} `json:"data"`
	}
	if err := getJSON(ctx, p.client, p.endpoint, params, nil, &resp); err != nil {
		return nil, fmt.Errorf("mediastack: %w", err)
	}

	out := make([]domain.Candidate, 0, len(resp.Data))
	for _, a := range resp.Data {
		source := a.Source
		if source == "" {
			source = "mediastack"
		}
		out = append(out, domain.Candidate{
			Title:       strings.TrimSpace(a.Title),
			URL:         CanonicalURL(a.URL),
			Source:      source,
			ImageURL:    a.Image,
			Author:      a.Author,
			PublishedAt: parseTimestamp(a.PublishedAt),
		})
	}
	return out, nil
}

func getJSON(ctx context.Context, client *http.Client, endpoint string, params url.Values, headers map[string]string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

func parseTimestamp(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
