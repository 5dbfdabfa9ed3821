package feeds

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/provider"
)

const maxFeedsPerSite = 3

// RSSProvider discovers and parses RSS/Atom feeds for configured homepages.
type RSSProvider struct {
	client *http.Client
	parser *gofeed.Parser
	sites  []config.FeedConfig
	logger *slog.Logger
}

var _ provider.Provider = (*RSSProvider)(nil)

// NewRSSProvider wires an HTTP client shared by discovery and feed fetching.
func NewRSSProvider(client *http.Client, sites []config.FeedConfig, logger *slog.Logger) *RSSProvider {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	return &RSSProvider{client: client, parser: parser, sites: sites, logger: logger}
}

// Name identifies the strategy inside the registry.
func (p *RSSProvider) Name() string {
	return "rss"
}

// Fetch walks each configured homepage, discovers its feeds, and flattens
// the entries into candidates. A site that fails to resolve is logged and
// skipped; one dead homepage must not starve the rest of the run.
func (p *RSSProvider) Fetch(ctx context.Context) ([]domain.Candidate, error) {
	var candidates []domain.Candidate

	for _, site := range p.sites {
		feedURLs, err := DiscoverFeedURLs(ctx, p.client, site.Homepage)
		if err != nil {
			p.debug("feed discovery failed", "site", site.Name, "error", err)
			continue
		}
		if len(feedURLs) > maxFeedsPerSite {
			feedURLs = feedURLs[:maxFeedsPerSite]
		}

		for _, feedURL := range feedURLs {
			feed, err := p.parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				p.debug("feed parse failed", "site", site.Name, "feed", feedURL, "error", err)
				continue
			}
			candidates = append(candidates, feedCandidates(feed)...)
		}
	}

	return candidates, nil
}

func feedCandidates(feed *gofeed.Feed) []domain.Candidate {
	out := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Title == "" || item.Link == "" {
			continue
		}

		var published time.Time
		if item.PublishedParsed != nil {
			published = item.PublishedParsed.UTC()
		} else if item.UpdatedParsed != nil {
			published = item.UpdatedParsed.UTC()
		}

		var image string
		if item.Image != nil {
			image = item.Image.URL
		}

		var author string
		if len(item.Authors) > 0 && item.Authors[0] != nil {
			author = item.Authors[0].Name
		}

		out = append(out, domain.Candidate{
			Title:       item.Title,
			URL:         CanonicalURL(item.Link),
			Source:      feed.Title,
			ImageURL:    image,
			Author:      author,
			PublishedAt: published,
		})
	}
	return out
}

func (p *RSSProvider) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
