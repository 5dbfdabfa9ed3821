package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
	"newsdesk/internal/provider"
)

const minCandidates = 8

// Domain tiers used for scoring: first-party AI labs beat trade press.
var (
	coreDomains = []string{
		"openai.com", "anthropic.com", "ai.googleblog.com", "ai.meta.com",
		"microsoft.com", "huggingface.co", "stability.ai", "blogs.nvidia.com",
		"aws.amazon.com",
	}
	tier1Domains = []string{
		"techcrunch.com", "venturebeat.com", "technologyreview.com",
		"theverge.com", "arstechnica.com", "bloomberg.com",
	}
	signalKeywords = []string{
		"launch", "model", "sdk", "api", "pricing", "fine-tune", "roadmap", "release",
	}
)

// Source implements CandidateSource by aggregating every registered provider,
// deduplicating by canonical URL, and keeping the freshest, highest-scoring
// candidates.
type Source struct {
	registry *provider.Registry
	limits   config.LimitsConfig
	logger   *slog.Logger
}

var _ ports.CandidateSource = (*Source)(nil)

// NewSource wires the provider registry with selection limits.
func NewSource(reg *provider.Registry, limits config.LimitsConfig, logger *slog.Logger) *Source {
	return &Source{registry: reg, limits: limits, logger: logger}
}

// FetchTop aggregates, dedupes, filters, and ranks candidates. A failing
// provider is logged and skipped so a dead backfill never blocks the run.
func (s *Source) FetchTop(ctx context.Context, now time.Time) ([]domain.Candidate, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("provider registry is not configured")
	}

	byURL := map[string]domain.Candidate{}
	for _, p := range s.registry.All() {
		results, err := p.Fetch(ctx)
		if err != nil {
			s.debug("provider failed", "provider", p.Name(), "error", err)
			continue
		}
		s.debug("provider produced candidates", "provider", p.Name(), "count", len(results))
		for _, c := range results {
			byURL[urlKey(c.URL)] = c
		}
	}

	candidates := make([]domain.Candidate, 0, len(byURL))
	for _, c := range byURL {
		if len(c.Title) < s.limits.MinTitleLength {
			continue
		}
		if !withinFreshness(c, now, s.limits.FreshnessHours) {
			continue
		}
		candidates = append(candidates, c)
	}

	sort.Slice(candidates, func(i, j int) bool {
		si, sj := score(candidates[i]), score(candidates[j])
		if si != sj {
			return si > sj
		}
		return candidates[i].PublishedAt.After(candidates[j].PublishedAt)
	})

	limit := s.limits.MaxItemsPerDay
	if limit < minCandidates {
		limit = minCandidates
	}
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	s.debug("candidate source done", "total", len(candidates))
	return candidates, nil
}

func score(c domain.Candidate) int {
	host := ""
	if u, err := url.Parse(c.URL); err == nil {
		host = u.Hostname()
	}
	title := strings.ToLower(c.Title)

	total := 0
	for _, d := range coreDomains {
		if strings.Contains(host, d) {
			total += 2
			break
		}
	}
	for _, d := range tier1Domains {
		if strings.Contains(host, d) {
			total++
			break
		}
	}
	for _, k := range signalKeywords {
		if strings.Contains(title, k) {
			total++
			break
		}
	}
	return total
}

// withinFreshness keeps candidates without a publish date; the scoring sort
// pushes them behind dated items anyway.
func withinFreshness(c domain.Candidate, now time.Time, hours int) bool {
	if c.PublishedAt.IsZero() {
		return true
	}
	return now.Sub(c.PublishedAt) <= time.Duration(hours)*time.Hour
}

func (s *Source) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
