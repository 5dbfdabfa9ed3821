package feeds

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Common feed locations tried when the homepage advertises nothing.
var feedGuesses = []string{"/feed", "/rss", "/rss.xml", "/atom.xml", "/feeds/posts/default?alt=rss"}

// DiscoverFeedURLs extracts RSS/Atom feed URLs advertised by a homepage via
// <link rel="alternate"> tags, falling back to common feed paths probed with
// HEAD requests. Errors on individual probes are swallowed; an unreachable
// homepage returns an error.
func DiscoverFeedURLs(ctx context.Context, client *http.Client, homepage string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, homepage, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "newsdesk/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch homepage: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("homepage returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse homepage: %w", err)
	}

	seen := map[string]struct{}{}
	var urls []string
	add := func(u string) {
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	doc.Find(`link[rel="alternate"], link[rel="ALTERNATE"]`).Each(func(_ int, sel *goquery.Selection) {
		linkType := strings.ToLower(sel.AttrOr("type", ""))
		if !strings.Contains(linkType, "rss") && !strings.Contains(linkType, "atom") && !strings.Contains(linkType, "xml") {
			return
		}
		href := sel.AttrOr("href", "")
		if strings.HasPrefix(href, "http://") || strings.HasPrefix(href, "https://") {
			add(href)
		}
	})

	base := strings.TrimSuffix(homepage, "/")
	for _, guess := range feedGuesses {
		u := base + guess
		if probeFeed(ctx, client, u) {
			add(u)
		}
	}

	return urls, nil
}

func probeFeed(ctx context.Context, client *http.Client, u string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u, nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", "newsdesk/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()

	return resp.StatusCode < http.StatusBadRequest
}
