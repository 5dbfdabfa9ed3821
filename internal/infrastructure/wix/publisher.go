package wix

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"strings"
	"time"

	"newsdesk/internal/approval"
	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

const reporterOrg = "AI Generative Org"

// Byline pool; the pick is seeded by article id so republishing an article
// keeps its author.
var authorChoices = []string{
	"Dahlia Arnold",
	"Novak Ivanovich",
	"Howard Lee",
	"Anurag Patnaik",
}

// Publisher creates or updates items in a Wix CMS collection.
type Publisher struct {
	apiBase      string
	apiKey       string
	siteID       string
	collectionID string
	httpClient   *http.Client
}

var _ ports.Publisher = (*Publisher)(nil)

// NewPublisher builds a CMS client from configuration.
func NewPublisher(cfg config.WixConfig) *Publisher {
	return &Publisher{
		apiBase:      cfg.APIBase,
		apiKey:       cfg.APIKey,
		siteID:       cfg.SiteID,
		collectionID: cfg.CollectionID,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Publish maps the article onto the collection's field names and creates the
// CMS item, or patches it when the article already carries a CMS id. Returns
// the external item id.
func (p *Publisher) Publish(ctx context.Context, article domain.Article) (string, error) {
	if p.apiKey == "" || p.siteID == "" || p.collectionID == "" {
		return "", fmt.Errorf("wix publisher misconfigured")
	}

	doc := buildPayload(article)

	endpoint := fmt.Sprintf("%s/cms/v1/collections/%s/items",
		strings.TrimSuffix(p.apiBase, "/"), p.collectionID)
	method := http.MethodPost
	if article.CMSID != "" {
		endpoint += "/" + article.CMSID
		method = http.MethodPatch
	}

	body, err := json.Marshal(map[string]any{"data": doc})
	if err != nil {
		return "", fmt.Errorf("marshal item: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", p.apiKey)
	req.Header.Set("wix-site-id", p.siteID)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("publish item: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("wix error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	return decodeItemID(resp.Body)
}

// buildPayload returns the collection's exact field names. Text fields are
// normalized so smart quotes and stray whitespace never reach the CMS.
func buildPayload(article domain.Article) map[string]any {
	title := article.ApprovedTitle
	if title == "" {
		title = article.Title
	}

	short := approval.NormalizeTitle(article.ShortDescription)
	if runes := []rune(short); len(runes) > 160 {
		short = string(runes[:160])
	}

	doc := map[string]any{
		"Title":             approval.NormalizeTitle(title),
		"Date":              dateISO(article.PublishedAt),
		"Reporter Name":     reporterOrg,
		"Subtitle":          approval.NormalizeTitle(article.Subtitle),
		"Article Text":      article.ArticleHTML,
		"Short Description": short,
		"Full Name":         pickFullName(article.ArticleID),
	}

	if article.ImageURL != "" {
		doc["Image"] = map[string]string{"src": article.ImageURL}
	} else {
		doc["Image"] = nil
	}

	return doc
}

func dateISO(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func pickFullName(seed string) string {
	if seed == "" {
		return authorChoices[rand.Intn(len(authorChoices))]
	}

	var sum int64
	for _, r := range seed {
		sum = sum*31 + int64(r)
	}
	rnd := rand.New(rand.NewSource(sum))
	return authorChoices[rnd.Intn(len(authorChoices))]
}

func decodeItemID(body io.Reader) (string, error) {
	var decoded struct {
		ID   string `json:"id"`
		Item struct {
			ID string `json:"id"`
		} `json:"item"`
	}
	if err := json.NewDecoder(io.LimitReader(body, 1<<20)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode wix response: %w", err)
	}

	// Some tenants return the id at top level instead of under item.
	if decoded.Item.ID != "" {
		return decoded.Item.ID, nil
	}
	if decoded.ID != "" {
		return decoded.ID, nil
	}
	return "", fmt.Errorf("missing id in wix response")
}
