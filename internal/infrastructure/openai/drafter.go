package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

const (
	maxShortDescription = 200
	maxSubtitle         = 140
	maxWhyBullets       = 5
	maxFactsBullets     = 8
	maxProposedTitles   = 3
	maxProposedLength   = 80
)

var jsonBlockExpr = regexp.MustCompile(`(?s)\{.*\}`)

// Drafter generates article draft fields via an OpenAI-compatible
// chat-completions API: one call for the summary block, one for the title
// candidates.
type Drafter struct {
	endpoint      string
	model         string
	apiKey        string
	summaryPrompt string
	titlesPrompt  string
	httpClient    *http.Client
}

var _ ports.Drafter = (*Drafter)(nil)

// NewDrafter builds a client from configuration.
func NewDrafter(cfg config.OpenAIConfig) *Drafter {
	return &Drafter{
		endpoint:      cfg.Endpoint,
		model:         cfg.Model,
		apiKey:        cfg.APIKey,
		summaryPrompt: cfg.SummaryPrompt,
		titlesPrompt:  cfg.TitlesPrompt,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Draft produces the generated fields for one candidate. Model output is
// decoded defensively: a summary response without a JSON object degrades to
// a plain short description, a titles response that is not a JSON array
// becomes a single proposed title.
func (d *Drafter) Draft(ctx context.Context, candidate domain.Candidate) (domain.DraftFields, error) {
	if d.apiKey == "" || d.endpoint == "" || d.model == "" {
		return domain.DraftFields{}, fmt.Errorf("openai drafter misconfigured")
	}

	base := fmt.Sprintf("TITLE: %s\nURL: %s\n", candidate.Title, candidate.URL)

	summaryText, err := d.complete(ctx, d.summaryPrompt,
		base+"\nReturn JSON with keys: SHORT_DESCRIPTION, SUBTITLE, WHY_IT_MATTERS(list), FACTS(list).", 0.5)
	if err != nil {
		return domain.DraftFields{}, fmt.Errorf("summary completion: %w", err)
	}

	titlesText, err := d.complete(ctx, d.titlesPrompt, base, 0.6)
	if err != nil {
		return domain.DraftFields{}, fmt.Errorf("titles completion: %w", err)
	}

	fields := parseSummary(summaryText)
	fields.ProposedTitles = parseTitles(titlesText)
	fields.SourceHost = hostFromURL(candidate.URL)
	return fields, nil
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (d *Drafter) complete(ctx context.Context, system, user string, temperature float64) (string, error) {
	body, err := json.Marshal(map[string]any{
		"model": d.model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
		"temperature": temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+d.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("openai error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var decoded chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Choices) == 0 {
		return "", fmt.Errorf("empty completion")
	}

	return strings.TrimSpace(decoded.Choices[0].Message.Content), nil
}

func parseSummary(text string) domain.DraftFields {
	var data struct {
		ShortDescription string   `json:"SHORT_DESCRIPTION"`
		Subtitle         string   `json:"SUBTITLE"`
		WhyItMatters     []string `json:"WHY_IT_MATTERS"`
		Facts            []string `json:"FACTS"`
	}

	if m := jsonBlockExpr.FindString(text); m != "" {
		if err := json.Unmarshal([]byte(m), &data); err != nil {
			data.ShortDescription = text
		}
	} else {
		data.ShortDescription = text
	}

	return domain.DraftFields{
		ShortDescription: truncate(strings.TrimSpace(data.ShortDescription), maxShortDescription),
		Subtitle:         truncate(strings.TrimSpace(data.Subtitle), maxSubtitle),
		WhyBullets:       cleanBullets(data.WhyItMatters, maxWhyBullets),
		FactsBullets:     cleanBullets(data.Facts, maxFactsBullets),
	}
}

func parseTitles(text string) []string {
	var proposed []string
	if err := json.Unmarshal([]byte(text), &proposed); err != nil {
		proposed = []string{text}
	}

	out := make([]string, 0, maxProposedTitles)
	for _, title := range proposed {
		title = truncate(strings.TrimSpace(title), maxProposedLength)
		if title == "" {
			continue
		}
		out = append(out, title)
		if len(out) == maxProposedTitles {
			break
		}
	}
	return out
}

func cleanBullets(bullets []string, limit int) []string {
	out := make([]string, 0, limit)
	for _, b := range bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		out = append(out, b)
		if len(out) == limit {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}

func hostFromURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
