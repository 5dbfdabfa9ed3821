package render

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"

	"newsdesk/internal/domain"
)

// Editorial length limits enforced before an article enters review.
const (
	maxTitleLength    = 60
	maxSubtitleLength = 110
	minShortLength    = 120
	maxShortLength    = 160
)

// EnforceLengths lints the drafted fields against the editorial limits.
// Violations are advisory: drafts are saved anyway and fixed during review.
func EnforceLengths(title, subtitle, short string) []string {
	var errs []string
	if len([]rune(title)) > maxTitleLength {
		errs = append(errs, fmt.Sprintf("Title >%d chars", maxTitleLength))
	}
	if len([]rune(subtitle)) > maxSubtitleLength {
		errs = append(errs, fmt.Sprintf("Subtitle >%d chars", maxSubtitleLength))
	}
	if n := len([]rune(short)); n < minShortLength || n > maxShortLength {
		errs = append(errs, fmt.Sprintf("Short description not %d-%d chars", minShortLength, maxShortLength))
	}
	return errs
}

// BuildArticleHTML assembles the article body as markdown and converts it to
// HTML for the CMS rich-text field.
func BuildArticleHTML(title string, fields domain.DraftFields, sourceURL string) (string, error) {
	var md strings.Builder

	fmt.Fprintf(&md, "# %s\n\n", title)
	if fields.Subtitle != "" {
		fmt.Fprintf(&md, "_%s_\n\n", fields.Subtitle)
	}
	fmt.Fprintf(&md, "**Summary:** %s\n\n", fields.ShortDescription)

	md.WriteString("## Key Facts\n")
	for _, fact := range fields.FactsBullets {
		fmt.Fprintf(&md, "- %s\n", fact)
	}
	md.WriteString("\n## Why it matters\n")
	for _, why := range fields.WhyBullets {
		fmt.Fprintf(&md, "- %s\n", why)
	}

	host := fields.SourceHost
	if host == "" {
		if u, err := url.Parse(sourceURL); err == nil && u.Hostname() != "" {
			host = u.Hostname()
		} else {
			host = sourceURL
		}
	}
	fmt.Fprintf(&md, "\n### Source\n[%s](%s)\n", host, sourceURL)

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(md.String()), &html); err != nil {
		return "", fmt.Errorf("render article html: %w", err)
	}

	return html.String(), nil
}
