package approval

import (
	"regexp"
	"strings"
)

// MaxTitleLength caps approved titles for the CMS card layout.
const MaxTitleLength = 60

var smartQuotes = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"′", "'", "‵", "'",
	"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	"″", `"`, "‶", `"`,
)

var (
	spaceExpr = regexp.MustCompile(`\s+`)
	fenceExpr = regexp.MustCompile("^`{3}[a-zA-Z]*\\s*(.*?)\\s*`{3}$")
)

// NormalizeTitle makes model- or human-provided title text safe for UI and
// JSON: smart quotes become straight quotes, internal whitespace collapses,
// and wrapping quotes or markdown code fences are stripped.
func NormalizeTitle(s string) string {
	s = smartQuotes.Replace(s)
	s = spaceExpr.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)

	if m := fenceExpr.FindStringSubmatch(s); m != nil {
		s = m[1]
	}

	s = strings.TrimSpace(strings.Trim(s, `"'`))
	return s
}

// ClampTitle normalizes and truncates a title to n characters. No truncation
// indicator is appended; the cut is at a rune boundary.
func ClampTitle(s string, n int) string {
	s = NormalizeTitle(s)
	runes := []rune(s)
	if len(runes) > n {
		return string(runes[:n])
	}
	return s
}
