package render

import (
	"strings"
	"testing"

	"newsdesk/internal/domain"
)

func TestEnforceLengths(t *testing.T) {
	t.Parallel()

	okShort := strings.Repeat("s", 140)

	if errs := EnforceLengths("Fine title", "Fine subtitle", okShort); len(errs) != 0 {
		t.Fatalf("clean fields flagged: %v", errs)
	}

	errs := EnforceLengths(strings.Repeat("t", 61), strings.Repeat("u", 111), "too short")
	if len(errs) != 3 {
		t.Fatalf("violations = %v", errs)
	}
	if !strings.Contains(errs[0], "Title") {
		t.Fatalf("first violation = %q", errs[0])
	}

	if errs := EnforceLengths("ok", "ok", strings.Repeat("s", 161)); len(errs) != 1 {
		t.Fatalf("long short description = %v", errs)
	}
}

func TestBuildArticleHTML(t *testing.T) {
	t.Parallel()

	fields := domain.DraftFields{
		ShortDescription: "A quick summary of the launch.",
		Subtitle:         "What shipped and why",
		WhyBullets:       []string{"It changes pricing"},
		FactsBullets:     []string{"Released today", "Free tier included"},
	}

	html, err := BuildArticleHTML("Launch Day", fields, "https://openai.com/blog/launch")
	if err != nil {
		t.Fatalf("BuildArticleHTML: %v", err)
	}

	for _, want := range []string{
		"<h1>Launch Day</h1>",
		"<em>What shipped and why</em>",
		"Key Facts",
		"<li>Released today</li>",
		"Why it matters",
		`<a href="https://openai.com/blog/launch">openai.com</a>`,
	} {
		if !strings.Contains(html, want) {
			t.Fatalf("html missing %q:\n%s", want, html)
		}
	}
}

func TestBuildArticleHTMLSourceHostOverride(t *testing.T) {
	t.Parallel()

	fields := domain.DraftFields{ShortDescription: "Summary.", SourceHost: "custom.example"}
	html, err := BuildArticleHTML("T", fields, "https://example.com/x")
	if err != nil {
		t.Fatalf("BuildArticleHTML: %v", err)
	}
	if !strings.Contains(html, ">custom.example</a>") {
		t.Fatalf("host override missing:\n%s", html)
	}
}
