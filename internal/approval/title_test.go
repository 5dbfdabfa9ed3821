package approval

import (
	"strings"
	"testing"
)

func TestNormalizeTitle(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"smart quotes", "“OpenAI’s new model”", `OpenAI's new model`},
		{"whitespace collapse", "  Big \t news\n today ", "Big news today"},
		{"code fence", "```json\nHello world\n```", "Hello world"},
		{"wrapping quotes", `"Quoted headline"`, "Quoted headline"},
		{"plain", "Nothing to fix", "Nothing to fix"},
		{"empty", "", ""},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeTitle(tc.in); got != tc.want {
				t.Fatalf("NormalizeTitle(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestClampTitle(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 65)
	got := ClampTitle(long, MaxTitleLength)
	if len([]rune(got)) != MaxTitleLength {
		t.Fatalf("clamped length = %d, want %d", len([]rune(got)), MaxTitleLength)
	}

	if got := ClampTitle("short", MaxTitleLength); got != "short" {
		t.Fatalf("short title changed: %q", got)
	}

	// The cut must land on a rune boundary, not a byte boundary.
	wide := strings.Repeat("日", 70)
	got = ClampTitle(wide, MaxTitleLength)
	if len([]rune(got)) != MaxTitleLength {
		t.Fatalf("rune clamp length = %d, want %d", len([]rune(got)), MaxTitleLength)
	}

	if got := ClampTitle(`  'Quoted Title Example'  `, MaxTitleLength); got != "Quoted Title Example" {
		t.Fatalf("normalize before clamp failed: %q", got)
	}
}
