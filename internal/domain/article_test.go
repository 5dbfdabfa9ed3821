package domain

import (
	"strings"
	"testing"
)

func TestArticleIDFromURL(t *testing.T) {
	t.Parallel()

	id := ArticleIDFromURL("https://example.com/story")
	if !strings.HasPrefix(id, "art_") {
		t.Fatalf("id = %q", id)
	}
	if len(id) != len("art_")+24 {
		t.Fatalf("id length = %d", len(id))
	}

	if again := ArticleIDFromURL("https://example.com/story"); again != id {
		t.Fatal("id is not deterministic")
	}
	if other := ArticleIDFromURL("https://example.com/other"); other == id {
		t.Fatal("distinct urls collided")
	}
	if trimmed := ArticleIDFromURL("  https://example.com/story  "); trimmed != id {
		t.Fatal("surrounding whitespace changed the id")
	}
}
