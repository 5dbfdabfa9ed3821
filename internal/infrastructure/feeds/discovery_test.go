package feeds

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoverFeedURLsFromLinkTags(t *testing.T) {
	t.Parallel()

	page := `<!doctype html><html><head>
		<link rel="alternate" type="application/rss+xml" href="https://example.com/feed.xml">
		<link rel="alternate" type="application/atom+xml" href="https://example.com/atom.xml">
		<link rel="alternate" type="application/rss+xml" href="https://example.com/feed.xml">
		<link rel="alternate" type="text/html" href="https://example.com/amp">
		<link rel="stylesheet" href="/style.css">
	</head><body></body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	urls, err := DiscoverFeedURLs(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("DiscoverFeedURLs: %v", err)
	}

	want := []string{"https://example.com/feed.xml", "https://example.com/atom.xml"}
	if len(urls) != len(want) {
		t.Fatalf("urls = %v, want %v", urls, want)
	}
	for i := range want {
		if urls[i] != want[i] {
			t.Fatalf("urls[%d] = %q, want %q", i, urls[i], want[i])
		}
	}
}

func TestDiscoverFeedURLsProbesCommonPaths(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead {
			if r.URL.Path == "/rss.xml" {
				w.WriteHeader(http.StatusOK)
				return
			}
			w.WriteHeader(http.StatusNotFound)
			return
		}
		fmt.Fprint(w, "<html><head></head><body>no links here</body></html>")
	}))
	defer srv.Close()

	urls, err := DiscoverFeedURLs(context.Background(), srv.Client(), srv.URL)
	if err != nil {
		t.Fatalf("DiscoverFeedURLs: %v", err)
	}

	if len(urls) != 1 || urls[0] != srv.URL+"/rss.xml" {
		t.Fatalf("urls = %v", urls)
	}
}

func TestDiscoverFeedURLsHomepageError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if _, err := DiscoverFeedURLs(context.Background(), srv.Client(), srv.URL); err == nil {
		t.Fatal("expected error for failing homepage")
	}
}
