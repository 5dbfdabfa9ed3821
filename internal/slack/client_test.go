package slack

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"newsdesk/internal/domain"
)

func TestPostTitleGate(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", "C123")
	c.apiBase = srv.URL

	article := domain.Article{
		ArticleID:      "art_1",
		Title:          "Headline",
		ProposedTitles: []string{"T1", "T2", "T3"},
	}
	if err := c.PostTitleGate(context.Background(), article); err != nil {
		t.Fatalf("PostTitleGate: %v", err)
	}

	if gotPath != "/chat.postMessage" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotAuth != "Bearer xoxb-test" {
		t.Fatalf("auth header = %q", gotAuth)
	}
	if gotBody["channel"] != "C123" {
		t.Fatalf("channel = %v", gotBody["channel"])
	}
	if _, ok := gotBody["blocks"].([]any); !ok {
		t.Fatalf("blocks missing: %v", gotBody)
	}
}

func TestOpenEditModal(t *testing.T) {
	t.Parallel()

	var gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", "C123")
	c.apiBase = srv.URL

	if err := c.OpenEditModal(context.Background(), "trig_1", "art_1", "Current"); err != nil {
		t.Fatalf("OpenEditModal: %v", err)
	}

	if gotPath != "/views.open" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotBody["trigger_id"] != "trig_1" {
		t.Fatalf("trigger_id = %v", gotBody["trigger_id"])
	}

	view, ok := gotBody["view"].(map[string]any)
	if !ok {
		t.Fatalf("view missing: %v", gotBody)
	}
	if cb := view["callback_id"]; cb != "edit_submit" {
		t.Fatalf("callback_id = %v", cb)
	}
	if meta, _ := view["private_metadata"].(string); !strings.Contains(meta, "art_1") {
		t.Fatalf("private_metadata = %v", view["private_metadata"])
	}
}

func TestClientSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"ok":false,"error":"channel_not_found"}`))
	}))
	defer srv.Close()

	c := NewClient("xoxb-test", "C123")
	c.apiBase = srv.URL

	err := c.PostText(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "channel_not_found") {
		t.Fatalf("err = %v", err)
	}
}

func TestClientWithoutToken(t *testing.T) {
	t.Parallel()

	c := NewClient("", "C123")
	if err := c.PostText(context.Background(), "hello"); err == nil {
		t.Fatal("expected error without bot token")
	}
}
