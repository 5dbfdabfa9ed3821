package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"newsdesk/internal/config"
	"newsdesk/internal/domain"
)

func chatCompletion(content string) []byte {
	raw, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return raw
}

func TestDraft(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("auth header = %q", got)
		}

		switch calls.Add(1) {
		case 1:
			// Models often wrap the JSON in prose.
			w.Write(chatCompletion("Here you go:\n" +
				`{"SHORT_DESCRIPTION":"A crisp summary.","SUBTITLE":"The angle","WHY_IT_MATTERS":["Cheaper tokens"],"FACTS":["Shipped today","","Free tier"]}`))
		default:
			w.Write(chatCompletion(`["Title one","Title two","Title three","Title four"]`))
		}
	}))
	defer srv.Close()

	d := NewDrafter(config.OpenAIConfig{
		Endpoint:      srv.URL,
		Model:         "gpt-4o-mini",
		APIKey:        "sk-test",
		SummaryPrompt: "summarize",
		TitlesPrompt:  "propose titles",
	})

	fields, err := d.Draft(context.Background(), domain.Candidate{
		Title: "Launch",
		URL:   "https://openai.com/blog/launch",
	})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}

	if fields.ShortDescription != "A crisp summary." {
		t.Fatalf("short description = %q", fields.ShortDescription)
	}
	if fields.Subtitle != "The angle" {
		t.Fatalf("subtitle = %q", fields.Subtitle)
	}
	if len(fields.FactsBullets) != 2 {
		t.Fatalf("facts = %v, want empty entries dropped", fields.FactsBullets)
	}
	if len(fields.ProposedTitles) != 3 || fields.ProposedTitles[2] != "Title three" {
		t.Fatalf("proposed titles = %v", fields.ProposedTitles)
	}
	if fields.SourceHost != "openai.com" {
		t.Fatalf("source host = %q", fields.SourceHost)
	}
	if n := calls.Load(); n != 2 {
		t.Fatalf("completion calls = %d", n)
	}
}

func TestDraftDegradedModelOutput(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		switch calls.Add(1) {
		case 1:
			w.Write(chatCompletion("Just a plain sentence, no JSON."))
		default:
			w.Write(chatCompletion("One headline without brackets"))
		}
	}))
	defer srv.Close()

	d := NewDrafter(config.OpenAIConfig{
		Endpoint: srv.URL,
		Model:    "gpt-4o-mini",
		APIKey:   "sk-test",
	})

	fields, err := d.Draft(context.Background(), domain.Candidate{Title: "T", URL: "https://example.com/x"})
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if fields.ShortDescription != "Just a plain sentence, no JSON." {
		t.Fatalf("short description = %q", fields.ShortDescription)
	}
	if len(fields.ProposedTitles) != 1 || fields.ProposedTitles[0] != "One headline without brackets" {
		t.Fatalf("proposed titles = %v", fields.ProposedTitles)
	}
}

func TestDraftSurfacesAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDrafter(config.OpenAIConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	_, err := d.Draft(context.Background(), domain.Candidate{Title: "T", URL: "https://example.com/x"})
	if err == nil || !strings.Contains(err.Error(), "429") {
		t.Fatalf("err = %v", err)
	}
}

func TestDraftMisconfigured(t *testing.T) {
	t.Parallel()

	d := NewDrafter(config.OpenAIConfig{})
	if _, err := d.Draft(context.Background(), domain.Candidate{}); err == nil {
		t.Fatal("expected error without credentials")
	}
}
