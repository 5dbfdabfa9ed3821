package slack

import (
	"fmt"
	"net/url"
	"testing"

	"newsdesk/internal/approval"
)

const formContentType = "application/x-www-form-urlencoded"

func formBody(payload string) []byte {
	v := url.Values{}
	v.Set("payload", payload)
	return []byte(v.Encode())
}

func TestParseApproveFromButtonValue(t *testing.T) {
	t.Parallel()

	payload := `{
		"type": "block_actions",
		"trigger_id": "trig_1",
		"actions": [{
			"action_id": "approve_b",
			"value": "{\"action\":\"approve\",\"article_id\":\"art_42\",\"choice\":\"B\"}"
		}]
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	approve, ok := cmd.(approval.ApproveCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if approve.ArticleID != "art_42" || approve.Choice != "B" {
		t.Fatalf("command = %+v", approve)
	}
}

func TestParseApproveFromActionIDFallback(t *testing.T) {
	t.Parallel()

	// Buttons from older card layouts carry the article id but no action
	// or choice in the value blob.
	payload := `{
		"type": "block_actions",
		"actions": [{
			"action_id": "approve_c",
			"value": "{\"article_id\":\"art_42\"}"
		}]
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	approve, ok := cmd.(approval.ApproveCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if approve.Choice != "C" {
		t.Fatalf("choice = %q, want C from action id suffix", approve.Choice)
	}
}

func TestParseEditCarriesTriggerID(t *testing.T) {
	t.Parallel()

	payload := `{
		"type": "block_actions",
		"trigger_id": "trig_7",
		"actions": [{
			"action_id": "edit_title",
			"value": "{\"action\":\"edit\",\"article_id\":\"art_42\"}"
		}]
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	edit, ok := cmd.(approval.EditCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if edit.TriggerID != "trig_7" || edit.ArticleID != "art_42" {
		t.Fatalf("command = %+v", edit)
	}
}

func TestParseRegen(t *testing.T) {
	t.Parallel()

	payload := `{
		"type": "block_actions",
		"actions": [{
			"action_id": "regen_title",
			"value": "{\"action\":\"regen\",\"article_id\":\"art_42\"}"
		}]
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	if _, ok := cmd.(approval.RegenCommand); !ok {
		t.Fatalf("command type = %T", cmd)
	}
}

func TestParseUnknownAction(t *testing.T) {
	t.Parallel()

	payload := `{
		"type": "block_actions",
		"actions": [{"action_id": "archive_article", "value": "{}"}]
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	unknown, ok := cmd.(approval.UnknownCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if unknown.ActionID != "archive_article" {
		t.Fatalf("action id = %q", unknown.ActionID)
	}
}

func TestParseViewSubmission(t *testing.T) {
	t.Parallel()

	payload := `{
		"type": "view_submission",
		"view": {
			"callback_id": "edit_submit",
			"private_metadata": "{\"article_id\":\"art_42\"}",
			"state": {
				"values": {
					"title_blk": {"title_in": {"value": "New headline"}}
				}
			}
		}
	}`

	cmd := ParseInteraction(formContentType, formBody(payload))
	submit, ok := cmd.(approval.EditSubmitCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if submit.ArticleID != "art_42" || submit.NewTitle != "New headline" {
		t.Fatalf("command = %+v", submit)
	}
}

func TestParseViewSubmissionIgnoredShapes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		payload string
	}{
		{"wrong callback", `{"type":"view_submission","view":{"callback_id":"other"}}`},
		{"missing metadata", `{"type":"view_submission","view":{"callback_id":"edit_submit","private_metadata":"{}"}}`},
		{"no view", `{"type":"view_submission"}`},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd := ParseInteraction(formContentType, formBody(tc.payload))
			if _, ok := cmd.(approval.IgnoreCommand); !ok {
				t.Fatalf("command type = %T", cmd)
			}
		})
	}
}

func TestParseIgnoresUnrecognizedBodies(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name        string
		contentType string
		body        []byte
	}{
		{"garbage json", "application/json", []byte("{not json")},
		{"unknown type", "application/json", []byte(`{"type":"url_verification"}`)},
		{"empty actions", formContentType, formBody(`{"type":"block_actions","actions":[]}`)},
		{"missing payload field", formContentType, []byte("other=1")},
		{"broken form encoding", formContentType, []byte("%zz")},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cmd := ParseInteraction(tc.contentType, tc.body)
			if _, ok := cmd.(approval.IgnoreCommand); !ok {
				t.Fatalf("command type = %T", cmd)
			}
		})
	}
}

func TestParseBareJSONBody(t *testing.T) {
	t.Parallel()

	payload := fmt.Sprintf(`{
		"type": "block_actions",
		"actions": [{"action_id": "approve_a", "value": %q}]
	}`, `{"action":"approve","article_id":"art_9","choice":"A"}`)

	cmd := ParseInteraction("application/json", []byte(payload))
	approve, ok := cmd.(approval.ApproveCommand)
	if !ok {
		t.Fatalf("command type = %T", cmd)
	}
	if approve.ArticleID != "art_9" {
		t.Fatalf("command = %+v", approve)
	}
}
