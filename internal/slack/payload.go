package slack

import (
	"encoding/json"
	"net/url"
	"strings"

	"newsdesk/internal/approval"
)

// Interaction payloads arrive either as a form field named "payload" or as a
// bare JSON body. Only two shapes are acted on: block_actions (button click)
// and view_submission (edit modal). Everything else is acknowledged and
// dropped, never surfaced as an error to Slack.

const editSubmitCallbackID = "edit_submit"

const (
	titleBlockID = "title_blk"
	titleInputID = "title_in"
)

type interactionPayload struct {
	Type      string          `json:"type"`
	TriggerID string          `json:"trigger_id"`
	Actions   []actionPayload `json:"actions"`
	View      *viewPayload    `json:"view"`
}

type actionPayload struct {
	ActionID string `json:"action_id"`
	Value    string `json:"value"`
}

type viewPayload struct {
	CallbackID      string `json:"callback_id"`
	PrivateMetadata string `json:"private_metadata"`
	State           struct {
		Values map[string]map[string]struct {
			Value string `json:"value"`
		} `json:"values"`
	} `json:"state"`
}

// buttonValue is the JSON blob embedded in each TitleGate button.
type buttonValue struct {
	Action    string `json:"action"`
	ArticleID string `json:"article_id"`
	Choice    string `json:"choice"`
}

// ParseInteraction normalizes an inbound interaction body into a command.
// Bodies that fail to decode as a recognized payload produce IgnoreCommand.
func ParseInteraction(contentType string, rawBody []byte) approval.Command {
	raw := extractPayload(contentType, rawBody)
	if raw == "" {
		return approval.IgnoreCommand{}
	}

	var payload interactionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return approval.IgnoreCommand{}
	}

	switch payload.Type {
	case "block_actions":
		return parseBlockAction(payload)
	case "view_submission":
		return parseViewSubmission(payload)
	}

	return approval.IgnoreCommand{}
}

func extractPayload(contentType string, rawBody []byte) string {
	if strings.Contains(contentType, "application/x-www-form-urlencoded") {
		form, err := url.ParseQuery(string(rawBody))
		if err != nil {
			return ""
		}
		return form.Get("payload")
	}
	return string(rawBody)
}

func parseBlockAction(payload interactionPayload) approval.Command {
	if len(payload.Actions) == 0 {
		return approval.IgnoreCommand{}
	}
	act := payload.Actions[0]

	var value buttonValue
	_ = json.Unmarshal([]byte(act.Value), &value)

	action := value.Action
	if action == "" {
		action = actionFromID(act.ActionID)
	}
	choice := value.Choice
	if choice == "" {
		choice = choiceFromID(act.ActionID)
	}

	switch action {
	case "edit":
		return approval.EditCommand{ArticleID: value.ArticleID, TriggerID: payload.TriggerID}
	case "approve":
		return approval.ApproveCommand{ArticleID: value.ArticleID, Choice: choice}
	case "regen":
		return approval.RegenCommand{ArticleID: value.ArticleID}
	}

	return approval.UnknownCommand{ActionID: act.ActionID}
}

// actionFromID recovers the action kind from the action identifier when the
// embedded value is absent or unparsable.
func actionFromID(actionID string) string {
	switch {
	case strings.HasPrefix(actionID, "approve_"):
		return "approve"
	case strings.HasPrefix(actionID, "edit_"):
		return "edit"
	case strings.HasPrefix(actionID, "regen_"):
		return "regen"
	}
	return ""
}

// choiceFromID maps the _a/_b/_c suffix convention onto a choice letter.
func choiceFromID(actionID string) string {
	switch {
	case strings.HasSuffix(actionID, "_a"):
		return "A"
	case strings.HasSuffix(actionID, "_b"):
		return "B"
	case strings.HasSuffix(actionID, "_c"):
		return "C"
	}
	return ""
}

func parseViewSubmission(payload interactionPayload) approval.Command {
	if payload.View == nil || payload.View.CallbackID != editSubmitCallbackID {
		return approval.IgnoreCommand{}
	}

	var meta struct {
		ArticleID string `json:"article_id"`
	}
	_ = json.Unmarshal([]byte(payload.View.PrivateMetadata), &meta)
	if meta.ArticleID == "" {
		return approval.IgnoreCommand{}
	}

	title := payload.View.State.Values[titleBlockID][titleInputID].Value
	return approval.EditSubmitCommand{ArticleID: meta.ArticleID, NewTitle: title}
}
