package slack

import (
	"encoding/json"
	"fmt"
	"strings"

	"newsdesk/internal/approval"
	"newsdesk/internal/domain"
)

// Block Kit fragments for the TitleGate review card and the edit modal.
// Button values embed the command JSON so clicks round-trip through the
// payload parser without any server-side session state.

type textObject struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type buttonElement struct {
	Type     string      `json:"type"`
	Text     *textObject `json:"text"`
	Style    string      `json:"style,omitempty"`
	Value    string      `json:"value"`
	ActionID string      `json:"action_id"`
}

type block struct {
	Type     string          `json:"type"`
	Text     *textObject     `json:"text,omitempty"`
	Elements []buttonElement `json:"elements,omitempty"`
	BlockID  string          `json:"block_id,omitempty"`
	Label    *textObject     `json:"label,omitempty"`
	Element  *inputElement   `json:"element,omitempty"`
}

type inputElement struct {
	Type         string `json:"type"`
	ActionID     string `json:"action_id"`
	InitialValue string `json:"initial_value"`
}

type modalView struct {
	Type            string      `json:"type"`
	CallbackID      string      `json:"callback_id"`
	PrivateMetadata string      `json:"private_metadata"`
	Title           *textObject `json:"title"`
	Submit          *textObject `json:"submit"`
	Close           *textObject `json:"close"`
	Blocks          []block     `json:"blocks"`
}

func plainText(s string) *textObject {
	return &textObject{Type: "plain_text", Text: s}
}

func mrkdwn(s string) *textObject {
	return &textObject{Type: "mrkdwn", Text: s}
}

func buttonValueJSON(action, choice, articleID string) string {
	raw, _ := json.Marshal(buttonValue{Action: action, Choice: choice, ArticleID: articleID})
	return string(raw)
}

func approveButton(label, choice, articleID string) buttonElement {
	return buttonElement{
		Type:     "button",
		Text:     plainText(label),
		Style:    "primary",
		Value:    buttonValueJSON("approve", choice, articleID),
		ActionID: "approve_" + strings.ToLower(choice),
	}
}

// titleGateBlocks builds the review card with A/B/C approve buttons plus
// Edit Title and Regenerate actions.
func titleGateBlocks(article domain.Article) []block {
	titles := article.ProposedTitles
	for len(titles) < 3 {
		titles = append(titles, "")
	}

	header := fmt.Sprintf("*Review Title Options*\n*Article:* <%s|%s>\n*Summary:* %s\n*Reporter:* %s",
		article.CanonicalURL, article.Title, article.ShortDescription, article.ReporterName)

	blocks := []block{
		{Type: "section", Text: mrkdwn(header)},
		{Type: "divider"},
	}

	for i, label := range []string{"A", "B", "C"} {
		blocks = append(blocks,
			block{Type: "section", Text: mrkdwn(fmt.Sprintf("*%s*\n%s", label, titles[i]))},
			block{Type: "actions", Elements: []buttonElement{
				approveButton("Approve "+label, label, article.ArticleID),
			}},
		)
	}

	blocks = append(blocks, block{Type: "actions", Elements: []buttonElement{
		{
			Type:     "button",
			Text:     plainText("Edit Title"),
			Value:    buttonValueJSON("edit", "", article.ArticleID),
			ActionID: "edit_title",
		},
		{
			Type:     "button",
			Text:     plainText("Regenerate"),
			Value:    buttonValueJSON("regen", "", article.ArticleID),
			ActionID: "regen_title",
		},
	}})

	return blocks
}

// editModalView builds the single-input modal pre-filled with the current
// title, carrying the article id through private_metadata.
func editModalView(articleID, currentTitle string) modalView {
	meta, _ := json.Marshal(map[string]string{"article_id": articleID})

	return modalView{
		Type:            "modal",
		CallbackID:      editSubmitCallbackID,
		PrivateMetadata: string(meta),
		Title:           plainText("Edit Title"),
		Submit:          plainText("Save"),
		Close:           plainText("Cancel"),
		Blocks: []block{
			{
				Type:    "input",
				BlockID: titleBlockID,
				Label:   plainText(fmt.Sprintf("New Title (<= %d chars)", approval.MaxTitleLength)),
				Element: &inputElement{
					Type:         "plain_text_input",
					ActionID:     titleInputID,
					InitialValue: approval.ClampTitle(currentTitle, approval.MaxTitleLength),
				},
			},
		},
	}
}
