package approval

import (
	"context"
	"errors"
	"log/slog"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

// ReplyKind selects the acknowledgment shape returned to the chat surface.
type ReplyKind int

// Reply wire shapes understood by the webhook responder.
const (
	ReplyOK     ReplyKind = iota // {"ok":true}
	ReplyText                    // {"text":...}
	ReplyUpdate                  // {"response_action":"update","text":...}
	ReplyClear                   // {"response_action":"clear"}
)

// ModalRequest asks the responder to open the title-edit modal. Opening is
// best-effort and must not delay or fail the webhook response.
type ModalRequest struct {
	TriggerID    string
	ArticleID    string
	CurrentTitle string
}

// Reply is the user-facing acknowledgment computed by the state machine.
type Reply struct {
	Kind  ReplyKind
	Text  string
	Modal *ModalRequest
}

// Outcome pairs the field updates to persist with the reply to send.
type Outcome struct {
	Updates map[string]any
	Reply   Reply
}

const (
	replyNotFound     = "Article not found."
	replyUpdateFailed = "Update failed."
	replyUnhandled    = "Unhandled action"
	replyRegen        = "🔁 Will regenerate titles soon."
	fallbackTitle     = "Approved title"
)

var choiceIndex = map[string]int{"A": 0, "B": 1, "C": 2}

// Machine maps reviewer commands onto article state transitions. All state is
// reloaded from the store per command; there is no in-process caching.
type Machine struct {
	store  ports.ArticleStore
	logger *slog.Logger
}

// NewMachine wires the article store into the state machine.
func NewMachine(store ports.ArticleStore, logger *slog.Logger) *Machine {
	return &Machine{store: store, logger: logger}
}

// Handle loads the current record, applies the transition, and persists the
// resulting field updates. Store failures degrade to a typed reply; they are
// never propagated to the webhook caller.
func (m *Machine) Handle(ctx context.Context, cmd Command) Reply {
	switch cmd.(type) {
	case IgnoreCommand:
		return Reply{Kind: ReplyOK}
	case UnknownCommand:
		return Reply{Kind: ReplyText, Text: replyUnhandled}
	}

	if m.store == nil {
		m.log("article store not configured")
		return Reply{Kind: ReplyText, Text: replyUpdateFailed}
	}

	articleID := commandArticleID(cmd)
	article, err := m.store.Get(ctx, articleID)
	found := err == nil
	if err != nil && !errors.Is(err, ports.ErrNotFound) {
		m.log("load article failed", "article_id", articleID, "error", err)
		return Reply{Kind: ReplyText, Text: replyUpdateFailed}
	}

	outcome := Apply(cmd, article, found)
	if len(outcome.Updates) == 0 {
		return outcome.Reply
	}

	if err := m.store.Update(ctx, articleID, outcome.Updates); err != nil {
		// Modal submissions are acknowledged with a dismiss regardless of
		// the store outcome; everything else reports the failure inline.
		if outcome.Reply.Kind == ReplyClear {
			m.log("store update failed", "article_id", articleID, "error", err)
			return outcome.Reply
		}
		if errors.Is(err, ports.ErrNotFound) {
			return Reply{Kind: ReplyText, Text: replyNotFound}
		}
		m.log("store update failed", "article_id", articleID, "error", err)
		return Reply{Kind: ReplyText, Text: replyUpdateFailed}
	}

	return outcome.Reply
}

// Apply computes the transition for a command against the current record.
// It is pure: the caller persists Updates and delivers Reply.
func Apply(cmd Command, article domain.Article, found bool) Outcome {
	switch c := cmd.(type) {
	case EditCommand:
		// A vanished record still gets the modal, pre-filled empty; the
		// not-found reply is reserved for approve and regen.
		title := ""
		if found {
			title = ClampTitle(article.Title, MaxTitleLength)
		}
		return Outcome{Reply: Reply{
			Kind: ReplyClear,
			Modal: &ModalRequest{
				TriggerID:    c.TriggerID,
				ArticleID:    c.ArticleID,
				CurrentTitle: title,
			},
		}}

	case ApproveCommand:
		if !found {
			return Outcome{Reply: Reply{Kind: ReplyText, Text: replyNotFound}}
		}
		approved := approvedTitle(article, c.Choice)
		return Outcome{
			Updates: map[string]any{
				"approved_title": approved,
				"title":          approved,
				"status":         string(domain.StatusApproved),
			},
			Reply: Reply{Kind: ReplyUpdate, Text: "✅ Approved: " + approved},
		}

	case RegenCommand:
		if !found {
			return Outcome{Reply: Reply{Kind: ReplyText, Text: replyNotFound}}
		}
		// Existing proposed titles stay in place until regeneration lands.
		return Outcome{
			Updates: map[string]any{
				"status":      string(domain.StatusAwaitingApproval),
				"needs_regen": true,
			},
			Reply: Reply{Kind: ReplyText, Text: replyRegen},
		}

	case EditSubmitCommand:
		if !found {
			return Outcome{Reply: Reply{Kind: ReplyClear}}
		}
		approved := ClampTitle(c.NewTitle, MaxTitleLength)
		if approved == "" {
			approved = ClampTitle(article.Title, MaxTitleLength)
		}
		if approved == "" {
			approved = fallbackTitle
		}
		return Outcome{
			Updates: map[string]any{
				"approved_title": approved,
				"title":          approved,
				"status":         string(domain.StatusApproved),
			},
			Reply: Reply{Kind: ReplyClear},
		}
	}

	return Outcome{Reply: Reply{Kind: ReplyOK}}
}

// approvedTitle resolves the reviewer's choice against the proposed titles,
// falling back to the current title and then a placeholder so the approved
// title is never empty.
func approvedTitle(article domain.Article, choice string) string {
	idx := choiceIndex[choice] // unrecognized choices behave as "A"

	title := ""
	if idx < len(article.ProposedTitles) {
		title = ClampTitle(article.ProposedTitles[idx], MaxTitleLength)
	}
	if title == "" {
		title = ClampTitle(article.Title, MaxTitleLength)
	}
	if title == "" {
		title = fallbackTitle
	}
	return title
}

func commandArticleID(cmd Command) string {
	switch c := cmd.(type) {
	case EditCommand:
		return c.ArticleID
	case ApproveCommand:
		return c.ArticleID
	case RegenCommand:
		return c.ArticleID
	case EditSubmitCommand:
		return c.ArticleID
	}
	return ""
}

func (m *Machine) log(msg string, args ...any) {
	if m.logger != nil {
		m.logger.Warn(msg, args...)
	}
}
