package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

// TitleGatePipeline posts a review card for every article still awaiting
// title approval.
type TitleGatePipeline struct {
	store    ports.ArticleStore
	notifier ports.Notifier
	logger   *slog.Logger
}

// NewTitleGatePipeline constructs the card-posting orchestration.
func NewTitleGatePipeline(store ports.ArticleStore, notifier ports.Notifier, logger *slog.Logger) *TitleGatePipeline {
	return &TitleGatePipeline{store: store, notifier: notifier, logger: logger}
}

// Run lists awaiting_approval articles and posts one TitleGate card each,
// in sequence to stay inside the chat platform's rate limits. A failed post
// is logged and does not block the remaining cards.
func (p *TitleGatePipeline) Run(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("article store not configured")
	}
	if p.notifier == nil {
		return fmt.Errorf("notifier not configured")
	}

	articles, err := p.store.ListByStatus(ctx, domain.StatusAwaitingApproval)
	if err != nil {
		return fmt.Errorf("list awaiting articles: %w", err)
	}
	if len(articles) == 0 {
		p.info("no awaiting_approval articles")
		return nil
	}

	posted := 0
	for _, article := range articles {
		if err := p.notifier.PostTitleGate(ctx, article); err != nil {
			p.warn("post titlegate failed", "article_id", article.ArticleID, "error", err)
			continue
		}
		posted++
	}

	p.info("titlegate run done", "posted", posted, "total", len(articles))
	return nil
}

func (p *TitleGatePipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *TitleGatePipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
