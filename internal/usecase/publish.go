package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

// PublishPipeline pushes approved articles to the CMS and marks them
// published. The notifier is an optional capability used for the
// "published" announcement only.
type PublishPipeline struct {
	store     ports.ArticleStore
	publisher ports.Publisher
	notifier  ports.Notifier
	logger    *slog.Logger
}

// NewPublishPipeline constructs the publishing orchestration.
func NewPublishPipeline(store ports.ArticleStore, publisher ports.Publisher, notifier ports.Notifier, logger *slog.Logger) *PublishPipeline {
	return &PublishPipeline{store: store, publisher: publisher, notifier: notifier, logger: logger}
}

// Run publishes every approved article. One failing article is logged and
// skipped; the store row only moves to published after the CMS accepted it.
func (p *PublishPipeline) Run(ctx context.Context) error {
	if p.store == nil {
		return fmt.Errorf("article store not configured")
	}
	if p.publisher == nil {
		return fmt.Errorf("publisher not configured")
	}

	articles, err := p.store.ListByStatus(ctx, domain.StatusApproved)
	if err != nil {
		return fmt.Errorf("list approved articles: %w", err)
	}
	if len(articles) == 0 {
		p.info("no approved articles to publish")
		return nil
	}

	published := 0
	for _, article := range articles {
		cmsID, err := p.publisher.Publish(ctx, article)
		if err != nil {
			p.warn("publish failed", "article_id", article.ArticleID, "error", err)
			continue
		}

		updates := map[string]any{
			"status": string(domain.StatusPublished),
			"cms_id": cmsID,
		}
		if err := p.store.Update(ctx, article.ArticleID, updates); err != nil {
			p.warn("mark published failed", "article_id", article.ArticleID, "cms_id", cmsID, "error", err)
			continue
		}
		published++

		p.announce(ctx, article)
		p.info("published article", "article_id", article.ArticleID, "cms_id", cmsID)
	}

	p.info("publish run done", "published", published, "total", len(articles))
	return nil
}

func (p *PublishPipeline) announce(ctx context.Context, article domain.Article) {
	if p.notifier == nil {
		return
	}

	text := fmt.Sprintf("✅ *Published:* <%s|%s>", article.CanonicalURL, article.Title)
	if err := p.notifier.PostText(ctx, text); err != nil {
		p.warn("publish announcement failed", "article_id", article.ArticleID, "error", err)
	}
}

func (p *PublishPipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *PublishPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
