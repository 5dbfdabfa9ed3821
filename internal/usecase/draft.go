package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"newsdesk/internal/approval"
	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
	"newsdesk/internal/render"
)

// DraftDeps wires all driven adapters into the drafting pipeline. Runs and
// Artifacts are optional capabilities; every use handles their absence.
type DraftDeps struct {
	Source          ports.CandidateSource
	Store           ports.ArticleStore
	Drafter         ports.Drafter
	Runs            ports.RunLog
	Artifacts       ports.ArtifactSink
	Logger          *slog.Logger
	MaxItems        int
	DefaultReporter string
}

// DraftPipeline turns discovered candidates into stored drafts awaiting
// title approval.
type DraftPipeline struct {
	source          ports.CandidateSource
	store           ports.ArticleStore
	drafter         ports.Drafter
	runs            ports.RunLog
	artifacts       ports.ArtifactSink
	logger          *slog.Logger
	maxItems        int
	defaultReporter string
}

// NewDraftPipeline constructs the drafting orchestration.
func NewDraftPipeline(deps DraftDeps) *DraftPipeline {
	return &DraftPipeline{
		source:          deps.Source,
		store:           deps.Store,
		drafter:         deps.Drafter,
		runs:            deps.Runs,
		artifacts:       deps.Artifacts,
		logger:          deps.Logger,
		maxItems:        deps.MaxItems,
		defaultReporter: deps.DefaultReporter,
	}
}

// Run fetches top candidates, drafts the new ones, and saves them as
// awaiting_approval. Candidates already present in the store are skipped, so
// re-running a day is idempotent.
func (p *DraftPipeline) Run(ctx context.Context, now time.Time) error {
	if p.source == nil || p.store == nil || p.drafter == nil {
		return fmt.Errorf("draft pipeline misconfigured")
	}

	runID := fmt.Sprintf("run_%s_%s", now.UTC().Format("2006-01-02"), uuid.NewString()[:8])
	if p.runs != nil {
		if err := p.runs.StartRun(ctx, runID); err != nil {
			p.warn("start run failed", "run_id", runID, "error", err)
		}
	}

	candidates, err := p.source.FetchTop(ctx, now)
	if err != nil {
		p.finishRun(ctx, runID, "failed", 0)
		return fmt.Errorf("fetch candidates: %w", err)
	}

	drafted := 0
	for _, candidate := range candidates {
		if p.maxItems > 0 && drafted >= p.maxItems {
			break
		}

		articleID := domain.ArticleIDFromURL(candidate.URL)
		_, err := p.store.Get(ctx, articleID)
		if err == nil {
			continue // already drafted or published earlier
		}
		if !errors.Is(err, ports.ErrNotFound) {
			p.finishRun(ctx, runID, "failed", drafted)
			return fmt.Errorf("check article %s: %w", articleID, err)
		}

		article, err := p.draftOne(ctx, candidate, articleID, runID, now)
		if err != nil {
			p.warn("draft candidate failed", "article_id", articleID, "url", candidate.URL, "error", err)
			continue
		}

		if err := p.store.Put(ctx, article); err != nil {
			p.finishRun(ctx, runID, "failed", drafted)
			return fmt.Errorf("save article %s: %w", articleID, err)
		}
		drafted++

		p.saveArtifact(ctx, runID, article, candidate)
		p.info("drafted article", "article_id", articleID, "title", article.Title)
	}

	p.finishRun(ctx, runID, "finished", drafted)
	p.info("draft run done", "run_id", runID, "drafted", drafted)
	return nil
}

func (p *DraftPipeline) draftOne(ctx context.Context, candidate domain.Candidate, articleID, runID string, now time.Time) (domain.Article, error) {
	fields, err := p.drafter.Draft(ctx, candidate)
	if err != nil {
		return domain.Article{}, fmt.Errorf("generate fields: %w", err)
	}

	title := approval.ClampTitle(candidate.Title, approval.MaxTitleLength)
	if lint := render.EnforceLengths(title, fields.Subtitle, fields.ShortDescription); len(lint) > 0 {
		// Length violations are saved anyway and corrected during review.
		p.warn("draft length lint", "article_id", articleID, "issues", lint)
	}

	html, err := render.BuildArticleHTML(title, fields, candidate.URL)
	if err != nil {
		return domain.Article{}, fmt.Errorf("render body: %w", err)
	}

	reporter := candidate.Author
	if reporter == "" {
		reporter = p.defaultReporter
	}

	publishedAt := candidate.PublishedAt
	if publishedAt.IsZero() {
		publishedAt = now.UTC()
	}

	return domain.Article{
		ArticleID:        articleID,
		CanonicalURL:     candidate.URL,
		Title:            title,
		Subtitle:         fields.Subtitle,
		ShortDescription: fields.ShortDescription,
		ArticleHTML:      html,
		ImageURL:         candidate.ImageURL,
		ReporterName:     reporter,
		MetaDescription:  fields.ShortDescription,
		ProposedTitles:   fields.ProposedTitles,
		Status:           domain.StatusAwaitingApproval,
		RunID:            runID,
		PublishedAt:      publishedAt,
	}, nil
}

func (p *DraftPipeline) saveArtifact(ctx context.Context, runID string, article domain.Article, candidate domain.Candidate) {
	if p.artifacts == nil {
		return
	}

	payload := map[string]any{
		"candidate": candidate,
		"article":   article,
	}
	if err := p.artifacts.Save(ctx, runID, "articles/"+article.ArticleID+".json", payload); err != nil {
		p.warn("save artifact failed", "article_id", article.ArticleID, "error", err)
	}
}

func (p *DraftPipeline) finishRun(ctx context.Context, runID, status string, drafted int) {
	if p.runs == nil {
		return
	}
	if err := p.runs.FinishRun(ctx, runID, map[string]any{"status": status, "drafted": drafted}); err != nil {
		p.warn("finish run failed", "run_id", runID, "error", err)
	}
}

func (p *DraftPipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *DraftPipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}
