package ports

import (
	"context"
	"errors"
	"time"

	"newsdesk/internal/domain"
)

// ErrNotFound is returned by stores when the requested key does not exist.
var ErrNotFound = errors.New("not found")

// ArticleStore persists article records keyed by article_id.
// Update applies a partial field mutation and always refreshes updated_at;
// concurrent updates race at field granularity, last write wins.
type ArticleStore interface {
	Get(ctx context.Context, articleID string) (domain.Article, error)
	Put(ctx context.Context, article domain.Article) error
	Update(ctx context.Context, articleID string, fields map[string]any) error
	ListByStatus(ctx context.Context, status domain.Status) ([]domain.Article, error)
}

// RunLog records pipeline run bookkeeping for audit.
type RunLog interface {
	StartRun(ctx context.Context, runID string) error
	FinishRun(ctx context.Context, runID string, fields map[string]any) error
}

// CandidateSource pulls fresh news candidates from upstream providers.
type CandidateSource interface {
	FetchTop(ctx context.Context, now time.Time) ([]domain.Candidate, error)
}

// Drafter generates the AI-written article fields for a candidate.
type Drafter interface {
	Draft(ctx context.Context, candidate domain.Candidate) (domain.DraftFields, error)
}

// Notifier posts review cards and plain messages to the chat surface.
type Notifier interface {
	PostTitleGate(ctx context.Context, article domain.Article) error
	PostText(ctx context.Context, text string) error
}

// ModalOpener opens the title-edit modal in response to an Edit click.
type ModalOpener interface {
	OpenEditModal(ctx context.Context, triggerID, articleID, currentTitle string) error
}

// Publisher pushes an approved article to the CMS and returns its external id.
type Publisher interface {
	Publish(ctx context.Context, article domain.Article) (string, error)
}

// ArtifactSink stores per-run JSON artifacts for audit and debugging.
type ArtifactSink interface {
	Save(ctx context.Context, runID, path string, payload any) error
}

// Scheduler controls when the drafting pipeline executes.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
