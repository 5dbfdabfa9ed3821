package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newsdesk/internal/domain"
	"newsdesk/internal/ports"
)

// Columns callers may touch through partial updates. Update field names are
// interpolated into SQL, so anything outside this set is rejected.
var mutableColumns = map[string]struct{}{
	"title":             {},
	"approved_title":    {},
	"subtitle":          {},
	"short_description": {},
	"article_html":      {},
	"image_url":         {},
	"status":            {},
	"needs_regen":       {},
	"proposed_titles":   {},
	"meta_description":  {},
	"slug":              {},
	"cms_id":            {},
	"published_at":      {},
}

// PostgresStore persists articles and run bookkeeping in Postgres.
type PostgresStore struct {
	db  *sql.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

var _ ports.ArticleStore = (*PostgresStore)(nil)
var _ ports.RunLog = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
		now: time.Now,
	}
}

// EnsureSchema creates the articles and runs tables when absent.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS articles (
    article_id        TEXT PRIMARY KEY,
    canonical_url     TEXT NOT NULL DEFAULT '',
    title             TEXT NOT NULL DEFAULT '',
    approved_title    TEXT NOT NULL DEFAULT '',
    subtitle          TEXT NOT NULL DEFAULT '',
    short_description TEXT NOT NULL DEFAULT '',
    article_html      TEXT NOT NULL DEFAULT '',
    image_url         TEXT NOT NULL DEFAULT '',
    reporter_name     TEXT NOT NULL DEFAULT '',
    meta_description  TEXT NOT NULL DEFAULT '',
    slug              TEXT NOT NULL DEFAULT '',
    proposed_titles   TEXT[] NOT NULL DEFAULT '{}',
    tags              TEXT[] NOT NULL DEFAULT '{}',
    status            TEXT NOT NULL DEFAULT 'drafted',
    needs_regen       BOOLEAN NOT NULL DEFAULT FALSE,
    run_id            TEXT NOT NULL DEFAULT '',
    cms_id            TEXT NOT NULL DEFAULT '',
    published_at      TIMESTAMPTZ,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS articles_status_idx ON articles (status);

CREATE TABLE IF NOT EXISTS runs (
    run_id      TEXT PRIMARY KEY,
    status      TEXT NOT NULL DEFAULT 'started',
    drafted     INTEGER NOT NULL DEFAULT 0,
    published   INTEGER NOT NULL DEFAULT 0,
    started_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    finished_at TIMESTAMPTZ
);`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

var articleColumns = []string{
	"article_id", "canonical_url", "title", "approved_title", "subtitle",
	"short_description", "article_html", "image_url", "reporter_name",
	"meta_description", "slug", "proposed_titles", "tags", "status",
	"needs_regen", "run_id", "cms_id", "published_at", "created_at", "updated_at",
}

// Get loads one article by primary key.
func (s *PostgresStore) Get(ctx context.Context, articleID string) (domain.Article, error) {
	query, args, err := s.sb.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return domain.Article{}, fmt.Errorf("build select: %w", err)
	}

	row := s.db.QueryRowContext(ctx, query, args...)
	article, err := scanArticle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Article{}, ports.ErrNotFound
	}
	if err != nil {
		return domain.Article{}, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

// Put upserts the full record, stamping created_at/updated_at when absent.
func (s *PostgresStore) Put(ctx context.Context, article domain.Article) error {
	now := s.now().UTC()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	if article.UpdatedAt.IsZero() {
		article.UpdatedAt = article.CreatedAt
	}

	var publishedAt any
	if !article.PublishedAt.IsZero() {
		publishedAt = article.PublishedAt.UTC()
	}

	query, args, err := s.sb.Insert("articles").
		Columns(articleColumns...).
		Values(
			article.ArticleID, article.CanonicalURL, article.Title,
			article.ApprovedTitle, article.Subtitle, article.ShortDescription,
			article.ArticleHTML, article.ImageURL, article.ReporterName,
			article.MetaDescription, article.Slug,
			pq.Array(article.ProposedTitles), pq.Array(article.Tags),
			string(article.Status), article.NeedsRegen, article.RunID,
			article.CMSID, publishedAt, article.CreatedAt.UTC(), article.UpdatedAt.UTC(),
		).
		Suffix(`ON CONFLICT (article_id) DO UPDATE SET
            canonical_url = EXCLUDED.canonical_url,
            title = EXCLUDED.title,
            approved_title = EXCLUDED.approved_title,
            subtitle = EXCLUDED.subtitle,
            short_description = EXCLUDED.short_description,
            article_html = EXCLUDED.article_html,
            image_url = EXCLUDED.image_url,
            reporter_name = EXCLUDED.reporter_name,
            meta_description = EXCLUDED.meta_description,
            slug = EXCLUDED.slug,
            proposed_titles = EXCLUDED.proposed_titles,
            tags = EXCLUDED.tags,
            status = EXCLUDED.status,
            needs_regen = EXCLUDED.needs_regen,
            run_id = EXCLUDED.run_id,
            cms_id = EXCLUDED.cms_id,
            published_at = EXCLUDED.published_at,
            updated_at = EXCLUDED.updated_at`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert article: %w", err)
	}
	return nil
}

// Update applies a partial field mutation and always stamps updated_at.
// A missing key reports ports.ErrNotFound. There is no optimistic-concurrency
// token: concurrent updates race, last write wins per field.
func (s *PostgresStore) Update(ctx context.Context, articleID string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	update := s.sb.Update("articles")
	for column, value := range fields {
		if _, ok := mutableColumns[column]; !ok {
			return fmt.Errorf("column %s is not updatable", column)
		}
		if list, ok := value.([]string); ok {
			value = pq.Array(list)
		}
		update = update.Set(column, value)
	}

	query, args, err := update.
		Set("updated_at", s.now().UTC()).
		Where(sq.Eq{"article_id": articleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update article: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

// ListByStatus returns every article in the given lifecycle state, oldest
// first so review cards and publishes keep submission order.
func (s *PostgresStore) ListByStatus(ctx context.Context, status domain.Status) ([]domain.Article, error) {
	query, args, err := s.sb.Select(articleColumns...).
		From("articles").
		Where(sq.Eq{"status": string(status)}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer rows.Close()

	var articles []domain.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		articles = append(articles, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return articles, nil
}

// StartRun records the beginning of a pipeline run.
func (s *PostgresStore) StartRun(ctx context.Context, runID string) error {
	query, args, err := s.sb.Insert("runs").
		Columns("run_id", "status", "started_at").
		Values(runID, "started", s.now().UTC()).
		Suffix("ON CONFLICT (run_id) DO NOTHING").
		ToSql()
	if err != nil {
		return fmt.Errorf("build run insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("start run: %w", err)
	}
	return nil
}

// FinishRun stamps the run row with its final status and counters.
func (s *PostgresStore) FinishRun(ctx context.Context, runID string, fields map[string]any) error {
	update := s.sb.Update("runs")
	for column, value := range fields {
		switch column {
		case "status", "drafted", "published":
			update = update.Set(column, value)
		default:
			return fmt.Errorf("run column %s is not updatable", column)
		}
	}

	query, args, err := update.
		Set("finished_at", s.now().UTC()).
		Where(sq.Eq{"run_id": runID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build run update: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanArticle(row rowScanner) (domain.Article, error) {
	var (
		article     domain.Article
		status      string
		publishedAt sql.NullTime
	)

	err := row.Scan(
		&article.ArticleID, &article.CanonicalURL, &article.Title,
		&article.ApprovedTitle, &article.Subtitle, &article.ShortDescription,
		&article.ArticleHTML, &article.ImageURL, &article.ReporterName,
		&article.MetaDescription, &article.Slug,
		pq.Array(&article.ProposedTitles), pq.Array(&article.Tags),
		&status, &article.NeedsRegen, &article.RunID, &article.CMSID,
		&publishedAt, &article.CreatedAt, &article.UpdatedAt,
	)
	if err != nil {
		return domain.Article{}, err
	}

	article.Status = domain.Status(status)
	if publishedAt.Valid {
		article.PublishedAt = publishedAt.Time
	}
	return article, nil
}
