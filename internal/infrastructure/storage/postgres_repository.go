package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// PostgresRepository persists sources, articles and health state.
type PostgresRepository struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.SourceCatalog = (*PostgresRepository)(nil)
var _ ports.ArticleStore = (*PostgresRepository)(nil)
var _ ports.SourceHealth = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// ActiveSources returns every source eligible for an ingestion run.
func (r *PostgresRepository) ActiveSources(ctx context.Context) ([]domain.Source, error) {
	query, args, err := r.builder.
		Select(
			"id",
			"COALESCE(rss_url, '')",
			"city_id",
			"country_id",
			"COALESCE(language_code, '')",
			"COALESCE(failure_count, 0)",
		).
		From("news_sources").
		Where(sq.Eq{"is_active": true}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build active sources query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query active sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.Source
	for rows.Next() {
		var s domain.Source
		if err := rows.Scan(&s.ID, &s.RSSURL, &s.CityID, &s.CountryID, &s.LanguageCode, &s.FailureCount); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		sources = append(sources, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return sources, nil
}

// UpsertArticle inserts the article keyed on url. A conflict only fills
// enrichment fields that are still NULL; title, summary and content are
// never overwritten by a re-fetch.
func (r *PostgresRepository) UpsertArticle(ctx context.Context, a domain.Article) error {
	return r.exec(ctx, r.upsertArticleBuilder(a), "upsert article")
}

func (r *PostgresRepository) upsertArticleBuilder(a domain.Article) sq.Sqlizer {
	return r.builder.
		Insert("news_articles").
		Columns(
			"source_id", "city_id", "country_id",
			"title", "translated_title", "url",
			"summary", "translated_summary", "content",
			"language", "published_at", "ingested_at",
			"raw_json", "image_url",
		).
		Values(
			a.SourceID, a.CityID, a.CountryID,
			a.Title, nullIfEmpty(a.TranslatedTitle), a.URL,
			a.Summary, nullIfEmpty(a.TranslatedSummary), nullIfEmpty(a.Content),
			a.Language, a.PublishedAt, sq.Expr("NOW()"),
			a.RawJSON, nullIfEmpty(a.ImageURL),
		).
		Suffix(`ON CONFLICT (url) DO UPDATE SET
			translated_title = COALESCE(EXCLUDED.translated_title, news_articles.translated_title),
			translated_summary = COALESCE(EXCLUDED.translated_summary, news_articles.translated_summary),
			image_url = COALESCE(EXCLUDED.image_url, news_articles.image_url)`)
}

// MarkSuccess resets the failure counter after a fully successful pass.
func (r *PostgresRepository) MarkSuccess(ctx context.Context, sourceID int64) error {
	b := r.builder.
		Update("news_sources").
		Set("failure_count", 0).
		Set("last_success_at", sq.Expr("NOW()")).
		Set("last_error", nil).
		Where(sq.Eq{"id": sourceID})
	return r.exec(ctx, b, "mark source success")
}

// MarkFailure bumps the failure counter and records the quick-view error.
func (r *PostgresRepository) MarkFailure(ctx context.Context, sourceID int64, message string) error {
	b := r.builder.
		Update("news_sources").
		Set("failure_count", sq.Expr("COALESCE(failure_count, 0) + 1")).
		Set("last_failed_at", sq.Expr("NOW()")).
		Set("last_error", nullIfEmpty(message)).
		Where(sq.Eq{"id": sourceID})
	return r.exec(ctx, b, "mark source failure")
}

// DeactivateIfUnhealthy switches the source off once its failure count has
// reached the threshold. Reports whether a row was actually flipped.
func (r *PostgresRepository) DeactivateIfUnhealthy(ctx context.Context, sourceID int64) (bool, error) {
	query, args, err := r.builder.
		Update("news_sources").
		Set("is_active", false).
		Where(sq.And{
			sq.Eq{"id": sourceID},
			sq.Eq{"is_active": true},
			sq.GtOrEq{"failure_count": domain.FailureThreshold},
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build deactivate query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("deactivate source: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("deactivate rows affected: %w", err)
	}
	return affected > 0, nil
}

// AppendErrorLog writes one append-only postmortem row.
func (r *PostgresRepository) AppendErrorLog(ctx context.Context, entry domain.ErrorLogEntry) error {
	b := r.builder.
		Insert("rss_error_logs").
		Columns("feed_id", "rss_url", "error_type", "error_message", "stack_trace").
		Values(
			entry.SourceID,
			entry.SourceURL,
			entry.ErrorType,
			nullIfEmpty(entry.ErrorMessage),
			nullIfEmpty(entry.StackTrace),
		)
	return r.exec(ctx, b, "append error log")
}

func (r *PostgresRepository) exec(ctx context.Context, b sq.Sqlizer, op string) error {
	query, args, err := b.ToSql()
	if err != nil {
		return fmt.Errorf("%s: build query: %w", op, err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// nullIfEmpty maps "" to NULL so enrichment columns stay refinable.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
