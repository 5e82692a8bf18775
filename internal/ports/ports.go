package ports

import (
	"context"
	"time"

	"NewsIngest/internal/domain"
)

// FeedFetcher retrieves and parses one feed endpoint under a bounded timeout.
// Failures are reported as *domain.FetchError.
type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) (domain.ParsedFeed, error)
}

// Translator converts text to the target language. Implementations degrade
// rather than fail: an empty result means "no translation available" and is
// never an ingestion error.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// SourceCatalog lists the feed endpoints eligible for a run.
type SourceCatalog interface {
	ActiveSources(ctx context.Context) ([]domain.Source, error)
}

// ArticleStore persists articles keyed on canonical URL. Re-upserting an
// already-seen URL only fills missing enrichment fields.
type ArticleStore interface {
	UpsertArticle(ctx context.Context, article domain.Article) error
}

// SourceHealth records per-source pass outcomes. The three failure-side
// writes (increment, error log, deactivation) are independent statements.
type SourceHealth interface {
	MarkSuccess(ctx context.Context, sourceID int64) error
	MarkFailure(ctx context.Context, sourceID int64, message string) error
	DeactivateIfUnhealthy(ctx context.Context, sourceID int64) (bool, error)
	AppendErrorLog(ctx context.Context, entry domain.ErrorLogEntry) error
}

// Alerter surfaces operational escalations (source deactivation) to humans.
type Alerter interface {
	Alert(ctx context.Context, message string) error
}

// Scheduler drives the recurring daemon mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
