package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/normalize"
	"NewsIngest/internal/ports"
)

const (
	defaultTargetLanguage  = "en"
	defaultMaxItemsPerFeed = 40
)

// PipelineDeps wires all driven adapters into the ingestion pipeline.
type PipelineDeps struct {
	Catalog    ports.SourceCatalog
	Fetcher    ports.FeedFetcher
	Translator ports.Translator
	Store      ports.ArticleStore
	Health     *HealthTracker

	TargetLanguage  string
	MaxItemsPerFeed int
	Logger          *slog.Logger
}

// Pipeline implements the per-run ingestion workflow: fetch, normalize,
// translate, upsert, health-update, one source at a time, with each source
// isolated behind its own outcome boundary.
type Pipeline struct {
	catalog    ports.SourceCatalog
	fetcher    ports.FeedFetcher
	translator ports.Translator
	store      ports.ArticleStore
	health     *HealthTracker

	targetLang string
	maxItems   int
	logger     *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	if deps.TargetLanguage == "" {
		deps.TargetLanguage = defaultTargetLanguage
	}
	if deps.MaxItemsPerFeed <= 0 {
		deps.MaxItemsPerFeed = defaultMaxItemsPerFeed
	}
	return &Pipeline{
		catalog:    deps.Catalog,
		fetcher:    deps.Fetcher,
		translator: deps.Translator,
		store:      deps.Store,
		health:     deps.Health,
		targetLang: deps.TargetLanguage,
		maxItems:   deps.MaxItemsPerFeed,
		logger:     deps.Logger,
	}
}

// Run executes one ingestion pass over every active source. The only error
// it can return is a failure to load the source catalog; per-source failures
// are absorbed into health tracking so a single bad feed never aborts the
// run. Runs are idempotent, so a killed run simply starts over next time.
func (p *Pipeline) Run(ctx context.Context) error {
	sources, err := p.catalog.ActiveSources(ctx)
	if err != nil {
		return fmt.Errorf("load active sources: %w", err)
	}

	p.info("ingestion run started", "sources", len(sources), "target_language", p.targetLang)

	for _, source := range sources {
		outcome := p.processSource(ctx, source)

		switch outcome.Kind {
		case domain.OutcomeSuccess:
			p.health.RecordSuccess(ctx, source)
			p.info("source ingested", "source_id", source.ID, "rss_url", source.RSSURL, "articles", outcome.Stored)
		case domain.OutcomeSoftSkip:
			p.debug("source skipped", "source_id", source.ID, "rss_url", source.RSSURL)
		case domain.OutcomeFailure:
			p.health.RecordFailure(ctx, source, outcome.Err)
			p.warn("source failed", "source_id", source.ID, "rss_url", source.RSSURL, "error", outcome.Err)
		}
	}

	p.info("ingestion run complete", "sources", len(sources))
	return nil
}

func (p *Pipeline) processSource(ctx context.Context, source domain.Source) domain.SourceOutcome {
	if strings.TrimSpace(source.RSSURL) == "" {
		return domain.SourceOutcome{Kind: domain.OutcomeSoftSkip}
	}

	parsed, err := p.fetcher.Fetch(ctx, source.RSSURL)
	if err != nil {
		return domain.SourceOutcome{Kind: domain.OutcomeFailure, Err: err}
	}

	// Valid XML with an empty channel is a legitimately quiet publishing
	// window, not a broken feed.
	if len(parsed.Items) == 0 {
		return domain.SourceOutcome{Kind: domain.OutcomeSoftSkip}
	}

	lang := effectiveLanguage(source, parsed)

	items := parsed.Items
	if len(items) > p.maxItems {
		items = items[:p.maxItems]
	}

	stored := 0
	for i := range items {
		// url is the dedup key; linkless items from different feeds would
		// all collapse into one row
		if strings.TrimSpace(items[i].Link) == "" {
			continue
		}

		article := p.buildArticle(ctx, source, items[i], lang)
		if err := p.store.UpsertArticle(ctx, article); err != nil {
			return domain.SourceOutcome{
				Kind:   domain.OutcomeFailure,
				Stored: stored,
				Err:    fmt.Errorf("store article %s: %w", article.URL, err),
			}
		}
		stored++
	}

	return domain.SourceOutcome{Kind: domain.OutcomeSuccess, Stored: stored}
}

func (p *Pipeline) buildArticle(ctx context.Context, source domain.Source, item domain.FeedItem, lang string) domain.Article {
	summary := normalize.CleanText(item.Description)
	if summary == "" {
		summary = normalize.CleanText(item.Content)
	}

	article := domain.Article{
		SourceID:    source.ID,
		CityID:      source.CityID,
		CountryID:   source.CountryID,
		Title:       normalize.CleanText(item.Title),
		URL:         item.Link,
		Summary:     summary,
		Content:     item.Content,
		Language:    lang,
		PublishedAt: item.PublishedAt,
		RawJSON:     item.Raw,
		ImageURL:    normalize.ExtractImage(item),
	}

	if p.translator != nil && needsTranslation(lang, p.targetLang) {
		article.TranslatedTitle = p.translate(ctx, article.Title)
		article.TranslatedSummary = p.translate(ctx, article.Summary)
	}

	return article
}

// translate degrades to empty on any translator error; missing translations
// are an enrichment gap, never an ingestion failure.
func (p *Pipeline) translate(ctx context.Context, text string) string {
	translated, err := p.translator.Translate(ctx, text, p.targetLang)
	if err != nil {
		p.warn("translation degraded", "error", err)
		return ""
	}
	return translated
}

// effectiveLanguage resolves the language used for translation decisions:
// explicit per-source override, else what the feed reports, else "unknown"
// (which is translated, since it cannot match the target prefix).
func effectiveLanguage(source domain.Source, parsed domain.ParsedFeed) string {
	if source.LanguageCode != "" {
		return source.LanguageCode
	}
	if parsed.Language != "" {
		return parsed.Language
	}
	return "unknown"
}

// needsTranslation reports whether text in lang should be translated into
// target: "EN-US" against target "en" matches the prefix and is skipped.
func needsTranslation(lang, target string) bool {
	if lang == "" {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(lang), strings.ToLower(target))
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}

func (p *Pipeline) warn(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Warn(msg, args...)
	}
}

func (p *Pipeline) debug(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Debug(msg, args...)
	}
}
