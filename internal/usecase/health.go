package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const (
	maxErrorMessageLen = 1000
	maxStackTraceLen   = 5000

	genericErrorType = "INGEST_ERROR"
)

// HealthTracker applies per-source pass outcomes to the source's health
// state: reset on success, increment plus postmortem log on failure,
// deactivation once the failure threshold is reached. The writes are
// independent statements; a crash between them is repaired by the next run.
type HealthTracker struct {
	health  ports.SourceHealth
	alerter ports.Alerter
	logger  *slog.Logger
}

// NewHealthTracker wires the persistence side and an optional alerter used
// when a source gets switched off.
func NewHealthTracker(health ports.SourceHealth, alerter ports.Alerter, log *slog.Logger) *HealthTracker {
	return &HealthTracker{health: health, alerter: alerter, logger: log}
}

// RecordSuccess resets the source's failure state after a clean pass.
func (h *HealthTracker) RecordSuccess(ctx context.Context, source domain.Source) {
	if err := h.health.MarkSuccess(ctx, source.ID); err != nil {
		h.error("mark success failed", "source_id", source.ID, "error", err)
	}
}

// RecordFailure logs the failure for postmortem, bumps the counter and
// deactivates the source when it has failed too many runs in a row.
// Bookkeeping errors are logged, never propagated: a broken health write
// must not take down the rest of the run.
func (h *HealthTracker) RecordFailure(ctx context.Context, source domain.Source, cause error) {
	message := truncate(cause.Error(), maxErrorMessageLen)

	entry := domain.ErrorLogEntry{
		SourceID:     source.ID,
		SourceURL:    source.RSSURL,
		ErrorType:    errorType(cause),
		ErrorMessage: message,
		StackTrace:   truncate(errorChain(cause), maxStackTraceLen),
	}
	if err := h.health.AppendErrorLog(ctx, entry); err != nil {
		h.error("failed to append feed error log", "source_id", source.ID, "error", err)
	}

	if err := h.health.MarkFailure(ctx, source.ID, message); err != nil {
		h.error("mark failure failed", "source_id", source.ID, "error", err)
	}

	deactivated, err := h.health.DeactivateIfUnhealthy(ctx, source.ID)
	if err != nil {
		h.error("deactivation check failed", "source_id", source.ID, "error", err)
		return
	}
	if deactivated {
		h.error("source deactivated after repeated failures",
			"source_id", source.ID, "rss_url", source.RSSURL)
		h.alert(ctx, fmt.Sprintf("Feed source %d (%s) deactivated after %d consecutive failures. Last error: %s",
			source.ID, source.RSSURL, domain.FailureThreshold, message))
	}
}

// errorType maps the failure to the error_type column; fetch failures carry
// their own classification.
func errorType(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return string(fe.Kind)
	}
	return genericErrorType
}

// errorChain renders the wrapped cause chain, the closest thing Go errors
// have to the stack trace the log schema was designed for.
func errorChain(err error) string {
	var b strings.Builder
	for depth := 0; err != nil; depth++ {
		if depth > 0 {
			b.WriteString("\ncaused by: ")
		}
		b.WriteString(err.Error())
		err = errors.Unwrap(err)
	}
	return b.String()
}

// truncate cuts s to at most limit bytes without splitting a multibyte
// rune; Postgres rejects text columns containing invalid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (h *HealthTracker) alert(ctx context.Context, message string) {
	if h.alerter == nil {
		return
	}
	if err := h.alerter.Alert(ctx, message); err != nil {
		h.error("deactivation alert failed", "error", err)
	}
}

func (h *HealthTracker) error(msg string, args ...any) {
	if h.logger != nil {
		h.logger.Error(msg, args...)
	}
}
