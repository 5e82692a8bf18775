package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const (
	// Feed endpoints commonly reject unidentified clients with 403 or serve
	// XML under text/html; a browser-like UA and a broad Accept header keep
	// those feeds parseable.
	userAgent    = "Mozilla/5.0 (compatible; NewsIngest/1.0; +https://newsingest.example.org)"
	acceptHeader = "application/rss+xml, application/xml, text/xml, application/atom+xml, */*"

	defaultTimeout = 15 * time.Second
)

// Fetcher retrieves one feed over HTTP and parses it tolerant of RSS/Atom
// dialect variance and wrong Content-Type headers.
type Fetcher struct {
	client  *http.Client
	parser  *gofeed.Parser
	timeout time.Duration
	logger  *slog.Logger
}

var _ ports.FeedFetcher = (*Fetcher)(nil)

// NewFetcher wires an HTTP client; nil picks a default one. A non-positive
// timeout falls back to 15s.
func NewFetcher(client *http.Client, timeout time.Duration, log *slog.Logger) *Fetcher {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Fetcher{
		client:  client,
		parser:  gofeed.NewParser(),
		timeout: timeout,
		logger:  log,
	}
}

// Fetch downloads and parses the feed within the configured wall-clock
// timeout. Failures come back as *domain.FetchError carrying the kind.
func (f *Fetcher) Fetch(ctx context.Context, feedURL string) (domain.ParsedFeed, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return domain.ParsedFeed{}, &domain.FetchError{Kind: domain.FetchNetwork, URL: feedURL, Err: err}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", acceptHeader)

	resp, err := f.client.Do(req)
	if err != nil {
		return domain.ParsedFeed{}, &domain.FetchError{Kind: classifyTransport(err), URL: feedURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return domain.ParsedFeed{}, &domain.FetchError{
			Kind: domain.FetchNetwork,
			URL:  feedURL,
			Err:  fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	parsed, err := f.parser.Parse(resp.Body)
	if err != nil {
		kind := domain.FeedMalformed
		if ctx.Err() != nil {
			// body read outlived the deadline mid-parse
			kind = domain.FetchTimeout
		}
		return domain.ParsedFeed{}, &domain.FetchError{Kind: kind, URL: feedURL, Err: err}
	}

	out := domain.ParsedFeed{
		Language: parsed.Language,
		Items:    make([]domain.FeedItem, 0, len(parsed.Items)),
	}
	for _, it := range parsed.Items {
		out.Items = append(out.Items, toFeedItem(it))
	}

	f.debug("feed parsed", "url", feedURL, "items", len(out.Items), "language", out.Language)
	return out, nil
}

func toFeedItem(it *gofeed.Item) domain.FeedItem {
	item := domain.FeedItem{
		Title:       it.Title,
		Link:        it.Link,
		Description: it.Description,
		Content:     it.Content,
		PublishedAt: it.PublishedParsed,
	}

	for _, enc := range it.Enclosures {
		if enc == nil {
			continue
		}
		item.Enclosures = append(item.Enclosures, domain.Enclosure{URL: enc.URL, Type: enc.Type})
	}

	item.MediaContentURL = mediaURL(it, "content")
	item.MediaThumbnailURL = mediaURL(it, "thumbnail")

	if raw, err := json.Marshal(it); err == nil {
		item.Raw = raw
	}

	return item
}

// mediaURL digs a url attribute out of the media RSS extension, e.g.
// <media:content url="..."> or <media:thumbnail url="...">.
func mediaURL(it *gofeed.Item, element string) string {
	media, ok := it.Extensions["media"]
	if !ok {
		return ""
	}
	for _, e := range media[element] {
		if u := e.Attrs["url"]; u != "" {
			return u
		}
	}
	return ""
}

func classifyTransport(err error) domain.FetchErrorKind {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return domain.FetchTimeout
	}
	return domain.FetchNetwork
}

func (f *Fetcher) debug(msg string, args ...any) {
	if f.logger != nil {
		f.logger.Debug(msg, args...)
	}
}
