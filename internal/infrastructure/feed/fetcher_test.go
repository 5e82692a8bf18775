package feed

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsIngest/internal/domain"
)

const sampleRSS = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:media="http://search.yahoo.com/mrss/">
  <channel>
    <title>City Desk</title>
    <language>fr-FR</language>
    <item>
      <title>Première dépêche</title>
      <link>http://news.example/a</link>
      <description>&lt;p&gt;Résumé&lt;/p&gt;</description>
      <enclosure url="http://cdn.example/a.jpg" type="image/jpeg" length="1000"/>
      <pubDate>Mon, 02 Jan 2006 15:04:05 GMT</pubDate>
    </item>
    <item>
      <title>Deuxième dépêche</title>
      <link>http://news.example/b</link>
      <description>texte</description>
      <media:content url="http://cdn.example/b.jpg" medium="image"/>
      <media:thumbnail url="http://cdn.example/b_thumb.jpg"/>
    </item>
  </channel>
</rss>`

func TestFetchParsesFeed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ua := r.Header.Get("User-Agent"); ua != userAgent {
			t.Errorf("unexpected user agent: %s", ua)
		}
		if accept := r.Header.Get("Accept"); accept != acceptHeader {
			t.Errorf("unexpected accept header: %s", accept)
		}
		// deliberately wrong content type, common in the wild
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 5*time.Second, nil)
	parsed, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	if parsed.Language != "fr-FR" {
		t.Fatalf("unexpected language: %s", parsed.Language)
	}
	if len(parsed.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(parsed.Items))
	}

	first := parsed.Items[0]
	if first.Title != "Première dépêche" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if len(first.Enclosures) != 1 || first.Enclosures[0].URL != "http://cdn.example/a.jpg" {
		t.Fatalf("enclosure not mapped: %+v", first.Enclosures)
	}
	if first.PublishedAt == nil {
		t.Fatal("expected parsed pubDate")
	}
	if len(first.Raw) == 0 {
		t.Fatal("expected raw item JSON")
	}

	second := parsed.Items[1]
	if second.MediaContentURL != "http://cdn.example/b.jpg" {
		t.Fatalf("media:content not mapped: %q", second.MediaContentURL)
	}
	if second.MediaThumbnailURL != "http://cdn.example/b_thumb.jpg" {
		t.Fatalf("media:thumbnail not mapped: %q", second.MediaThumbnailURL)
	}
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 5*time.Second, nil)
	_, err := f.Fetch(context.Background(), server.URL)

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != domain.FetchNetwork {
		t.Fatalf("expected network kind, got %s", fe.Kind)
	}
}

func TestFetchTimeout(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		_, _ = w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 50*time.Millisecond, nil)
	_, err := f.Fetch(context.Background(), server.URL)

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != domain.FetchTimeout {
		t.Fatalf("expected timeout kind, got %s", fe.Kind)
	}
}

func TestFetchMalformed(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>not a feed at all"))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 5*time.Second, nil)
	_, err := f.Fetch(context.Background(), server.URL)

	var fe *domain.FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if fe.Kind != domain.FeedMalformed {
		t.Fatalf("expected malformed kind, got %s", fe.Kind)
	}
}

func TestFetchEmptyFeedIsNotAnError(t *testing.T) {
	t.Parallel()

	empty := `<?xml version="1.0"?><rss version="2.0"><channel><title>quiet</title></channel></rss>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(empty))
	}))
	defer server.Close()

	f := NewFetcher(server.Client(), 5*time.Second, nil)
	parsed, err := f.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(parsed.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(parsed.Items))
	}
}
