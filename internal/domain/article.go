package domain

import "time"

// Article is the persisted form of a feed item, keyed by its canonical URL.
// Empty enrichment fields (TranslatedTitle, TranslatedSummary, ImageURL) are
// stored as NULL so a later re-fetch can fill them without clobbering the
// originals.
type Article struct {
	SourceID          int64
	CityID            int64
	CountryID         int64
	Title             string
	TranslatedTitle   string
	URL               string
	Summary           string
	TranslatedSummary string
	Content           string
	Language          string
	PublishedAt       *time.Time
	RawJSON           []byte
	ImageURL          string
}

// ParsedFeed is the result of fetching and parsing one feed endpoint.
type ParsedFeed struct {
	Language string
	Items    []FeedItem
}

// FeedItem is a transient, dialect-neutral view of one raw feed entry.
// It lives for a single ingestion pass and is discarded after mapping to an
// Article. Raw holds the original item serialized as JSON for the raw_json
// column.
type FeedItem struct {
	Title             string
	Link              string
	Description       string
	Content           string
	PublishedAt       *time.Time
	Enclosures        []Enclosure
	MediaContentURL   string
	MediaThumbnailURL string
	Raw               []byte
}

// Enclosure mirrors an RSS <enclosure> element.
type Enclosure struct {
	URL  string
	Type string
}
