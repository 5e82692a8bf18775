package domain

import "fmt"

// FetchErrorKind distinguishes the ways a feed fetch can fail.
type FetchErrorKind string

const (
	FetchTimeout  FetchErrorKind = "RSS_TIMEOUT"
	FetchNetwork  FetchErrorKind = "RSS_FETCH_ERROR"
	FeedMalformed FetchErrorKind = "RSS_PARSE_ERROR"
)

// FetchError wraps a transport or parse failure for one feed URL with its
// classification. The kind doubles as the error_type column of the
// persistent error log.
type FetchError struct {
	Kind FetchErrorKind
	URL  string
	Err  error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ErrorLogEntry is one append-only row of the persistent feed error log,
// kept for postmortems beyond the quick-view last_error on the source.
type ErrorLogEntry struct {
	SourceID     int64
	SourceURL    string
	ErrorType    string
	ErrorMessage string
	StackTrace   string
}
