package domain

// FailureThreshold is the number of consecutive failed passes after which a
// source is switched off until someone reactivates it.
const FailureThreshold = 10

// Source is a configured feed endpoint together with its health state.
// The ingestion pipeline reads the catalog fields and mutates only the
// health fields (failure count, activation, last_* timestamps).
type Source struct {
	ID           int64
	RSSURL       string
	CityID       int64
	CountryID    int64
	LanguageCode string
	FailureCount int
}

// OutcomeKind classifies what happened to one source during a run.
type OutcomeKind int

const (
	// OutcomeSuccess means every item of the source was processed.
	OutcomeSuccess OutcomeKind = iota
	// OutcomeSoftSkip means the source was left untouched: no URL, or the
	// feed parsed cleanly but carried zero items. Not a failure.
	OutcomeSoftSkip
	// OutcomeFailure means fetch, parse or persistence broke for the source.
	OutcomeFailure
)

// SourceOutcome is the explicit per-source result consumed by the health
// tracker, replacing implicit error propagation between pipeline stages.
type SourceOutcome struct {
	Kind   OutcomeKind
	Stored int
	Err    error
}
