package recommend

import "jazzmate/internal/services/jazzmate"

// Sink receives the outcome of a watch. Exactly one of RecommendationsReady,
// GenerationFailed, or PollTimedOut is delivered per watch unless the watch
// is stopped first, in which case none is.
//
// Methods are called from controller goroutines, one at a time. They must not
// call StartWatching or StopWatching synchronously.
type Sink interface {
	RecommendationsReady(id jazzmate.ID, recs []Recommendation)
	// GenerationFailed reports that the review could not be loaded.
	GenerationFailed(id jazzmate.ID, err error)
	PollTimedOut(id jazzmate.ID)
	// Generating toggles the "still generating" indicator. It is raised once
	// the initial check finds no recommendations and lowered just before the
	// terminal callback.
	Generating(id jazzmate.ID, active bool)
}
