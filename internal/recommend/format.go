package recommend

import (
	"context"
	"log/slog"
	"strconv"

	"golang.org/x/sync/errgroup"

	"jazzmate/internal/logging"
	"jazzmate/internal/services/jazzmate"
)

// Placeholder values used when a track lookup fails or returns empty fields.
const (
	PlaceholderArtist          = "Unknown Artist"
	PlaceholderTitle           = "Unknown Album"
	PlaceholderGenre           = "jazz"
	PlaceholderMood            = "melancholic"
	PlaceholderVocalStyle      = "instrumental"
	PlaceholderInstrumentation = "N/A"
	PlaceholderEnergy          = 0.5
	PlaceholderBPM             = 120
)

const defaultLookupConcurrency = 4

// TrackCatalog resolves track ids into catalog details.
type TrackCatalog interface {
	GetTrack(ctx context.Context, id jazzmate.ID) (*jazzmate.Track, error)
}

// Recommendation is a display-ready recommendation.
type Recommendation struct {
	TrackID         jazzmate.ID `json:"track_id"`
	Score           float64     `json:"score"`
	Reason          string      `json:"reason"`
	Artist          string      `json:"artist"`
	Title           string      `json:"title"`
	Genre           string      `json:"genre"`
	Mood            string      `json:"mood"`
	VocalStyle      string      `json:"vocal_style"`
	Instrumentation string      `json:"instrumentation"`
	Energy          float64     `json:"energy"`
	BPM             int         `json:"bpm"`
	// Degraded is set when the track lookup failed and every attribute is a
	// placeholder.
	Degraded bool `json:"degraded,omitempty"`
}

// FormatScore renders a [0,1] score as a percentage with one decimal.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score*100, 'f', 1, 64)
}

// Formatter enriches backend records with track details.
type Formatter struct {
	catalog     TrackCatalog
	concurrency int
	logger      *slog.Logger
}

// NewFormatter returns a formatter issuing at most concurrency lookups at a
// time. A nil catalog yields placeholder attributes for every record.
func NewFormatter(catalog TrackCatalog, concurrency int, logger *slog.Logger) *Formatter {
	if concurrency <= 0 {
		concurrency = defaultLookupConcurrency
	}
	return &Formatter{
		catalog:     catalog,
		concurrency: concurrency,
		logger:      logging.NewComponentLogger(logger, "recommend-format"),
	}
}

// Format enriches records in parallel and returns them in input order. A
// failed lookup degrades that record to placeholders and never fails the
// batch.
func (f *Formatter) Format(ctx context.Context, records []jazzmate.RecommendationRecord) []Recommendation {
	out := make([]Recommendation, len(records))
	var g errgroup.Group
	g.SetLimit(f.concurrency)
	for i, record := range records {
		g.Go(func() error {
			out[i] = f.enrich(ctx, record)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (f *Formatter) enrich(ctx context.Context, record jazzmate.RecommendationRecord) Recommendation {
	rec := Recommendation{
		TrackID: record.TrackID,
		Score:   record.Score,
		Reason:  record.Reason,
	}
	var track *jazzmate.Track
	if f.catalog != nil {
		var err error
		track, err = f.catalog.GetTrack(ctx, record.TrackID)
		if err != nil {
			logging.WithContext(ctx, f.logger).Debug("track lookup failed; using placeholders",
				logging.String("track_id", record.TrackID.String()),
				logging.Float64(logging.FieldScore, record.Score),
				logging.Error(err),
			)
			track = nil
		}
	}
	if track == nil {
		rec.Degraded = true
		track = &jazzmate.Track{}
	}
	rec.Artist = orDefault(track.ArtistName, PlaceholderArtist)
	rec.Title = orDefault(track.Title, PlaceholderTitle)
	rec.Genre = orDefault(track.Genre, PlaceholderGenre)
	rec.Mood = orDefault(track.Mood, PlaceholderMood)
	rec.VocalStyle = orDefault(track.VocalStyle, PlaceholderVocalStyle)
	rec.Instrumentation = orDefault(track.Instrumentation, PlaceholderInstrumentation)
	rec.Energy = track.Energy
	if rec.Energy == 0 {
		rec.Energy = PlaceholderEnergy
	}
	rec.BPM = track.BPM
	if rec.BPM == 0 {
		rec.BPM = PlaceholderBPM
	}
	return rec
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
