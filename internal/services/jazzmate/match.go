package jazzmate

import (
	"sort"
	"strings"

	"jazzmate/internal/textutil"
)

// CriticMatch pairs a critic review with its similarity to a user review.
type CriticMatch struct {
	Critic     CriticsReview `json:"critic"`
	Similarity float64       `json:"similarity"`
}

// MatchCritics ranks critics by TF-IDF cosine similarity between their
// prose and the review's content, artist and descriptors. Critics with no
// overlap are omitted; at most limit matches are returned when limit > 0.
func MatchCritics(review Review, critics []CriticsReview, limit int) []CriticMatch {
	query := textutil.NewTermVector(reviewText(review))
	if query == nil || len(critics) == 0 {
		return nil
	}

	vectors := make([]*textutil.TermVector, len(critics))
	corpus := textutil.NewCorpus()
	for i, critic := range critics {
		vectors[i] = textutil.NewTermVector(criticText(critic))
		corpus.Add(vectors[i])
	}
	corpus.Add(query)
	idf := corpus.IDF()
	query = query.Weighted(idf)

	matches := make([]CriticMatch, 0, len(critics))
	for i, critic := range critics {
		score := textutil.Cosine(query, vectors[i].Weighted(idf))
		if score <= 0 {
			continue
		}
		matches = append(matches, CriticMatch{Critic: critic, Similarity: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

func reviewText(r Review) string {
	parts := []string{r.ReviewContent, r.ArtistName, r.TrackName, r.Mood, r.Genre, r.VocalStyle, r.Instrumentation}
	parts = append(parts, r.Tags...)
	return strings.Join(parts, " ")
}

func criticText(c CriticsReview) string {
	parts := []string{c.Title, c.Content, c.AlbumInfo, c.Personnel}
	if summary, ok := c.ParseSummary(); ok {
		parts = append(parts, summary.Summary, summary.ArtistInfo, summary.Instrumentation, summary.PerformanceNote)
	}
	return strings.Join(parts, " ")
}
