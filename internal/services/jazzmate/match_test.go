package jazzmate_test

import (
	"testing"

	"jazzmate/internal/services/jazzmate"
)

func TestMatchCriticsRanksByOverlap(t *testing.T) {
	review := jazzmate.Review{
		ID:            "42",
		TrackName:     "So What",
		ArtistName:    "Miles Davis",
		ReviewContent: "Modal trumpet lines floating over a cool piano vamp.",
		Genre:         "cool jazz",
	}
	critics := []jazzmate.CriticsReview{
		{ID: "1", Title: "Blue Train", Content: "Hard bop tenor saxophone blowing with fierce drums."},
		{ID: "2", Title: "Kind of Blue", Content: "Miles Davis leads a modal session; trumpet and piano breathe."},
		{ID: "3", Title: "Mingus Ah Um", Content: "Bass driven workshop with a cool piano interlude."},
		{ID: "4", Title: "Empty"},
	}

	matches := jazzmate.MatchCritics(review, critics, 0)
	if len(matches) != 2 {
		t.Fatalf("expected 2 overlapping critics, got %d", len(matches))
	}
	if matches[0].Critic.ID != "2" {
		t.Fatalf("expected Kind of Blue first, got %s", matches[0].Critic.Title)
	}
	if matches[0].Similarity <= matches[1].Similarity {
		t.Fatalf("expected descending similarity, got %v then %v", matches[0].Similarity, matches[1].Similarity)
	}

	if limited := jazzmate.MatchCritics(review, critics, 1); len(limited) != 1 {
		t.Fatalf("expected limit to cap matches, got %d", len(limited))
	}
}

func TestMatchCriticsEmptyReview(t *testing.T) {
	critics := []jazzmate.CriticsReview{{ID: "1", Content: "modal trumpet"}}
	if matches := jazzmate.MatchCritics(jazzmate.Review{}, critics, 0); matches != nil {
		t.Fatalf("expected no matches for empty review, got %d", len(matches))
	}
}
