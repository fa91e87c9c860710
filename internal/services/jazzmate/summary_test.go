package jazzmate_test

import (
	"testing"

	"jazzmate/internal/services/jazzmate"
)

func TestParseSummaryStructured(t *testing.T) {
	review := jazzmate.CriticsReview{ReviewSummary: `{
		"summary": {"korean": "모달 재즈의 걸작"},
		"categories": {
			"artist_info": {"korean": "마일스 데이비스"},
			"reviewer_opinion": {"korean": "필청"},
			"track_info": {"So What": {"korean": "베이스 인트로"}, "Freddie Freeloader": "윈튼 켈리"}
		}
	}`}
	summary, ok := review.ParseSummary()
	if !ok {
		t.Fatal("expected structured summary")
	}
	if summary.Summary != "모달 재즈의 걸작" || summary.ArtistInfo != "마일스 데이비스" || summary.ReviewerOpinion != "필청" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.Tracks) != 2 || summary.Tracks[0].Track != "Freddie Freeloader" || summary.Tracks[1].Note != "베이스 인트로" {
		t.Fatalf("unexpected track notes: %+v", summary.Tracks)
	}
}

func TestParseSummaryRejectsPlainOrMalformed(t *testing.T) {
	for _, raw := range []string{"", "   ", "just prose", `{"summary": `} {
		if _, ok := (jazzmate.CriticsReview{ReviewSummary: raw}).ParseSummary(); ok {
			t.Fatalf("expected no structured summary for %q", raw)
		}
	}
}
