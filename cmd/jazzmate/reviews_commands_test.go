package main

import (
	"encoding/json"
	"errors"
	"testing"

	"jazzmate/internal/history"
	"jazzmate/internal/services"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/testsupport"
)

func TestReviewsListShowsPublicReviews(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddReview(testsupport.SoWhatReview())
	env.backend.AddReview(testsupport.TakeFiveReview())
	env.backend.AddReview(testsupport.PrivateReview())

	out, err := env.run(t, "reviews", "list")
	if err != nil {
		t.Fatalf("reviews list: %v", err)
	}
	requireContains(t, out, "So What")
	requireContains(t, out, "Take Five")
	requireContains(t, out, "5.0 ★★★★★")

	jsonOut, err := env.run(t, "--json", "reviews", "list")
	if err != nil {
		t.Fatalf("reviews list --json: %v", err)
	}
	var reviews []jazzmate.Review
	if err := json.Unmarshal([]byte(jsonOut), &reviews); err != nil {
		t.Fatalf("decode json: %v\n%s", err, jsonOut)
	}
	if len(reviews) != 2 {
		t.Fatalf("expected the private review hidden, got %d reviews", len(reviews))
	}
	if reviews[0].TrackName != "Take Five" {
		t.Fatalf("expected newest first, got %q", reviews[0].TrackName)
	}
}

func TestReviewsListMineIncludesPrivate(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddReview(testsupport.PrivateReview())

	out, err := env.run(t, "--json", "reviews", "list", "--mine")
	if err != nil {
		t.Fatalf("reviews list --mine: %v", err)
	}
	var reviews []jazzmate.Review
	if err := json.Unmarshal([]byte(out), &reviews); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(reviews) != 1 || reviews[0].IsPublic {
		t.Fatalf("expected the private review, got %+v", reviews)
	}
}

func TestReviewsListEmpty(t *testing.T) {
	env := setupCLITestEnv(t)
	out, err := env.run(t, "reviews", "list")
	if err != nil {
		t.Fatalf("reviews list: %v", err)
	}
	requireContains(t, out, "No reviews found")
}

func TestReviewsShowFormatsRecommendations(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.PutReview("42", testsupport.SoWhatReview())
	env.backend.AddTrack(testsupport.BlueInGreen("7"))
	env.backend.PublishRecommendations("42", jazzmate.RecommendationRecord{TrackID: "7", Score: 0.87})

	out, err := env.run(t, "reviews", "show", "42")
	if err != nil {
		t.Fatalf("reviews show: %v", err)
	}
	requireContains(t, out, "Review #42")
	requireContains(t, out, "Miles Davis")
	requireContains(t, out, "Blue in Green")
	requireContains(t, out, "87.0%")
}

func TestReviewsShowWithoutRecommendationsHintsWatch(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.PutReview("9", testsupport.TakeFiveReview())

	out, err := env.run(t, "reviews", "show", "9")
	if err != nil {
		t.Fatalf("reviews show: %v", err)
	}
	requireContains(t, out, "jazzmate watch 9")
	if fetches := env.backend.ReviewFetches("9"); fetches != 1 {
		t.Fatalf("expected a single fetch, got %d", fetches)
	}
}

func TestReviewsShowMissing(t *testing.T) {
	env := setupCLITestEnv(t)
	_, err := env.run(t, "reviews", "show", "404")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReviewsWriteSubmitsReview(t *testing.T) {
	env := setupCLITestEnv(t)

	out, err := env.run(t, "reviews", "write",
		"--track", "So What",
		"--artist", "Miles Davis",
		"--content", "모달 재즈의 정수",
		"--rating", "4.5",
		"--tags", "modal, ,cool",
	)
	if err != nil {
		t.Fatalf("reviews write: %v", err)
	}
	requireContains(t, out, "Saved review #1 for So What - Miles Davis")

	if !env.backend.HasReview("1") {
		t.Fatal("expected review to be stored")
	}
	listOut, err := env.run(t, "--json", "reviews", "list", "--mine")
	if err != nil {
		t.Fatalf("reviews list: %v", err)
	}
	var reviews []jazzmate.Review
	if err := json.Unmarshal([]byte(listOut), &reviews); err != nil {
		t.Fatalf("decode json: %v", err)
	}
	if len(reviews) != 1 {
		t.Fatalf("expected one review, got %d", len(reviews))
	}
	got := reviews[0]
	if got.UserID != testsupport.DefaultUserID || got.Rating != 4.5 || !got.IsPublic {
		t.Fatalf("unexpected review: %+v", got)
	}
	if len(got.Tags) != 2 || got.Tags[0] != "modal" || got.Tags[1] != "cool" {
		t.Fatalf("expected blank tags dropped, got %v", got.Tags)
	}
}

func TestReviewsWriteValidatesBeforeSending(t *testing.T) {
	env := setupCLITestEnv(t)

	_, err := env.run(t, "reviews", "write", "--track", "So What", "--rating", "4.3")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	requireContains(t, err.Error(), "artist name is required")
	requireContains(t, err.Error(), "0.5 steps")
	if n := env.backend.RequestCount(); n != 0 {
		t.Fatalf("expected no requests, got %d", n)
	}
}

func TestReviewsWriteThenWatch(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddTrack(testsupport.BlueInGreen("7"))
	env.backend.PublishAfterFetches("1", 2, jazzmate.RecommendationRecord{TrackID: "7", Score: 0.61})

	out, err := env.run(t, "reviews", "write",
		"--track", "So What",
		"--artist", "Miles Davis",
		"--content", "모달 재즈의 정수",
		"--watch", "--interval", "5ms",
	)
	if err != nil {
		t.Fatalf("reviews write --watch: %v", err)
	}
	requireContains(t, out, "Saved review #1")
	requireContains(t, out, "Watching review #1")
	requireContains(t, out, "61.0%")

	calls := env.backend.GenerateCalls()
	if len(calls) != 1 || calls[0].ReviewText != "모달 재즈의 정수" {
		t.Fatalf("unexpected generation requests: %+v", calls)
	}
	sessions := sessionsFor(t, env, "1")
	if len(sessions) != 1 || sessions[0].State != history.StateReady {
		t.Fatalf("unexpected sessions: %+v", sessions)
	}
}

func TestReviewsDelete(t *testing.T) {
	env := setupCLITestEnv(t)
	id := env.backend.AddReview(testsupport.TakeFiveReview())

	out, err := env.run(t, "reviews", "delete", id.String())
	if err != nil {
		t.Fatalf("reviews delete: %v", err)
	}
	requireContains(t, out, "Deleted review #"+id.String())
	if env.backend.HasReview(id) {
		t.Fatal("expected review removed")
	}

	if _, err := env.run(t, "reviews", "delete", id.String()); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestReviewsRecommendationsPrintsRawRecords(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.PutReview("42", testsupport.SoWhatReview())
	env.backend.PublishRecommendations("42", jazzmate.RecommendationRecord{TrackID: "7", Score: 0.87, Reason: "modal mood"})

	out, err := env.run(t, "reviews", "recs", "42")
	if err != nil {
		t.Fatalf("reviews recs: %v", err)
	}
	requireContains(t, out, "87.0%")
	requireContains(t, out, "modal mood")
	if fetches := env.backend.ReviewFetches("42"); fetches != 0 {
		t.Fatalf("expected the records endpoint only, got %d review fetches", fetches)
	}

	out, err = env.run(t, "reviews", "recs", "404")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v (%s)", err, out)
	}
}

func TestFormatRating(t *testing.T) {
	tests := []struct {
		rating float64
		want   string
	}{
		{0, "-"},
		{3, "3.0 ★★★"},
		{4.5, "4.5 ★★★★½"},
	}
	for _, tt := range tests {
		if got := formatRating(tt.rating); got != tt.want {
			t.Fatalf("formatRating(%v) = %q, want %q", tt.rating, got, tt.want)
		}
	}
}

func TestShortDate(t *testing.T) {
	if got := shortDate("2025-01-03T09:00:00"); got != "2025-01-03" {
		t.Fatalf("unexpected date %q", got)
	}
	if got := shortDate(""); got != "-" {
		t.Fatalf("expected placeholder, got %q", got)
	}
}
