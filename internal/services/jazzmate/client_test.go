package jazzmate_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"jazzmate/internal/services"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/testsupport"
)

func newClient(t *testing.T) (*jazzmate.Client, *testsupport.FakeBackend) {
	t.Helper()
	backend := testsupport.NewFakeBackend(t)
	cfg := testsupport.NewConfig(t, testsupport.WithBackend(backend.URL()))
	return jazzmate.NewFromConfig(cfg), backend
}

func TestGetReviewWithRecommendations(t *testing.T) {
	client, backend := newClient(t)
	id := backend.AddReview(testsupport.SoWhatReview())
	backend.PublishRecommendations(id, jazzmate.RecommendationRecord{TrackID: "7", Score: 0.87, Reason: "modal voicing"})

	review, err := client.GetReview(context.Background(), id)
	if err != nil {
		t.Fatalf("GetReview returned error: %v", err)
	}
	if review.TrackName != "So What" || review.ArtistName != "Miles Davis" {
		t.Fatalf("unexpected review: %+v", review.Review)
	}
	if !review.Ready() {
		t.Fatal("expected recommendations to be ready")
	}
	if got := review.Recommendations[0]; got.TrackID != "7" || got.Score != 0.87 {
		t.Fatalf("unexpected record: %+v", got)
	}
}

func TestGetReviewNotFound(t *testing.T) {
	client, _ := newClient(t)
	_, err := client.GetReview(context.Background(), "999")
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetReviewServerErrorIsTransient(t *testing.T) {
	client, backend := newClient(t)
	id := backend.AddReview(testsupport.SoWhatReview())
	backend.FailReview(id, http.StatusInternalServerError)
	_, err := client.GetReview(context.Background(), id)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
}

func TestCreateReviewUnwrapsEnvelope(t *testing.T) {
	client, backend := newClient(t)
	rating := 4.5
	review, err := client.CreateReview(context.Background(), jazzmate.ReviewRequest{
		UserID:        testsupport.DefaultUserID,
		TrackName:     "  Take Five ",
		ArtistName:    "Dave Brubeck",
		ReviewContent: "훌륭한 연주입니다!",
		Rating:        &rating,
		Tags:          []string{"cool", " ", "5/4"},
		IsPublic:      true,
	})
	if err != nil {
		t.Fatalf("CreateReview returned error: %v", err)
	}
	if review.ID.IsZero() || review.TrackName != "Take Five" || review.Rating != 4.5 {
		t.Fatalf("unexpected review: %+v", review)
	}
	if len(review.Tags) != 2 {
		t.Fatalf("expected blank tag to be dropped, got %v", review.Tags)
	}
	if !backend.HasReview(review.ID) {
		t.Fatal("expected review stored on backend")
	}
}

func TestCreateReviewValidatesLocally(t *testing.T) {
	client, backend := newClient(t)
	bad := 4.3
	_, err := client.CreateReview(context.Background(), jazzmate.ReviewRequest{
		TrackName:     "So What",
		ArtistName:    "Miles Davis",
		ReviewContent: "modal",
		Rating:        &bad,
	})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if backend.RequestCount() != 0 {
		t.Fatal("expected no request to reach the backend")
	}
}

func TestListReviewsFiltersByUser(t *testing.T) {
	client, backend := newClient(t)
	backend.AddReview(testsupport.SoWhatReview())
	backend.AddReview(testsupport.PrivateReview())
	other := testsupport.TakeFiveReview()
	other.UserID = "someone-else"
	backend.AddReview(other)

	public, err := client.ListReviews(context.Background(), jazzmate.ReviewQuery{})
	if err != nil {
		t.Fatalf("ListReviews returned error: %v", err)
	}
	if len(public) != 2 {
		t.Fatalf("expected 2 public reviews, got %d", len(public))
	}

	mine, err := client.ListReviews(context.Background(), jazzmate.ReviewQuery{UserID: testsupport.DefaultUserID})
	if err != nil {
		t.Fatalf("ListReviews returned error: %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 reviews for default user, got %d", len(mine))
	}
}

func TestDeleteReview(t *testing.T) {
	client, backend := newClient(t)
	id := backend.AddReview(testsupport.SoWhatReview())
	if err := client.DeleteReview(context.Background(), id); err != nil {
		t.Fatalf("DeleteReview returned error: %v", err)
	}
	if backend.HasReview(id) {
		t.Fatal("expected review to be deleted")
	}
	if err := client.DeleteReview(context.Background(), id); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestGetTrackAndRecommendations(t *testing.T) {
	client, backend := newClient(t)
	backend.AddTrack(testsupport.BlueInGreen("11"))
	id := backend.AddReview(testsupport.SoWhatReview())
	backend.PublishRecommendations(id, jazzmate.RecommendationRecord{TrackID: "11", Score: 0.5, Reason: "ballad"})

	track, err := client.GetTrack(context.Background(), "11")
	if err != nil {
		t.Fatalf("GetTrack returned error: %v", err)
	}
	if track.Title != "Blue in Green" || track.BPM != 60 {
		t.Fatalf("unexpected track: %+v", track)
	}
	records, err := client.GetRecommendations(context.Background(), id)
	if err != nil {
		t.Fatalf("GetRecommendations returned error: %v", err)
	}
	if len(records) != 1 || records[0].UserReviewID != id {
		t.Fatalf("unexpected records: %+v", records)
	}
	if _, err := client.GetTrack(context.Background(), "12"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found for missing track, got %v", err)
	}
}

func TestSearchAlbums(t *testing.T) {
	client, backend := newClient(t)
	backend.AddAlbum(testsupport.KindOfBlue("1"))
	backend.AddAlbum(testsupport.TimeOut("2"))

	albums, err := client.SearchAlbums(context.Background(), "brubeck", 0, 10)
	if err != nil {
		t.Fatalf("SearchAlbums returned error: %v", err)
	}
	if len(albums) != 1 || albums[0].Title != "Time Out" {
		t.Fatalf("unexpected albums: %+v", albums)
	}
	if _, err := client.SearchAlbums(context.Background(), "  ", 0, 10); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error for blank query, got %v", err)
	}
	album, err := client.GetAlbum(context.Background(), "1")
	if err != nil || album.Year != 1959 {
		t.Fatalf("GetAlbum: %+v, %v", album, err)
	}
}

func TestListCriticsPagination(t *testing.T) {
	client, backend := newClient(t)
	for _, id := range []jazzmate.ID{"1", "2", "3"} {
		backend.AddCritic(jazzmate.CriticsReview{ID: id, Title: "review " + id.String(), ReviewSummary: "plain"})
	}
	backend.AddCritic(jazzmate.CriticsReview{ID: "4", Title: "no summary"})

	first, err := client.ListCritics(context.Background(), 0, 2)
	if err != nil {
		t.Fatalf("ListCritics returned error: %v", err)
	}
	if len(first.Content) != 2 || first.Last || first.TotalElements != 3 {
		t.Fatalf("unexpected first page: %+v", first)
	}
	second, err := client.ListCritics(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("ListCritics returned error: %v", err)
	}
	if len(second.Content) != 1 || !second.Last {
		t.Fatalf("unexpected second page: %+v", second)
	}
}
