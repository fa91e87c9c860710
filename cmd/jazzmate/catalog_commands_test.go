package main

import (
	"encoding/json"
	"errors"
	"testing"

	"jazzmate/internal/services"
	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
	"jazzmate/internal/testsupport"
)

func TestAlbumsSearch(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddAlbum(testsupport.KindOfBlue("1"))
	env.backend.AddAlbum(testsupport.TimeOut("2"))

	out, err := env.run(t, "albums", "search", "miles")
	if err != nil {
		t.Fatalf("albums search: %v", err)
	}
	requireContains(t, out, "Kind of Blue")
	requireContains(t, out, "1959")
	requireNotContains(t, out, "Time Out")

	out, err = env.run(t, "albums", "search", "mingus")
	if err != nil {
		t.Fatalf("albums search: %v", err)
	}
	requireContains(t, out, `No albums match "mingus"`)
}

func TestAlbumsShowLinksCriticReview(t *testing.T) {
	env := setupCLITestEnv(t)
	album := testsupport.KindOfBlue("1")
	album.CriticsReviewID = "77"
	env.backend.AddAlbum(album)

	out, err := env.run(t, "albums", "show", "1")
	if err != nil {
		t.Fatalf("albums show: %v", err)
	}
	requireContains(t, out, "Kind of Blue")
	requireContains(t, out, "Columbia")
	requireContains(t, out, "jazzmate critics show 77")

	if _, err := env.run(t, "albums", "show", "99"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCriticsListSkipsUnsummarized(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddCritic(testsupport.KindOfBlueCritic("1"))
	bare := testsupport.KindOfBlueCritic("2")
	bare.Title = "Unsummarized Session"
	bare.ReviewSummary = ""
	env.backend.AddCritic(bare)
	third := testsupport.KindOfBlueCritic("3")
	third.Title = "Time Out"
	env.backend.AddCritic(third)

	out, err := env.run(t, "critics", "list", "--size", "1")
	if err != nil {
		t.Fatalf("critics list: %v", err)
	}
	requireContains(t, out, "Kind of Blue")
	requireNotContains(t, out, "Unsummarized Session")
	requireContains(t, out, "jazzmate critics list --page 1 --size 1")

	out, err = env.run(t, "critics", "list", "--page", "1", "--size", "1")
	if err != nil {
		t.Fatalf("critics list page 1: %v", err)
	}
	requireContains(t, out, "Time Out")
	requireNotContains(t, out, "More reviews")
}

func TestCriticsShowRendersSummary(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.AddCritic(testsupport.KindOfBlueCritic("1"))

	out, err := env.run(t, "critics", "show", "1")
	if err != nil {
		t.Fatalf("critics show: %v", err)
	}
	requireContains(t, out, "Jazz Times")
	requireContains(t, out, "모달 재즈의 정수")
	requireContains(t, out, "So What")
	requireContains(t, out, "베이스 인트로")
	requireContains(t, out, "빌 에반스의 서정")

	jsonOut, err := env.run(t, "--json", "critics", "show", "1")
	if err != nil {
		t.Fatalf("critics show --json: %v", err)
	}
	var payload struct {
		Critic  jazzmate.CriticsReview `json:"critic"`
		Summary *struct {
			Summary string
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(jsonOut), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, jsonOut)
	}
	if payload.Critic.ID != "1" || payload.Summary == nil || payload.Summary.Summary != "모달 재즈의 정수" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestCriticsMatchRanksSimilarReviews(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.PutReview("42", testsupport.SoWhatReview())
	env.backend.AddCritic(testsupport.KindOfBlueCritic("1"))
	env.backend.AddCritic(jazzmate.CriticsReview{
		ID:            "2",
		Title:         "Mingus Ah Um",
		Reviewer:      "Downbeat",
		Content:       "Charles Mingus leads a raucous workshop of gospel shouts and blues.",
		ReviewSummary: `{"summary":{"korean":"gospel workshop"}}`,
	})

	out, err := env.run(t, "--json", "critics", "match", "42")
	if err != nil {
		t.Fatalf("critics match: %v", err)
	}
	var matches []jazzmate.CriticMatch
	if err := json.Unmarshal([]byte(out), &matches); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if len(matches) != 1 || matches[0].Critic.ID != "1" {
		t.Fatalf("expected only the Kind of Blue critic, got %+v", matches)
	}
	if matches[0].Similarity <= 0 || matches[0].Similarity > 1 {
		t.Fatalf("similarity out of range: %v", matches[0].Similarity)
	}
}

func TestDashboardRendersReport(t *testing.T) {
	env := setupCLITestEnv(t)
	env.backend.SetDataQuality(testsupport.SampleDataQuality())

	out, err := env.run(t, "dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	requireContains(t, out, "87.5%")
	requireContains(t, out, "1250")
	requireContains(t, out, "+2.5 pts over 3 snapshots")
	requireContains(t, out, "Bpm")
	requireContains(t, out, "47.5%")

	jsonOut, err := env.run(t, "--json", "dashboard")
	if err != nil {
		t.Fatalf("dashboard --json: %v", err)
	}
	var data aiservice.DataQualityData
	if err := json.Unmarshal([]byte(jsonOut), &data); err != nil {
		t.Fatalf("decode json: %v\n%s", err, jsonOut)
	}
	if data.Latest.TotalRecords != 1250 {
		t.Fatalf("unexpected data: %+v", data.Latest)
	}
}

func TestDashboardWithoutSnapshots(t *testing.T) {
	env := setupCLITestEnv(t)
	if _, err := env.run(t, "dashboard"); err == nil {
		t.Fatal("expected error when no snapshot exists")
	}
}
