package testsupport

import (
	"jazzmate/internal/services/aiservice"
	"jazzmate/internal/services/jazzmate"
)

// Default reviewer used by fixtures.
const DefaultUserID = "test-user-001"

// SoWhatReview is a public five-star review of "So What" from Kind of Blue.
func SoWhatReview() jazzmate.Review {
	return jazzmate.Review{
		UserID:          DefaultUserID,
		TrackName:       "So What",
		ArtistName:      "Miles Davis",
		ReviewContent:   "Miles Davis의 So What은 모달 재즈의 정수입니다. 미니멀한 코드 진행 속에서 자유로운 즉흥 연주가 돋보입니다.",
		Rating:          5,
		Mood:            "melancholic",
		Genre:           "jazz",
		EnergyLevel:     0.4,
		BPM:             136,
		VocalStyle:      "instrumental",
		Instrumentation: "trumpet, saxophone, piano, bass, drums",
		IsPublic:        true,
	}
}

// TakeFiveReview is a short public review of "Take Five" from Time Out.
func TakeFiveReview() jazzmate.Review {
	return jazzmate.Review{
		UserID:        DefaultUserID,
		TrackName:     "Take Five",
		ArtistName:    "Dave Brubeck",
		ReviewContent: "훌륭한 연주입니다!",
		Rating:        4,
		Genre:         "jazz",
		IsPublic:      true,
	}
}

// PrivateReview is a review hidden from the public listing.
func PrivateReview() jazzmate.Review {
	review := SoWhatReview()
	review.ReviewContent = "개인적으로 좋아하는 트랙입니다."
	review.Rating = 4
	review.IsPublic = false
	return review
}

// BlueInGreen is a fully populated catalog track.
func BlueInGreen(id jazzmate.ID) jazzmate.Track {
	return jazzmate.Track{
		ID:              id,
		Title:           "Blue in Green",
		ArtistName:      "Bill Evans",
		Genre:           "cool jazz",
		Mood:            "peaceful",
		Energy:          0.3,
		BPM:             60,
		VocalStyle:      "instrumental",
		Instrumentation: "piano, bass, drums",
	}
}

// KindOfBlue is an album fixture.
func KindOfBlue(id jazzmate.ID) jazzmate.Album {
	return jazzmate.Album{ID: id, Artist: "Miles Davis", Title: "Kind of Blue", Year: 1959, Label: "Columbia"}
}

// TimeOut is an album fixture.
func TimeOut(id jazzmate.ID) jazzmate.Album {
	return jazzmate.Album{ID: id, Artist: "Dave Brubeck", Title: "Time Out", Year: 1959, Label: "Columbia"}
}

// SampleDataQuality is a three-day data-quality report.
func SampleDataQuality() aiservice.DataQualityReport {
	return aiservice.DataQualityReport{
		Success: true,
		Data: &aiservice.DataQualityData{
			Latest: aiservice.QualitySnapshot{
				Date:           "2025-01-03",
				Timestamp:      "2025-01-03T09:00:00",
				OverallQuality: 87.5,
				TotalRecords:   1250,
				TotalFields:    12,
			},
			Timeseries: aiservice.QualityTimeseries{
				Dates:          []string{"2025-01-01", "2025-01-02", "2025-01-03"},
				OverallQuality: []float64{80, 85, 87.5},
				TotalRecords:   []int{1100, 1200, 1250},
				TotalFields:    []int{12, 12, 12},
			},
			FieldCompleteness: map[string]aiservice.FieldCompleteness{
				"genre": {History: []float64{95, 97, 99}, Latest: 99, MissingPct: 1},
				"mood":  {History: []float64{70, 80, 90}, Latest: 90, MissingPct: 10},
				"bpm":   {History: []float64{40, 45, 52.5}, Latest: 52.5, MissingPct: 47.5},
			},
		},
	}
}

// KindOfBlueCritic is a critic review carrying a structured summary.
func KindOfBlueCritic(id jazzmate.ID) jazzmate.CriticsReview {
	return jazzmate.CriticsReview{
		ID:        id,
		Title:     "Kind of Blue",
		Reviewer:  "Jazz Times",
		Date:      "2024-05-01",
		Rating:    5,
		Content:   "Miles Davis and his sextet reinvent jazz with modal trumpet and cool piano.",
		AlbumInfo: "Miles Davis - Kind of Blue (Columbia, 1959)",
		Personnel: "Miles Davis, John Coltrane, Bill Evans",
		ReviewSummary: `{"summary":{"korean":"모달 재즈의 정수"},` +
			`"categories":{"artist_info":{"korean":"마일스 데이비스 섹스텟"},` +
			`"instrumentation":{"korean":"트럼펫, 색소폰, 피아노"},` +
			`"track_info":{"So What":{"korean":"베이스 인트로"},"Blue in Green":"빌 에반스의 서정"}}}`,
	}
}
